package transcode

import "io"

// BytesWriter is an io.Writer that writes to a pre-allocated byte slice.
// It will not grow the slice's capacity. If a write exceeds the available space,
// it writes as much as it can and returns io.ErrShortWrite.
//
// Merges and blob reads size the destination once and fill it with a
// BytesWriter, so the result costs exactly one allocation.
type BytesWriter struct {
	B []byte // destination slice
	N int    // current write position
}

// NewBytesWriter creates a new BytesWriter.
func NewBytesWriter(p []byte) *BytesWriter {
	return &BytesWriter{B: p[:cap(p)]}
}

// Write implements the io.Writer interface.
func (w *BytesWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if w.N >= len(w.B) {
		return 0, io.ErrShortWrite
	}
	n := copy(w.B[w.N:], p)
	w.N += n
	if n < len(p) {
		return n, io.ErrShortWrite
	}
	return n, nil
}

// ReadFrom implements the io.ReaderFrom interface. It reads until the slice is
// full, EOF, or an error occurs.
func (w *BytesWriter) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for w.N < len(w.B) {
		n, err := r.Read(w.B[w.N:])
		if n < 0 {
			return total, ErrInvalidWrite
		}
		w.N += n
		total += int64(n)
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Available returns the number of bytes available for writing. A sized
// destination that still has room after its source ended was short-changed.
func (w *BytesWriter) Available() int { return len(w.B) - w.N }

// Bytes returns a slice view of the written data.
func (w *BytesWriter) Bytes() []byte { return w.B[:w.N] }
