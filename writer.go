package transcode

import (
	"io"
)

type writer interface {
	io.Writer
	io.ReaderFrom
	io.Closer
}

// Writer wraps a pipe destination and tracks the first error that occurs.
// After an error, all subsequent write operations become no-ops.
type Writer struct {
	w     io.Writer
	count int64 // total bytes written
	err   error // first error encountered. Subsequent writes become no-ops.
	rel   releaser
}

var _ writer = (*Writer)(nil)

// NewWriter creates a new Writer around w.
func NewWriter(w io.Writer) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}
	wr := &Writer{w: w}
	wr.rel.fn = wr.closeFn
	return wr, nil
}

// Write implements the io.Writer interface.
func (w *Writer) Write(buf []byte) (int, error) {
	if len(buf) == 0 || w.err != nil {
		return 0, w.err
	}
	n, err := w.w.Write(buf)
	if n < 0 || n > len(buf) {
		w.setError(ErrInvalidWrite)
		return 0, w.err
	}
	w.count += int64(n)
	if err == nil && n < len(buf) {
		err = io.ErrShortWrite
	}
	w.setError(err)
	return n, w.err
}

// ReadFrom implements io.ReaderFrom for efficient copying. A reader that is an
// io.WriterTo drives the copy itself, one chunk per write.
func (w *Writer) ReadFrom(r io.Reader) (int64, error) {
	if r == nil || w.err != nil {
		return 0, w.err
	}
	var (
		n   int64
		err error
	)
	if wt, ok := r.(io.WriterTo); ok {
		n, err = wt.WriteTo(writerOnly{w})
	} else {
		bp := getBuf(DefaultChunkSize)
		defer putBuf(bp)
		n, err = io.CopyBuffer(writerOnly{w}, r, *bp)
	}
	// Bytes were counted by Write; only latch the error.
	w.setError(err)
	return n, w.err
}

// writerOnly hides ReadFrom so io.CopyBuffer does not recurse into it.
type writerOnly struct{ io.Writer }

func (w *Writer) Count() int64 { return w.count }
func (w *Writer) Err() error   { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Flush flushes the destination if it buffers (e.g. *bufio.Writer).
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if f, ok := w.w.(interface{ Flush() error }); ok {
		w.setError(f.Flush())
	}
	return w.err
}

// Close flushes and then signals the destination that no more data follows.
// It returns only after the destination's Close has returned.
func (w *Writer) Close() error {
	return w.rel.release()
}

// closeFn is the default release; Abort swaps it before releasing so that a
// destination is closed exactly once either way.
func (w *Writer) closeFn() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if c, ok := w.w.(io.Closer); ok {
		w.setError(c.Close())
	}
	return w.err
}

// Abort releases the destination after a failure, passing cause along when the
// destination accepts one (e.g. *io.PipeWriter).
func (w *Writer) Abort(cause error) {
	w.setError(cause)
	w.rel.fn = func() error {
		switch d := w.w.(type) {
		case interface{ CloseWithError(error) error }:
			return d.CloseWithError(cause)
		case io.Closer:
			return d.Close()
		}
		return nil
	}
	logRelease("pipe destination", w.rel.release())
}

// Result returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	return w.count, w.err
}
