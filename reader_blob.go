package transcode

import (
	"context"
	"io"
)

// BlobReader is an io.ReadSeeker over a Blob. Each Read issues one ReadSlice
// of at most len(p) bytes starting at the cursor.
type BlobReader struct {
	B     Blob            // source blob
	N     int64           // current read position
	Ctx   context.Context // context for every ReadSlice
	Chunk int             // window used by WriteTo
}

// NewBlobReader creates a new BlobReader. WriteTo copies in DefaultChunkSize windows.
func NewBlobReader(ctx context.Context, b Blob) *BlobReader {
	return &BlobReader{B: b, Ctx: ctx, Chunk: DefaultChunkSize}
}

// Close does nothing; blobs hold no releasable resource of their own.
func (r *BlobReader) Close() error {
	return nil
}

// Read implements the [io.Reader] interface.
func (r *BlobReader) Read(p []byte) (int, error) {
	size := r.B.Size()
	if r.N >= size {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}
	end := min(r.N+int64(len(p)), size)
	b, err := r.B.ReadSlice(r.Ctx, r.N, end)
	if err != nil {
		return 0, err
	}
	n := copy(p, b)
	r.N += int64(n)
	return n, nil
}

// WriteTo implements the [io.WriterTo] interface, reading one window at a time.
func (r *BlobReader) WriteTo(w io.Writer) (int64, error) {
	var total int64
	size := r.B.Size()
	step := int64(r.Chunk)
	if step <= 0 {
		step = DefaultChunkSize
	}
	for r.N < size {
		end := min(r.N+step, size)
		b, err := r.B.ReadSlice(r.Ctx, r.N, end)
		if err != nil {
			return total, err
		}
		n, err := w.Write(b)
		if n < 0 || n > len(b) {
			return total, ErrInvalidWrite
		}
		r.N += int64(n)
		total += int64(n)
		if err != nil {
			return total, err
		}
		if n < len(b) {
			return total, io.ErrShortWrite
		}
	}
	return total, nil
}

// Seek implements the [io.Seeker] interface.
func (r *BlobReader) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = r.N + offset
	case io.SeekEnd:
		abs = r.B.Size() + offset
	default:
		return 0, ErrInvalidWhence
	}

	if abs < 0 {
		return 0, ErrInvalidSeek
	}

	r.N = abs
	return abs, nil
}

// Size returns the size of the underlying blob.
func (r *BlobReader) Size() int64 {
	return r.B.Size()
}

// Available returns the number of bytes available for reading.
func (r *BlobReader) Available() int64 {
	return max(r.B.Size()-r.N, 0)
}
