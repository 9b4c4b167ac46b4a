package transcode

import (
	"context"
	"fmt"
	"io"
)

// Blob is an opaque handle to binary data of known size whose bytes are
// only obtained through ReadSlice. Implementations must be safe to read
// from several goroutines when their backing store is.
type Blob interface {
	// Size returns the total number of bytes.
	Size() int64

	// ReadSlice returns the bytes in [start, end). The returned slice is owned
	// by the caller. Bounds outside [0, Size()] fail with ErrInvalidSlice.
	ReadSlice(ctx context.Context, start, end int64) ([]byte, error)

	// Slice returns a view of [start, end) without reading. Bounds are clamped
	// to [0, Size()] and an inverted range yields an empty blob.
	Slice(start, end int64) Blob
}

// clampRange clamps [start, end) into [0, size].
func clampRange(start, end, size int64) (int64, int64) {
	start = max(0, min(start, size))
	end = max(start, min(end, size))
	return start, end
}

func checkRange(start, end, size int64) error {
	if start < 0 || end < start || end > size {
		return fmt.Errorf("%w: [%d, %d) of %d", ErrInvalidSlice, start, end, size)
	}
	return nil
}

// bytesBlob is a Blob over memory that is already materialized.
type bytesBlob struct {
	b []byte
}

// NewBlob returns a Blob over b. The slice is not copied; callers must not
// modify it afterwards.
func NewBlob(b []byte) Blob {
	return &bytesBlob{b: b}
}

func (m *bytesBlob) Size() int64 { return int64(len(m.b)) }

func (m *bytesBlob) ReadSlice(ctx context.Context, start, end int64) ([]byte, error) {
	if err := checkRange(start, end, m.Size()); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]byte, end-start)
	copy(out, m.b[start:end])
	return out, nil
}

func (m *bytesBlob) Slice(start, end int64) Blob {
	start, end = clampRange(start, end, m.Size())
	return &bytesBlob{b: m.b[start:end:end]}
}

// readerAtBlob is a Blob over a section of an io.ReaderAt, such as an *os.File.
type readerAtBlob struct {
	r   io.ReaderAt
	off int64
	n   int64
}

// BlobFromReaderAt returns a Blob over the first size bytes of r.
// Nothing is read until ReadSlice is called.
func BlobFromReaderAt(r io.ReaderAt, size int64) Blob {
	return &readerAtBlob{r: r, n: max(size, 0)}
}

func (b *readerAtBlob) Size() int64 { return b.n }

func (b *readerAtBlob) ReadSlice(ctx context.Context, start, end int64) ([]byte, error) {
	if err := checkRange(start, end, b.n); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, end-start)
	n, err := b.r.ReadAt(buf, b.off+start)
	if n == len(buf) {
		// io.ReaderAt may report io.EOF together with the final bytes.
		return buf, nil
	}
	if err == nil || err == io.EOF {
		err = fmt.Errorf("%w: wanted %d bytes at %d, got %d", ErrShortSlice, len(buf), b.off+start, n)
	}
	return nil, err
}

func (b *readerAtBlob) Slice(start, end int64) Blob {
	start, end = clampRange(start, end, b.n)
	return &readerAtBlob{r: b.r, off: b.off + start, n: end - start}
}

// multiBlob is the lazy concatenation of several blobs.
type multiBlob struct {
	parts []Blob
	size  int64
}

func newMultiBlob(parts []Blob) Blob {
	var size int64
	kept := make([]Blob, 0, len(parts))
	for _, p := range parts {
		if p.Size() == 0 {
			continue
		}
		size += p.Size()
		kept = append(kept, p)
	}
	switch len(kept) {
	case 0:
		return NewBlob(nil)
	case 1:
		return kept[0]
	}
	return &multiBlob{parts: kept, size: size}
}

func (m *multiBlob) Size() int64 { return m.size }

func (m *multiBlob) ReadSlice(ctx context.Context, start, end int64) ([]byte, error) {
	if err := checkRange(start, end, m.size); err != nil {
		return nil, err
	}
	w := NewBytesWriter(make([]byte, end-start))
	var base int64
	for _, p := range m.parts {
		pEnd := base + p.Size()
		if pEnd > start && base < end {
			from, to := max(start, base)-base, min(end, pEnd)-base
			b, err := p.ReadSlice(ctx, from, to)
			if err != nil {
				return nil, err
			}
			if _, err := w.Write(b); err != nil {
				return nil, err
			}
		}
		base = pEnd
		if base >= end {
			break
		}
	}
	if w.Available() != 0 {
		return nil, fmt.Errorf("%w: wanted %d bytes at %d, got %d", ErrShortSlice, end-start, start, len(w.Bytes()))
	}
	return w.Bytes(), nil
}

func (m *multiBlob) Slice(start, end int64) Blob {
	start, end = clampRange(start, end, m.size)
	var parts []Blob
	var base int64
	for _, p := range m.parts {
		pEnd := base + p.Size()
		if pEnd > start && base < end {
			parts = append(parts, p.Slice(max(start, base)-base, min(end, pEnd)-base))
		}
		base = pEnd
	}
	return newMultiBlob(parts)
}
