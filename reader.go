package transcode

import (
	"context"
	"io"
)

type reader interface {
	io.Reader
	io.WriterTo
	io.Closer
}

// PullReader exposes a PullStream as an io.Reader.
// It tracks the first error. Subsequent reads become no-ops.
type PullReader struct {
	p     PullStream
	ctx   context.Context
	e     *Engine
	o     *Options
	cur   []byte // unread rest of the current chunk
	count int64  // total bytes read
	err   error  // first error encountered.
	rel   releaser
}

var _ reader = (*PullReader)(nil)

// NewPullReader creates a PullReader that pulls with ctx. Blob chunks are read
// through the default engine.
func NewPullReader(ctx context.Context, p PullStream) *PullReader {
	o, _ := Options{}.Normalize()
	return newPullReader(ctx, Default(), p, &o)
}

func newPullReader(ctx context.Context, e *Engine, p PullStream, o *Options) *PullReader {
	r := &PullReader{p: p, ctx: ctx, e: e, o: o}
	r.rel.fn = p.Close
	return r
}

// Close releases the underlying pull stream. It is safe to call more than once.
func (r *PullReader) Close() error {
	return r.rel.release()
}

// next loads the following non-empty chunk into r.cur.
func (r *PullReader) next() bool {
	for len(r.cur) == 0 {
		if r.err != nil {
			return false
		}
		c, err := r.p.Pull(r.ctx)
		if err != nil {
			r.setError(err)
			return false
		}
		b, err := r.e.chunkBytes(r.ctx, c, r.o)
		if err != nil {
			r.setError(err)
			return false
		}
		r.cur = b
	}
	return true
}

// Read implements the io.Reader interface.
func (r *PullReader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, r.err
	}
	if !r.next() {
		return 0, r.err
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	r.count += int64(n)
	return n, nil
}

// WriteTo implements io.WriterTo, writing each chunk as a whole.
// Reaching the end of the stream is not an error.
func (r *PullReader) WriteTo(w io.Writer) (int64, error) {
	if w == nil {
		r.setError(ErrWriteToNil)
		return 0, r.err
	}
	var total int64
	for r.next() {
		n, err := w.Write(r.cur)
		if n < 0 || n > len(r.cur) {
			r.setError(ErrInvalidWrite)
			break
		}
		r.cur = r.cur[n:]
		r.count += int64(n)
		total += int64(n)
		if err != nil {
			r.setError(err)
			break
		}
		if len(r.cur) > 0 {
			r.setError(io.ErrShortWrite)
			break
		}
	}
	if r.IsEOF() {
		return total, nil
	}
	return total, r.err
}

func (r *PullReader) Count() int64 { return r.count }
func (r *PullReader) Err() error   { return r.err }
func (r *PullReader) IsEOF() bool  { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *PullReader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
// Reaching the end of the stream is reported as a nil error.
func (r *PullReader) Result() (int64, error) {
	if r.IsEOF() {
		return r.count, nil
	}
	return r.count, r.err
}
