package transcode

import (
	"context"
	"errors"
	"io"
	"sync"
)

// PullStream is a consumer-driven sequence of chunks. Each chunk is []byte or a Blob.
//
// Pull returns io.EOF once the sequence is exhausted. Close releases the
// underlying resource; it is safe to call more than once and after io.EOF.
type PullStream interface {
	Pull(ctx context.Context) (any, error)
	Close() error
}

// releaser runs a release function at most once and remembers its result.
type releaser struct {
	once sync.Once
	fn   func() error
	err  error
}

func (r *releaser) release() error {
	r.once.Do(func() {
		if r.fn != nil {
			r.err = r.fn()
		}
	})
	return r.err
}

// funcPull is a PullStream built from callbacks.
type funcPull struct {
	next   func(ctx context.Context) (any, error)
	rel    releaser
	mu     sync.Mutex
	closed bool
}

// NewPull returns a PullStream that calls next for every chunk and release
// exactly once on Close. release may be nil.
func NewPull(next func(ctx context.Context) (any, error), release func() error) PullStream {
	return &funcPull{next: next, rel: releaser{fn: release}}
}

func (p *funcPull) Pull(ctx context.Context) (any, error) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return p.next(ctx)
}

func (p *funcPull) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return p.rel.release()
}

// emptyPull is exhausted from the start.
func emptyPull() PullStream {
	return NewPull(func(context.Context) (any, error) { return nil, io.EOF }, nil)
}

// blockPull slices a blob lazily: nothing is read before it is requested.
type blockPull struct {
	src    Blob
	chunk  int64
	mu     sync.Mutex
	cursor int64
	closed bool
}

func newBlockPull(src Blob, chunk int) *blockPull {
	return &blockPull{src: src, chunk: int64(chunk)}
}

func (p *blockPull) Pull(ctx context.Context) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	size := p.src.Size()
	if p.cursor >= size {
		return nil, io.EOF
	}
	end := min(p.cursor+p.chunk, size)
	b, err := p.src.ReadSlice(ctx, p.cursor, end)
	if err != nil {
		return nil, err
	}
	p.cursor = end
	return b, nil
}

func (p *blockPull) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

// readerPull adapts an io.Reader into chunks of at most chunk bytes.
type readerPull struct {
	r     io.Reader
	chunk int
	eof   bool
	rel   releaser
	mu    sync.Mutex
}

// PullFromReader returns a PullStream reading r in chunks of at most chunkSize
// bytes. Close closes r if it is an io.Closer.
func PullFromReader(r io.Reader, chunkSize int) PullStream {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	p := &readerPull{r: r, chunk: chunkSize}
	p.rel.fn = func() error {
		if c, ok := r.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}
	return p
}

func (p *readerPull) Pull(ctx context.Context) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.eof {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf := make([]byte, p.chunk)
	n, err := io.ReadFull(p.r, buf)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.EOF) && n == 0:
		p.eof = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		// The reader ended inside this chunk; the next Pull reports io.EOF.
		p.eof = true
		return buf[:n], nil
	default:
		return nil, err
	}
}

func (p *readerPull) Close() error { return p.rel.release() }

// mergedPull drains each source to exhaustion before moving to the next.
type mergedPull struct {
	srcs []PullStream
	mu   sync.Mutex
	i    int
	rel  releaser
}

func newMergedPull(srcs []PullStream) *mergedPull {
	m := &mergedPull{srcs: srcs}
	m.rel.fn = func() error { return m.closeFrom(m.i) }
	return m
}

func (m *mergedPull) Pull(ctx context.Context) (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for m.i < len(m.srcs) {
		c, err := m.srcs[m.i].Pull(ctx)
		if err == nil {
			return c, nil
		}
		if err != io.EOF {
			// Abort every source that has not been drained yet, this one included.
			logRelease("merged pull", m.rel.release())
			return nil, err
		}
		logRelease("merged pull source", m.srcs[m.i].Close())
		m.i++
	}
	return nil, io.EOF
}

func (m *mergedPull) closeFrom(i int) error {
	var errs []error
	for ; i < len(m.srcs); i++ {
		if err := m.srcs[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *mergedPull) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rel.release()
}
