package transcode

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
)

// PushStream is a producer-driven sequence of chunks. Each chunk is []byte or a Blob.
//
// Subscribe delivers chunks by calling emit sequentially from a single
// goroutine and returns nil after the last chunk. A producer failure is
// returned as is. If emit returns an error, or ctx is cancelled, the producer
// stops and returns that error; this is how consumers unsubscribe. A blocking
// emit is the back-pressure signal.
type PushStream interface {
	Subscribe(ctx context.Context, emit func(chunk any) error) error
}

// Pausable is implemented by push sources that honor explicit back-pressure.
type Pausable interface {
	Pause()
	Resume()
}

// PushFunc adapts a function to the PushStream interface.
type PushFunc func(ctx context.Context, emit func(chunk any) error) error

func (f PushFunc) Subscribe(ctx context.Context, emit func(chunk any) error) error {
	return f(ctx, emit)
}

func emptyPush() PushStream {
	return PushFunc(func(context.Context, func(any) error) error { return nil })
}

// gate blocks producers while paused.
type gate struct {
	mu     sync.Mutex
	paused bool
	resume chan struct{}
}

func (g *gate) Pause() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.paused {
		g.paused = true
		g.resume = make(chan struct{})
	}
}

func (g *gate) Resume() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paused {
		g.paused = false
		close(g.resume)
	}
}

// wait returns once the gate is open or ctx is done.
func (g *gate) wait(ctx context.Context) error {
	g.mu.Lock()
	if !g.paused {
		g.mu.Unlock()
		return nil
	}
	ch := g.resume
	g.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// blockPush delivers a blob in chunk-sized windows as fast as the consumer takes them.
type blockPush struct {
	gate
	src        Blob
	chunk      int64
	subscribed atomic.Bool
}

var _ Pausable = (*blockPush)(nil)

func newBlockPush(src Blob, chunk int) *blockPush {
	return &blockPush{src: src, chunk: int64(chunk)}
}

func (p *blockPush) Subscribe(ctx context.Context, emit func(chunk any) error) error {
	if !p.subscribed.CompareAndSwap(false, true) {
		return ErrAlreadySubscribed
	}
	return windows(p.src.Size(), p.chunk, func(start, end int64) error {
		if err := p.wait(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		b, err := p.src.ReadSlice(ctx, start, end)
		if err != nil {
			return err
		}
		return emit(b)
	})
}

// mergedPush subscribes to each source in turn.
type mergedPush struct {
	srcs []PushStream
}

func (m *mergedPush) Subscribe(ctx context.Context, emit func(chunk any) error) error {
	for i, src := range m.srcs {
		if err := src.Subscribe(ctx, emit); err != nil {
			// Sources that were never subscribed still hold their resources.
			for _, rest := range m.srcs[i+1:] {
				if c, ok := rest.(io.Closer); ok {
					logRelease("merged push source", c.Close())
				}
			}
			return err
		}
	}
	return nil
}
