package transcode

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// pushPull turns a PushStream into a PullStream. The subscription runs in its
// own goroutine inside an errgroup scope that starts on the first Pull and is
// torn down by Close; each delivered chunk waits on an unbuffered channel
// until a Pull takes it, so the producer never runs ahead of the consumer.
type pushPull struct {
	src PushStream

	start  sync.Once
	ch     chan any
	g      *errgroup.Group
	cancel context.CancelFunc

	mu     sync.Mutex
	done   bool
	err    error
	closed bool
	rel    releaser
}

func newPushPull(src PushStream) *pushPull {
	p := &pushPull{src: src, ch: make(chan any)}
	p.rel.fn = p.shutdown
	return p
}

func (p *pushPull) run() {
	ctx, cancel := context.WithCancel(context.Background())
	g, gctx := errgroup.WithContext(ctx)
	p.g, p.cancel = g, cancel
	g.Go(func() error {
		defer close(p.ch)
		return p.src.Subscribe(gctx, func(chunk any) error {
			select {
			case p.ch <- chunk:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		})
	})
}

func (p *pushPull) Pull(ctx context.Context) (any, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}
	if p.done {
		err := p.err
		p.mu.Unlock()
		return nil, err
	}
	p.mu.Unlock()

	p.start.Do(p.run)
	select {
	case c, ok := <-p.ch:
		if ok {
			return c, nil
		}
		err := p.g.Wait()
		p.cancel()
		if err == nil {
			err = io.EOF
		}
		p.mu.Lock()
		p.done, p.err = true, err
		p.mu.Unlock()
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// shutdown unsubscribes and waits for the producer to return. A source that
// was never subscribed is released directly when it holds a resource.
func (p *pushPull) shutdown() error {
	started := true
	p.start.Do(func() { started = false })
	if !started {
		if c, ok := p.src.(io.Closer); ok {
			return c.Close()
		}
		return nil
	}
	p.cancel()
	err := p.g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *pushPull) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	err := p.rel.release()
	if p.isDone() {
		// The producer already finished and its outcome was reported by Pull.
		return nil
	}
	return err
}

func (p *pushPull) isDone() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// pullPush turns a PullStream into a PushStream. The source is released once,
// when Subscribe returns, however it returns.
type pullPush struct {
	src        PullStream
	subscribed atomic.Bool
}

func newPullPush(src PullStream) *pullPush {
	return &pullPush{src: src}
}

func (p *pullPush) Subscribe(ctx context.Context, emit func(chunk any) error) (err error) {
	if !p.subscribed.CompareAndSwap(false, true) {
		return ErrAlreadySubscribed
	}
	defer func() {
		if cerr := p.src.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				logRelease("pull source", cerr)
			}
		}
	}()
	for {
		c, err := p.src.Pull(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := emit(c); err != nil {
			return err
		}
	}
}

// Close releases the pull source of a stream that is never subscribed.
func (p *pullPush) Close() error {
	if p.subscribed.CompareAndSwap(false, true) {
		return p.src.Close()
	}
	return nil
}
