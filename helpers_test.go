package transcode

import (
	"context"
	"io"
	"math/rand/v2"
	"sync/atomic"
)

// --- Mocks and Helpers ---

// payload returns n deterministic pseudo-random bytes.
func payload(n int) []byte {
	r := rand.New(rand.NewPCG(uint64(n), 42))
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(r.UintN(256))
	}
	return b
}

// countingBlob records every ReadSlice call on the wrapped blob.
type countingBlob struct {
	Blob
	reads atomic.Int32
}

func (c *countingBlob) ReadSlice(ctx context.Context, start, end int64) ([]byte, error) {
	c.reads.Add(1)
	return c.Blob.ReadSlice(ctx, start, end)
}

// shortBlob returns one byte less than asked for from every ReadSlice.
type shortBlob struct {
	Blob
}

func (b *shortBlob) ReadSlice(ctx context.Context, start, end int64) ([]byte, error) {
	out, err := b.Blob.ReadSlice(ctx, start, end)
	if err != nil || len(out) == 0 {
		return out, err
	}
	return out[:len(out)-1], nil
}

// mockPull yields fixed chunks, optionally failing at index failAt, and counts releases.
type mockPull struct {
	chunks [][]byte
	failAt int // -1 never fails
	err    error
	i      int
	closes atomic.Int32
}

func newMockPull(chunks ...[]byte) *mockPull {
	return &mockPull{chunks: chunks, failAt: -1}
}

func (m *mockPull) Pull(ctx context.Context) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.i == m.failAt {
		return nil, m.err
	}
	if m.i >= len(m.chunks) {
		return nil, io.EOF
	}
	c := m.chunks[m.i]
	m.i++
	return c, nil
}

func (m *mockPull) Close() error {
	m.closes.Add(1)
	return nil
}

// blockingPull never yields; it waits for its context.
type blockingPull struct {
	closes atomic.Int32
}

func (b *blockingPull) Pull(ctx context.Context) (any, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func (b *blockingPull) Close() error {
	b.closes.Add(1)
	return nil
}

// pushOf returns a push source delivering the given chunks.
func pushOf(chunks ...any) PushStream {
	return PushFunc(func(ctx context.Context, emit func(any) error) error {
		for _, c := range chunks {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := emit(c); err != nil {
				return err
			}
		}
		return nil
	})
}

// split cuts b into pieces of at most n bytes.
func split(b []byte, n int) [][]byte {
	var out [][]byte
	for len(b) > n {
		out = append(out, b[:n])
		b = b[n:]
	}
	if len(b) > 0 {
		out = append(out, b)
	}
	return out
}
