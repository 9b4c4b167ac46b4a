package transcode

import (
	"context"
	"io"
)

// Pipe drives src through to dst. The source is converted to a PullStream,
// since a writer is fed by pulling, and copied chunk by chunk.
//
// On success dst is flushed and, if it is an io.Closer, closed; Pipe returns
// only after that Close has returned. On failure the source is released and
// dst is aborted: closed with the cause when it has CloseWithError (such as
// *io.PipeWriter), closed plainly otherwise. The first error is returned.
func (e *Engine) Pipe(ctx context.Context, src any, dst io.Writer, opts *Options) (int64, error) {
	w, err := NewWriter(dst)
	if err != nil {
		return 0, err
	}
	o, err := e.options(opts)
	if err != nil {
		w.Abort(err)
		return 0, err
	}
	to, err := e.checkTarget(TargetPull)
	if err != nil {
		w.Abort(err)
		return 0, err
	}
	out, err := e.convert(ctx, src, to, &o)
	if err != nil {
		w.Abort(err)
		return 0, err
	}

	r := newPullReader(ctx, e, out.(PullStream), &o)
	if _, err := w.ReadFrom(r); err != nil {
		logRelease("pipe source", r.Close())
		w.Abort(err)
		return w.Count(), err
	}
	if err := r.Close(); err != nil {
		w.Abort(err)
		return w.Count(), err
	}
	if err := w.Close(); err != nil {
		return w.Count(), err
	}
	return w.Result()
}

// Pipe drives src through to dst with the default engine.
func Pipe(ctx context.Context, src any, dst io.Writer, opts *Options) (int64, error) {
	return Default().Pipe(ctx, src, dst, opts)
}
