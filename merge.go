package transcode

import (
	"context"
	"fmt"
)

// MergeBytes concatenates chunks with a single pre-sized allocation.
// An empty input yields an empty slice and a single chunk is returned as is.
func MergeBytes(chunks [][]byte) []byte {
	switch len(chunks) {
	case 0:
		return []byte{}
	case 1:
		return chunks[0]
	}
	total := 0
	for _, c := range chunks {
		total += len(c)
	}
	w := NewBytesWriter(make([]byte, total))
	for _, c := range chunks {
		_, _ = w.Write(c) // cannot overflow, the slice is sized for all chunks
	}
	return w.Bytes()
}

// MergeBlobs returns the lazy concatenation of blobs. Nothing is read until
// the result is.
func MergeBlobs(blobs ...Blob) Blob {
	switch len(blobs) {
	case 0:
		return NewBlob(nil)
	case 1:
		return blobs[0]
	}
	return newMultiBlob(blobs)
}

// MergePull returns a stream that drains each source to exhaustion in order.
// The first error aborts and releases the sources not yet drained.
func MergePull(srcs ...PullStream) PullStream {
	switch len(srcs) {
	case 0:
		return emptyPull()
	case 1:
		return srcs[0]
	}
	return newMergedPull(srcs)
}

// MergePush returns a stream that subscribes to each source in order.
func MergePush(srcs ...PushStream) PushStream {
	switch len(srcs) {
	case 0:
		return emptyPush()
	case 1:
		return srcs[0]
	}
	return &mergedPush{srcs: srcs}
}

// MergeText concatenates texts of the default engine. Pieces whose encoding
// differs from the first are converted to it.
func MergeText(ctx context.Context, pieces []Text, opts *Options) (Text, error) {
	vs := make([]any, len(pieces))
	for i, p := range pieces {
		vs[i] = p
	}
	out, err := Default().Merge(ctx, KindText, vs, opts)
	if err != nil {
		return Text{}, err
	}
	return out.(Text), nil
}

// Merge concatenates values into one value of kind k. Values of another kind
// are converted to k first. An empty input yields the empty value of k and a
// single value of kind k is returned unchanged.
func (e *Engine) Merge(ctx context.Context, k Kind, vs []any, opts *Options) (any, error) {
	o, err := e.options(opts)
	if err != nil {
		return nil, err
	}
	if k == KindUnknown || k >= kindCount {
		return nil, fmt.Errorf("%w: cannot merge into %s", ErrUnsupportedKind, k)
	}
	if !e.caps.Has(k) {
		return nil, &KindError{Kind: k}
	}
	switch {
	case len(vs) == 0:
		return emptyValue(Target{Kind: k, Encoding: o.InputEncoding}), nil
	case len(vs) == 1 && k == KindText:
		if from, val, err := classify(vs[0], &o); err == nil && from.Kind == KindText {
			return val, nil
		}
	case len(vs) == 1:
		// Already of kind k, this returns the value unchanged.
		return e.convert(ctx, vs[0], Target{Kind: k}, &o)
	}
	return e.converters[k].merge(ctx, vs, &o)
}

// Merge concatenates values with the default engine.
func Merge(ctx context.Context, k Kind, vs []any, opts *Options) (any, error) {
	return Default().Merge(ctx, k, vs, opts)
}
