package transcode

import (
	"context"
	"errors"
	"sync"
)

// converter is the per-kind conversion table. Every kind converts to the
// universal block targets (bytes, base64, decoded text); convert covers the
// direct edges it knows and returns errNoEdge for the engine to pivot
// through Bytes.
type converter interface {
	toBytes(ctx context.Context, v any, o *Options) ([]byte, error)
	toBase64(ctx context.Context, v any, o *Options) (string, error)
	toText(ctx context.Context, v any, o *Options) (string, error)
	convert(ctx context.Context, v any, to Target, o *Options) (any, error)
	merge(ctx context.Context, vs []any, o *Options) (any, error)
}

// Engine converts values between kinds. It holds only immutable configuration,
// so one Engine serves any number of concurrent calls.
type Engine struct {
	caps       Capabilities
	defaults   Options
	converters [kindCount]converter
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithDefaults sets the options used for fields a call leaves at zero.
func WithDefaults(o Options) EngineOption {
	return func(e *Engine) { e.defaults = o }
}

// New creates an Engine limited to the given capabilities.
func New(caps Capabilities, opts ...EngineOption) *Engine {
	e := &Engine{caps: caps}
	for _, opt := range opts {
		opt(e)
	}
	e.converters = [kindCount]converter{
		KindBytes: bytesConverter{e},
		KindBlob:  blobConverter{e},
		KindText:  textConverter{e},
		KindPush:  pushConverter{e},
		KindPull:  pullConverter{e},
	}
	return e
}

var defaultEngine = sync.OnceValue(func() *Engine {
	return New(DetectCapabilities())
})

// Default returns the process-wide engine built from DetectCapabilities.
func Default() *Engine { return defaultEngine() }

// Capabilities returns the capability set the engine was built with.
func (e *Engine) Capabilities() Capabilities { return e.caps }

// options merges per-call options over the engine defaults and normalizes them.
func (e *Engine) options(opts *Options) (Options, error) {
	o := e.defaults
	if opts != nil {
		if opts.ChunkSize != 0 {
			o.ChunkSize = opts.ChunkSize
		}
		if opts.InputEncoding != "" {
			o.InputEncoding = opts.InputEncoding
		}
		if opts.InputCharset != "" {
			o.InputCharset = opts.InputCharset
		}
		if opts.OutputCharset != "" {
			o.OutputCharset = opts.OutputCharset
		}
	}
	return o.Normalize()
}

// checkTarget fails fast on kinds the environment lacks.
func (e *Engine) checkTarget(to Target) (Target, error) {
	if to.Kind == KindText && to.Encoding == "" {
		to.Encoding = EncodingUTF8
	}
	if to.Kind == KindUnknown || to.Kind >= kindCount {
		return to, &ConversionError{To: to}
	}
	if !e.caps.Has(to.Kind) {
		return to, &KindError{Kind: to.Kind}
	}
	return to, nil
}

// Convert returns v in the representation named by to.
//
// An absent v (nil) yields the empty value of the target. A v that already
// has the target representation is returned as is, without a copy.
func (e *Engine) Convert(ctx context.Context, v any, to Target, opts *Options) (any, error) {
	o, err := e.options(opts)
	if err != nil {
		return nil, err
	}
	to, err = e.checkTarget(to)
	if err != nil {
		return nil, err
	}
	return e.convert(ctx, v, to, &o)
}

func (e *Engine) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	if isAbsent(v) {
		return emptyValue(to), nil
	}
	from, val, err := classify(v, o)
	if err != nil {
		return nil, err
	}
	if from.same(to) {
		return val, nil
	}

	c := e.converters[from.Kind]
	switch to {
	case TargetBytes:
		b, err := c.toBytes(ctx, val, o)
		if err != nil {
			return nil, err
		}
		return b, nil
	case TargetBase64:
		s, err := c.toBase64(ctx, val, o)
		return textResult(s, EncodingBase64, err)
	case TargetUTF8:
		s, err := c.toText(ctx, val, o)
		return textResult(s, EncodingUTF8, err)
	}

	out, err := c.convert(ctx, val, to, o)
	if !errors.Is(err, errNoEdge) {
		return out, err
	}

	// No direct edge: pivot through Bytes.
	b, err := c.toBytes(ctx, val, o)
	if err != nil {
		return nil, err
	}
	out, err = e.converters[KindBytes].convert(ctx, b, to, o)
	if errors.Is(err, errNoEdge) {
		return nil, &ConversionError{From: from, To: to}
	}
	return out, err
}

func textResult(s string, enc Encoding, err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return Text{Value: s, Encoding: enc}, nil
}

// toBytes converts any value to bytes under already normalized options.
func (e *Engine) toBytes(ctx context.Context, v any, o *Options) ([]byte, error) {
	out, err := e.convert(ctx, v, TargetBytes, o)
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// chunkBytes converts one stream chunk to bytes.
func (e *Engine) chunkBytes(ctx context.Context, c any, o *Options) ([]byte, error) {
	if b, ok := c.([]byte); ok {
		return b, nil
	}
	return e.toBytes(ctx, c, o)
}

// ToBytes converts v to a byte slice.
func (e *Engine) ToBytes(ctx context.Context, v any, opts *Options) ([]byte, error) {
	out, err := e.Convert(ctx, v, TargetBytes, opts)
	if err != nil {
		return nil, err
	}
	return out.([]byte), nil
}

// ToBlob converts v to a Blob.
func (e *Engine) ToBlob(ctx context.Context, v any, opts *Options) (Blob, error) {
	out, err := e.Convert(ctx, v, TargetBlob, opts)
	if err != nil {
		return nil, err
	}
	return out.(Blob), nil
}

// ToPull converts v to a PullStream.
func (e *Engine) ToPull(ctx context.Context, v any, opts *Options) (PullStream, error) {
	out, err := e.Convert(ctx, v, TargetPull, opts)
	if err != nil {
		return nil, err
	}
	return out.(PullStream), nil
}

// ToPush converts v to a PushStream.
func (e *Engine) ToPush(ctx context.Context, v any, opts *Options) (PushStream, error) {
	out, err := e.Convert(ctx, v, TargetPush, opts)
	if err != nil {
		return nil, err
	}
	return out.(PushStream), nil
}

// ToBase64 converts v to standard padded base64.
func (e *Engine) ToBase64(ctx context.Context, v any, opts *Options) (string, error) {
	return e.toString(ctx, v, TargetBase64, opts)
}

// ToHex converts v to lowercase hex.
func (e *Engine) ToHex(ctx context.Context, v any, opts *Options) (string, error) {
	return e.toString(ctx, v, TargetHex, opts)
}

// ToText decodes v as text in the InputCharset of opts.
func (e *Engine) ToText(ctx context.Context, v any, opts *Options) (string, error) {
	return e.toString(ctx, v, TargetUTF8, opts)
}

// ToBinaryString converts v to a string with one code point per byte.
func (e *Engine) ToBinaryString(ctx context.Context, v any, opts *Options) (string, error) {
	return e.toString(ctx, v, TargetBinary, opts)
}

func (e *Engine) toString(ctx context.Context, v any, to Target, opts *Options) (string, error) {
	out, err := e.Convert(ctx, v, to, opts)
	if err != nil {
		return "", err
	}
	return out.(Text).Value, nil
}

// emptyValue is the value of the target's kind that holds no bytes.
func emptyValue(to Target) any {
	switch to.Kind {
	case KindBytes:
		return []byte{}
	case KindBlob:
		return NewBlob(nil)
	case KindText:
		return Text{Encoding: to.Encoding}
	case KindPush:
		return emptyPush()
	case KindPull:
		return emptyPull()
	}
	return nil
}

// Package-level helpers delegating to Default().

func Convert(ctx context.Context, v any, to Target, opts *Options) (any, error) {
	return Default().Convert(ctx, v, to, opts)
}

func ToBytes(ctx context.Context, v any, opts *Options) ([]byte, error) {
	return Default().ToBytes(ctx, v, opts)
}

func ToBlob(ctx context.Context, v any, opts *Options) (Blob, error) {
	return Default().ToBlob(ctx, v, opts)
}

func ToPull(ctx context.Context, v any, opts *Options) (PullStream, error) {
	return Default().ToPull(ctx, v, opts)
}

func ToPush(ctx context.Context, v any, opts *Options) (PushStream, error) {
	return Default().ToPush(ctx, v, opts)
}

func ToBase64(ctx context.Context, v any, opts *Options) (string, error) {
	return Default().ToBase64(ctx, v, opts)
}

func ToHex(ctx context.Context, v any, opts *Options) (string, error) {
	return Default().ToHex(ctx, v, opts)
}

func ToText(ctx context.Context, v any, opts *Options) (string, error) {
	return Default().ToText(ctx, v, opts)
}

func ToBinaryString(ctx context.Context, v any, opts *Options) (string, error) {
	return Default().ToBinaryString(ctx, v, opts)
}
