package transcode

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"io"
	"strings"
)

// encodeBlock renders a block source as text of the given encoding.
func encodeBlock(ctx context.Context, src source, enc Encoding, o *Options) (any, error) {
	var (
		s   string
		err error
	)
	switch enc {
	case EncodingBase64:
		s, err = src.encodeBase64(ctx, o)
	case EncodingHex:
		s, err = src.encodeHex(ctx, o)
	case EncodingUTF8:
		s, err = src.decodeText(ctx, o)
	case EncodingBinary:
		s, err = src.encodeBinary(ctx, o)
	default:
		return nil, errNoEdge
	}
	if err != nil {
		return nil, err
	}
	return Text{Value: s, Encoding: enc}, nil
}

// --- Bytes ---

type bytesConverter struct{ e *Engine }

func (bytesConverter) toBytes(_ context.Context, v any, _ *Options) ([]byte, error) {
	return v.([]byte), nil
}

func (bytesConverter) toBase64(ctx context.Context, v any, o *Options) (string, error) {
	return bytesSource(v.([]byte)).encodeBase64(ctx, o)
}

func (bytesConverter) toText(ctx context.Context, v any, o *Options) (string, error) {
	return bytesSource(v.([]byte)).decodeText(ctx, o)
}

func (bytesConverter) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	b := v.([]byte)
	switch to.Kind {
	case KindBytes:
		return b, nil
	case KindBlob:
		return NewBlob(b), nil
	case KindText:
		return encodeBlock(ctx, bytesSource(b), to.Encoding, o)
	case KindPull:
		return newBlockPull(NewBlob(b), o.ChunkSize), nil
	case KindPush:
		return newBlockPush(NewBlob(b), o.ChunkSize), nil
	}
	return nil, errNoEdge
}

func (c bytesConverter) merge(ctx context.Context, vs []any, o *Options) (any, error) {
	chunks := make([][]byte, len(vs))
	for i, v := range vs {
		b, err := c.e.toBytes(ctx, v, o)
		if err != nil {
			return nil, err
		}
		chunks[i] = b
	}
	return MergeBytes(chunks), nil
}

// --- Blob ---

type blobConverter struct{ e *Engine }

func (blobConverter) toBytes(ctx context.Context, v any, o *Options) ([]byte, error) {
	return blobSource(v.(Blob)).readAll(ctx, o)
}

func (blobConverter) toBase64(ctx context.Context, v any, o *Options) (string, error) {
	return blobSource(v.(Blob)).encodeBase64(ctx, o)
}

func (blobConverter) toText(ctx context.Context, v any, o *Options) (string, error) {
	return blobSource(v.(Blob)).decodeText(ctx, o)
}

func (c blobConverter) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	b := v.(Blob)
	if b.Size() == 0 {
		// Nothing to read, so no read primitive is ever invoked.
		return emptyValue(to), nil
	}
	switch to.Kind {
	case KindBytes:
		return c.toBytes(ctx, b, o)
	case KindBlob:
		return b, nil
	case KindText:
		return encodeBlock(ctx, blobSource(b), to.Encoding, o)
	case KindPull:
		return newBlockPull(b, o.ChunkSize), nil
	case KindPush:
		return newBlockPush(b, o.ChunkSize), nil
	}
	return nil, errNoEdge
}

func (c blobConverter) merge(ctx context.Context, vs []any, o *Options) (any, error) {
	parts := make([]Blob, len(vs))
	for i, v := range vs {
		out, err := c.e.convert(ctx, v, TargetBlob, o)
		if err != nil {
			return nil, err
		}
		parts[i] = out.(Blob)
	}
	return newMultiBlob(parts), nil
}

// --- Text ---

type textConverter struct{ e *Engine }

func (textConverter) toBytes(_ context.Context, v any, o *Options) ([]byte, error) {
	t := v.(Text)
	switch t.Encoding {
	case EncodingBase64:
		return decodeBase64String(t.Value, o)
	case EncodingHex:
		return decodeHexString(t.Value, o)
	case EncodingBinary:
		return decodeBinaryString(t.Value, o)
	case EncodingUTF8:
		return encodeText(t.Value, o)
	}
	return nil, errNoEdge
}

func (c textConverter) toBase64(ctx context.Context, v any, o *Options) (string, error) {
	t := v.(Text)
	if t.Encoding == EncodingBase64 {
		return t.Value, nil
	}
	b, err := c.toBytes(ctx, t, o)
	if err != nil {
		return "", err
	}
	return bytesSource(b).encodeBase64(ctx, o)
}

func (c textConverter) toText(ctx context.Context, v any, o *Options) (string, error) {
	t := v.(Text)
	if t.Encoding == EncodingUTF8 {
		return t.Value, nil
	}
	b, err := c.toBytes(ctx, t, o)
	if err != nil {
		return "", err
	}
	return bytesSource(b).decodeText(ctx, o)
}

func (c textConverter) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	if to.Kind == KindBytes {
		return c.toBytes(ctx, v, o)
	}
	// Every other target, other text encodings included, pivots through Bytes.
	return nil, errNoEdge
}

// merge concatenates the strings. Pieces in another encoding are converted
// to the encoding of the first piece.
func (c textConverter) merge(ctx context.Context, vs []any, o *Options) (any, error) {
	first, _, err := classify(vs[0], o)
	if err != nil {
		return nil, err
	}
	if first.Kind != KindText {
		first = TargetBase64
	}
	var sb strings.Builder
	for _, v := range vs {
		out, err := c.e.convert(ctx, v, first, o)
		if err != nil {
			return nil, err
		}
		sb.WriteString(out.(Text).Value)
	}
	return Text{Value: sb.String(), Encoding: first.Encoding}, nil
}

// --- Pull ---

type pullConverter struct{ e *Engine }

// toBytes drains the stream and merges once at the end. The stream is released
// exactly once, whether it ends or fails.
func (c pullConverter) toBytes(ctx context.Context, v any, o *Options) (_ []byte, err error) {
	p := v.(PullStream)
	defer func() {
		if cerr := p.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				logRelease("pull source", cerr)
			}
		}
	}()

	var chunks [][]byte
	for {
		chunk, err := p.Pull(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		b, err := c.e.chunkBytes(ctx, chunk, o)
		if err != nil {
			return nil, err
		}
		if len(b) > 0 {
			chunks = append(chunks, b)
		}
	}
	if len(chunks) == 0 {
		return []byte{}, nil
	}
	return MergeBytes(chunks), nil
}

// stream copies the pull stream into w, releasing the stream afterwards.
func (c pullConverter) stream(ctx context.Context, p PullStream, w io.Writer, o *Options) error {
	r := newPullReader(ctx, c.e, p, o)
	_, err := r.WriteTo(w)
	if cerr := r.Close(); cerr != nil {
		if err == nil {
			return cerr
		}
		logRelease("pull source", cerr)
	}
	return err
}

// toBase64 encodes while draining; the encoder carries partial quanta between
// chunks of arbitrary size.
func (c pullConverter) toBase64(ctx context.Context, v any, o *Options) (string, error) {
	var sb strings.Builder
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if err := c.stream(ctx, v.(PullStream), enc, o); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c pullConverter) toHex(ctx context.Context, v any, o *Options) (string, error) {
	var sb strings.Builder
	if err := c.stream(ctx, v.(PullStream), hex.NewEncoder(&sb), o); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c pullConverter) toText(ctx context.Context, v any, o *Options) (_ string, err error) {
	r := newPullReader(ctx, c.e, v.(PullStream), o)
	defer func() {
		if cerr := r.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				logRelease("pull source", cerr)
			}
		}
	}()
	dr, err := charsetDecodeReader(r, o.InputCharset)
	if err != nil {
		return "", err
	}
	return drainString(dr, o)
}

func (c pullConverter) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	var (
		s   string
		err error
	)
	switch to {
	case TargetPush:
		return newPullPush(v.(PullStream)), nil
	case TargetHex:
		s, err = c.toHex(ctx, v, o)
	default:
		return nil, errNoEdge
	}
	if err != nil {
		return nil, err
	}
	return Text{Value: s, Encoding: to.Encoding}, nil
}

func (c pullConverter) merge(ctx context.Context, vs []any, o *Options) (any, error) {
	srcs := make([]PullStream, 0, len(vs))
	for _, v := range vs {
		out, err := c.e.convert(ctx, v, TargetPull, o)
		if err != nil {
			for _, s := range srcs {
				logRelease("pull source", s.Close())
			}
			return nil, err
		}
		srcs = append(srcs, out.(PullStream))
	}
	return newMergedPull(srcs), nil
}

// --- Push ---

type pushConverter struct{ e *Engine }

// toBytes subscribes, buffers every delivered chunk and merges on completion.
// A producer error ends the subscription and is returned as is.
func (c pushConverter) toBytes(ctx context.Context, v any, o *Options) ([]byte, error) {
	var chunks [][]byte
	err := v.(PushStream).Subscribe(ctx, func(chunk any) error {
		b, err := c.e.chunkBytes(ctx, chunk, o)
		if err != nil {
			return err
		}
		if len(b) > 0 {
			chunks = append(chunks, b)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return []byte{}, nil
	}
	return MergeBytes(chunks), nil
}

func (c pushConverter) toBase64(ctx context.Context, v any, o *Options) (string, error) {
	b, err := c.toBytes(ctx, v, o)
	if err != nil {
		return "", err
	}
	return bytesSource(b).encodeBase64(ctx, o)
}

func (c pushConverter) toText(ctx context.Context, v any, o *Options) (string, error) {
	b, err := c.toBytes(ctx, v, o)
	if err != nil {
		return "", err
	}
	return bytesSource(b).decodeText(ctx, o)
}

func (c pushConverter) convert(ctx context.Context, v any, to Target, o *Options) (any, error) {
	switch to.Kind {
	case KindBytes:
		return c.toBytes(ctx, v, o)
	case KindPull:
		return newPushPull(v.(PushStream)), nil
	}
	return nil, errNoEdge
}

func (c pushConverter) merge(ctx context.Context, vs []any, o *Options) (any, error) {
	srcs := make([]PushStream, 0, len(vs))
	for _, v := range vs {
		out, err := c.e.convert(ctx, v, TargetPush, o)
		if err != nil {
			for _, s := range srcs {
				if cl, ok := s.(io.Closer); ok {
					logRelease("push source", cl.Close())
				}
			}
			return nil, err
		}
		srcs = append(srcs, out.(PushStream))
	}
	return &mergedPush{srcs: srcs}, nil
}
