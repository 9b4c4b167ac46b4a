package transcode

import (
	"bytes"
	"fmt"
	"io"
	"reflect"
)

// sizedReaderAt is the structural shape of a blob-like value such as
// *bytes.Reader, *strings.Reader or *io.SectionReader.
type sizedReaderAt interface {
	io.ReaderAt
	Size() int64
}

// Identify reports the kind of v. Bare strings are never classified: text must
// arrive as a Text carrying its encoding.
func Identify(v any) (Kind, error) {
	o, _ := Options{}.Normalize()
	t, _, err := classify(v, &o)
	return t.Kind, err
}

// classify returns the representation of v together with its canonical value.
// Nominal matches come first, narrower byte containers before the generic
// byte slice, and structural matches last.
func classify(v any, o *Options) (Target, any, error) {
	switch x := v.(type) {
	case Text:
		return classifyText(x, o)
	case *Text:
		if x == nil {
			break
		}
		return classifyText(*x, o)
	case *bytes.Buffer:
		if x == nil {
			break
		}
		return TargetBytes, x.Bytes(), nil
	case []byte:
		return TargetBytes, x, nil
	case Blob:
		return TargetBlob, x, nil
	case PullStream:
		return TargetPull, x, nil
	case PushStream:
		return TargetPush, x, nil
	case string:
		return Target{}, nil, fmt.Errorf("%w: bare string, wrap it in a Text with an encoding", ErrUnrecognizedInput)
	case sizedReaderAt:
		return TargetBlob, BlobFromReaderAt(x, x.Size()), nil
	case io.Reader:
		return TargetPull, PullFromReader(x, o.ChunkSize), nil
	}

	if v != nil {
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return TargetBytes, rv.Bytes(), nil
		}
	}
	return Target{}, nil, fmt.Errorf("%w: %T", ErrUnrecognizedInput, v)
}

func classifyText(t Text, o *Options) (Target, any, error) {
	enc := o.textEncoding(t)
	if !enc.Valid() {
		return Target{}, nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, enc)
	}
	t.Encoding = enc
	return Target{Kind: KindText, Encoding: enc}, t, nil
}
