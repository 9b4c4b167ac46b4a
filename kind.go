package transcode

import "fmt"

// Kind is the closed set of shapes binary data can take in the engine.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindBytes        // []byte, materialized
	KindBlob         // Blob, sliceable and read on demand
	KindText         // Text, a string tagged with an Encoding
	KindPush         // PushStream, producer driven
	KindPull         // PullStream, consumer driven

	kindCount
)

func (k Kind) String() string {
	switch k {
	case KindBytes:
		return "bytes"
	case KindBlob:
		return "blob"
	case KindText:
		return "text"
	case KindPush:
		return "push-stream"
	case KindPull:
		return "pull-stream"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// IsStream reports whether values of the kind are consumed sequentially.
func (k Kind) IsStream() bool { return k == KindPush || k == KindPull }

// Encoding tags the content of a Text value.
type Encoding string

const (
	// EncodingUTF8 is plain text; its bytes depend on the charset in use.
	EncodingUTF8 Encoding = "utf8-text"
	// EncodingBase64 is standard padded base64.
	EncodingBase64 Encoding = "base64"
	// EncodingBinary carries one character per byte, code points 0x00 to 0xff.
	EncodingBinary Encoding = "binary-string"
	// EncodingHex carries two hex digits per byte. Decoding is case-insensitive.
	EncodingHex Encoding = "hex"
)

// Valid reports whether e is one of the known encodings.
func (e Encoding) Valid() bool {
	switch e {
	case EncodingUTF8, EncodingBase64, EncodingBinary, EncodingHex:
		return true
	}
	return false
}

// ParseEncoding maps common spellings to an Encoding.
func ParseEncoding(name string) (Encoding, error) {
	switch name {
	case "utf8-text", "utf8", "utf-8", "text":
		return EncodingUTF8, nil
	case "base64":
		return EncodingBase64, nil
	case "binary-string", "binary", "latin1":
		return EncodingBinary, nil
	case "hex":
		return EncodingHex, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
}

// Text is a string tagged with its encoding. An empty Encoding means the
// InputEncoding of the call's Options.
type Text struct {
	Value    string
	Encoding Encoding
}

// Target names the output of a conversion. Encoding is only meaningful for KindText.
type Target struct {
	Kind     Kind
	Encoding Encoding
}

var (
	TargetBytes  = Target{Kind: KindBytes}
	TargetBlob   = Target{Kind: KindBlob}
	TargetBase64 = Target{Kind: KindText, Encoding: EncodingBase64}
	TargetHex    = Target{Kind: KindText, Encoding: EncodingHex}
	TargetUTF8   = Target{Kind: KindText, Encoding: EncodingUTF8}
	TargetBinary = Target{Kind: KindText, Encoding: EncodingBinary}
	TargetPush   = Target{Kind: KindPush}
	TargetPull   = Target{Kind: KindPull}
)

func (t Target) String() string {
	if t.Kind == KindText {
		return "text(" + string(t.Encoding) + ")"
	}
	return t.Kind.String()
}

// same reports whether a value already of target t needs no conversion.
func (t Target) same(o Target) bool {
	if t.Kind != o.Kind {
		return false
	}
	return t.Kind != KindText || t.Encoding == o.Encoding
}
