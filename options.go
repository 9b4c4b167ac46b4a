package transcode

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// DefaultChunkSize is 96 KiB, a multiple of 6 so that base64 windows never
// split a quantum, even when two encoded windows are joined again.
const DefaultChunkSize = 98304

// chunkAlign is the alignment every effective chunk size honors.
const chunkAlign = 6

// DefaultCharset is used when a charset option is left empty.
const DefaultCharset = "utf8"

// Options configures a single call. The zero value means defaults.
type Options struct {
	// ChunkSize bounds each processing window in bytes. Zero means DefaultChunkSize.
	// Other values are rounded down to a multiple of 6.
	ChunkSize int

	// InputEncoding applies to Text values whose Encoding is empty. Default utf8-text.
	InputEncoding Encoding

	// InputCharset decodes bytes into utf8-text. Default utf8.
	InputCharset string

	// OutputCharset encodes utf8-text into bytes. Default utf8.
	OutputCharset string
}

// Normalize returns a copy of o with defaults applied and the chunk size aligned.
// A chunk size that is negative, or that rounds down to zero, is rejected.
func (o Options) Normalize() (Options, error) {
	switch {
	case o.ChunkSize == 0:
		o.ChunkSize = DefaultChunkSize
	case o.ChunkSize < 0:
		return o, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, o.ChunkSize)
	default:
		aligned := Rounddown(o.ChunkSize, chunkAlign)
		if aligned <= 0 {
			return o, fmt.Errorf("%w: got %d", ErrInvalidChunkSize, o.ChunkSize)
		}
		if aligned != o.ChunkSize {
			Logger().Debug("chunk size rounded down to a multiple of 6",
				zap.Int("requested", o.ChunkSize),
				zap.Int("effective", aligned))
			o.ChunkSize = aligned
		}
	}

	if o.InputEncoding == "" {
		o.InputEncoding = EncodingUTF8
	} else if !o.InputEncoding.Valid() {
		return o, fmt.Errorf("%w: %q", ErrUnknownEncoding, o.InputEncoding)
	}
	if o.InputCharset == "" {
		o.InputCharset = DefaultCharset
	}
	if o.OutputCharset == "" {
		o.OutputCharset = DefaultCharset
	}
	o.InputCharset = strings.ToLower(o.InputCharset)
	o.OutputCharset = strings.ToLower(o.OutputCharset)
	return o, nil
}

// base64Window is the number of base64 characters that encode one chunk.
func (o *Options) base64Window() int { return o.ChunkSize / 3 * 4 }

// hexWindow is the number of hex digits that encode one chunk.
func (o *Options) hexWindow() int { return o.ChunkSize * 2 }

// textEncoding resolves the encoding of a Text value under these options.
func (o *Options) textEncoding(t Text) Encoding {
	if t.Encoding == "" {
		return o.InputEncoding
	}
	return t.Encoding
}
