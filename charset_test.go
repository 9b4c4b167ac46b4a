package transcode

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/unicode"
)

func TestCharsetText(t *testing.T) {
	ctx := context.Background()
	const text = "héllo wörld"

	utf16 := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	encoded, err := utf16.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)

	t.Run("decode input charset", func(t *testing.T) {
		out, err := ToText(ctx, encoded, &Options{InputCharset: "UTF-16LE"})
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("encode output charset", func(t *testing.T) {
		out, err := ToBytes(ctx, Text{Value: text, Encoding: EncodingUTF8}, &Options{OutputCharset: "utf-16le"})
		require.NoError(t, err)
		assert.Equal(t, encoded, out)
	})

	t.Run("exported helpers", func(t *testing.T) {
		b, err := CharsetEncode(text, "utf-16le")
		require.NoError(t, err)
		assert.Equal(t, encoded, b)

		s, err := CharsetDecode(b, "utf-16le")
		require.NoError(t, err)
		assert.Equal(t, text, s)
	})

	t.Run("unknown charset", func(t *testing.T) {
		_, err := ToText(ctx, encoded, &Options{InputCharset: "klingon"})
		assert.ErrorIs(t, err, ErrUnknownCharset)
	})
}

// Multi-byte sequences that straddle chunk boundaries must survive streaming.
func TestCharsetAcrossChunks(t *testing.T) {
	ctx := context.Background()
	const text = "a日本語のテキストです"

	sjis, err := japanese.ShiftJIS.NewEncoder().Bytes([]byte(text))
	require.NoError(t, err)
	opts := &Options{ChunkSize: 6, InputCharset: "shift_jis"}

	t.Run("blob", func(t *testing.T) {
		out, err := ToText(ctx, NewBlob(sjis), opts)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})

	t.Run("pull", func(t *testing.T) {
		out, err := ToText(ctx, newMockPull(split(sjis, 5)...), opts)
		require.NoError(t, err)
		assert.Equal(t, text, out)
	})
}

func TestBinaryString(t *testing.T) {
	ctx := context.Background()
	b := []byte{0x00, 0x41, 0x80, 0xff}

	s, err := ToBinaryString(ctx, b, nil)
	require.NoError(t, err)
	assert.Equal(t, "\u0000A\u0080ÿ", s)

	back, err := ToBytes(ctx, Text{Value: s, Encoding: EncodingBinary}, nil)
	require.NoError(t, err)
	assert.Equal(t, b, back)

	_, err = ToBytes(ctx, Text{Value: "日", Encoding: EncodingBinary}, nil)
	assert.ErrorIs(t, err, ErrInvalidBinaryString)
}

func TestLatin1Label(t *testing.T) {
	enc, err := lookupCharset("ISO-8859-1")
	require.NoError(t, err)
	out, err := enc.NewDecoder().Bytes([]byte{0x80})
	require.NoError(t, err)
	assert.Equal(t, "\u0080", string(out))

	// Cached lookups resolve to the same encoding.
	again, err := lookupCharset("iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, enc, again)
}
