package transcode

import (
	"fmt"
	"io"
	"strings"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"
)

// charsetCache avoids resolving charset labels through the index on every call.
// It is shared by all engines; entries are immutable encodings.
var charsetCache = xsync.NewMap[string, encoding.Encoding]()

// charsetExtras covers labels the WHATWG index does not carry.
var charsetExtras = map[string]encoding.Encoding{
	"utf-16":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-32":     utf32.UTF32(utf32.LittleEndian, utf32.UseBOM),
	"utf-32le":   utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM),
	"utf-32be":   utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM),
	"iso-8859-1": charmap.ISO8859_1, // the index maps this label to windows-1252
	"latin1":     charmap.ISO8859_1,
	"cp437":      charmap.CodePage437,
	"ibm437":     charmap.CodePage437,
}

// binaryCharset maps code points 0x00..0xff one-to-one onto bytes.
var binaryCharset encoding.Encoding = charmap.ISO8859_1

// isUTF8 reports whether name is a UTF-8 label, which the engine handles itself.
func isUTF8(name string) bool {
	switch strings.ToLower(name) {
	case "", "utf8", "utf-8", "unicode-1-1-utf-8":
		return true
	}
	return false
}

// lookupCharset resolves a charset label to an encoding.
func lookupCharset(name string) (encoding.Encoding, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if enc, ok := charsetCache.Load(name); ok {
		return enc, nil
	}

	enc, ok := charsetExtras[name]
	if !ok {
		var err error
		enc, err = htmlindex.Get(name)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
		}
	}

	charsetCache.Store(name, enc)
	return enc, nil
}

// CharsetEncode encodes text into bytes of the named charset.
func CharsetEncode(text string, charset string) ([]byte, error) {
	if isUTF8(charset) {
		return []byte(text), nil
	}
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return enc.NewEncoder().Bytes([]byte(text))
}

// CharsetDecode decodes bytes of the named charset into text.
func CharsetDecode(b []byte, charset string) (string, error) {
	if isUTF8(charset) {
		return string(b), nil
	}
	enc, err := lookupCharset(charset)
	if err != nil {
		return "", err
	}
	return enc.NewDecoder().String(string(b))
}

// charsetDecodeReader wraps r so that reading yields UTF-8 text. The decoder keeps
// state across reads, so multi-byte sequences split between chunks survive.
func charsetDecodeReader(r io.Reader, charset string) (io.Reader, error) {
	if isUTF8(charset) {
		return r, nil
	}
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}

// charsetEncodeReader wraps r, which yields UTF-8 text, so that reading yields
// bytes of the named charset.
func charsetEncodeReader(r io.Reader, charset string) (io.Reader, error) {
	if isUTF8(charset) {
		return r, nil
	}
	enc, err := lookupCharset(charset)
	if err != nil {
		return nil, err
	}
	return transform.NewReader(r, enc.NewEncoder()), nil
}

// binaryStringReader yields one byte per code point of a binary-string.
func binaryStringReader(s string) io.Reader {
	return &binaryErrReader{r: transform.NewReader(strings.NewReader(s), binaryCharset.NewEncoder())}
}

// binaryErrReader tags encoder failures as ErrInvalidBinaryString.
type binaryErrReader struct {
	r io.Reader
}

func (b *binaryErrReader) Read(p []byte) (int, error) {
	n, err := b.r.Read(p)
	if err != nil && err != io.EOF {
		err = fmt.Errorf("%w: %v", ErrInvalidBinaryString, err)
	}
	return n, err
}

// toBinaryString renders bytes as one code point per byte.
func toBinaryString(b []byte) (string, error) {
	return binaryCharset.NewDecoder().String(string(b))
}
