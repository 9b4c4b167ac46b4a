package transcode

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// source is a block value seen as a sized sequence of readable windows.
type source struct {
	size int64
	read func(ctx context.Context, start, end int64) ([]byte, error)
}

func bytesSource(b []byte) source {
	return source{
		size: int64(len(b)),
		read: func(_ context.Context, start, end int64) ([]byte, error) { return b[start:end], nil },
	}
}

func blobSource(b Blob) source {
	return source{size: b.Size(), read: b.ReadSlice}
}

// readAll materializes the source with a single allocation.
func (s source) readAll(ctx context.Context, o *Options) ([]byte, error) {
	w := NewBytesWriter(make([]byte, s.size))
	err := windows(s.size, int64(o.ChunkSize), func(start, end int64) error {
		b, err := s.read(ctx, start, end)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	})
	if err != nil {
		return nil, err
	}
	if w.Available() != 0 {
		return nil, fmt.Errorf("%w: wanted %d bytes, got %d", ErrShortSlice, s.size, len(w.Bytes()))
	}
	return w.Bytes(), nil
}

// encodeBase64 encodes window by window. Every window but the last is a
// multiple of 3 bytes, so the pieces join without padding in between.
func (s source) encodeBase64(ctx context.Context, o *Options) (string, error) {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(int(s.size)))
	bp := getBuf(base64.StdEncoding.EncodedLen(o.ChunkSize))
	defer putBuf(bp)
	err := windows(s.size, int64(o.ChunkSize), func(start, end int64) error {
		b, err := s.read(ctx, start, end)
		if err != nil {
			return err
		}
		n := base64.StdEncoding.EncodedLen(len(b))
		base64.StdEncoding.Encode((*bp)[:n], b)
		sb.Write((*bp)[:n])
		return nil
	})
	return sb.String(), err
}

func (s source) encodeHex(ctx context.Context, o *Options) (string, error) {
	var sb strings.Builder
	sb.Grow(hex.EncodedLen(int(s.size)))
	bp := getBuf(hex.EncodedLen(o.ChunkSize))
	defer putBuf(bp)
	err := windows(s.size, int64(o.ChunkSize), func(start, end int64) error {
		b, err := s.read(ctx, start, end)
		if err != nil {
			return err
		}
		n := hex.Encode(*bp, b)
		sb.Write((*bp)[:n])
		return nil
	})
	return sb.String(), err
}

// encodeBinary renders one code point per byte. Latin-1 maps bytes one to one,
// so windows decode independently.
func (s source) encodeBinary(ctx context.Context, o *Options) (string, error) {
	var sb strings.Builder
	sb.Grow(int(s.size))
	err := windows(s.size, int64(o.ChunkSize), func(start, end int64) error {
		b, err := s.read(ctx, start, end)
		if err != nil {
			return err
		}
		str, err := toBinaryString(b)
		if err != nil {
			return err
		}
		sb.WriteString(str)
		return nil
	})
	return sb.String(), err
}

// decodeText decodes the bytes as text in o.InputCharset. Multi-byte sequences
// may span windows, so non-UTF-8 charsets go through a stateful decoder.
func (s source) decodeText(ctx context.Context, o *Options) (string, error) {
	if isUTF8(o.InputCharset) {
		var sb strings.Builder
		sb.Grow(int(s.size))
		err := windows(s.size, int64(o.ChunkSize), func(start, end int64) error {
			b, err := s.read(ctx, start, end)
			if err != nil {
				return err
			}
			sb.Write(b)
			return nil
		})
		return sb.String(), err
	}
	r, err := charsetDecodeReader(s.reader(ctx, o), o.InputCharset)
	if err != nil {
		return "", err
	}
	return drainString(r, o)
}

// reader streams the source window by window.
func (s source) reader(ctx context.Context, o *Options) io.Reader {
	return &sourceReader{ctx: ctx, s: s, step: int64(o.ChunkSize)}
}

type sourceReader struct {
	ctx  context.Context
	s    source
	step int64
	pos  int64
	cur  []byte
}

func (r *sourceReader) Read(p []byte) (int, error) {
	if len(r.cur) == 0 {
		if r.pos >= r.s.size {
			return 0, io.EOF
		}
		end := min(r.pos+r.step, r.s.size)
		b, err := r.s.read(r.ctx, r.pos, end)
		if err != nil {
			return 0, err
		}
		r.cur, r.pos = b, end
	}
	n := copy(p, r.cur)
	r.cur = r.cur[n:]
	return n, nil
}

// drainString copies r into a string using a chunk-sized staging buffer.
func drainString(r io.Reader, o *Options) (string, error) {
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)

	bp := getBuf(o.ChunkSize)
	defer putBuf(bp)
	if _, err := io.CopyBuffer(buf, r, *bp); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// lineBreaks drops the CR and LF characters that line-wrapped (MIME) base64
// carries, so windows hold whole quanta.
var lineBreaks = strings.NewReplacer("\r", "", "\n", "")

// inputOffset maps an offset in the stripped text back to the original s.
func inputOffset(s string, stripped int64) int64 {
	var seen int64
	for i := 0; i < len(s); i++ {
		if s[i] == '\r' || s[i] == '\n' {
			continue
		}
		if seen == stripped {
			return int64(i)
		}
		seen++
	}
	return int64(len(s))
}

// decodeBase64String decodes s in windows of whole quanta. Line breaks are
// ignored. Padding may appear inside s when it was joined from independently
// encoded pieces; every padded quantum is decoded on its own.
func decodeBase64String(orig string, o *Options) ([]byte, error) {
	s := orig
	if strings.ContainsAny(s, "\r\n") {
		s = lineBreaks.Replace(s)
	}
	w := NewBytesWriter(make([]byte, base64.StdEncoding.DecodedLen(len(s))))
	step := o.base64Window()
	bp := getBuf(base64.StdEncoding.DecodedLen(step))
	defer putBuf(bp)

	err := windows(len(s), step, func(start, end int) error {
		seg := s[start:end]
		for len(seg) > 0 {
			cut := len(seg)
			if i := strings.IndexByte(seg, '='); i >= 0 {
				cut = min(Roundup(i+1, 4), len(seg))
				// "==" may straddle the cut only when the quantum is short; keep it whole.
				for cut < len(seg) && seg[cut] == '=' {
					cut++
				}
			}
			n, err := base64.StdEncoding.Decode(*bp, []byte(seg[:cut]))
			if err != nil {
				if ce, ok := err.(base64.CorruptInputError); ok {
					off := int64(ce) + int64(start) + int64(len(s[start:end])-len(seg))
					return base64.CorruptInputError(inputOffset(orig, off))
				}
				return err
			}
			if _, err := w.Write((*bp)[:n]); err != nil {
				return err
			}
			seg = seg[cut:]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func decodeHexString(s string, o *Options) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, hex.ErrLength
	}
	w := NewBytesWriter(make([]byte, hex.DecodedLen(len(s))))
	step := o.hexWindow()
	bp := getBuf(o.ChunkSize)
	defer putBuf(bp)
	err := windows(len(s), step, func(start, end int) error {
		n, err := hex.Decode(*bp, []byte(s[start:end]))
		if err != nil {
			return err
		}
		_, err = w.Write((*bp)[:n])
		return err
	})
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// decodeBinaryString sizes the result by code point count; a rune above 0xff
// fails before the slice fills.
func decodeBinaryString(s string, _ *Options) ([]byte, error) {
	w := NewBytesWriter(make([]byte, utf8.RuneCountInString(s)))
	if _, err := w.ReadFrom(binaryStringReader(s)); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// encodeText turns utf8-text into bytes of o.OutputCharset.
func encodeText(s string, o *Options) ([]byte, error) {
	if isUTF8(o.OutputCharset) {
		return []byte(s), nil
	}
	r, err := charsetEncodeReader(strings.NewReader(s), o.OutputCharset)
	if err != nil {
		return nil, err
	}
	buf := bytesBufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer bytesBufPool.Put(buf)
	bp := getBuf(o.ChunkSize)
	defer putBuf(bp)
	if _, err := io.CopyBuffer(buf, r, *bp); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.Bytes()...), nil
}
