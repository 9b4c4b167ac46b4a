package transcode

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type BlobSuite struct {
	suite.Suite
	ctx  context.Context
	data []byte
}

func (s *BlobSuite) SetupTest() {
	s.ctx = context.Background()
	s.data = []byte("0123456789")
}

func TestBlobSuite(t *testing.T) {
	suite.Run(t, new(BlobSuite))
}

func (s *BlobSuite) TestReadSlice() {
	blobs := map[string]Blob{
		"bytes":    NewBlob(s.data),
		"readerAt": BlobFromReaderAt(bytes.NewReader(s.data), int64(len(s.data))),
		"multi":    MergeBlobs(NewBlob(s.data[:3]), NewBlob(s.data[3:7]), NewBlob(s.data[7:])),
	}
	for name, b := range blobs {
		s.T().Run(name, func(t *testing.T) {
			require.EqualValues(t, 10, b.Size())

			got, err := b.ReadSlice(s.ctx, 2, 8)
			require.NoError(t, err)
			assert.Equal(t, []byte("234567"), got)

			got, err = b.ReadSlice(s.ctx, 5, 5)
			require.NoError(t, err)
			assert.Empty(t, got)

			_, err = b.ReadSlice(s.ctx, -1, 3)
			assert.ErrorIs(t, err, ErrInvalidSlice)
			_, err = b.ReadSlice(s.ctx, 4, 11)
			assert.ErrorIs(t, err, ErrInvalidSlice)

			sub := b.Slice(1, 4)
			require.EqualValues(t, 3, sub.Size())
			got, err = sub.ReadSlice(s.ctx, 0, 3)
			require.NoError(t, err)
			assert.Equal(t, []byte("123"), got)

			assert.EqualValues(t, 0, b.Slice(7, 2).Size())
			assert.EqualValues(t, 10, b.Slice(-5, 50).Size())
		})
	}
}

func (s *BlobSuite) TestReadSliceOwnsResult() {
	b := NewBlob(s.data)
	got, err := b.ReadSlice(s.ctx, 0, 3)
	s.Require().NoError(err)
	got[0] = 'x'
	s.Require().Equal(byte('0'), s.data[0])
}

func (s *BlobSuite) TestShortReaderAt() {
	b := BlobFromReaderAt(strings.NewReader("abc"), 10)
	_, err := b.ReadSlice(s.ctx, 0, 10)
	s.Require().ErrorIs(err, ErrShortSlice)
}

func (s *BlobSuite) TestCancelledRead() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	_, err := NewBlob(s.data).ReadSlice(ctx, 0, 1)
	s.Require().ErrorIs(err, context.Canceled)
}

func (s *BlobSuite) TestBlobReader() {
	require := s.Require()
	r := NewBlobReader(s.ctx, NewBlob(s.data))

	pos, err := r.Seek(3, io.SeekStart)
	require.NoError(err)
	require.EqualValues(3, pos)

	buf := make([]byte, 2)
	n, err := r.Read(buf)
	require.NoError(err)
	require.Equal(2, n)
	require.Equal([]byte("34"), buf)
	require.EqualValues(5, r.Available())

	_, err = r.Seek(-2, io.SeekEnd)
	require.NoError(err)
	rest, err := io.ReadAll(r)
	require.NoError(err)
	require.Equal([]byte("89"), rest)

	_, err = r.Seek(-1, io.SeekStart)
	require.ErrorIs(err, ErrInvalidSeek)
	_, err = r.Seek(0, 42)
	require.ErrorIs(err, ErrInvalidWhence)
}

func (s *BlobSuite) TestBlobReaderWriteTo() {
	blob := &countingBlob{Blob: NewBlob(s.data)}
	r := NewBlobReader(s.ctx, blob)
	r.Chunk = 4

	var out bytes.Buffer
	n, err := r.WriteTo(&out)
	s.Require().NoError(err)
	s.Require().EqualValues(10, n)
	s.Require().Equal(s.data, out.Bytes())
	s.Require().EqualValues(3, blob.reads.Load())
}

func TestBytesWriter(t *testing.T) {
	w := NewBytesWriter(make([]byte, 4))
	n, err := w.Write([]byte("ab"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, w.Available())

	n, err = w.Write([]byte("cde"))
	assert.ErrorIs(t, err, io.ErrShortWrite)
	assert.Equal(t, 2, n)
	assert.Equal(t, []byte("abcd"), w.Bytes())
	assert.Zero(t, w.Available())

	r := NewBytesWriter(make([]byte, 4))
	m, err := r.ReadFrom(strings.NewReader("xyz"))
	require.NoError(t, err)
	assert.EqualValues(t, 3, m)
	assert.Equal(t, []byte("xyz"), r.Bytes())
	assert.Equal(t, 1, r.Available())
}
