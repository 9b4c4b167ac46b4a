package transcode

import (
	"context"
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeBytes(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := MergeBytes(nil)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("singleton is returned as is", func(t *testing.T) {
		b := []byte("abc")
		out := MergeBytes([][]byte{b})
		assert.Same(t, &b[0], &out[0])
	})

	t.Run("concatenation", func(t *testing.T) {
		out := MergeBytes([][]byte{[]byte("ab"), nil, []byte("c"), []byte("def")})
		assert.Equal(t, []byte("abcdef"), out)
		assert.Equal(t, 6, cap(out))
	})
}

func TestMergeEmptyAndSingleton(t *testing.T) {
	ctx := context.Background()
	kinds := []Kind{KindBytes, KindBlob, KindText, KindPull, KindPush}

	for _, k := range kinds {
		t.Run(k.String()+"/empty", func(t *testing.T) {
			out, err := Merge(ctx, k, nil, nil)
			require.NoError(t, err)
			got, err := ToBytes(ctx, out, nil)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}

	single := map[Kind]any{
		KindBytes: []byte("x"),
		KindBlob:  NewBlob([]byte("x")),
		KindText:  Text{Value: "eA==", Encoding: EncodingBase64},
		KindPull:  newMockPull([]byte("x")),
		KindPush:  newBlockPush(NewBlob([]byte("x")), 6),
	}
	for k, v := range single {
		t.Run(k.String()+"/singleton", func(t *testing.T) {
			out, err := Merge(ctx, k, []any{v}, nil)
			require.NoError(t, err)
			assert.Equal(t, v, out)
		})
	}

	t.Run("text singleton is not copied", func(t *testing.T) {
		in := Text{Value: "abcdef", Encoding: EncodingUTF8}
		out, err := Merge(ctx, KindText, []any{in}, nil)
		require.NoError(t, err)
		assert.Same(t, unsafe.StringData(in.Value), unsafe.StringData(out.(Text).Value))
	})

	t.Run("singleton of another kind is converted", func(t *testing.T) {
		out, err := Merge(ctx, KindBlob, []any{[]byte("x")}, nil)
		require.NoError(t, err)
		assert.Implements(t, (*Blob)(nil), out)
	})

	_, err := Merge(ctx, KindUnknown, nil, nil)
	assert.ErrorIs(t, err, ErrUnsupportedKind)
}

func TestMergeMixedKinds(t *testing.T) {
	ctx := context.Background()
	parts := func() []any {
		return []any{
			[]byte("ab"),
			NewBlob([]byte("cd")),
			Text{Value: "ZWY=", Encoding: EncodingBase64},
			newMockPull([]byte("gh")),
			pushOf([]byte("ij")),
		}
	}

	for _, k := range []Kind{KindBytes, KindBlob, KindPull, KindPush} {
		t.Run(k.String(), func(t *testing.T) {
			out, err := Merge(ctx, k, parts(), nil)
			require.NoError(t, err)
			got, err := ToBytes(ctx, out, nil)
			require.NoError(t, err)
			assert.Equal(t, []byte("abcdefghij"), got)
		})
	}
}

func TestMergeText(t *testing.T) {
	ctx := context.Background()

	out, err := MergeText(ctx, []Text{
		{Value: "6162", Encoding: EncodingHex},
		{Value: "Yw==", Encoding: EncodingBase64},
		{Value: "d", Encoding: EncodingUTF8},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, Text{Value: "61626364", Encoding: EncodingHex}, out)

	// Joined base64 keeps the padding of each piece and still decodes.
	out, err = MergeText(ctx, []Text{
		{Value: "YQ==", Encoding: EncodingBase64},
		{Value: "YWI=", Encoding: EncodingBase64},
	}, nil)
	require.NoError(t, err)
	b, err := ToBytes(ctx, out, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("aab"), b)
}

func TestMergeBlobs(t *testing.T) {
	ctx := context.Background()
	m := MergeBlobs(NewBlob([]byte("abc")), NewBlob(nil), NewBlob([]byte("defg")))
	require.EqualValues(t, 7, m.Size())

	b, err := m.ReadSlice(ctx, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("cde"), b)

	b, err = m.Slice(1, 6).ReadSlice(ctx, 0, 5)
	require.NoError(t, err)
	assert.Equal(t, []byte("bcdef"), b)

	_, err = m.ReadSlice(ctx, 3, 8)
	assert.ErrorIs(t, err, ErrInvalidSlice)
}

func TestMergePullError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	a := newMockPull([]byte("ab"))
	b := newMockPull([]byte("cd"))
	b.failAt, b.err = 1, boom
	c := newMockPull([]byte("ef"))

	_, err := ToBytes(ctx, MergePull(a, b, c), nil)
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, a.closes.Load())
	assert.EqualValues(t, 1, b.closes.Load())
	assert.EqualValues(t, 1, c.closes.Load())
}

func TestMergePushConversionError(t *testing.T) {
	ctx := context.Background()
	src := newMockPull([]byte("ab"))

	_, err := Merge(ctx, KindPush, []any{src, 42}, nil)
	require.ErrorIs(t, err, ErrUnrecognizedInput)
	assert.EqualValues(t, 1, src.closes.Load())
}

func TestMergePushError(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	rest := newMockPull([]byte("never"))
	restPush, err := ToPush(ctx, rest, nil)
	require.NoError(t, err)

	failing := PushFunc(func(ctx context.Context, emit func(any) error) error { return boom })
	_, err = ToBytes(ctx, MergePush(pushOf([]byte("ab")), failing, restPush), nil)
	require.ErrorIs(t, err, boom)
	assert.EqualValues(t, 1, rest.closes.Load())
	assert.Zero(t, rest.i)
}
