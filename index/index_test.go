package index

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tddhit/blockidx/memsrc"
	"github.com/tddhit/blockidx/params"
)

func buildTestIndex(t *testing.T) []byte {
	t.Helper()
	b := NewBuilder(1000, params.Default())
	require.NoError(t, b.AddPostingList([]uint32{1, 3, 5}, []uint32{1, 1, 1}))
	require.NoError(t, b.AddPostingList([]uint32{2, 3, 4}, []uint32{1, 1, 1}))
	data, err := b.Build()
	require.NoError(t, err)
	return data
}

func TestBuilderAndOpenRoundTrip(t *testing.T) {
	data := buildTestIndex(t)
	src := memsrc.FromBytes(data)
	idx, err := Open(src)
	require.NoError(t, err)
	require.Equal(t, uint64(2), idx.Size())
	require.Equal(t, uint64(1000), idx.NumDocs())

	l0, err := idx.List(0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), l0.DocID())

	l1, err := idx.List(1)
	require.NoError(t, err)
	require.Equal(t, uint32(2), l1.DocID())
}

func TestWarmupAll(t *testing.T) {
	data := buildTestIndex(t)
	idx, err := Open(memsrc.FromBytes(data))
	require.NoError(t, err)
	require.NoError(t, idx.WarmupAll(context.Background()))
}

func TestListOutOfRange(t *testing.T) {
	data := buildTestIndex(t)
	idx, err := Open(memsrc.FromBytes(data))
	require.NoError(t, err)
	_, err = idx.List(99)
	require.Error(t, err)
}

func TestCloseRefusesWhileCursorOutstanding(t *testing.T) {
	data := buildTestIndex(t)
	src := memsrc.FromBytes(data)
	idx, err := Open(src)
	require.NoError(t, err)

	l0, err := idx.List(0)
	require.NoError(t, err)

	require.ErrorIs(t, src.Close(), memsrc.ErrBusy)

	require.NoError(t, l0.Close())
	require.NoError(t, src.Close())
}

func TestOpenRejectsTruncatedHeader(t *testing.T) {
	_, err := Open(memsrc.FromBytes([]byte{1, 2, 3}))
	require.ErrorIs(t, err, ErrMalformedIndex)
}

func TestOpenRejectsTruncatedListBlob(t *testing.T) {
	data := buildTestIndex(t)
	truncated := data[:len(data)-4]
	_, err := Open(memsrc.FromBytes(truncated))
	require.ErrorIs(t, err, ErrMalformedIndex)
}

func TestStreamBuilderRoundTrip(t *testing.T) {
	sb, err := NewStreamBuilder(1000, params.Default())
	require.NoError(t, err)
	require.NoError(t, sb.AddPostingList([]uint32{1, 3, 5}, []uint32{1, 1, 1}))
	require.NoError(t, sb.AddPostingList([]uint32{2, 3, 4}, []uint32{1, 1, 1}))

	path := filepath.Join(t.TempDir(), "idx.bin")
	require.NoError(t, sb.Build(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	idx, err := Open(memsrc.FromBytes(data))
	require.NoError(t, err)
	require.Equal(t, uint64(2), idx.Size())

	l0, err := idx.List(0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), l0.DocID())
}
