package postings

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tddhit/blockidx/params"
)

func buildList(t *testing.T, codec Codec, docIDs, freqs []uint32) []byte {
	t.Helper()
	buf, err := Write(nil, codec, docIDs, freqs)
	require.NoError(t, err)
	return buf
}

func TestDocumentEnumeratorRoundTrip(t *testing.T) {
	docIDs := []uint32{1, 3, 4, 10, 11, 12, 500}
	freqs := []uint32{1, 2, 1, 5, 1, 1, 9}

	for _, codec := range []Codec{RawCodec{}, VarByteCodec{}} {
		data := buildList(t, codec, docIDs, freqs)
		e := NewDocumentEnumerator(data, codec, 1000)
		require.Equal(t, len(docIDs), e.Size())
		for i, want := range docIDs {
			require.Equal(t, want, e.DocID())
			require.Equal(t, freqs[i], e.Freq())
			e.Next()
		}
		require.Equal(t, uint32(1000), e.DocID())
	}
}

func TestDocumentEnumeratorMultiBlock(t *testing.T) {
	n := params.BlockSize*2 + 17
	docIDs := make([]uint32, n)
	freqs := make([]uint32, n)
	var id uint32
	for i := 0; i < n; i++ {
		id += uint32(i%3) + 1
		docIDs[i] = id
		freqs[i] = uint32(i%5) + 1
	}

	data := buildList(t, VarByteCodec{}, docIDs, freqs)
	e := NewDocumentEnumerator(data, VarByteCodec{}, id+1)
	for i, want := range docIDs {
		require.Equal(t, want, e.DocID(), "index %d", i)
		e.Next()
	}
	require.Equal(t, id+1, e.DocID())
}

func TestDocumentEnumeratorNextGEQSkipsBlocks(t *testing.T) {
	n := params.BlockSize*3 + 5
	docIDs := make([]uint32, n)
	freqs := make([]uint32, n)
	for i := 0; i < n; i++ {
		docIDs[i] = uint32(i*2 + 1)
		freqs[i] = 1
	}

	data := buildList(t, VarByteCodec{}, docIDs, freqs)
	e := NewDocumentEnumerator(data, VarByteCodec{}, uint32(n*2+2))

	target := docIDs[params.BlockSize*2+3]
	e.NextGEQ(target)
	require.Equal(t, target, e.DocID())

	e.NextGEQ(target)
	require.Equal(t, target, e.DocID(), "next_geq must be idempotent when already past target")

	e.NextGEQ(docIDs[n-1])
	require.Equal(t, docIDs[n-1], e.DocID())

	e.NextGEQ(uint32(n*10))
	require.Equal(t, uint32(n*2+2), e.DocID(), "next_geq past the end must exhaust the cursor")
}

func TestWriteRejectsEmptyList(t *testing.T) {
	_, err := Write(nil, RawCodec{}, nil, nil)
	require.ErrorIs(t, err, ErrEmptyList)
}
