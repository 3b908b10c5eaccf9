package driver

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tddhit/blockidx/postings"
	"github.com/tddhit/blockidx/score"
	"github.com/tddhit/blockidx/wand"
)

// identityScorer implements score.Scorer with score = freq, matching
// spec.md §8 S1/S2's "identity ranker".
type identityScorer struct{}

func (identityScorer) Score(freq uint32, _ uint32) float32 { return float32(freq) }

func newCursor(t *testing.T, docIDs, freqs []uint32, sentinel uint32) *score.ScoredCursor {
	t.Helper()
	data, err := postings.Write(nil, postings.RawCodec{}, docIDs, freqs)
	require.NoError(t, err)
	enum := postings.NewDocumentEnumerator(data, postings.RawCodec{}, sentinel)
	return score.NewScoredCursor(enum, identityScorer{}, wand.NewTermData(100), 1.0)
}

func TestRankedOrScenarioS1(t *testing.T) {
	const sentinel = uint32(1000)
	c0 := newCursor(t, []uint32{1, 3, 5}, []uint32{1, 1, 1}, sentinel)
	c1 := newCursor(t, []uint32{2, 3, 4}, []uint32{1, 1, 1}, sentinel)

	result := RankedOr([]*score.ScoredCursor{c0, c1}, 3, nil, nil, sentinel)
	require.Len(t, result, 3)
	require.Equal(t, uint64(3), result[0].DocID)
	require.Equal(t, float32(2.0), result[0].Score)
	require.Equal(t, uint64(1), result[1].DocID)
	require.Equal(t, float32(1.0), result[1].Score)
	require.Equal(t, uint64(2), result[2].DocID)
	require.Equal(t, float32(1.0), result[2].Score)
}

func TestRankedAndScenarioS2(t *testing.T) {
	const sentinel = uint32(1000)
	c0 := newCursor(t, []uint32{1, 3, 5}, []uint32{1, 1, 1}, sentinel)
	c1 := newCursor(t, []uint32{2, 3, 4}, []uint32{1, 1, 1}, sentinel)

	result := RankedAnd([]*score.ScoredCursor{c0, c1}, 3, nil, nil, sentinel)
	require.Len(t, result, 1)
	require.Equal(t, uint64(3), result[0].DocID)
	require.Equal(t, float32(2.0), result[0].Score)
}

func TestRankedOrRespectsSeedThreshold(t *testing.T) {
	const sentinel = uint32(1000)
	c0 := newCursor(t, []uint32{1, 3, 5}, []uint32{1, 1, 1}, sentinel)
	c1 := newCursor(t, []uint32{2, 3, 4}, []uint32{1, 1, 1}, sentinel)

	seed := float32(2.0)
	result := RankedOr([]*score.ScoredCursor{c0, c1}, 3, &seed, nil, sentinel)
	for _, e := range result {
		require.Greater(t, e.Score, seed)
	}
}
