package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromColonFormat(t *testing.T) {
	q := FromColonFormat("q1:hello world")
	id, ok := q.ID()
	require.True(t, ok)
	require.Equal(t, "q1", id)
	raw, ok := q.String()
	require.True(t, ok)
	require.Equal(t, "hello world", raw)

	q2 := FromColonFormat("no colon here")
	_, ok = q2.ID()
	require.False(t, ok)
	raw2, ok := q2.String()
	require.True(t, ok)
	require.Equal(t, "no colon here", raw2)
}

func TestFromJSONSelectionDecoding(t *testing.T) {
	q, err := FromJSON([]byte(`{"term_ids":[1,2,3],"selections":[{"k":10,"intersections":[1,6]}]}`))
	require.NoError(t, err)
	sel, ok := q.Selection(10)
	require.True(t, ok)
	require.Equal(t, []int{0}, sel.SelectedTerms)
	require.Equal(t, []TermPair[int]{{First: 1, Second: 2}}, sel.SelectedPairs)
}

func TestFromJSONRequiresAtLeastOneField(t *testing.T) {
	_, err := FromJSON([]byte(`{"id":"q1"}`))
	require.Error(t, err)
}

func TestFromJSONRejectsPopcountOverTwo(t *testing.T) {
	_, err := FromJSON([]byte(`{"term_ids":[1,2,3],"selections":[{"k":1,"intersections":[7]}]}`))
	require.ErrorIs(t, err, ErrTooManyBits)
}

func TestJSONRoundTrip(t *testing.T) {
	q := FromTermIds([]TermId{3, 1, 2})
	q.AddThreshold(5, 1.25)
	q.AddSelection(5, Selection[int]{SelectedTerms: []int{0}, SelectedPairs: []TermPair[int]{{First: 1, Second: 2}}})

	s, err := q.ToJSONString()
	require.NoError(t, err)
	q2, err := FromJSON([]byte(s))
	require.NoError(t, err)

	ids1, _ := q.TermIds()
	ids2, _ := q2.TermIds()
	require.Equal(t, ids1, ids2)

	th1, _ := q.Threshold(5)
	th2, _ := q2.Threshold(5)
	require.Equal(t, th1, th2)

	sel1, _ := q.Selection(5)
	sel2, _ := q2.Selection(5)
	require.Equal(t, sel1, sel2)
}

func TestQueryCollapsesDuplicatesAndSortsAscending(t *testing.T) {
	q := FromTermIds([]TermId{5, 1, 5, 3, 1, 1})
	req, err := q.Query(10, DefaultFlags())
	require.NoError(t, err)
	require.Equal(t, []TermId{1, 3, 5}, req.TermIds())
	require.Equal(t, []float32{3, 1, 2}, req.TermWeights())
}

func TestQueryRequiresTermIds(t *testing.T) {
	q := Raw("hello")
	_, err := q.Query(10, DefaultFlags())
	require.ErrorIs(t, err, ErrMissingTermIds)
}

func TestQueryWeightsFlagClearedSetsAllToOne(t *testing.T) {
	q := FromTermIds([]TermId{1, 1, 2})
	req, err := q.Query(10, DefaultFlags().Without(FlagWeights))
	require.NoError(t, err)
	require.Equal(t, []float32{1, 1}, req.TermWeights())
}

func TestQueryThresholdFlagClearedDropsThreshold(t *testing.T) {
	q := FromTermIds([]TermId{1, 2})
	q.AddThreshold(10, 0.5)
	req, err := q.Query(10, DefaultFlags().Without(FlagThreshold))
	require.NoError(t, err)
	_, ok := req.Threshold()
	require.False(t, ok)
}

func TestFilterTermsOutOfRange(t *testing.T) {
	q := FromTerms([]string{"a", "b"}, nil)
	err := q.FilterTerms([]int{0, 5})
	require.ErrorIs(t, err, ErrPositionOutOfRange)
}

func TestAddThresholdReturnsWhetherOverwritten(t *testing.T) {
	q := FromTermIds([]TermId{1})
	require.False(t, q.AddThreshold(1, 1.0))
	require.True(t, q.AddThreshold(1, 2.0))
	v, ok := q.Threshold(1)
	require.True(t, ok)
	require.Equal(t, float32(2.0), v)
}

func TestRequestFlagSetCombineIsGenuineBitwise(t *testing.T) {
	s := Combine(FlagThreshold, FlagWeights)
	require.True(t, s.Contains(FlagThreshold))
	require.True(t, s.Contains(FlagWeights))
	require.False(t, s.Contains(FlagSelection))
}
