package querycache

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tddhit/blockidx/topk"
)

func TestEntryMinScore(t *testing.T) {
	e := Entry{Results: []topk.Entry{{Score: 9.0, DocID: 1}, {Score: 3.0, DocID: 2}}}
	min, ok := e.MinScore()
	require.True(t, ok)
	require.Equal(t, float32(3.0), min)
}

func TestEntryMinScoreEmpty(t *testing.T) {
	var e Entry
	_, ok := e.MinScore()
	require.False(t, ok)
}
