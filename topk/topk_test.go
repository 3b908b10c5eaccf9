package topk

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueueKeepsOnlyTopK(t *testing.T) {
	q := New(3)
	scores := map[uint64]float32{1: 1.0, 2: 5.0, 3: 3.0, 4: 9.0, 5: 2.0}
	for id, s := range scores {
		q.Insert(s, id)
	}
	require.Equal(t, 3, q.Size())
	top := q.Finalize()
	require.Len(t, top, 3)
	require.Equal(t, float32(9.0), top[0].Score)
	require.Equal(t, float32(5.0), top[1].Score)
	require.Equal(t, float32(3.0), top[2].Score)
}

func TestWouldEnterTracksThreshold(t *testing.T) {
	q := New(2)
	require.True(t, q.WouldEnter(0.1))
	q.Insert(1.0, 1)
	q.Insert(2.0, 2)
	require.Equal(t, float32(1.0), q.Threshold())
	require.False(t, q.WouldEnter(0.5))
	require.True(t, q.Insert(3.0, 3))
	require.Equal(t, float32(2.0), q.Threshold())
}

func TestSetThresholdAppliesEpsilon(t *testing.T) {
	q := New(5)
	q.SetThreshold(1.0)
	require.InDelta(t, 1.0-1e-4, q.Threshold(), 1e-9)

	q.SetThreshold(0)
	require.Equal(t, float32(0), q.Threshold())
}

func TestFinalizeDropsNonPositiveScores(t *testing.T) {
	q := New(4)
	q.Insert(-1.0, 1)
	q.Insert(0, 2)
	q.Insert(2.5, 3)
	top := q.Finalize()
	require.Len(t, top, 1)
	require.Equal(t, uint64(3), top[0].DocID)
}

func TestClearResetsState(t *testing.T) {
	q := New(2)
	q.Insert(1.0, 1)
	q.Insert(2.0, 2)
	q.Clear()
	require.Equal(t, 0, q.Size())
	require.Equal(t, float32(0), q.Threshold())
}
