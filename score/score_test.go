package score

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBM25ZeroIDFWhenTermInEveryDoc(t *testing.T) {
	stats := CollectionStats{NumDocs: 100, AvgDocLength: 50}
	s := NewBM25(stats, 100)
	require.Equal(t, float32(0), s.Score(5, 40))
}

func TestBM25HigherFreqScoresHigher(t *testing.T) {
	stats := CollectionStats{NumDocs: 1000, AvgDocLength: 50}
	s := NewBM25(stats, 10)
	low := s.Score(1, 50)
	high := s.Score(10, 50)
	require.Greater(t, high, low)
}

func TestBM25ShorterDocScoresHigherAtEqualFreq(t *testing.T) {
	stats := CollectionStats{NumDocs: 1000, AvgDocLength: 50}
	s := NewBM25(stats, 10)
	short := s.Score(3, 20)
	long := s.Score(3, 200)
	require.Greater(t, short, long)
}

func TestQLDMonotonicInFrequency(t *testing.T) {
	s := NewQLD(500, 1_000_000)
	low := s.Score(1, 100)
	high := s.Score(5, 100)
	require.Greater(t, high, low)
}
