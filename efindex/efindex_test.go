package efindex

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceRoundTrip(t *testing.T) {
	values := []uint64{0, 3, 3, 9, 42, 42, 100, 1000, 1000, 1001, 5000}
	seq, err := Build(values, 5000)
	require.NoError(t, err)
	require.Equal(t, uint64(len(values)), seq.Size())

	for i, want := range values {
		idx, got := seq.Move(uint64(i))
		require.Equal(t, uint64(i), idx)
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestSequenceAcrossSampleBoundary(t *testing.T) {
	values := make([]uint64, 400)
	var v uint64
	for i := range values {
		v += uint64(i%5) + 1
		values[i] = v
	}
	seq, err := Build(values, v)
	require.NoError(t, err)
	for i, want := range values {
		_, got := seq.Move(uint64(i))
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestBuildRejectsDecreasing(t *testing.T) {
	_, err := Build([]uint64{5, 3}, 10)
	require.ErrorIs(t, err, ErrNotMonotone)
}

func TestBytesLoadRoundTrip(t *testing.T) {
	values := []uint64{0, 3, 3, 9, 42, 42, 100, 1000, 1000, 1001, 5000}
	seq, err := Build(values, 5000)
	require.NoError(t, err)

	data := seq.Bytes()
	require.Equal(t, int(16+8*seq.WordCount()), len(data))

	loaded, err := Load(data)
	require.NoError(t, err)
	require.Equal(t, seq.Size(), loaded.Size())
	require.Equal(t, seq.WordCount(), loaded.WordCount())

	for i, want := range values {
		_, got := loaded.Move(uint64(i))
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestBytesLoadRoundTripAcrossSampleBoundary(t *testing.T) {
	values := make([]uint64, 400)
	var v uint64
	for i := range values {
		v += uint64(i%5) + 1
		values[i] = v
	}
	seq, err := Build(values, v)
	require.NoError(t, err)

	loaded, err := Load(seq.Bytes())
	require.NoError(t, err)
	for i, want := range values {
		_, got := loaded.Move(uint64(i))
		require.Equal(t, want, got, "index %d", i)
	}
}

func TestLoadRejectsTruncatedHeader(t *testing.T) {
	_, err := Load([]byte{1, 2, 3})
	require.Error(t, err)
}
