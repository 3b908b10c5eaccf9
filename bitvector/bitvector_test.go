package bitvector

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendBitsAndGetBits(t *testing.T) {
	b := NewBuilder(0)
	b.AppendBits(0b101, 3)
	b.AppendBits(0b11111111, 8)
	b.AppendBits(0, 1)
	v := Freeze(b)

	require.Equal(t, uint64(12), v.Size())
	require.Equal(t, uint64(0b101), v.GetBits(0, 3))
	require.Equal(t, uint64(0b11111111), v.GetBits(3, 8))
	require.False(t, v.GetBit(11))
}

func TestAppendUnaryAndSelect(t *testing.T) {
	b := NewBuilder(0)
	gaps := []uint64{0, 2, 0, 5, 70, 1}
	var positions []uint64
	var pos uint64
	for _, g := range gaps {
		positions = append(positions, pos+g)
		b.AppendUnary(g)
		pos += g + 1
	}
	v := Freeze(b)
	for i, want := range positions {
		got := v.Select(0, uint64(i))
		require.Equal(t, want, got, "rank %d", i)
	}
}

func TestSpanningWordBoundary(t *testing.T) {
	b := NewBuilder(0)
	b.AppendBits(0, 62)
	b.AppendBits(0b1010, 4)
	v := Freeze(b)
	require.Equal(t, uint64(0b1010), v.GetBits(62, 4))
}

func TestFromWordsRoundTrip(t *testing.T) {
	b := NewBuilder(0)
	b.AppendBits(0b101, 3)
	b.AppendBits(0b11111111, 8)
	v := Freeze(b)

	restored := FromWords(v.Words(), v.Size())
	require.Equal(t, v.Size(), restored.Size())
	require.Equal(t, uint64(0b101), restored.GetBits(0, 3))
	require.Equal(t, uint64(0b11111111), restored.GetBits(3, 8))
}

func TestWordCount(t *testing.T) {
	require.Equal(t, uint64(0), WordCount(0))
	require.Equal(t, uint64(1), WordCount(1))
	require.Equal(t, uint64(1), WordCount(64))
	require.Equal(t, uint64(2), WordCount(65))
}
