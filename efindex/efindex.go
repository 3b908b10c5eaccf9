// Package efindex implements an Elias-Fano compressed monotone integer
// sequence with O(1)-amortized random access, used as the endpoint
// directory into an index's postings blob (spec.md §4.1).
package efindex

import (
	"encoding/binary"
	"errors"
	"math/bits"

	"github.com/tddhit/blockidx/bitvector"
)

// sampleRate bounds how far a Select has to scan to find the i-th set bit
// in the high-bits stream: every sampleRate-th one-bit position is recorded
// explicitly, so Move is O(sampleRate) in the worst case, a constant.
const sampleRate = 128

// ErrNotMonotone is returned by Build when the input sequence decreases.
var ErrNotMonotone = errors.New("efindex: sequence must be non-decreasing")

// Sequence is a frozen, randomly-addressable Elias-Fano sequence.
type Sequence struct {
	n        uint64
	universe uint64
	lowWidth uint

	low     *bitvector.BitVector
	high    *bitvector.BitVector
	samples []uint64
}

func lowBitsWidth(n, universe uint64) uint {
	if n == 0 || universe < n {
		return 0
	}
	ratio := universe / n
	if ratio == 0 {
		return 0
	}
	return uint(bits.Len64(ratio) - 1)
}

// Build encodes values (required non-decreasing, values[i] <= universe for
// all i) into a Sequence supporting Move(i).
func Build(values []uint64, universe uint64) (*Sequence, error) {
	n := uint64(len(values))
	l := lowBitsWidth(n, universe)

	lowBuilder := bitvector.NewBuilder(n * uint64(l))
	highBuilder := bitvector.NewBuilder(n + (universe >> l) + 1)

	samples := make([]uint64, 0, (n+sampleRate-1)/sampleRate)
	var prevHigh, prevValue, bitPos uint64
	for i, v := range values {
		if i > 0 && v < prevValue {
			return nil, ErrNotMonotone
		}
		prevValue = v

		if l > 0 {
			lowBuilder.AppendBits(v&((uint64(1)<<l)-1), l)
		}
		high := v >> l
		gap := high - prevHigh
		prevHigh = high

		if uint64(i)%sampleRate == 0 {
			samples = append(samples, bitPos+gap)
		}
		highBuilder.AppendUnary(gap)
		bitPos += gap + 1
	}
	// Pad the high-bits stream to n + (universe >> l) + 1 bits, the length
	// Load derives from n and universe alone.
	for target := n + (universe >> l) + 1; highBuilder.Size() < target; {
		chunk := target - highBuilder.Size()
		if chunk > 64 {
			chunk = 64
		}
		highBuilder.AppendBits(0, uint(chunk))
	}

	return &Sequence{
		n:        n,
		universe: universe,
		lowWidth: l,
		low:      bitvector.Freeze(lowBuilder),
		high:     bitvector.Freeze(highBuilder),
		samples:  samples,
	}, nil
}

// Size returns the number of encoded values.
func (s *Sequence) Size() uint64 { return s.n }

// Move returns (i, value-at-i): the enumerator contract from spec.md §4.1.
func (s *Sequence) Move(i uint64) (uint64, uint64) {
	sampleIdx := i / sampleRate
	from := s.samples[sampleIdx]
	rank := i % sampleRate

	pos := s.high.Select(from, rank)
	high := pos - i

	var low uint64
	if s.lowWidth > 0 {
		low = s.low.GetBits(i*uint64(s.lowWidth), s.lowWidth)
	}
	return i, (high << s.lowWidth) | low
}

// WordCount reports the number of 8-byte words Bytes occupies beyond its
// fixed 16-byte n/universe prefix: the on-disk header's endpoint_size
// field (spec.md §4.3).
func (s *Sequence) WordCount() uint64 {
	return bitvector.WordCount(s.low.Size()) + bitvector.WordCount(s.high.Size())
}

// Bytes serializes the sequence to the form spec.md §4.3 declares for the
// endpoint table: n and universe (16 bytes) followed by the low-bits
// packed array and the unary high-bits stream, as raw words, back to back.
func (s *Sequence) Bytes() []byte {
	lowWords := bitvector.WordCount(s.low.Size())
	highWords := bitvector.WordCount(s.high.Size())
	out := make([]byte, 16+8*(lowWords+highWords))
	binary.LittleEndian.PutUint64(out[0:], s.n)
	binary.LittleEndian.PutUint64(out[8:], s.universe)
	putWords(out[16:], s.low.Words(), lowWords)
	putWords(out[16+8*lowWords:], s.high.Words(), highWords)
	return out
}

// Load decodes a Sequence previously written by Bytes, reading the
// persisted low/high bit-vectors directly rather than re-deriving them
// from the original endpoint values. The sample table Move relies on is
// rebuilt with one forward scan over the persisted high-bits stream.
func Load(data []byte) (*Sequence, error) {
	if len(data) < 16 {
		return nil, errors.New("efindex: truncated header")
	}
	n := binary.LittleEndian.Uint64(data[0:8])
	universe := binary.LittleEndian.Uint64(data[8:16])
	l := lowBitsWidth(n, universe)

	lowBits := n * uint64(l)
	highBits := n + (universe >> l) + 1
	lowWords := bitvector.WordCount(lowBits)
	highWords := bitvector.WordCount(highBits)

	need := 16 + 8*(lowWords+highWords)
	if uint64(len(data)) < need {
		return nil, errors.New("efindex: truncated body")
	}
	low := bitvector.FromWords(getWords(data[16:], lowWords), lowBits)
	high := bitvector.FromWords(getWords(data[16+8*lowWords:], highWords), highBits)

	return &Sequence{
		n:        n,
		universe: universe,
		lowWidth: l,
		low:      low,
		high:     high,
		samples:  recoverSamples(high, n),
	}, nil
}

// recoverSamples rebuilds the sample table Move uses to bound Select's scan,
// by walking the persisted high-bits stream for the position of every
// sampleRate-th one-bit, the same positions Build recorded as it encoded.
func recoverSamples(high *bitvector.BitVector, n uint64) []uint64 {
	count := (n + sampleRate - 1) / sampleRate
	samples := make([]uint64, 0, count)
	from := uint64(0)
	for k := uint64(0); k < count; k++ {
		var rank uint64
		if k > 0 {
			rank = sampleRate - 1
		}
		pos := high.Select(from, rank)
		samples = append(samples, pos)
		from = pos + 1
	}
	return samples
}

func putWords(out []byte, words []uint64, count uint64) {
	for i := uint64(0); i < count; i++ {
		var w uint64
		if int(i) < len(words) {
			w = words[i]
		}
		binary.LittleEndian.PutUint64(out[8*i:], w)
	}
}

func getWords(data []byte, count uint64) []uint64 {
	words := make([]uint64, count)
	for i := uint64(0); i < count; i++ {
		words[i] = binary.LittleEndian.Uint64(data[8*i:])
	}
	return words
}
