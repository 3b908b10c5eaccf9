// Package wand implements WAND metadata: per-term and per-block
// upper-bound scores used by the ranked drivers to skip documents and
// blocks that cannot enter the top-k (spec.md §3, "WAND data").
package wand

// Data holds one term's upper-bound score metadata: a single term-wide
// maximum and, optionally, one maximum per posting-list block (aligned
// 1:1 with the posting list's block directory).
type Data struct {
	maxScore       float32
	blockMaxScores []float32
}

// NewTermData wraps a precomputed term upper bound with no per-block data;
// BlockMaxScore then always returns the term bound, which is always a
// sound (if loose) upper bound for any block.
func NewTermData(maxScore float32) *Data {
	return &Data{maxScore: maxScore}
}

// NewBlockData wraps per-block upper bounds; maxScore is taken as the
// largest of them.
func NewBlockData(blockMaxScores []float32) *Data {
	var max float32
	for _, s := range blockMaxScores {
		if s > max {
			max = s
		}
	}
	return &Data{maxScore: max, blockMaxScores: blockMaxScores}
}

// MaxScore returns the term-wide upper bound.
func (d *Data) MaxScore() float32 { return d.maxScore }

// BlockMaxScore returns the upper bound for block i, falling back to the
// term-wide bound when no per-block data was recorded.
func (d *Data) BlockMaxScore(block int) float32 {
	if d.blockMaxScores == nil {
		return d.maxScore
	}
	return d.blockMaxScores[block]
}

// NumBlocks reports how many per-block bounds are held, or 0 for
// term-only data.
func (d *Data) NumBlocks() int { return len(d.blockMaxScores) }

// QuantizeBlockScores maps a slice of non-negative float32 block bounds
// into u8 buckets scaled against globalMax, the format consumed by
// liveblock's saturated-sum bitmap computation (spec.md §4.8).
func QuantizeBlockScores(scores []float32, globalMax float32) []uint8 {
	out := make([]uint8, len(scores))
	if globalMax <= 0 {
		return out
	}
	for i, s := range scores {
		v := s / globalMax * 255.0
		if v > 255 {
			v = 255
		}
		out[i] = uint8(v)
	}
	return out
}
