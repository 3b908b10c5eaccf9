// Package liveblock computes the live-block bitmap: one bit per block
// position marking whether the saturated sum of per-term quantized
// upper-bound scores can still reach a threshold. Grounded on
// original_source/include/pisa/query/live_block_computation.hpp.
package liveblock

// ComputeScalar is the reference implementation: for each block position,
// sum the per-term quantized scores (saturating at uint16 max) and set the
// bit iff the sum is >= threshold.
func ComputeScalar(scores [][]uint8, threshold uint16) []bool {
	n := len(scores[0])
	live := make([]bool, n)
	for i := 0; i < n; i++ {
		var sum uint32
		for _, term := range scores {
			sum += uint32(term[i])
		}
		if sum > 0xffff {
			sum = 0xffff
		}
		live[i] = uint16(sum) >= threshold
	}
	return live
}

// ComputeBatch8 mirrors the 128-bit SIMD variant's 8-lane grouping: it
// processes 8 block positions per outer iteration, but with plain scalar
// arithmetic in place of the AVX intrinsics. Must produce bit-identical
// output to ComputeScalar.
func ComputeBatch8(scores [][]uint8, threshold uint16) []bool {
	return computeBatched(scores, threshold, 8)
}

// ComputeBatch16 mirrors the 256-bit SIMD variant's 16-lane grouping.
// Must produce bit-identical output to ComputeScalar.
func ComputeBatch16(scores [][]uint8, threshold uint16) []bool {
	return computeBatched(scores, threshold, 16)
}

func computeBatched(scores [][]uint8, threshold uint16, lanes int) []bool {
	n := len(scores[0])
	live := make([]bool, n)
	i := 0
	for ; i+lanes <= n; i += lanes {
		var sums [16]uint32
		for _, term := range scores {
			for lane := 0; lane < lanes; lane++ {
				sums[lane] += uint32(term[i+lane])
			}
		}
		for lane := 0; lane < lanes; lane++ {
			s := sums[lane]
			if s > 0xffff {
				s = 0xffff
			}
			live[i+lane] = uint16(s) >= threshold
		}
	}
	for ; i < n; i++ {
		var sum uint32
		for _, term := range scores {
			sum += uint32(term[i])
		}
		if sum > 0xffff {
			sum = 0xffff
		}
		live[i] = uint16(sum) >= threshold
	}
	return live
}
