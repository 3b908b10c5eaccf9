// Package postings implements the block-compressed posting list codec:
// a per-list skip directory (last docid and byte length per block) so
// next_geq can skip whole blocks without decoding them, and a closed set of
// interchangeable block codecs baked into the index file at build time
// (spec.md §4.2, design note on closed codec enumeration).
package postings

import "github.com/tddhit/blockidx/params"

// Codec encodes/decodes one block's docid-gaps and frequencies. Gaps are
// already computed relative to a running base by the caller (list.go); the
// codec only knows how to pack/unpack arrays of uint32.
type Codec interface {
	ID() params.Codec
	Encode(gaps, freqs []uint32) []byte
	Decode(data []byte, n int) (gaps, freqs []uint32)
}

// ByID returns the codec implementation matching an index's frozen codec
// identity. Readers must be compiled against a matching codec (spec.md §6).
func ByID(id params.Codec) Codec {
	switch id {
	case params.CodecRaw:
		return RawCodec{}
	case params.CodecVarByte:
		return VarByteCodec{}
	default:
		panic("postings: unknown codec id " + id.String())
	}
}
