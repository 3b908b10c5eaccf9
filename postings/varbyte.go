package postings

import (
	"encoding/binary"

	"github.com/tddhit/blockidx/params"
)

// VarByteCodec stores gaps and frequencies as LEB128 varints, all gaps
// followed by all frequencies. Grounded on the pack's
// harshagw-postings__codec.go, which delta-encodes posting docids the same
// way with binary.PutUvarint/binary.Uvarint.
type VarByteCodec struct{}

func (VarByteCodec) ID() params.Codec { return params.CodecVarByte }

func (VarByteCodec) Encode(gaps, freqs []uint32) []byte {
	buf := make([]byte, 0, (len(gaps)+len(freqs))*2)
	tmp := make([]byte, binary.MaxVarintLen32)
	for _, g := range gaps {
		n := binary.PutUvarint(tmp, uint64(g))
		buf = append(buf, tmp[:n]...)
	}
	for _, f := range freqs {
		n := binary.PutUvarint(tmp, uint64(f))
		buf = append(buf, tmp[:n]...)
	}
	return buf
}

func (VarByteCodec) Decode(data []byte, n int) (gaps, freqs []uint32) {
	gaps = make([]uint32, n)
	freqs = make([]uint32, n)
	offset := 0
	for i := 0; i < n; i++ {
		v, width := binary.Uvarint(data[offset:])
		gaps[i] = uint32(v)
		offset += width
	}
	for i := 0; i < n; i++ {
		v, width := binary.Uvarint(data[offset:])
		freqs[i] = uint32(v)
		offset += width
	}
	return gaps, freqs
}
