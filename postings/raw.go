package postings

import (
	"encoding/binary"

	"github.com/tddhit/blockidx/params"
)

// RawCodec stores every gap and frequency as a fixed 4-byte little-endian
// integer, uncompressed. Grounded on the sentinel/fixed-width contract of
// original_source's RawCursor (include/pisa/v1/raw_cursor.hpp).
type RawCodec struct{}

func (RawCodec) ID() params.Codec { return params.CodecRaw }

func (RawCodec) Encode(gaps, freqs []uint32) []byte {
	buf := make([]byte, 8*len(gaps))
	for i, g := range gaps {
		binary.LittleEndian.PutUint32(buf[4*i:], g)
	}
	base := 4 * len(gaps)
	for i, f := range freqs {
		binary.LittleEndian.PutUint32(buf[base+4*i:], f)
	}
	return buf
}

func (RawCodec) Decode(data []byte, n int) (gaps, freqs []uint32) {
	gaps = make([]uint32, n)
	freqs = make([]uint32, n)
	for i := 0; i < n; i++ {
		gaps[i] = binary.LittleEndian.Uint32(data[4*i:])
	}
	base := 4 * n
	for i := 0; i < n; i++ {
		freqs[i] = binary.LittleEndian.Uint32(data[base+4*i:])
	}
	return gaps, freqs
}
