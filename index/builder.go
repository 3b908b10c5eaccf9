package index

import (
	"encoding/binary"

	"github.com/tddhit/blockidx/efindex"
	"github.com/tddhit/blockidx/params"
	"github.com/tddhit/blockidx/postings"
)

// Builder accumulates posting lists in memory and freezes them into the
// on-disk header+endpoints+blob layout described in spec.md §4.3.
// Grounded on block_freq_index.hpp's `builder` inner class.
type Builder struct {
	numDocs   uint64
	params    params.Global
	codec     postings.Codec
	endpoints []uint64
	lists     []byte
}

// NewBuilder starts a fresh in-memory index build for a collection of the
// given size, under the given frozen codec parameters.
func NewBuilder(numDocs uint64, p params.Global) *Builder {
	return &Builder{
		numDocs:   numDocs,
		params:    p,
		codec:     postings.ByID(p.Codec),
		endpoints: []uint64{0},
	}
}

// AddPostingList appends one posting list's encoded bytes and records its
// endpoint. n must be nonzero (spec.md §7).
func (b *Builder) AddPostingList(docIDs, freqs []uint32) error {
	var err error
	b.lists, err = postings.Write(b.lists, b.codec, docIDs, freqs)
	if err != nil {
		return err
	}
	b.endpoints = append(b.endpoints, uint64(len(b.lists)))
	return nil
}

// Build freezes the accumulated lists into a single byte slice in the
// layout §4.3 describes, ready to be written to a file or wrapped
// directly by memsrc.FromBytes.
func (b *Builder) Build() ([]byte, error) {
	size := uint64(len(b.endpoints) - 1)
	seq, err := efindex.Build(b.endpoints, uint64(len(b.lists)))
	if err != nil {
		return nil, err
	}
	endpointWords := seq.WordCount()
	endpointBytes := seq.Bytes()

	out := make([]byte, 0, fixedHeaderSize+len(endpointBytes)+len(b.lists))

	var head [8]byte
	binary.LittleEndian.PutUint64(head[:], 0) // freeze flags
	out = append(out, head[:]...)

	var paramBuf [params.Size]byte
	binary.LittleEndian.PutUint32(paramBuf[:], uint32(b.params.Codec))
	binary.LittleEndian.PutUint32(paramBuf[4:], b.params.BlockSize)
	out = append(out, paramBuf[:]...)

	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], size)
	out = append(out, sizeBuf[:]...)
	binary.LittleEndian.PutUint64(sizeBuf[:], b.numDocs)
	out = append(out, sizeBuf[:]...)
	binary.LittleEndian.PutUint64(sizeBuf[:], 0) // reserved
	out = append(out, sizeBuf[:]...)

	binary.LittleEndian.PutUint64(sizeBuf[:], endpointWords)
	out = append(out, sizeBuf[:]...)

	out = append(out, endpointBytes...)

	binary.LittleEndian.PutUint64(sizeBuf[:], uint64(len(b.lists)))
	out = append(out, sizeBuf[:]...)
	out = append(out, b.lists...)
	return out, nil
}
