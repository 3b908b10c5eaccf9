package postings

import (
	"encoding/binary"
	"errors"
	"sort"

	"github.com/tddhit/blockidx/params"
)

// ErrEmptyList is returned when building a list with zero postings
// (spec.md §7: "posting list builder called with n = 0" is a precondition
// violation, not a silent no-op).
var ErrEmptyList = errors.New("postings: list must be nonempty")

type blockMeta struct {
	lastDocID uint32
	byteLen   uint32
	offset    uint32
}

// Write appends the encoded block posting list for (docIDs, freqs) to buf
// and returns the extended buffer. docIDs must be strictly
// increasing; freqs[i] must be >= 1.
func Write(buf []byte, codec Codec, docIDs, freqs []uint32) ([]byte, error) {
	n := len(docIDs)
	if n == 0 {
		return buf, ErrEmptyList
	}
	var head [8]byte
	binary.LittleEndian.PutUint64(head[:], uint64(n))
	buf = append(buf, head[:]...)

	numBlocks := (n + params.BlockSize - 1) / params.BlockSize
	dirOffset := len(buf)
	buf = append(buf, make([]byte, numBlocks*8)...)

	var prevDocID uint32
	metas := make([]blockMeta, 0, numBlocks)
	for b := 0; b < numBlocks; b++ {
		lo := b * params.BlockSize
		hi := lo + params.BlockSize
		if hi > n {
			hi = n
		}
		gaps := make([]uint32, hi-lo)
		for i := lo; i < hi; i++ {
			gaps[i-lo] = docIDs[i] - prevDocID
			prevDocID = docIDs[i]
		}
		encoded := codec.Encode(gaps, freqs[lo:hi])
		metas = append(metas, blockMeta{lastDocID: docIDs[hi-1], byteLen: uint32(len(encoded))})
		buf = append(buf, encoded...)
	}

	for b, m := range metas {
		off := dirOffset + b*8
		binary.LittleEndian.PutUint32(buf[off:], m.lastDocID)
		binary.LittleEndian.PutUint32(buf[off+4:], m.byteLen)
	}
	return buf, nil
}

// DocumentEnumerator is the per-list cursor: docid()/freq()/next()/
// next_geq() from spec.md §4.2, borrowing its bytes from the index's
// memory source without copying.
type DocumentEnumerator struct {
	codec   Codec
	numDocs uint32
	n       int

	directory []blockMeta
	blocksOff int
	raw       []byte

	curBlock      int
	curPosInBlock int
	curDocs       []uint32
	curFreqs      []uint32
	curDocID      uint32
	exhausted     bool
}

// NewDocumentEnumerator parses a single list's bytes (the span this index's
// endpoint table carved out for list ordinal i) and positions the cursor at
// its first posting.
func NewDocumentEnumerator(data []byte, codec Codec, numDocs uint32) *DocumentEnumerator {
	n := int(binary.LittleEndian.Uint64(data[:8]))
	numBlocks := (n + params.BlockSize - 1) / params.BlockSize

	directory := make([]blockMeta, numBlocks)
	offset := uint32(8 + numBlocks*8)
	for b := 0; b < numBlocks; b++ {
		off := 8 + b*8
		lastDocID := binary.LittleEndian.Uint32(data[off:])
		byteLen := binary.LittleEndian.Uint32(data[off+4:])
		directory[b] = blockMeta{lastDocID: lastDocID, byteLen: byteLen, offset: offset}
		offset += byteLen
	}

	e := &DocumentEnumerator{
		codec:     codec,
		numDocs:   numDocs,
		n:         n,
		directory: directory,
		raw:       data,
	}
	e.loadBlock(0, 0)
	return e
}

func (e *DocumentEnumerator) blockBase(b int) uint32 {
	if b == 0 {
		return 0
	}
	return e.directory[b-1].lastDocID
}

func (e *DocumentEnumerator) loadBlock(b int, posInBlock int) {
	m := e.directory[b]
	data := e.raw[m.offset : m.offset+m.byteLen]
	count := params.BlockSize
	if b == len(e.directory)-1 {
		count = e.n - b*params.BlockSize
	}
	gaps, freqs := e.codec.Decode(data, count)

	base := e.blockBase(b)
	docs := make([]uint32, count)
	for i, g := range gaps {
		base += g
		docs[i] = base
	}
	e.curBlock = b
	e.curDocs = docs
	e.curFreqs = freqs
	e.curPosInBlock = posInBlock
	e.curDocID = docs[posInBlock]
	e.exhausted = false
}

func (e *DocumentEnumerator) setExhausted() {
	e.exhausted = true
	e.curDocID = e.numDocs
}

// Size returns the number of postings in this list.
func (e *DocumentEnumerator) Size() int { return e.n }

// DocID returns the current document id, or numDocs if exhausted.
func (e *DocumentEnumerator) DocID() uint32 { return e.curDocID }

// Freq returns the term frequency at the current position.
func (e *DocumentEnumerator) Freq() uint32 {
	if e.exhausted {
		return 0
	}
	return e.curFreqs[e.curPosInBlock]
}

// Next advances to the next posting. A no-op once exhausted.
func (e *DocumentEnumerator) Next() {
	if e.exhausted {
		return
	}
	e.curPosInBlock++
	if e.curPosInBlock < len(e.curDocs) {
		e.curDocID = e.curDocs[e.curPosInBlock]
		return
	}
	nextBlock := e.curBlock + 1
	if nextBlock >= len(e.directory) {
		e.setExhausted()
		return
	}
	e.loadBlock(nextBlock, 0)
}

// NextGEQ advances the cursor to the first posting with docid >= target,
// skipping whole blocks via the directory without decoding them.
func (e *DocumentEnumerator) NextGEQ(target uint32) {
	if e.exhausted || e.curDocID >= target {
		return
	}
	b := e.curBlock
	if e.directory[b].lastDocID < target {
		b = sort.Search(len(e.directory), func(i int) bool {
			return e.directory[i].lastDocID >= target
		})
		if b >= len(e.directory) {
			e.setExhausted()
			return
		}
		e.loadBlock(b, 0)
	}
	for e.curDocs[e.curPosInBlock] < target {
		e.curPosInBlock++
	}
	e.curDocID = e.curDocs[e.curPosInBlock]
}
