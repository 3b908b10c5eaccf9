// Package index implements the immutable on-disk index reader: fixed
// header, Elias-Fano endpoint table mapping list ordinal to byte offset,
// and random-access posting-list lookup by ordinal term id. Grounded on
// original_source/include/pisa/block_freq_index.hpp (header layout,
// builder/stream_builder) and indexer/indexer.go's mmap-and-read-header
// load pattern.
package index

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tddhit/blockidx/efindex"
	"github.com/tddhit/blockidx/memsrc"
	"github.com/tddhit/blockidx/params"
	"github.com/tddhit/blockidx/postings"
)

// ErrMalformedIndex is returned when the declared header sizes exceed the
// backing memory source (spec.md §4.3, §7).
var ErrMalformedIndex = errors.New("index: malformed index")

const fixedHeaderSize = 8 + params.Size + 8 + 8 + 8 + 8

// Index is an immutable, memory-mapped or heap-backed posting-list index.
// Its byte source is exclusively owned by the Index; cursors borrow from
// it and must not outlive it (spec.md §3, "Ownership").
type Index struct {
	src *memsrc.Source

	freezeFlags uint64
	params      params.Global
	size        uint64
	numDocs     uint64

	endpoints  *efindex.Sequence
	listOffset uint64
	listSize   uint64
	codec      postings.Codec
}

// Open parses the fixed header out of an already-opened memory source.
func Open(src *memsrc.Source) (*Index, error) {
	data := src.Bytes()
	if len(data) < fixedHeaderSize {
		return nil, fmt.Errorf("%w: header truncated", ErrMalformedIndex)
	}

	freezeFlags := binary.LittleEndian.Uint64(data[0:8])
	offset := 8

	var global params.Global
	global.Codec = params.Codec(binary.LittleEndian.Uint32(data[offset:]))
	global.BlockSize = binary.LittleEndian.Uint32(data[offset+4:])
	offset += params.Size

	size := binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	numDocs := binary.LittleEndian.Uint64(data[offset:])
	offset += 8
	offset += 8 // reserved
	endpointSize := binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	endpointBytes := int(8*endpointSize + 16)
	if offset+endpointBytes > len(data) {
		return nil, fmt.Errorf("%w: endpoint table truncated", ErrMalformedIndex)
	}
	endpointData := data[offset : offset+endpointBytes]
	offset += endpointBytes

	if offset+8 > len(data) {
		return nil, fmt.Errorf("%w: list blob size truncated", ErrMalformedIndex)
	}
	listBlobSize := binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	if offset+int(listBlobSize) > len(data) {
		return nil, fmt.Errorf("%w: list blob exceeds source", ErrMalformedIndex)
	}

	endpoints, err := decodeEndpoints(endpointData, size)
	if err != nil {
		return nil, err
	}

	return &Index{
		src:         src,
		freezeFlags: freezeFlags,
		params:      global,
		size:        size,
		numDocs:     numDocs,
		endpoints:   endpoints,
		listOffset:  uint64(offset),
		listSize:    listBlobSize,
		codec:       postings.ByID(global.Codec),
	}, nil
}

func decodeEndpoints(raw []byte, size uint64) (*efindex.Sequence, error) {
	seq, err := efindex.Load(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedIndex, err)
	}
	if seq.Size() != size+1 {
		return nil, fmt.Errorf("%w: endpoint sequence has %d entries, want %d", ErrMalformedIndex, seq.Size(), size+1)
	}
	return seq, nil
}

// Size returns the number of posting lists.
func (idx *Index) Size() uint64 { return idx.size }

// NumDocs returns the collection size; also the sentinel docid for
// exhausted cursors.
func (idx *Index) NumDocs() uint64 { return idx.numDocs }

// Params returns the frozen global codec parameters.
func (idx *Index) Params() params.Global { return idx.params }

func (idx *Index) endpoint(i uint64) uint64 {
	_, value := idx.endpoints.Move(i)
	return value
}

// Cursor is a posting-list enumerator borrowed from an Index's memory
// source. Close must be called once the cursor is no longer needed;
// Index.Close refuses (memsrc.ErrBusy) while any Cursor remains open
// (spec.md §3, §5: "all cursors must be dropped before the index is
// destroyed").
type Cursor struct {
	*postings.DocumentEnumerator
	src    *memsrc.Source
	closed bool
}

// Close releases the cursor's reference on the index's memory source. Safe
// to call more than once.
func (c *Cursor) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.src.Release()
	return nil
}

// List returns the document enumerator for the i-th posting list, borrowing
// bytes from the index's own memory source. The returned Cursor holds a
// reference on that source until Close is called.
func (idx *Index) List(i uint64) (*Cursor, error) {
	if i >= idx.size {
		return nil, fmt.Errorf("index: list ordinal %d out of range [0,%d)", i, idx.size)
	}
	start := idx.endpoint(i)
	end := idx.endpoint(i + 1)
	data := idx.src.Bytes()[idx.listOffset+start : idx.listOffset+end]
	idx.src.Acquire()
	return &Cursor{
		DocumentEnumerator: postings.NewDocumentEnumerator(data, idx.codec, uint32(idx.numDocs)),
		src:                idx.src,
	}, nil
}

// Warmup touches every byte of list i to preload it into cache.
func (idx *Index) Warmup(i uint64) error {
	if i >= idx.size {
		return fmt.Errorf("index: list ordinal %d out of range [0,%d)", i, idx.size)
	}
	start := idx.endpoint(i)
	end := idx.endpoint(i + 1)
	var sink byte
	for _, b := range idx.src.Bytes()[idx.listOffset+start : idx.listOffset+end] {
		sink ^= b
	}
	_ = sink
	return nil
}

// Close releases the underlying memory source.
func (idx *Index) Close() error {
	return idx.src.Close()
}
