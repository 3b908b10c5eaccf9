package index

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/tddhit/blockidx/efindex"
	"github.com/tddhit/blockidx/params"
	"github.com/tddhit/blockidx/postings"
)

// bufferSize is the stream-builder's flush threshold, matching
// block_freq_index.hpp's stream_builder::buffer_size (1 GiB).
const bufferSize = 1 << 30

// StreamBuilder accumulates posting lists through a bounded in-memory
// buffer, handing it off to a background writer goroutine whenever it
// reaches bufferSize, so peak memory use stays independent of collection
// size. Grounded on block_freq_index.hpp's stream_builder, which flushes
// to a scratch file under a scoped temporary directory on the same
// schedule (spec.md §5).
type StreamBuilder struct {
	numDocs uint64
	params  params.Global
	codec   postings.Codec

	tmpDir  string
	tmpFile *os.File

	buffer          []byte
	postingsWritten uint64
	endpoints       []uint64

	flushes chan []byte
	done    chan error
}

// NewStreamBuilder creates a stream builder backed by a scratch file in a
// freshly created temporary directory, removed in full by Build.
func NewStreamBuilder(numDocs uint64, p params.Global) (*StreamBuilder, error) {
	dir, err := os.MkdirTemp("", "blockidx-stream-*")
	if err != nil {
		return nil, fmt.Errorf("index: creating scratch directory: %w", err)
	}
	f, err := os.Create(dir + "/buffer")
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("index: creating scratch file: %w", err)
	}
	sb := &StreamBuilder{
		numDocs:   numDocs,
		params:    p,
		codec:     postings.ByID(p.Codec),
		tmpDir:    dir,
		tmpFile:   f,
		endpoints: []uint64{0},
		flushes:   make(chan []byte),
		done:      make(chan error, 1),
	}
	go sb.writer()
	return sb, nil
}

func (b *StreamBuilder) writer() {
	for chunk := range b.flushes {
		if _, err := b.tmpFile.Write(chunk); err != nil {
			b.done <- err
			return
		}
	}
	b.done <- nil
}

// AddPostingList appends one posting list's encoded bytes to the pending
// buffer, flushing to the background writer synchronously once the buffer
// reaches capacity (appends and flushes are serialized, never concurrent).
func (b *StreamBuilder) AddPostingList(docIDs, freqs []uint32) error {
	before := len(b.buffer)
	var err error
	b.buffer, err = postings.Write(b.buffer, b.codec, docIDs, freqs)
	if err != nil {
		return err
	}
	b.postingsWritten += uint64(len(b.buffer) - before)
	b.endpoints = append(b.endpoints, b.postingsWritten)
	if len(b.buffer) >= bufferSize {
		return b.flush()
	}
	return nil
}

func (b *StreamBuilder) flush() error {
	if len(b.buffer) == 0 {
		return nil
	}
	chunk := b.buffer
	b.buffer = nil
	b.flushes <- chunk
	return nil
}

// Build flushes any remaining buffered bytes, writes the fixed header and
// endpoint table, appends the scratch file's contents, and removes the
// scratch directory on every exit path.
func (b *StreamBuilder) Build(indexPath string) (err error) {
	defer func() {
		b.tmpFile.Close()
		os.RemoveAll(b.tmpDir)
	}()

	if err = b.flush(); err != nil {
		return err
	}
	close(b.flushes)
	if writerErr := <-b.done; writerErr != nil {
		return writerErr
	}

	size := uint64(len(b.endpoints) - 1)
	seq, err := efindex.Build(b.endpoints, b.postingsWritten)
	if err != nil {
		return err
	}

	out, err := os.Create(indexPath)
	if err != nil {
		return fmt.Errorf("index: creating index file: %w", err)
	}
	defer out.Close()

	var head [8]byte
	if _, err = out.Write(head[:]); err != nil {
		return err
	}

	var paramBuf [params.Size]byte
	binary.LittleEndian.PutUint32(paramBuf[:], uint32(b.params.Codec))
	binary.LittleEndian.PutUint32(paramBuf[4:], b.params.BlockSize)
	if _, err = out.Write(paramBuf[:]); err != nil {
		return err
	}

	var u64 [8]byte
	writeU64 := func(v uint64) error {
		binary.LittleEndian.PutUint64(u64[:], v)
		_, werr := out.Write(u64[:])
		return werr
	}
	if err = writeU64(size); err != nil {
		return err
	}
	if err = writeU64(b.numDocs); err != nil {
		return err
	}
	if err = writeU64(0); err != nil { // reserved
		return err
	}

	if err = writeU64(seq.WordCount()); err != nil {
		return err
	}
	if _, err = out.Write(seq.Bytes()); err != nil {
		return err
	}

	if err = writeU64(b.postingsWritten); err != nil {
		return err
	}

	buf, err := os.Open(b.tmpFile.Name())
	if err != nil {
		return fmt.Errorf("index: reopening scratch file: %w", err)
	}
	defer buf.Close()
	_, err = io.Copy(out, buf)
	return err
}
