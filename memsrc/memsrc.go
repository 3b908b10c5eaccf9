// Package memsrc owns the byte region backing an index: either a read-only
// memory map of the index file, or a heap-allocated buffer for indexes built
// in-process. A Source is the sole owner of that region; cursors borrow from
// it through Acquire/Release and must never outlive it.
package memsrc

import (
	"errors"
	"os"
	"sync/atomic"
	"syscall"
	"unsafe"
)

var (
	// ErrBusy is returned by Close when cursors are still outstanding.
	ErrBusy = errors.New("memsrc: source has outstanding references")
)

// Source is an immutable byte region. It is safe to share by reference
// across goroutines; Acquire/Release are the only mutable operations.
type Source struct {
	data []byte
	refs int32

	file   *os.File
	mapped bool
}

// OpenFile memory-maps path read-only for its current size and advises the
// kernel that access will be random, matching the mmap/madvise discipline the
// teacher's bindex package used for its page file.
func OpenFile(path string) (*Source, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}
	size := info.Size()
	if size == 0 {
		file.Close()
		return nil, errors.New("memsrc: empty file")
	}
	data, err := syscall.Mmap(int(file.Fd()), 0, int(size), syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, err
	}
	if _, _, errno := syscall.Syscall(
		syscall.SYS_MADVISE,
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)),
		uintptr(syscall.MADV_RANDOM),
	); errno != 0 {
		syscall.Munmap(data)
		file.Close()
		return nil, errno
	}
	return &Source{data: data, file: file, mapped: true}, nil
}

// FromBytes wraps an in-memory buffer, e.g. one produced by Builder, as a
// Source without touching the filesystem.
func FromBytes(b []byte) *Source {
	return &Source{data: b}
}

// Bytes returns the full backing region. Callers must hold a reference
// (via Acquire) for as long as they retain the returned slice.
func (s *Source) Bytes() []byte {
	return s.data
}

// Size returns the length of the backing region in bytes.
func (s *Source) Size() int {
	return len(s.data)
}

// Acquire registers a borrower (a cursor handed out by index.Index.List) so that
// Close refuses to unmap while readers are outstanding.
func (s *Source) Acquire() {
	atomic.AddInt32(&s.refs, 1)
}

// Release un-registers a borrower previously recorded with Acquire.
func (s *Source) Release() {
	atomic.AddInt32(&s.refs, -1)
}

// Close unmaps the file (if memory-mapped) and closes the underlying file
// descriptor. It fails with ErrBusy if any cursor is still outstanding.
func (s *Source) Close() error {
	if atomic.LoadInt32(&s.refs) != 0 {
		return ErrBusy
	}
	if !s.mapped {
		return nil
	}
	if err := syscall.Munmap(s.data); err != nil {
		return err
	}
	return s.file.Close()
}
