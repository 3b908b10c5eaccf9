// Package queryreader implements a stateful line-oriented query reader over
// stdin or a file, with chained map/filter transforms. Grounded on
// original_source/src/query.cpp's QueryReader, and on builder/builder.go's
// bufio.NewScanner-with-enlarged-buffer pattern for long lines.
package queryreader

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/tddhit/blockidx/query"
)

const maxLineSize = 1 << 20

type format int

const (
	formatUnknown format = iota
	formatJSON
	formatColon
)

// MapFn transforms a container after filters have passed it through.
type MapFn func(query.QueryContainer) query.QueryContainer

// FilterFn reports whether a container should be kept.
type FilterFn func(query.QueryContainer) bool

// Reader is a stateful query-line reader: the first successfully parsed
// line fixes the format (JSON if it parses as JSON, colon otherwise), and
// every subsequent line is parsed in that format.
type Reader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	format  format
	filters []FilterFn
	maps    []MapFn
}

// FromFile opens path for line-oriented reading.
func FromFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("queryreader: unable to read from file: %w", err)
	}
	s := bufio.NewScanner(f)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s, closer: f}, nil
}

// FromStdin reads from os.Stdin.
func FromStdin() *Reader {
	s := bufio.NewScanner(os.Stdin)
	s.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &Reader{scanner: s}
}

// Map registers a transform applied, in registration order, after all
// filters pass.
func (r *Reader) Map(fn MapFn) *Reader {
	r.maps = append(r.maps, fn)
	return r
}

// Filter registers a predicate; a container is dropped as soon as any
// registered filter rejects it (corrected per DESIGN.md: the source's
// `continue` inside a nested for-loop doesn't actually skip the
// container — that bug is not reproduced here).
func (r *Reader) Filter(fn FilterFn) *Reader {
	r.filters = append(r.filters, fn)
	return r
}

func (r *Reader) nextQuery() (query.QueryContainer, bool, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return query.QueryContainer{}, false, err
		}
		return query.QueryContainer{}, false, nil
	}
	line := r.scanner.Text()
	switch r.format {
	case formatJSON:
		q, err := query.FromJSON([]byte(line))
		return q, true, err
	case formatColon:
		return query.FromColonFormat(line), true, nil
	default:
		if q, err := query.FromJSON([]byte(line)); err == nil {
			r.format = formatJSON
			return q, true, nil
		}
		r.format = formatColon
		return query.FromColonFormat(line), true, nil
	}
}

// Next returns the next transformed container, or (zero, false, nil) at
// end of input. An I/O error stops iteration immediately.
func (r *Reader) Next() (query.QueryContainer, bool, error) {
	for {
		container, ok, err := r.nextQuery()
		if err != nil {
			return query.QueryContainer{}, false, err
		}
		if !ok {
			return query.QueryContainer{}, false, nil
		}
		dropped := false
		for _, fn := range r.filters {
			if !fn(container) {
				dropped = true
				break
			}
		}
		if dropped {
			continue
		}
		for _, fn := range r.maps {
			container = fn(container)
		}
		return container, true, nil
	}
}

// Close releases the underlying file, if any.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
