// Package query implements the dynamic query data model: QueryContainer,
// Selection, RequestFlagSet and QueryRequest, along with JSON and colon-line
// serialization. Grounded on original_source/src/query.cpp, with the two
// documented source bugs corrected rather than reproduced (see DESIGN.md).
package query

import (
	"errors"
	"fmt"
	"math/bits"
	"sort"
)

// TermId is a term's ordinal identifier within the index's dictionary.
type TermId = uint32

// ErrMissingRawQuery is returned by Parse when no raw query string is set.
var ErrMissingRawQuery = errors.New("query: cannot parse, query string not set")

// ErrMissingTermIds is returned by Query when the container has no term ids.
var ErrMissingTermIds = errors.New("query: term ids not set")

// ErrPositionOutOfRange is returned by FilterTerms.
var ErrPositionOutOfRange = errors.New("query: term position out of range")

// ErrTooManyBits is returned when a selection mask selects more than two
// term positions.
var ErrTooManyBits = errors.New("query: only single-term and pair selections are supported")

// TermPair is an ordered pair of selected term ids (or positions).
type TermPair[T comparable] struct {
	First  T
	Second T
}

// Selection holds the singleton and pair intersections a maxscore-with-
// selections driver should evaluate, over T = term position or T = TermId.
type Selection[T comparable] struct {
	SelectedTerms []T
	SelectedPairs []TermPair[T]
}

// RequestFlag names one bit of a RequestFlagSet.
type RequestFlag uint32

const (
	FlagThreshold RequestFlag = 1 << iota
	FlagWeights
	FlagSelection
)

// RequestFlagSet is a bitset of RequestFlag values. Unlike the source's
// `operator|`/`operator&` on two bare RequestFlag operands (which ORs/ANDs
// an operand with itself, a source bug), Combine here genuinely combines
// both operands.
type RequestFlagSet struct {
	flags uint32
}

// DefaultFlags sets Threshold, Weights and Selection, matching the query
// engine's normal operating mode.
func DefaultFlags() RequestFlagSet {
	return RequestFlagSet{flags: uint32(FlagThreshold | FlagWeights | FlagSelection)}
}

// Combine ORs two flags together into a set.
func Combine(lhs, rhs RequestFlag) RequestFlagSet {
	return RequestFlagSet{flags: uint32(lhs) | uint32(rhs)}
}

func (s RequestFlagSet) Contains(flag RequestFlag) bool {
	return s.flags&uint32(flag) == uint32(flag)
}

func (s RequestFlagSet) With(flag RequestFlag) RequestFlagSet {
	return RequestFlagSet{flags: s.flags | uint32(flag)}
}

func (s RequestFlagSet) Without(flag RequestFlag) RequestFlagSet {
	return RequestFlagSet{flags: s.flags &^ uint32(flag)}
}

type thresholdEntry struct {
	k     int
	score float32
}

type selectionEntry struct {
	k         int
	selection Selection[int]
}

// QueryContainer is the dynamic query record: any non-empty subset of
// {id, raw, processed terms, term ids, cached thresholds by k, cached
// selections by k}.
type QueryContainer struct {
	id            *string
	raw           *string
	processedTerms []string
	hasTerms      bool
	termIds       []TermId
	hasTermIds    bool
	thresholds    []thresholdEntry
	selections    []selectionEntry
}

// TermProcessorFn maps a raw term to a processed term, or ("", false) to
// drop it.
type TermProcessorFn func(term string) (string, bool)

// Raw constructs a container carrying only a raw query string.
func Raw(q string) QueryContainer {
	return QueryContainer{raw: &q}
}

// FromTerms builds a container from pre-split terms, optionally filtering/
// rewriting each through processor; terms the processor rejects are
// dropped silently.
func FromTerms(terms []string, processor TermProcessorFn) QueryContainer {
	processed := make([]string, 0, len(terms))
	for _, t := range terms {
		if processor == nil {
			processed = append(processed, t)
			continue
		}
		if pt, ok := processor(t); ok {
			processed = append(processed, pt)
		}
	}
	return QueryContainer{processedTerms: processed, hasTerms: true}
}

// FromTermIds builds a container directly from term ids.
func FromTermIds(ids []TermId) QueryContainer {
	cp := append([]TermId(nil), ids...)
	return QueryContainer{termIds: cp, hasTermIds: true}
}

func (q QueryContainer) ID() (string, bool) {
	if q.id == nil {
		return "", false
	}
	return *q.id, true
}

func (q QueryContainer) String() (string, bool) {
	if q.raw == nil {
		return "", false
	}
	return *q.raw, true
}

func (q QueryContainer) Terms() ([]string, bool) {
	if !q.hasTerms {
		return nil, false
	}
	return q.processedTerms, true
}

func (q QueryContainer) TermIds() ([]TermId, bool) {
	if !q.hasTermIds {
		return nil, false
	}
	return q.termIds, true
}

// Threshold looks up the cached threshold for k.
func (q QueryContainer) Threshold(k int) (float32, bool) {
	for _, e := range q.thresholds {
		if e.k == k {
			return e.score, true
		}
	}
	return 0, false
}

// Selection looks up the cached position-based selection for k.
func (q QueryContainer) Selection(k int) (Selection[int], bool) {
	for _, e := range q.selections {
		if e.k == k {
			return e.selection, true
		}
	}
	return Selection[int]{}, false
}

// ParsedTerm is one (term string, term id) pair produced by a resolver.
type ParsedTerm struct {
	Term string
	ID   TermId
}

// ParseFn resolves raw query text into a sequence of (term, id) pairs.
type ParseFn func(raw string) ([]ParsedTerm, error)

// Parse requires the raw query string to already be set; it runs fn over it
// and populates both processed terms and term ids.
func (q *QueryContainer) Parse(fn ParseFn) error {
	if q.raw == nil {
		return ErrMissingRawQuery
	}
	parsed, err := fn(*q.raw)
	if err != nil {
		return err
	}
	terms := make([]string, len(parsed))
	ids := make([]TermId, len(parsed))
	for i, p := range parsed {
		terms[i] = p.Term
		ids[i] = p.ID
	}
	q.processedTerms = terms
	q.hasTerms = true
	q.termIds = ids
	q.hasTermIds = true
	return nil
}

// AddThreshold upserts the cached threshold for k, returning true iff an
// existing entry was overwritten.
func (q *QueryContainer) AddThreshold(k int, score float32) bool {
	for i := range q.thresholds {
		if q.thresholds[i].k == k {
			q.thresholds[i].score = score
			return true
		}
	}
	q.thresholds = append(q.thresholds, thresholdEntry{k: k, score: score})
	return false
}

// AddSelection upserts the cached selection for k.
func (q *QueryContainer) AddSelection(k int, sel Selection[int]) bool {
	for i := range q.selections {
		if q.selections[i].k == k {
			q.selections[i].selection = sel
			return true
		}
	}
	q.selections = append(q.selections, selectionEntry{k: k, selection: sel})
	return false
}

// FilterTerms retains only the terms (and/or term ids) at the given
// positions, in the order given, duplicates permitted.
func (q *QueryContainer) FilterTerms(positions []int) error {
	if !q.hasTerms && !q.hasTermIds {
		return nil
	}
	length := 0
	if q.hasTerms {
		length = len(q.processedTerms)
	} else {
		length = len(q.termIds)
	}
	for _, p := range positions {
		if p < 0 || p >= length {
			return ErrPositionOutOfRange
		}
	}
	if q.hasTerms {
		filtered := make([]string, len(positions))
		for i, p := range positions {
			filtered[i] = q.processedTerms[p]
		}
		q.processedTerms = filtered
	}
	if q.hasTermIds {
		filtered := make([]TermId, len(positions))
		for i, p := range positions {
			filtered[i] = q.termIds[p]
		}
		q.termIds = filtered
	}
	return nil
}

// QueryRequest is the immutable execution view produced by Query.
type QueryRequest struct {
	k         int
	termIds   []TermId
	weights   []float32
	threshold *float32
	selection *Selection[TermId]
}

func (r QueryRequest) K() int                        { return r.k }
func (r QueryRequest) TermIds() []TermId              { return r.termIds }
func (r QueryRequest) TermWeights() []float32         { return r.weights }
func (r QueryRequest) Selection() (Selection[TermId], bool) {
	if r.selection == nil {
		return Selection[TermId]{}, false
	}
	return *r.selection, true
}
func (r QueryRequest) Threshold() (float32, bool) {
	if r.threshold == nil {
		return 0, false
	}
	return *r.threshold, true
}

// Query collapses duplicate term ids into (term_id, multiplicity), sorts
// term ids ascending, and applies the requested flags.
func (q QueryContainer) Query(k int, flags RequestFlagSet) (QueryRequest, error) {
	if !q.hasTermIds {
		return QueryRequest{}, ErrMissingTermIds
	}
	counts := make(map[TermId]float32)
	for _, id := range q.termIds {
		counts[id]++
	}
	ids := make([]TermId, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	weights := make([]float32, len(ids))
	for i, id := range ids {
		weights[i] = counts[id]
	}

	req := QueryRequest{k: k, termIds: ids, weights: weights}

	if sel, ok := q.Selection(k); ok && flags.Contains(FlagSelection) {
		terms := make([]TermId, 0, len(sel.SelectedTerms))
		for _, pos := range sel.SelectedTerms {
			terms = append(terms, q.termIds[pos])
		}
		sort.Slice(terms, func(i, j int) bool { return terms[i] < terms[j] })
		terms = dedupeSorted(terms)

		pairs := make([]TermPair[TermId], 0, len(sel.SelectedPairs))
		for _, p := range sel.SelectedPairs {
			pairs = append(pairs, TermPair[TermId]{First: q.termIds[p.First], Second: q.termIds[p.Second]})
		}
		sort.Slice(pairs, func(i, j int) bool {
			if pairs[i].First != pairs[j].First {
				return pairs[i].First < pairs[j].First
			}
			return pairs[i].Second < pairs[j].Second
		})
		pairs = dedupeSortedPairs(pairs)

		req.selection = &Selection[TermId]{SelectedTerms: terms, SelectedPairs: pairs}
	}

	if t, ok := q.Threshold(k); ok && flags.Contains(FlagThreshold) {
		req.threshold = &t
	}
	if !flags.Contains(FlagWeights) {
		for i := range req.weights {
			req.weights[i] = 1.0
		}
	}
	return req, nil
}

func dedupeSorted(ids []TermId) []TermId {
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}

func dedupeSortedPairs(pairs []TermPair[TermId]) []TermPair[TermId] {
	out := pairs[:0]
	for i, p := range pairs {
		if i == 0 || p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}

// decodeMask splits a selection bitmask over term positions into either a
// singleton term position or a pair, per spec.md §6: popcount 1 is a
// singleton, popcount 2 is a pair, anything else is rejected.
func decodeMask(mask uint64) (singleton int, pair [2]int, isPair bool, err error) {
	if bits.OnesCount64(mask) > 2 {
		return 0, [2]int{}, false, ErrTooManyBits
	}
	var positions []int
	for pos := 0; mask != 0; pos++ {
		if mask&1 != 0 {
			positions = append(positions, pos)
		}
		mask >>= 1
	}
	switch len(positions) {
	case 1:
		return positions[0], [2]int{}, false, nil
	case 2:
		return 0, [2]int{positions[0], positions[1]}, true, nil
	default:
		return 0, [2]int{}, false, fmt.Errorf("query: empty selection mask")
	}
}
