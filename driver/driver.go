// Package driver implements the ranked OR (disjunctive) and ranked AND
// (conjunctive) query drivers over sets of scored cursors, per spec.md
// §4.6/§4.7. No driver implementation survives unabridged in
// original_source beyond the call-shape `run(cursors); run.topk()` in
// tools/evaluate_queries/ranked.cpp; the loop bodies below are built
// directly from the algorithm description, using the topk/score packages.
package driver

import (
	"sort"

	"github.com/tddhit/blockidx/score"
	"github.com/tddhit/blockidx/topk"
)

// DocLengthFn resolves a document's length, used by length-normalized
// scorers (bm25, dph, pl2). Pass nil for scorers that ignore it.
type DocLengthFn func(docID uint32) uint32

func docLength(fn DocLengthFn, docID uint32) uint32 {
	if fn == nil {
		return 0
	}
	return fn(docID)
}

// RankedOr runs the disjunctive driver: at each step, advances every cursor
// currently at the smallest live docid, sums their scores, and offers the
// pair to the top-k queue. Output is exactly the top-k of the exhaustive
// disjunction over all documents appearing in any cursor's list, sorted
// descending by score with ties broken by ascending docid.
func RankedOr(cursors []*score.ScoredCursor, k int, seedThreshold *float32, docLen DocLengthFn, sentinel uint32) []topk.Entry {
	q := topk.New(uint64(k))
	if seedThreshold != nil {
		q.SetThreshold(*seedThreshold)
	}

	for {
		minDocID := sentinel
		for _, c := range cursors {
			if c.DocID() < minDocID {
				minDocID = c.DocID()
			}
		}
		if minDocID >= sentinel {
			break
		}
		var sum float32
		for _, c := range cursors {
			if c.DocID() == minDocID {
				sum += c.Score(docLength(docLen, minDocID))
			}
		}
		q.Insert(sum, uint64(minDocID))
		for _, c := range cursors {
			if c.DocID() == minDocID {
				c.Next()
			}
		}
	}
	return finalizeTies(q)
}

// RankedAnd runs the conjunctive driver: pivots on the shortest posting
// list, advances all cursors to the pivot docid via next_geq, and retries
// with a raised pivot until every cursor agrees. Terminates when any
// cursor is exhausted.
func RankedAnd(cursors []*score.ScoredCursor, k int, seedThreshold *float32, docLen DocLengthFn, sentinel uint32) []topk.Entry {
	q := topk.New(uint64(k))
	if seedThreshold != nil {
		q.SetThreshold(*seedThreshold)
	}
	if len(cursors) == 0 {
		return nil
	}

	shortest := 0
	for i, c := range cursors {
		if c.Size() < cursors[shortest].Size() {
			shortest = i
		}
	}

	for {
		pivot := cursors[shortest].DocID()
		if pivot >= sentinel {
			break
		}
		maxDoc := pivot
		for _, c := range cursors {
			c.NextGEQ(pivot)
			if c.DocID() > maxDoc {
				maxDoc = c.DocID()
			}
		}
		if maxDoc != pivot {
			cursors[shortest].NextGEQ(maxDoc)
			continue
		}
		var sum float32
		for _, c := range cursors {
			sum += c.Score(docLength(docLen, pivot))
		}
		q.Insert(sum, uint64(pivot))
		cursors[shortest].Next()
	}
	return finalizeTies(q)
}

// finalizeTies applies Finalize and then breaks score ties by ascending
// docid, matching spec.md §4.6's output ordering contract; Finalize alone
// only guarantees descending score.
func finalizeTies(q *topk.Queue) []topk.Entry {
	entries := q.Finalize()
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].DocID < entries[j].DocID
	})
	return entries
}
