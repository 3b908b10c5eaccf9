package score

import (
	"io"

	"github.com/tddhit/blockidx/wand"
)

// postingCursor is the subset of postings.DocumentEnumerator (or an
// index.Cursor wrapping one) that ScoredCursor needs. Kept as an interface,
// rather than a concrete *postings.DocumentEnumerator, so a ScoredCursor can
// wrap either a bare enumerator (tests) or an index.Cursor that must be
// Closed to release its reference on the index's memory source.
type postingCursor interface {
	DocID() uint32
	Next()
	NextGEQ(target uint32)
	Freq() uint32
	Size() int
}

// ScoredCursor lifts a DocumentEnumerator into (docid, score) pairs using a
// Scorer, and exposes the WAND upper bounds the drivers use for pruning
// (spec.md §4.4, §9 "cursors as polymorphic entities" — capability-based,
// not a deep inheritance hierarchy).
type ScoredCursor struct {
	postings postingCursor
	scorer   Scorer
	wand     *wand.Data
	weight   float32
}

// NewScoredCursor wraps a posting cursor with a scorer, its WAND data, and
// the term's query weight (multiplicity).
func NewScoredCursor(p postingCursor, scorer Scorer, w *wand.Data, weight float32) *ScoredCursor {
	return &ScoredCursor{postings: p, scorer: scorer, wand: w, weight: weight}
}

// Close releases the underlying cursor if it holds a resource that needs
// releasing (an index.Cursor's reference on its memory source); a no-op for
// cursors that don't.
func (c *ScoredCursor) Close() error {
	if cl, ok := c.postings.(io.Closer); ok {
		return cl.Close()
	}
	return nil
}

func (c *ScoredCursor) DocID() uint32 { return c.postings.DocID() }
func (c *ScoredCursor) Next()         { c.postings.Next() }
func (c *ScoredCursor) NextGEQ(target uint32) { c.postings.NextGEQ(target) }
func (c *ScoredCursor) Size() int     { return c.postings.Size() }

// Score returns the current posting's score given its document length.
func (c *ScoredCursor) Score(docLength uint32) float32 {
	return c.weight * c.scorer.Score(c.postings.Freq(), docLength)
}

// MaxScore returns the term-wide upper bound, weighted by query
// multiplicity.
func (c *ScoredCursor) MaxScore() float32 {
	return c.weight * c.wand.MaxScore()
}

// BlockMaxScore returns the upper bound for the given block index, weighted
// by query multiplicity.
func (c *ScoredCursor) BlockMaxScore(block int) float32 {
	return c.weight * c.wand.BlockMaxScore(block)
}
