// Package score implements the ranking-function plug-ins (bm25, dph, pl2,
// qld) and the ScoredCursor adapter that lifts a docid/freq cursor into
// (docid, score) pairs for the ranked query drivers.
package score

import "math"

// CollectionStats carries the corpus-wide figures a ranker needs: the
// total document count and the average document length, grounded on the
// collectionLength/averageDocumentLength figures computed up front in
// andrewtrotman-JASSjr's search loop.
type CollectionStats struct {
	NumDocs      uint64
	AvgDocLength float64
}

// Scorer is a pure function of (term frequency in doc, doc length) fixed to
// one term's collection statistics, matching spec.md §4.4's "score(docid,
// freq) -> float parametrized by collection statistics" contract (docid
// only matters to look up the doc's length, which the caller supplies).
type Scorer interface {
	Score(freq uint32, docLength uint32) float32
}

// BM25 is grounded on andrewtrotman-JASSjr__JASSjr_search.go's scoring loop:
// idf * (tf*(k1+1)) / (tf + k1*(1-b+b*(docLen/avgDocLen))), k1=0.9, b=0.4.
type BM25 struct {
	idf    float64
	avgLen float64
}

const (
	bm25K1 = 0.9
	bm25B  = 0.4
)

// NewBM25 builds a BM25 scorer for a term appearing in docFreq documents
// out of stats.NumDocs. A term with docFreq == stats.NumDocs (idf == 0)
// still returns a valid, always-zero scorer rather than erroring, matching
// the source's "IDF == 0 means zero contribution" handling.
func NewBM25(stats CollectionStats, docFreq uint64) *BM25 {
	idf := math.Log(float64(stats.NumDocs) / float64(docFreq))
	if idf < 0 {
		idf = 0
	}
	return &BM25{idf: idf, avgLen: stats.AvgDocLength}
}

func (s *BM25) Score(freq uint32, docLength uint32) float32 {
	tf := float64(freq)
	norm := bm25K1 * (1 - bm25B + bm25B*(float64(docLength)/s.avgLen))
	return float32(s.idf * (tf * (bm25K1 + 1)) / (tf + norm))
}

// DPH is a parameter-free divergence-from-randomness model.
type DPH struct {
	numDocs uint64
	avgLen  float64
	docFreq uint64
}

func NewDPH(stats CollectionStats, docFreq uint64) *DPH {
	return &DPH{numDocs: stats.NumDocs, avgLen: stats.AvgDocLength, docFreq: docFreq}
}

func (s *DPH) Score(freq uint32, docLength uint32) float32 {
	if freq == 0 || docLength == 0 {
		return 0
	}
	tf := float64(freq)
	dl := float64(docLength)
	norm := tf * math.Log2(tf*s.avgLen/dl)
	f := tf / dl
	prior := (dl - tf) * (1 - f)
	if prior <= 0 {
		prior = 1e-10
	}
	val := (1-f)*(1-f)/(tf+1) * (norm + 0.5*math.Log2(2*math.Pi*tf*(1-f)))
	return float32(val / prior * float64(s.docFreq))
}

// PL2 is the Poisson/Laplace divergence-from-randomness model with the
// conventional c=1 hyperparameter.
type PL2 struct {
	numDocs uint64
	avgLen  float64
	docFreq uint64
}

const pl2C = 1.0

func NewPL2(stats CollectionStats, docFreq uint64) *PL2 {
	return &PL2{numDocs: stats.NumDocs, avgLen: stats.AvgDocLength, docFreq: docFreq}
}

func (s *PL2) Score(freq uint32, docLength uint32) float32 {
	if freq == 0 {
		return 0
	}
	tfn := float64(freq) * math.Log2(1+pl2C*s.avgLen/float64(docLength))
	lambda := float64(s.docFreq) / float64(s.numDocs)
	val := tfn*math.Log2(tfn/lambda) + (lambda-tfn)*math.Log2(math.E) + 0.5*math.Log2(2*math.Pi*tfn)
	return float32(val / (tfn + 1))
}

// QLD is query likelihood with Dirichlet smoothing, mu=1000.
type QLD struct {
	avgLen     float64
	collFreq   uint64
	collTokens uint64
	mu         float64
}

const qldMu = 1000.0

// NewQLD builds a QLD scorer; collFreq is the term's total occurrence count
// across the collection and collTokens is the collection's total token
// count, used for the background probability P(t|C).
func NewQLD(collFreq, collTokens uint64) *QLD {
	return &QLD{collFreq: collFreq, collTokens: collTokens, mu: qldMu}
}

func (s *QLD) Score(freq uint32, docLength uint32) float32 {
	pc := float64(s.collFreq) / float64(s.collTokens)
	num := float64(freq) + s.mu*pc
	den := float64(docLength) + s.mu
	return float32(math.Log(num / den))
}
