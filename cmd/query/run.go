package main

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tddhit/blockidx/auditlog"
	"github.com/tddhit/blockidx/driver"
	"github.com/tddhit/blockidx/index"
	"github.com/tddhit/blockidx/metrics"
	"github.com/tddhit/blockidx/query"
	"github.com/tddhit/blockidx/queryevents"
	"github.com/tddhit/blockidx/querycache"
	"github.com/tddhit/blockidx/score"
	"github.com/tddhit/blockidx/topk"
	"github.com/tddhit/blockidx/wand"
)

// runQuery builds one scored cursor per unique term id in req, runs the
// requested driver, and reports the result along with any optional
// observability side effects (metrics, audit log, event publication, query
// cache warm-up).
func runQuery(idx *index.Index, q query.QueryContainer, k int, driverName string, stats score.CollectionStats, flags query.RequestFlagSet, m *metrics.Metrics, cache *querycache.Cache, audit *auditlog.Store, events *queryevents.Publisher) {
	req, err := q.Query(k, flags)
	if err != nil {
		slog.Error("building query request", "error", err)
		return
	}

	cursors := make([]*score.ScoredCursor, 0, len(req.TermIds()))
	defer func() {
		for _, c := range cursors {
			c.Close()
		}
	}()
	for i, termID := range req.TermIds() {
		list, err := idx.List(uint64(termID))
		if err != nil {
			slog.Warn("skipping unknown term id", "term_id", termID, "error", err)
			continue
		}
		docFreq := uint64(list.Size())
		scorer := score.NewBM25(stats, docFreq)
		termMax := wand.NewTermData(estimateTermMaxScore(scorer))
		cursors = append(cursors, score.NewScoredCursor(list, scorer, termMax, req.TermWeights()[i]))
	}
	if len(cursors) == 0 {
		fmt.Printf("%s\n", resultLine(nil))
		return
	}

	var seedThreshold *float32
	if t, ok := req.Threshold(); ok {
		seedThreshold = &t
	}

	start := time.Now()
	var results []topk.Entry
	switch driverName {
	case "and":
		results = driver.RankedAnd(cursors, k, seedThreshold, nil, uint32(idx.NumDocs()))
	default:
		results = driver.RankedOr(cursors, k, seedThreshold, nil, uint32(idx.NumDocs()))
	}
	latency := time.Since(start)

	fmt.Printf("%s\n", resultLine(results))

	if m != nil {
		m.QueryLatency.WithLabelValues(driverName).Observe(latency.Seconds())
		m.TopKQueueSize.Observe(float64(len(results)))
		m.QueriesTotal.WithLabelValues(driverName, "ok").Inc()
	}
	if cache != nil {
		cache.Set(context.Background(), q, k, querycache.Entry{Results: results})
	}
	if audit != nil {
		id, _ := q.ID()
		if err := audit.Insert(context.Background(), auditlog.Log{
			QueryID:     id,
			TermIDs:     req.TermIds(),
			K:           k,
			Driver:      driverName,
			LatencyMS:   float64(latency.Microseconds()) / 1000,
			ResultCount: len(results),
			ExecutedAt:  time.Now().UTC(),
		}); err != nil {
			slog.Warn("audit log insert failed", "error", err)
		}
	}
	if events != nil {
		id, _ := q.ID()
		events.Publish(context.Background(), queryevents.Event{
			QueryID:     id,
			TermIDs:     req.TermIds(),
			K:           k,
			Driver:      driverName,
			LatencyMS:   float64(latency.Microseconds()) / 1000,
			ResultCount: len(results),
			ExecutedAt:  time.Now().UTC(),
		})
	}
}

// estimateTermMaxScore bounds a term's score from above by evaluating the
// scorer at its most favorable inputs: the largest representable frequency
// against an empty document (length 0, what the drivers pass when no
// document-length function is given). BM25 rises with frequency and falls
// with document length, so no posting scores higher. WAND metadata
// *training* — deriving tight per-block bounds from the built index — is
// explicitly out of scope (spec.md §1); this is the loose fallback bound
// that ScoredCursor.MaxScore reports. The drivers in package driver do not
// read it.
func estimateTermMaxScore(scorer score.Scorer) float32 {
	return scorer.Score(math.MaxUint32, 0)
}

func resultLine(results []topk.Entry) string {
	out := ""
	for i, r := range results {
		if i > 0 {
			out += " "
		}
		out += fmt.Sprintf("%d:%.6f", r.DocID, r.Score)
	}
	return out
}
