package query

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type thresholdJSON struct {
	K     int     `json:"k"`
	Score float32 `json:"score"`
}

type selectionJSON struct {
	K             int     `json:"k"`
	Intersections []uint64 `json:"intersections"`
}

type queryJSON struct {
	ID            *string          `json:"id,omitempty"`
	Query         *string          `json:"query,omitempty"`
	Terms         []string         `json:"terms,omitempty"`
	TermIds       []TermId         `json:"term_ids,omitempty"`
	Thresholds    []thresholdJSON  `json:"thresholds,omitempty"`
	Selections    []selectionJSON  `json:"selections,omitempty"`
}

// FromJSON parses a query JSON line (spec.md §6). At least one of query,
// terms or term_ids must be present.
func FromJSON(data []byte) (QueryContainer, error) {
	var raw queryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return QueryContainer{}, fmt.Errorf("query: failed to parse JSON: %w", err)
	}
	var q QueryContainer
	atLeastOne := false
	if raw.ID != nil {
		q.id = raw.ID
	}
	if raw.Query != nil {
		q.raw = raw.Query
		atLeastOne = true
	}
	if raw.Terms != nil {
		q.processedTerms = raw.Terms
		q.hasTerms = true
		atLeastOne = true
	}
	if raw.TermIds != nil {
		q.termIds = raw.TermIds
		q.hasTermIds = true
		atLeastOne = true
	}
	for _, t := range raw.Thresholds {
		q.thresholds = append(q.thresholds, thresholdEntry{k: t.K, score: t.Score})
	}
	for _, s := range raw.Selections {
		sel := Selection[int]{}
		for _, mask := range s.Intersections {
			singleton, pair, isPair, err := decodeMask(mask)
			if err != nil {
				return QueryContainer{}, err
			}
			if isPair {
				sel.SelectedPairs = append(sel.SelectedPairs, TermPair[int]{First: pair[0], Second: pair[1]})
			} else {
				sel.SelectedTerms = append(sel.SelectedTerms, singleton)
			}
		}
		q.selections = append(q.selections, selectionEntry{k: s.K, selection: sel})
	}
	if !atLeastOne {
		return QueryContainer{}, fmt.Errorf("query: JSON must have either raw query, terms, or term IDs: %s", string(data))
	}
	return q, nil
}

// ToJSONString serializes the container back to its JSON line form.
func (q QueryContainer) ToJSONString() (string, error) {
	out := queryJSON{ID: q.id, Query: q.raw}
	if q.hasTerms {
		out.Terms = q.processedTerms
	}
	if q.hasTermIds {
		out.TermIds = q.termIds
	}
	for _, t := range q.thresholds {
		out.Thresholds = append(out.Thresholds, thresholdJSON{K: t.k, Score: t.score})
	}
	for _, s := range q.selections {
		var masks []uint64
		for _, pos := range s.selection.SelectedTerms {
			masks = append(masks, uint64(1)<<uint(pos))
		}
		for _, p := range s.selection.SelectedPairs {
			masks = append(masks, (uint64(1)<<uint(p.First))|(uint64(1)<<uint(p.Second)))
		}
		sort.Slice(masks, func(i, j int) bool { return masks[i] < masks[j] })
		out.Selections = append(out.Selections, selectionJSON{K: s.k, Intersections: masks})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FromColonFormat parses "id:raw query text"; if there is no colon, the
// entire line is the raw query and there is no id.
func FromColonFormat(line string) QueryContainer {
	idx := strings.IndexByte(line, ':')
	if idx < 0 {
		raw := line
		return QueryContainer{raw: &raw}
	}
	id := line[:idx]
	raw := line[idx+1:]
	return QueryContainer{id: &id, raw: &raw}
}
