package index

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/tastelab/tasted/internal/similarity"
)

var tracer = otel.Tracer("tasted.index")

// Filters narrows the candidate pool before ranking. Zero-valued fields do
// not filter.
type Filters struct {
	// Genres keeps candidates carrying at least one of the listed genres.
	Genres []string `json:"genres,omitempty"`
	// YearFrom/YearTo bound the release year inclusively.
	YearFrom int `json:"year_from,omitempty"`
	YearTo   int `json:"year_to,omitempty"`
}

// Result is one ranked candidate with its query similarity attached.
type Result struct {
	Candidate Candidate `json:"candidate"`
	Score     float64   `json:"score"`
}

// Search applies attribute filters, then ranks the surviving pool by cosine
// similarity to the query vector and returns the top k.
//
// An empty result set is valid output, not an error. The only error is a
// query vector whose dimensionality does not match the index.
func (idx *Index) Search(ctx context.Context, queryVector []float64, k int, filters *Filters) ([]Result, error) {
	_, span := tracer.Start(ctx, "index.search")
	defer span.End()
	start := time.Now()

	if len(queryVector) != idx.Dim() {
		return nil, fmt.Errorf("query vector has %d dimensions, index has %d", len(queryVector), idx.Dim())
	}
	if k <= 0 {
		k = 10
	}

	results := make([]Result, 0, len(idx.entries))
	for _, e := range idx.entries {
		if !matches(e.Candidate, filters) {
			continue
		}
		results = append(results, Result{
			Candidate: e.Candidate,
			Score:     similarity.Cosine(queryVector, e.Vector),
		})
	}

	// Descending score, ID as a deterministic tiebreak.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Candidate.ID < results[j].Candidate.ID
	})
	if len(results) > k {
		results = results[:k]
	}

	span.SetAttributes(
		attribute.Int("index.results", len(results)),
		attribute.Int("index.k", k),
	)
	searchDuration.Observe(time.Since(start).Seconds())
	searchesTotal.Inc()
	return results, nil
}

func matches(cand Candidate, filters *Filters) bool {
	if filters == nil {
		return true
	}
	if len(filters.Genres) > 0 && !overlaps(cand.Genres, filters.Genres) {
		return false
	}
	if filters.YearFrom != 0 && cand.ReleaseYear < filters.YearFrom {
		return false
	}
	if filters.YearTo != 0 && cand.ReleaseYear > filters.YearTo {
		return false
	}
	return true
}

func overlaps(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}
