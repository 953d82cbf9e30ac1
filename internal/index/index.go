// Package index provides the in-memory candidate index: attribute prefilter
// plus exact cosine rerank over fixed-alignment profile vectors.
//
// An Index is immutable once Build or Load returns. Concurrent Search calls
// need no locking; rebuilds construct a new Index and swap it through a
// Handle.
package index

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/taxonomy"
)

// Candidate is one indexable catalog item with its taste profile and the
// attributes the prefilter runs on.
type Candidate struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Profile     profile.TasteProfile `json:"profile"`
	Genres      []string             `json:"genres,omitempty"`
	ReleaseYear int                  `json:"release_year,omitempty"`
}

// entry pairs a candidate's aligned vector with its metadata.
type entry struct {
	Vector    []float64 `json:"vector"`
	Candidate Candidate `json:"candidate"`
}

// Index is the immutable candidate pool. All vectors share the key
// alignment captured at build time.
type Index struct {
	emotionKeys   []string
	narrativeKeys []string
	entries       []entry

	logger *zap.Logger
}

// Build vectorizes candidates against the taxonomy's fixed key order.
// Malformed candidates (empty ID or title) are skipped with a warning,
// never aborting the build.
func Build(tax taxonomy.Taxonomy, candidates []Candidate, logger *zap.Logger) *Index {
	if logger == nil {
		logger = zap.NewNop()
	}
	idx := &Index{
		emotionKeys:   append([]string(nil), tax.Tags(taxonomy.CategoryEmotion)...),
		narrativeKeys: append([]string(nil), tax.Tags(taxonomy.CategoryStoryFlow)...),
		entries:       make([]entry, 0, len(candidates)),
		logger:        logger,
	}

	skipped := 0
	for _, cand := range candidates {
		if cand.ID == "" || cand.Title == "" {
			skipped++
			logger.Warn("skipping malformed candidate",
				zap.String("id", cand.ID), zap.String("title", cand.Title))
			continue
		}
		idx.entries = append(idx.entries, entry{
			Vector:    idx.vectorize(cand.Profile),
			Candidate: cand,
		})
	}
	if skipped > 0 {
		logger.Warn("index built with skipped candidates",
			zap.Int("indexed", len(idx.entries)), zap.Int("skipped", skipped))
	}
	buildsTotal.Inc()
	indexedCandidates.Set(float64(len(idx.entries)))
	return idx
}

// BuildFromItems profiles catalog items on a bounded worker pool, then
// builds the index. Completion order does not matter: results slot back by
// position.
func BuildFromItems(ctx context.Context, tax taxonomy.Taxonomy, builder *profile.Builder, items []profile.Item, workers int, logger *zap.Logger) (*Index, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	candidates := make([]Candidate, len(items))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			candidates[i] = Candidate{
				ID:          item.ID,
				Title:       item.Title,
				Profile:     builder.FromItem(item),
				Genres:      item.Genres,
				ReleaseYear: item.ReleaseYear,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("profiling catalog items: %w", err)
	}
	return Build(tax, candidates, logger), nil
}

// Len reports the number of indexed candidates.
func (idx *Index) Len() int {
	return len(idx.entries)
}

// Dim reports the shared vector dimensionality.
func (idx *Index) Dim() int {
	return len(idx.emotionKeys) + len(idx.narrativeKeys) + len(taxonomy.EndingKeys)
}

// QueryVector aligns a taste profile to this index's key order, producing a
// vector comparable against every indexed candidate.
func (idx *Index) QueryVector(p profile.TasteProfile) []float64 {
	return idx.vectorize(p)
}

func (idx *Index) vectorize(p profile.TasteProfile) []float64 {
	vec := make([]float64, 0, idx.Dim())
	for _, key := range idx.emotionKeys {
		vec = append(vec, p.EmotionScores[key])
	}
	for _, key := range idx.narrativeKeys {
		vec = append(vec, p.NarrativeTraits[key])
	}
	for _, key := range taxonomy.EndingKeys {
		vec = append(vec, p.EndingPreference[key])
	}
	return vec
}

// Handle is the swap point readers go through. Rebuilds publish a fresh
// Index atomically; a live Index is never mutated.
type Handle struct {
	current atomic.Pointer[Index]
}

// NewHandle wraps an initial index (may be nil until the first build).
func NewHandle(idx *Index) *Handle {
	h := &Handle{}
	if idx != nil {
		h.current.Store(idx)
	}
	return h
}

// Get returns the current index, or nil before the first Swap.
func (h *Handle) Get() *Index {
	return h.current.Load()
}

// Swap publishes a rebuilt index to all subsequent readers.
func (h *Handle) Swap(idx *Index) {
	h.current.Store(idx)
}
