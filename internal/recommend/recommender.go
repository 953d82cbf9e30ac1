// Package recommend implements constrained recommendation: the candidate
// pool is retrieved and owned by the system, the generator only selects
// from it, and every surfaced ID is validated against the retrieved pool.
package recommend

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/tastelab/tasted/internal/generate"
	"github.com/tastelab/tasted/internal/index"
	"github.com/tastelab/tasted/internal/profile"
)

var tracer = otel.Tracer("tasted.recommend")

const (
	// DefaultTopK is the number of recommendations delivered.
	DefaultTopK = 5
	// DefaultPoolSize is the retrieved candidate pool fed to the generator.
	DefaultPoolSize = 20
)

// Request describes one recommendation run.
type Request struct {
	// UserText is the free-form taste description profiled for retrieval.
	UserText string `json:"user_text"`
	// TopK caps delivered recommendations; 0 means DefaultTopK.
	TopK int `json:"top_k,omitempty"`
	// PoolSize caps the retrieved candidate pool; 0 means DefaultPoolSize.
	PoolSize int `json:"pool_size,omitempty"`
	// Filters narrow retrieval by candidate attributes.
	Filters *index.Filters `json:"filters,omitempty"`
	// History is prior conversation turns forwarded to the generator.
	History []generate.Message `json:"history,omitempty"`
}

// Recommendation is one delivered candidate with its retrieval score.
type Recommendation struct {
	Candidate index.Candidate `json:"candidate"`
	Score     float64         `json:"score"`
}

// Response is the recommendation result. Recommendations only ever contain
// candidates from the retrieved pool.
type Response struct {
	RequestID            string           `json:"request_id"`
	Recommendations      []Recommendation `json:"recommendations"`
	ExplanationText      string           `json:"explanation_text"`
	CandidatesConsidered int              `json:"candidates_considered"`
	// GeneratorUsed reports whether the generator's selection survived
	// validation, as opposed to the retrieval-order fallback.
	GeneratorUsed bool `json:"generator_used"`
}

// Recommender wires retrieval, prompt assembly, generation, and selection
// validation. The generator never introduces items: an ID it emits that is
// not in the retrieved pool is dropped, never substituted.
type Recommender struct {
	handle  *index.Handle
	builder *profile.Builder
	gen     generate.Generator
	logger  *zap.Logger
}

// NewRecommender constructs a Recommender. gen may be nil, in which case
// every run delivers the retrieval-order pool head.
func NewRecommender(handle *index.Handle, builder *profile.Builder, gen generate.Generator, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{handle: handle, builder: builder, gen: gen, logger: logger}
}

// Recommend runs the full retrieve, format, generate, validate cycle.
//
// An empty retrieved pool produces an empty Response, not an error.
// Generator failure degrades to the top-scored pool head.
func (r *Recommender) Recommend(ctx context.Context, req Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "recommend.recommend")
	defer span.End()

	requestID := uuid.NewString()
	logger := r.logger.With(zap.String("request_id", requestID))

	topK := req.TopK
	if topK <= 0 {
		topK = DefaultTopK
	}
	poolSize := req.PoolSize
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}

	idx := r.handle.Get()
	if idx == nil {
		return nil, fmt.Errorf("candidate index not built")
	}

	userProfile := r.builder.FromText(req.UserText)
	pool, err := idx.Search(ctx, idx.QueryVector(userProfile), poolSize, req.Filters)
	if err != nil {
		return nil, fmt.Errorf("retrieving candidates: %w", err)
	}
	span.SetAttributes(attribute.Int("recommend.pool_size", len(pool)))

	if len(pool) == 0 {
		logger.Info("no candidates matched the request filters")
		return &Response{
			RequestID:       requestID,
			Recommendations: []Recommendation{},
			ExplanationText: "No titles in the catalog match the given constraints.",
		}, nil
	}

	explanation, selected, generatorUsed := r.selectFromPool(ctx, logger, req, pool, topK)
	requestsTotal.WithLabelValues(outcomeLabel(generatorUsed)).Inc()
	span.SetAttributes(attribute.Bool("recommend.generator_used", generatorUsed))

	return &Response{
		RequestID:            requestID,
		Recommendations:      selected,
		ExplanationText:      explanation,
		CandidatesConsidered: len(pool),
		GeneratorUsed:        generatorUsed,
	}, nil
}

// selectFromPool asks the generator to pick from the pool and validates its
// answer. Every failure mode lands on the retrieval-order fallback.
func (r *Recommender) selectFromPool(ctx context.Context, logger *zap.Logger, req Request, pool []index.Result, topK int) (string, []Recommendation, bool) {
	fallback := poolHead(pool, topK)
	if r.gen == nil {
		return "", fallback, false
	}

	messages := append(append([]generate.Message(nil), req.History...),
		generate.Message{Role: "user", Content: req.UserText})

	text, err := r.gen.Generate(ctx, generate.Request{
		System:      systemPrompt(pool, topK),
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   1500,
	})
	if err != nil {
		logger.Warn("generator selection failed, using retrieval order", zap.Error(err))
		return "", fallback, false
	}

	ids, parsed := extractSelectedIDs(text)
	if !parsed {
		logger.Warn("generator response carried no parseable selection, using retrieval order")
		return text, fallback, false
	}

	byID := make(map[string]index.Result, len(pool))
	for _, res := range pool {
		byID[res.Candidate.ID] = res
	}
	selected := make([]Recommendation, 0, topK)
	for _, id := range ids {
		res, ok := byID[id]
		if !ok {
			// Unretrieved ID: drop it, never substitute.
			logger.Warn("generator selected an ID outside the retrieved pool", zap.String("id", id))
			continue
		}
		selected = append(selected, Recommendation{Candidate: res.Candidate, Score: res.Score})
		if len(selected) == topK {
			break
		}
	}
	if len(selected) == 0 {
		logger.Warn("no generator selection survived validation, using retrieval order")
		return text, fallback, false
	}
	return text, selected, true
}

func poolHead(pool []index.Result, topK int) []Recommendation {
	if len(pool) > topK {
		pool = pool[:topK]
	}
	recs := make([]Recommendation, 0, len(pool))
	for _, res := range pool {
		recs = append(recs, Recommendation{Candidate: res.Candidate, Score: res.Score})
	}
	return recs
}

// systemPrompt embeds the candidate listing and the selection contract.
func systemPrompt(pool []index.Result, topK int) string {
	var b strings.Builder
	b.WriteString("You are a film recommendation expert.\n\n")
	b.WriteString(FormatCandidates(pool))
	fmt.Fprintf(&b, "\nAnalyze the user's request and select the %d best-fitting films from the candidates above. Never mention a film that is not listed.\n\n", topK)
	b.WriteString("Response format:\n")
	b.WriteString("1. Selected film IDs as a JSON object\n")
	b.WriteString("2. A reason per film\n")
	b.WriteString("3. An overall summary\n\n")
	b.WriteString("Example:\n```json\n{\"selected_ids\": [\"m1\", \"m3\", \"m5\"]}\n```\n\n")
	b.WriteString("**Reasons:**\n1. [ID: m1] Title - why it fits.\n")
	return b.String()
}

// FormatCandidates renders the retrieved pool as the line-oriented listing
// the selection prompt and ID validation are built around.
func FormatCandidates(pool []index.Result) string {
	var b strings.Builder
	b.WriteString("These are the system-curated candidate films:\n\n")
	for i, res := range pool {
		c := res.Candidate
		fmt.Fprintf(&b, "%d. [ID: %s] %s\n", i+1, c.ID, c.Title)
		if len(c.Genres) > 0 {
			fmt.Fprintf(&b, "   - Genres: %s\n", strings.Join(c.Genres, ", "))
		}
		if c.ReleaseYear != 0 {
			fmt.Fprintf(&b, "   - Released: %d\n", c.ReleaseYear)
		}
		if line := topEmotions(c.Profile.EmotionScores); line != "" {
			fmt.Fprintf(&b, "   - Mood: %s\n", line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// topEmotions summarizes a profile's three strongest positive emotion tags.
func topEmotions(scores map[string]float64) string {
	type kv struct {
		tag   string
		score float64
	}
	ranked := make([]kv, 0, len(scores))
	for tag, score := range scores {
		if score > 0 {
			ranked = append(ranked, kv{tag, score})
		}
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].tag < ranked[j].tag
	})
	if len(ranked) > 3 {
		ranked = ranked[:3]
	}
	parts := make([]string, 0, len(ranked))
	for _, e := range ranked {
		parts = append(parts, fmt.Sprintf("%s(%.2f)", e.tag, e.score))
	}
	return strings.Join(parts, ", ")
}

func outcomeLabel(generatorUsed bool) string {
	if generatorUsed {
		return "generator"
	}
	return "fallback"
}
