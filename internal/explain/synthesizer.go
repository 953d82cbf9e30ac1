// Package explain turns scoring breakdowns into short natural-language
// rationales, with an optional generator-augmented path behind strict
// output sanitation.
package explain

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tastelab/tasted/internal/generate"
	"github.com/tastelab/tasted/internal/similarity"
)

// Input is everything an explanation needs.
type Input struct {
	Result       similarity.SatisfactionResult
	Title        string
	LikedTags    []string
	DislikedTags []string
}

// Synthesizer produces explanations. With a nil generator it is fully
// template-based; with one, generated text is sanitized and factor coverage
// is enforced before it reaches the caller.
type Synthesizer struct {
	gen    generate.Generator
	logger *zap.Logger
}

// NewSynthesizer constructs a Synthesizer. gen may be nil for the
// template-only path.
func NewSynthesizer(gen generate.Generator, logger *zap.Logger) *Synthesizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synthesizer{gen: gen, logger: logger}
}

// Explain renders a rationale for the scored candidate. It never fails:
// generator errors of any kind fall back to the templated explanation with
// only a log line.
func (s *Synthesizer) Explain(ctx context.Context, in Input) string {
	if s.gen == nil {
		return s.template(in)
	}

	text, err := s.gen.Generate(ctx, generate.Request{
		System:      "You are a film recommendation assistant. Answer in two to three short sentences.",
		Messages:    []generate.Message{{Role: "user", Content: s.prompt(in)}},
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn("generator explanation failed, using template",
			zap.String("title", in.Title), zap.Error(err))
		return s.template(in)
	}

	text = stripProbabilityOpener(text)
	return enforceFactorCoverage(text, factorHints(in))
}

// template is the generator-free path: phrase branch by probability tier,
// naming the top factors and one matching tag per factor when available.
func (s *Synthesizer) template(in Input) string {
	pct := in.Result.Probability * 100
	hints := factorHints(in)

	var b strings.Builder
	switch {
	case pct <= 30:
		fmt.Fprintf(&b, "%q may not fit your taste: %s point a different way.", in.Title, hintList(hints))
		if len(in.DislikedTags) > 0 {
			fmt.Fprintf(&b, " It also leans on %s, which you tend to avoid.", joinTags(in.DislikedTags, 3))
		}
	case pct <= 70:
		fmt.Fprintf(&b, "%q is a partial match: %s line up to a degree.", in.Title, hintList(hints))
		if len(in.LikedTags) > 0 {
			fmt.Fprintf(&b, " Some of what you enjoy, like %s, shows up here.", joinTags(in.LikedTags, 2))
		}
	default:
		fmt.Fprintf(&b, "%q looks like a strong match, especially on %s.", in.Title, hintList(hints))
		if len(in.LikedTags) > 0 {
			fmt.Fprintf(&b, " Elements you love, like %s, come through clearly.", joinTags(in.LikedTags, 3))
		}
	}
	b.WriteString(" Predictions are based on emotional and narrative tags, so mileage may vary.")
	return b.String()
}

func (s *Synthesizer) prompt(in Input) string {
	bd := in.Result.Breakdown
	hints := factorHints(in)

	var hintLines []string
	for _, h := range hints {
		hintLines = append(hintLines, "- "+h.display+": "+h.phrase)
	}

	tone := "why this film fits the user's taste"
	if in.Result.Probability <= 0.30 {
		tone = "why this film may not fit the user's taste"
	}

	return fmt.Sprintf(`Explain in 2-3 friendly sentences %s.

Film: %q
Key factors: %s
Liked tags: %s
Disliked tags: %s

Rules:
1. Do not open with a sentence stating the match probability.
2. Do not quote percentages or numeric scores.
3. Mention both key talking points below, concretely.
4. Do not quote tag names verbatim; phrase them naturally.

Key talking points:
%s

Output only the explanation.`,
		tone, in.Title, strings.Join(bd.TopFactors, ", "),
		joinTags(in.LikedTags, 5), joinTags(in.DislikedTags, 5),
		strings.Join(hintLines, "\n"))
}

func joinTags(tags []string, n int) string {
	if len(tags) == 0 {
		return "none"
	}
	if len(tags) > n {
		tags = tags[:n]
	}
	return strings.Join(tags, ", ")
}
