// Package group combines per-member satisfaction scores into one group
// score under a selectable aggregation strategy.
package group

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/similarity"
)

// Strategy selects how member probabilities collapse into a group score.
type Strategy string

const (
	// StrategyMean is the arithmetic average.
	StrategyMean Strategy = "mean"
	// StrategyLeastMisery uses the minimum: one strongly dissatisfied
	// member caps the group score, the way a group outing fails when one
	// person hates the choice.
	StrategyLeastMisery Strategy = "least_misery"
	// StrategyMedian uses the middle value (average of the two middle
	// values for even counts).
	StrategyMedian Strategy = "median"
	// StrategyTrimmedMean drops the single lowest and highest value before
	// averaging; a no-op for two or fewer members.
	StrategyTrimmedMean Strategy = "trimmed_mean"
)

// ErrUnknownStrategy indicates a strategy name outside the closed set.
// This is a configuration error, fatal to the call.
var ErrUnknownStrategy = fmt.Errorf("unknown aggregation strategy")

// ParseStrategy validates a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch Strategy(name) {
	case StrategyMean, StrategyLeastMisery, StrategyMedian, StrategyTrimmedMean:
		return Strategy(name), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
}

// Member is one group participant: a taste profile plus adjustment tags.
type Member struct {
	ID      string               `json:"id"`
	Profile profile.TasteProfile `json:"profile"`
	Tags    profile.TagSet       `json:"tags"`
}

// MemberResult is a member's satisfaction result with its discrete label.
type MemberResult struct {
	MemberID string `json:"member_id"`
	similarity.SatisfactionResult
	Level string `json:"level"`
}

// Statistics summarizes the member probability distribution. Variance here
// is the spread between extremes (max−min), matching the shipped model.
type Statistics struct {
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Avg      float64 `json:"avg"`
	Variance float64 `json:"variance"`
}

// Result is the aggregated group outcome for one candidate.
type Result struct {
	GroupScore     float64        `json:"group_score"`
	Strategy       Strategy       `json:"strategy"`
	Members        []MemberResult `json:"members"`
	Comment        string         `json:"comment"`
	Recommendation string         `json:"recommendation"`
	Stats          Statistics     `json:"statistics"`
}

// Aggregator scores group members against candidates.
type Aggregator struct {
	opts    *similarity.Options
	workers int
	logger  *zap.Logger
}

// NewAggregator constructs an Aggregator. Nil opts means scoring defaults;
// workers <= 0 sizes the pool to available cores.
func NewAggregator(opts *similarity.Options, workers int, logger *zap.Logger) *Aggregator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{opts: opts, workers: workers, logger: logger}
}

// Aggregate scores every member against the candidate independently on a
// bounded pool, then collapses probabilities under the strategy. All
// members complete before aggregation: a partial group score would
// misrepresent least-misery semantics.
//
// An empty member list is a defined zero-score result, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, members []Member, candidate profile.TasteProfile, strategy Strategy) (Result, error) {
	if _, err := ParseStrategy(string(strategy)); err != nil {
		return Result{}, err
	}
	if len(members) == 0 {
		return Result{
			GroupScore:     0,
			Strategy:       strategy,
			Members:        []MemberResult{},
			Comment:        "No group members to score.",
			Recommendation: "Add members and try again.",
		}, nil
	}

	results := make([]MemberResult, len(members))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)
	for i, m := range members {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := similarity.Score(m.Profile, candidate, m.Tags, a.opts)
			if err != nil {
				return fmt.Errorf("scoring member %s: %w", m.ID, err)
			}
			results[i] = MemberResult{
				MemberID:           m.ID,
				SatisfactionResult: res,
				Level:              levelLabel(res.Probability),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	probs := make([]float64, len(results))
	for i, r := range results {
		probs[i] = r.Probability
	}
	score := aggregate(probs, strategy)

	minP, maxP, avg := distribution(probs)
	spread := maxP - minP

	return Result{
		GroupScore:     round3(score),
		Strategy:       strategy,
		Members:        results,
		Comment:        groupComment(score, spread),
		Recommendation: groupRecommendation(score),
		Stats: Statistics{
			Min:      round3(minP),
			Max:      round3(maxP),
			Avg:      round3(avg),
			Variance: round3(spread),
		},
	}, nil
}

// aggregate collapses probabilities under the strategy. Callers validate
// the strategy and non-emptiness first.
func aggregate(probs []float64, strategy Strategy) float64 {
	sorted := append([]float64(nil), probs...)
	sort.Float64s(sorted)

	switch strategy {
	case StrategyLeastMisery:
		return sorted[0]
	case StrategyMedian:
		mid := len(sorted) / 2
		if len(sorted)%2 == 1 {
			return sorted[mid]
		}
		return (sorted[mid-1] + sorted[mid]) / 2
	case StrategyTrimmedMean:
		if len(sorted) <= 2 {
			return mean(sorted)
		}
		return mean(sorted[1 : len(sorted)-1])
	default: // StrategyMean
		return mean(sorted)
	}
}

func mean(vals []float64) float64 {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func distribution(probs []float64) (minP, maxP, avg float64) {
	minP, maxP = probs[0], probs[0]
	var sum float64
	for _, p := range probs {
		sum += p
		minP = math.Min(minP, p)
		maxP = math.Max(maxP, p)
	}
	return minP, maxP, sum / float64(len(probs))
}

// Satisfaction level thresholds.
func levelLabel(prob float64) string {
	switch {
	case prob >= 0.85:
		return "very satisfied"
	case prob >= 0.70:
		return "satisfied"
	case prob >= 0.50:
		return "neutral"
	case prob >= 0.30:
		return "dissatisfied"
	default:
		return "very dissatisfied"
	}
}

// groupComment reads the group score together with the spread between the
// most and least satisfied members. Wide spread at an otherwise high score
// signals probable disagreement and is called out.
func groupComment(score, spread float64) string {
	switch {
	case score >= 0.70:
		if spread < 0.2 {
			return "A pick the whole group should enjoy."
		}
		return "Overall satisfaction is high, but some members may disagree."
	case score >= 0.50:
		if spread < 0.3 {
			return "A safe pick, though a better option may exist."
		}
		return "Opinions are likely to split on this one. Consider alternatives."
	default:
		return "Group satisfaction is likely low. Look for a different pick."
	}
}

func groupRecommendation(score float64) string {
	switch {
	case score >= 0.70:
		return "Recommended for watching together."
	case score >= 0.50:
		return "A reasonable choice, but worth comparing other options."
	default:
		return "Better to keep looking."
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
