package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/similarity"
	"github.com/tastelab/tasted/internal/taxonomy"
)

func TestParseStrategy(t *testing.T) {
	for _, name := range []string{"mean", "least_misery", "median", "trimmed_mean"} {
		s, err := ParseStrategy(name)
		require.NoError(t, err)
		assert.Equal(t, Strategy(name), s)
	}

	_, err := ParseStrategy("most_pleasure")
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestAggregateStrategies(t *testing.T) {
	tests := []struct {
		name     string
		probs    []float64
		strategy Strategy
		want     float64
	}{
		// Fixed scenario from the satisfaction model: [0.9, 0.9, 0.2].
		{name: "least misery", probs: []float64{0.9, 0.9, 0.2}, strategy: StrategyLeastMisery, want: 0.2},
		{name: "mean", probs: []float64{0.9, 0.9, 0.2}, strategy: StrategyMean, want: 2.0 / 3.0},
		{name: "median odd", probs: []float64{0.9, 0.9, 0.2}, strategy: StrategyMedian, want: 0.9},
		{name: "median even", probs: []float64{0.2, 0.4, 0.6, 0.9}, strategy: StrategyMedian, want: 0.5},
		{name: "trimmed mean", probs: []float64{0.1, 0.5, 0.6, 0.95}, strategy: StrategyTrimmedMean, want: 0.55},
		{name: "trimmed mean noop at 2", probs: []float64{0.2, 0.8}, strategy: StrategyTrimmedMean, want: 0.5},
		{name: "single member", probs: []float64{0.42}, strategy: StrategyLeastMisery, want: 0.42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, aggregate(tt.probs, tt.strategy), 1e-9)
		})
	}
}

func TestAggregationBounds(t *testing.T) {
	// least_misery <= mean <= max member probability, for any non-empty set.
	sets := [][]float64{
		{0.9, 0.9, 0.2},
		{0.5},
		{0.1, 0.2, 0.3, 0.4},
		{1, 1, 1},
	}
	for _, probs := range sets {
		lm := aggregate(probs, StrategyLeastMisery)
		mn := aggregate(probs, StrategyMean)
		_, maxP, _ := distribution(probs)
		assert.LessOrEqual(t, lm, mn)
		assert.LessOrEqual(t, mn, maxP)
	}
}

func TestLevelLabel(t *testing.T) {
	tests := []struct {
		prob float64
		want string
	}{
		{0.9, "very satisfied"},
		{0.85, "very satisfied"},
		{0.75, "satisfied"},
		{0.5, "neutral"},
		{0.3, "dissatisfied"},
		{0.29, "very dissatisfied"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, levelLabel(tt.prob), "prob %v", tt.prob)
	}
}

func TestGroupCommentCallsOutDisagreement(t *testing.T) {
	agree := groupComment(0.8, 0.1)
	disagree := groupComment(0.8, 0.5)
	assert.NotEqual(t, agree, disagree, "wide spread at high score must read differently")
	assert.Contains(t, disagree, "disagree")
}

func TestAggregateEndToEnd(t *testing.T) {
	tax := taxonomy.Default()
	builder := profile.NewBuilder(tax, nil)
	agg := NewAggregator(nil, 4, zap.NewNop())

	members := []Member{
		{ID: "u1", Profile: builder.FromText("love slow healing dramas")},
		{ID: "u2", Profile: builder.FromText("thrillers with big twists")},
		{ID: "u3", Profile: builder.FromText("funny romances")},
	}
	candidate := builder.FromText("a quiet countryside drama")

	res, err := agg.Aggregate(context.Background(), members, candidate, StrategyLeastMisery)
	require.NoError(t, err)
	require.Len(t, res.Members, 3)
	assert.Equal(t, StrategyLeastMisery, res.Strategy)
	assert.Equal(t, "u1", res.Members[0].MemberID, "results recombine by member, not arrival order")

	// Group score equals the minimum member probability.
	minP := res.Members[0].Probability
	for _, m := range res.Members {
		if m.Probability < minP {
			minP = m.Probability
		}
		assert.NotEmpty(t, m.Level)
	}
	assert.InDelta(t, minP, res.GroupScore, 1e-9)
	assert.GreaterOrEqual(t, res.Stats.Max, res.Stats.Min)
	assert.NotEmpty(t, res.Comment)
}

func TestAggregateEmptyMembers(t *testing.T) {
	agg := NewAggregator(nil, 0, zap.NewNop())

	res, err := agg.Aggregate(context.Background(), nil, profile.TasteProfile{}, StrategyMean)
	require.NoError(t, err)
	assert.Zero(t, res.GroupScore)
	assert.Empty(t, res.Members)
	assert.NotEmpty(t, res.Comment)
}

func TestAggregateUnknownStrategy(t *testing.T) {
	agg := NewAggregator(nil, 0, zap.NewNop())

	_, err := agg.Aggregate(context.Background(), []Member{{ID: "u1"}}, profile.TasteProfile{}, Strategy("vibes"))
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestAggregateBadWeightsIsFatal(t *testing.T) {
	agg := NewAggregator(&similarity.Options{
		Weights: map[string]float64{similarity.FactorEmotion: 1},
	}, 0, zap.NewNop())

	_, err := agg.Aggregate(context.Background(), []Member{{ID: "u1"}}, profile.TasteProfile{}, StrategyMean)
	require.ErrorIs(t, err, similarity.ErrMissingWeight)
}

func TestAverageProfiles(t *testing.T) {
	tax := taxonomy.Taxonomy{
		taxonomy.CategoryEmotion: {Tags: []string{"sad", "happy"}},
	}
	profiles := []profile.TasteProfile{
		{EmotionScores: map[string]float64{"sad": 1.0, "happy": 0.0}, EndingPreference: map[string]float64{"happy": 0.4}},
		{EmotionScores: map[string]float64{"sad": 0.0, "happy": 1.0}, EndingPreference: map[string]float64{"happy": 0.8}},
	}

	avg, err := AverageProfiles(profiles, tax)
	require.NoError(t, err)
	assert.InDelta(t, 0.5, avg.EmotionScores["sad"], 1e-9)
	assert.InDelta(t, 0.5, avg.EmotionScores["happy"], 1e-9)
	assert.InDelta(t, 0.6, avg.EndingPreference["happy"], 1e-9)

	_, err = AverageProfiles(nil, tax)
	require.Error(t, err)
}
