// Package similarity computes satisfaction probabilities between a user
// taste profile and a candidate profile.
package similarity

import (
	"fmt"
	"math"
	"sort"

	"github.com/tastelab/tasted/internal/profile"
)

// Dimension labels, in tie-break order.
const (
	FactorEmotion   = "emotion"
	FactorNarrative = "narrative"
	FactorEnding    = "ending"
)

// Default adjustment weights.
const (
	DefaultPenaltyWeight = 0.7
	DefaultBoostWeight   = 0.5
)

// ErrMissingWeight indicates the weights map omits a required dimension key.
// This is a configuration error, fatal to the call.
var ErrMissingWeight = fmt.Errorf("weights missing required dimension")

// Options tunes the scoring model. The zero value of a nil *Options means
// defaults throughout.
type Options struct {
	// Weights maps dimension label to its contribution. All three dimension
	// keys must be present when the map is non-nil.
	Weights map[string]float64
	// PenaltyWeight scales the dislike-tag penalty sum.
	PenaltyWeight float64
	// BoostWeight scales the boost-tag bonus sum.
	BoostWeight float64
}

// DefaultWeights returns the standard dimension weighting.
func DefaultWeights() map[string]float64 {
	return map[string]float64{
		FactorEmotion:   0.5,
		FactorNarrative: 0.3,
		FactorEnding:    0.2,
	}
}

// DefaultOptions returns options with all defaults populated.
func DefaultOptions() *Options {
	return &Options{
		Weights:       DefaultWeights(),
		PenaltyWeight: DefaultPenaltyWeight,
		BoostWeight:   DefaultBoostWeight,
	}
}

// Breakdown carries the per-component contributions behind a score.
type Breakdown struct {
	EmotionSimilarity   float64  `json:"emotion_similarity"`
	NarrativeSimilarity float64  `json:"narrative_similarity"`
	EndingSimilarity    float64  `json:"ending_similarity"`
	BoostScore          float64  `json:"boost_score"`
	DislikePenalty      float64  `json:"dislike_penalty"`
	TopFactors          []string `json:"top_factors"`
}

// SatisfactionResult is the outcome of scoring one (user, candidate) pair.
// Results are produced fresh per call and never cached here.
type SatisfactionResult struct {
	Probability float64 `json:"probability"`
	// Confidence rises as the three dimension similarities agree. This is a
	// design heuristic, not a statistical guarantee.
	Confidence float64   `json:"confidence"`
	RawScore   float64   `json:"raw_score"`
	Breakdown  Breakdown `json:"breakdown"`
}

// Score computes the satisfaction probability of a user for a candidate.
//
// Boost and penalty sums are applied after the weighted cosine blend and may
// push the raw score outside [-1,1] before the clip, so a single strongly
// matching boost tag can saturate the probability at 1.0 regardless of
// similarity. That matches the shipped model and is flagged for product
// review rather than rebalanced here.
func Score(user, candidate profile.TasteProfile, tags profile.TagSet, opts *Options) (SatisfactionResult, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	weights := opts.Weights
	if weights == nil {
		weights = DefaultWeights()
	}
	for _, key := range []string{FactorEmotion, FactorNarrative, FactorEnding} {
		if _, ok := weights[key]; !ok {
			return SatisfactionResult{}, fmt.Errorf("%w: %q", ErrMissingWeight, key)
		}
	}

	// Dimensions align on the keys present in the user's profile; candidate
	// values for absent keys read as zero.
	simE := keyedCosine(user.EmotionScores, candidate.EmotionScores)
	simN := keyedCosine(user.NarrativeTraits, candidate.NarrativeTraits)
	simD := keyedCosine(user.EndingPreference, candidate.EndingPreference)

	boost := tagSum(candidate, tags.Boost)
	penalty := tagSum(candidate, tags.Dislike)

	raw := weights[FactorEmotion]*simE + weights[FactorNarrative]*simN + weights[FactorEnding]*simD +
		opts.BoostWeight*boost - opts.PenaltyWeight*penalty

	prob := (raw + 1) / 2
	prob = math.Max(0, math.Min(1, prob))

	mean := (simE + simN + simD) / 3
	variance := ((simE-mean)*(simE-mean) + (simN-mean)*(simN-mean) + (simD-mean)*(simD-mean)) / 3
	confidence := 1 - math.Min(math.Sqrt(variance), 1)

	return SatisfactionResult{
		Probability: round3(prob),
		Confidence:  round3(confidence),
		RawScore:    round3(raw),
		Breakdown: Breakdown{
			EmotionSimilarity:   round3(simE),
			NarrativeSimilarity: round3(simN),
			EndingSimilarity:    round3(simD),
			BoostScore:          round3(boost),
			DislikePenalty:      round3(penalty),
			TopFactors:          topFactors(simE, simN, simD),
		},
	}, nil
}

// Cosine computes cosine similarity between two equal-length vectors.
// A zero-norm vector yields 0.0, never a division error.
func Cosine(a, b []float64) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// keyedCosine aligns both maps on the user map's keys and runs Cosine.
func keyedCosine(user, candidate map[string]float64) float64 {
	if len(user) == 0 {
		return 0
	}
	a := make([]float64, 0, len(user))
	b := make([]float64, 0, len(user))
	for key, v := range user {
		a = append(a, v)
		b = append(b, candidate[key])
	}
	return Cosine(a, b)
}

// tagSum adds the candidate's scores for each listed tag across all four
// scored categories.
func tagSum(candidate profile.TasteProfile, tags []string) float64 {
	var sum float64
	for _, scores := range []map[string]float64{
		candidate.EmotionScores,
		candidate.NarrativeTraits,
		candidate.DirectionMood,
		candidate.CharacterRelationship,
	} {
		for _, tag := range tags {
			if v, ok := scores[tag]; ok {
				sum += v
			}
		}
	}
	return sum
}

func topFactors(simE, simN, simD float64) []string {
	factors := []struct {
		label string
		sim   float64
	}{
		{FactorEmotion, simE},
		{FactorNarrative, simN},
		{FactorEnding, simD},
	}
	// Stable sort keeps input order on ties.
	sort.SliceStable(factors, func(i, j int) bool {
		return factors[i].sim > factors[j].sim
	})
	return []string{factors[0].label, factors[1].label}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
