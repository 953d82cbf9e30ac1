// Package profile converts free text and item metadata into taste profiles
// over the taxonomy vocabularies.
package profile

import (
	"crypto/sha256"
	"encoding/hex"
	"math"
	"strconv"
)

// Scorer produces a per-tag affinity score for an input text.
//
// Implementations must be deterministic for identical input, bounded to
// [0,1], and independent per tag. A production deployment substitutes a real
// embedding or classifier model here; downstream components only see the
// interface.
type Scorer interface {
	Score(input, tag string) float64
}

// HashScorer is the reference Scorer: a stable hash of input and tag. It
// carries no semantic signal but satisfies the determinism and bounds
// contract, which is what the matching pipeline depends on.
type HashScorer struct{}

// NewHashScorer returns the reference hash-based scorer.
func NewHashScorer() *HashScorer {
	return &HashScorer{}
}

// Score derives a score in [0,1] from sha256(input || "||" || tag):
// the first 8 hex digits interpreted as a 32-bit integer, normalized and
// rounded to 3 decimals.
func (s *HashScorer) Score(input, tag string) float64 {
	sum := sha256.Sum256([]byte(input + "||" + tag))
	hexDigest := hex.EncodeToString(sum[:])
	v, _ := strconv.ParseUint(hexDigest[:8], 16, 64)
	return round3(float64(v) / float64(0xFFFFFFFF))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

var _ Scorer = (*HashScorer)(nil)
