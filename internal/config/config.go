// Package config provides configuration loading for tasted.
//
// Configuration merges three layers, lowest to highest precedence:
// hardcoded defaults, a YAML config file, and TASTED_-prefixed environment
// variables.
package config

import (
	"errors"
	"fmt"

	"github.com/tastelab/tasted/internal/generate"
	"github.com/tastelab/tasted/internal/group"
	"github.com/tastelab/tasted/internal/logging"
	"github.com/tastelab/tasted/internal/similarity"
)

// Config holds the complete tasted configuration.
type Config struct {
	Logging   logging.Config  `koanf:"logging"`
	Taxonomy  TaxonomyConfig  `koanf:"taxonomy"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Group     GroupConfig     `koanf:"group"`
	Index     IndexConfig     `koanf:"index"`
	Generator GeneratorConfig `koanf:"generator"`
	Recommend RecommendConfig `koanf:"recommend"`
}

// TaxonomyConfig locates the tag vocabulary.
type TaxonomyConfig struct {
	// Path to a YAML taxonomy file. Empty means the built-in vocabulary.
	Path string `koanf:"path"`
}

// ScoringConfig holds satisfaction-scoring knobs.
type ScoringConfig struct {
	// Weights per similarity dimension: emotion, narrative, ending.
	Weights       map[string]float64 `koanf:"weights"`
	PenaltyWeight float64            `koanf:"penalty_weight"`
	BoostWeight   float64            `koanf:"boost_weight"`
}

// GroupConfig holds group-aggregation settings.
type GroupConfig struct {
	Strategy string `koanf:"strategy"`
	Workers  int    `koanf:"workers"`
}

// IndexConfig holds candidate-index settings.
type IndexConfig struct {
	// SnapshotPath is where index snapshots are cached. Empty disables
	// snapshot reuse.
	SnapshotPath string `koanf:"snapshot_path"`
	Workers      int    `koanf:"workers"`
}

// GeneratorConfig wraps the LLM client settings with an enable switch.
type GeneratorConfig struct {
	Enabled bool `koanf:"enabled"`

	generate.ClientConfig `koanf:",squash"`
}

// RecommendConfig holds recommendation sizing.
type RecommendConfig struct {
	TopK     int `koanf:"top_k"`
	PoolSize int `koanf:"pool_size"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		Logging: *logging.NewDefaultConfig(),
		Scoring: ScoringConfig{
			Weights:       similarity.DefaultWeights(),
			PenaltyWeight: similarity.DefaultPenaltyWeight,
			BoostWeight:   similarity.DefaultBoostWeight,
		},
		Group: GroupConfig{
			Strategy: string(group.StrategyMean),
		},
		Generator: GeneratorConfig{
			ClientConfig: generate.ClientConfig{
				BaseURL: generate.DefaultBaseURL,
				Model:   generate.DefaultModel,
			},
		},
		Recommend: RecommendConfig{
			TopK:     5,
			PoolSize: 20,
		},
	}
}

// Validate rejects configurations the scoring and aggregation layers would
// refuse at request time. Config errors are fatal at startup, not deferred.
func (c *Config) Validate() error {
	var errs []error

	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("logging: %w", err))
	}

	for _, key := range []string{similarity.FactorEmotion, similarity.FactorNarrative, similarity.FactorEnding} {
		w, ok := c.Scoring.Weights[key]
		if !ok {
			errs = append(errs, fmt.Errorf("scoring weights: missing %q", key))
			continue
		}
		if w < 0 {
			errs = append(errs, fmt.Errorf("scoring weights: %q must be non-negative, got %v", key, w))
		}
	}
	if c.Scoring.PenaltyWeight < 0 {
		errs = append(errs, fmt.Errorf("scoring penalty_weight must be non-negative, got %v", c.Scoring.PenaltyWeight))
	}
	if c.Scoring.BoostWeight < 0 {
		errs = append(errs, fmt.Errorf("scoring boost_weight must be non-negative, got %v", c.Scoring.BoostWeight))
	}

	if _, err := group.ParseStrategy(c.Group.Strategy); err != nil {
		errs = append(errs, fmt.Errorf("group strategy: %w", err))
	}

	if c.Generator.Enabled && c.Generator.APIKey == "" {
		errs = append(errs, errors.New("generator enabled but api_key is empty"))
	}

	if c.Recommend.TopK <= 0 {
		errs = append(errs, fmt.Errorf("recommend top_k must be positive, got %d", c.Recommend.TopK))
	}
	if c.Recommend.PoolSize < c.Recommend.TopK {
		errs = append(errs, fmt.Errorf("recommend pool_size (%d) must be at least top_k (%d)", c.Recommend.PoolSize, c.Recommend.TopK))
	}

	return errors.Join(errs...)
}

// ScoringOptions converts the config into scorer options.
func (c *Config) ScoringOptions() *similarity.Options {
	return &similarity.Options{
		Weights:       c.Scoring.Weights,
		PenaltyWeight: c.Scoring.PenaltyWeight,
		BoostWeight:   c.Scoring.BoostWeight,
	}
}
