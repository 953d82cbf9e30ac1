// Package taxonomy loads the fixed category/tag vocabularies shared by the
// profile builder, similarity scorer, and candidate index.
//
// The taxonomy is loaded once at process start and treated as read-only for
// the lifetime of the process.
package taxonomy

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

// Category names consulted by the core.
const (
	CategoryEmotion       = "emotion"
	CategoryStoryFlow     = "story_flow"
	CategoryDirectionMood = "direction_mood"
	CategoryCharacter     = "character_relationship"
)

// EndingKeys are the fixed ending-preference dimensions, in canonical order.
var EndingKeys = []string{"happy", "open", "bittersweet"}

// Category is one vocabulary entry: a human description plus its tag list.
type Category struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

// Taxonomy maps category name to its vocabulary.
type Taxonomy map[string]Category

// Load reads a taxonomy JSON file. A missing or malformed file is not an
// error: the compiled-in default is returned and a warning is logged.
func Load(path string, logger *zap.Logger) Taxonomy {
	if logger == nil {
		logger = zap.NewNop()
	}
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("taxonomy file unavailable, using built-in default",
			zap.String("path", path), zap.Error(err))
		return Default()
	}

	var tax Taxonomy
	if err := json.Unmarshal(data, &tax); err != nil {
		logger.Warn("taxonomy file malformed, using built-in default",
			zap.String("path", path), zap.Error(err))
		return Default()
	}
	if err := tax.Validate(); err != nil {
		logger.Warn("taxonomy file invalid, using built-in default",
			zap.String("path", path), zap.Error(err))
		return Default()
	}
	return tax
}

// Validate checks the taxonomy invariants: every category has a non-empty
// tag list with no duplicate tags.
func (t Taxonomy) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("taxonomy has no categories")
	}
	for name, cat := range t {
		if len(cat.Tags) == 0 {
			return fmt.Errorf("category %q has no tags", name)
		}
		seen := make(map[string]struct{}, len(cat.Tags))
		for _, tag := range cat.Tags {
			if _, dup := seen[tag]; dup {
				return fmt.Errorf("category %q has duplicate tag %q", name, tag)
			}
			seen[tag] = struct{}{}
		}
	}
	return nil
}

// Tags returns the tag list for a category. Unknown categories yield an
// empty list, never an error.
func (t Taxonomy) Tags(category string) []string {
	return t[category].Tags
}
