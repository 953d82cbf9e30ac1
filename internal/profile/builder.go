package profile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tastelab/tasted/internal/taxonomy"
)

// TasteProfile is a category→tag→score vector describing either a person's
// taste or an item's characteristics (same shape, different semantics).
//
// Profiles are value objects: built once per input and never mutated.
// Missing tags read as 0.0.
type TasteProfile struct {
	EmotionScores         map[string]float64 `json:"emotion_scores"`
	NarrativeTraits       map[string]float64 `json:"narrative_traits"`
	DirectionMood         map[string]float64 `json:"direction_mood"`
	CharacterRelationship map[string]float64 `json:"character_relationship"`
	EndingPreference      map[string]float64 `json:"ending_preference"`
}

// Item is the catalog metadata a candidate profile is built from.
type Item struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Overview    string   `json:"overview,omitempty"`
	Synopsis    string   `json:"synopsis,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Directors   []string `json:"directors,omitempty"`
	Cast        []string `json:"cast,omitempty"`
	ReleaseYear int      `json:"release_year,omitempty"`
}

// Builder creates taste profiles from text via a Scorer and taxonomy.
// Building never fails; unknown or missing fields score zero.
type Builder struct {
	tax    taxonomy.Taxonomy
	scorer Scorer
}

// NewBuilder constructs a Builder. A nil scorer falls back to the reference
// hash scorer.
func NewBuilder(tax taxonomy.Taxonomy, scorer Scorer) *Builder {
	if scorer == nil {
		scorer = NewHashScorer()
	}
	return &Builder{tax: tax, scorer: scorer}
}

// FromText builds a taste profile from a free-text blob. Deterministic:
// identical text and taxonomy yield bit-identical scores.
func (b *Builder) FromText(text string) TasteProfile {
	return TasteProfile{
		EmotionScores:         b.scoreCategory(text, taxonomy.CategoryEmotion),
		NarrativeTraits:       b.scoreCategory(text, taxonomy.CategoryStoryFlow),
		DirectionMood:         b.scoreCategory(text, taxonomy.CategoryDirectionMood),
		CharacterRelationship: b.scoreCategory(text, taxonomy.CategoryCharacter),
		EndingPreference:      b.scoreEnding(text),
	}
}

// FromItem builds a candidate profile from item metadata by flattening it
// into a text blob and scoring that.
func (b *Builder) FromItem(item Item) TasteProfile {
	return b.FromText(itemText(item))
}

func (b *Builder) scoreCategory(text, category string) map[string]float64 {
	tags := b.tax.Tags(category)
	scores := make(map[string]float64, len(tags))
	for _, tag := range tags {
		scores[tag] = b.scorer.Score(text, tag)
	}
	return scores
}

func (b *Builder) scoreEnding(text string) map[string]float64 {
	scores := make(map[string]float64, len(taxonomy.EndingKeys))
	for _, key := range taxonomy.EndingKeys {
		scores[key] = b.scorer.Score(text, "ending_"+key)
	}
	return scores
}

// itemText flattens item metadata into the text blob used for scoring.
// Field order is fixed so profiles stay deterministic.
func itemText(item Item) string {
	parts := make([]string, 0, 8)
	for _, s := range []string{item.Title, item.Overview, item.Synopsis} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	for _, list := range [][]string{item.Keywords, item.Genres, item.Directors, item.Cast} {
		parts = append(parts, list...)
	}
	return strings.Join(parts, " ")
}

// EmbeddingText builds a short searchable summary naming the top emotion and
// narrative tags of a profile.
func EmbeddingText(title string, p TasteProfile) string {
	return fmt.Sprintf("Title: %s. Emotions: %s. Narrative: %s.",
		title,
		strings.Join(topTags(p.EmotionScores, 3), ", "),
		strings.Join(topTags(p.NarrativeTraits, 3), ", "))
}

func topTags(scores map[string]float64, n int) []string {
	type entry struct {
		tag   string
		score float64
	}
	entries := make([]entry, 0, len(scores))
	for tag, score := range scores {
		entries = append(entries, entry{tag, score})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].score != entries[j].score {
			return entries[i].score > entries[j].score
		}
		return entries[i].tag < entries[j].tag
	})
	if n > len(entries) {
		n = len(entries)
	}
	tags := make([]string, n)
	for i := 0; i < n; i++ {
		tags[i] = entries[i].tag
	}
	return tags
}
