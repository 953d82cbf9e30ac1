package profile

import "github.com/tastelab/tasted/internal/taxonomy"

// DefaultExtractThreshold is the score at which a tag counts as present in
// a profile.
const DefaultExtractThreshold = 0.5

// TagSet carries the tags that adjust affinity independent of raw
// similarity. Tags are deduplicated; order follows taxonomy order but no
// ordering is guaranteed to callers.
type TagSet struct {
	Boost   []string `json:"boost_tags"`
	Dislike []string `json:"dislike_tags"`
}

// ExtractTags returns the tags whose score meets the threshold in any
// category of the profile. Iteration follows taxonomy order so output is
// deterministic.
func (b *Builder) ExtractTags(p TasteProfile, threshold float64) []string {
	var tags []string
	for _, cat := range []struct {
		name   string
		scores map[string]float64
	}{
		{taxonomy.CategoryEmotion, p.EmotionScores},
		{taxonomy.CategoryStoryFlow, p.NarrativeTraits},
		{taxonomy.CategoryDirectionMood, p.DirectionMood},
		{taxonomy.CategoryCharacter, p.CharacterRelationship},
	} {
		for _, tag := range b.tax.Tags(cat.name) {
			if cat.scores[tag] >= threshold {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

// TagSetFromExemplars derives boost and dislike tags from liked and disliked
// exemplar profiles. A tag is retained when it is extracted from at least
// minCount exemplars (minCount < 1 is treated as 1). Tags that appear on
// both sides resolve to dislike.
func (b *Builder) TagSetFromExemplars(liked, disliked []TasteProfile, threshold float64, minCount int) TagSet {
	if minCount < 1 {
		minCount = 1
	}

	boost := b.frequentTags(liked, threshold, minCount)
	dislike := b.frequentTags(disliked, threshold, minCount)

	disliked2 := make(map[string]struct{}, len(dislike))
	for _, t := range dislike {
		disliked2[t] = struct{}{}
	}
	kept := boost[:0]
	for _, t := range boost {
		if _, conflict := disliked2[t]; !conflict {
			kept = append(kept, t)
		}
	}

	return TagSet{Boost: kept, Dislike: dislike}
}

func (b *Builder) frequentTags(exemplars []TasteProfile, threshold float64, minCount int) []string {
	counts := make(map[string]int)
	for _, p := range exemplars {
		for _, tag := range b.ExtractTags(p, threshold) {
			counts[tag]++
		}
	}

	var tags []string
	// Taxonomy order keeps the result stable across runs.
	for _, cat := range []string{
		taxonomy.CategoryEmotion, taxonomy.CategoryStoryFlow,
		taxonomy.CategoryDirectionMood, taxonomy.CategoryCharacter,
	} {
		for _, tag := range b.tax.Tags(cat) {
			if counts[tag] >= minCount {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
