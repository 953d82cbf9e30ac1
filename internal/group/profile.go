package group

import (
	"fmt"

	"github.com/tastelab/tasted/internal/profile"
	"github.com/tastelab/tasted/internal/taxonomy"
)

// AverageProfiles folds member profiles into one group-level profile by
// averaging every tag score over the taxonomy's key order. The result feeds
// group-level retrieval queries.
func AverageProfiles(profiles []profile.TasteProfile, tax taxonomy.Taxonomy) (profile.TasteProfile, error) {
	if len(profiles) == 0 {
		return profile.TasteProfile{}, fmt.Errorf("no profiles to average")
	}

	avg := profile.TasteProfile{
		EmotionScores:         averageCategory(profiles, tax.Tags(taxonomy.CategoryEmotion), func(p profile.TasteProfile) map[string]float64 { return p.EmotionScores }),
		NarrativeTraits:       averageCategory(profiles, tax.Tags(taxonomy.CategoryStoryFlow), func(p profile.TasteProfile) map[string]float64 { return p.NarrativeTraits }),
		DirectionMood:         averageCategory(profiles, tax.Tags(taxonomy.CategoryDirectionMood), func(p profile.TasteProfile) map[string]float64 { return p.DirectionMood }),
		CharacterRelationship: averageCategory(profiles, tax.Tags(taxonomy.CategoryCharacter), func(p profile.TasteProfile) map[string]float64 { return p.CharacterRelationship }),
		EndingPreference:      averageCategory(profiles, taxonomy.EndingKeys, func(p profile.TasteProfile) map[string]float64 { return p.EndingPreference }),
	}
	return avg, nil
}

func averageCategory(profiles []profile.TasteProfile, keys []string, pick func(profile.TasteProfile) map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(keys))
	denom := float64(len(profiles))
	for _, key := range keys {
		var sum float64
		for _, p := range profiles {
			sum += pick(p)[key]
		}
		out[key] = sum / denom
	}
	return out
}
