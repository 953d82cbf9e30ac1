package explain

import (
	"regexp"
	"sort"
	"strings"
)

// factorHint carries what an explanation must mention for one top factor:
// the factor's display phrase and a concrete tag-derived phrase the reader
// would recognize, plus the markers used to check coverage.
type factorHint struct {
	display string
	phrase  string
	markers []string
}

var factorDisplay = map[string]string{
	"emotion":   "emotional tone",
	"narrative": "narrative style",
	"ending":    "ending preference",
}

// factorKeywords maps each similarity factor to tag-text fragments used to
// find a matching liked or disliked tag for it.
var factorKeywords = map[string][]string{
	"emotion": {
		"moving", "heartwarming", "sad", "tense", "thrilling", "scary",
		"funny", "romantic", "gloomy", "calm", "healing", "lonely",
		"uplifting", "dark", "wistful", "cozy", "bleak", "tender",
	},
	"narrative": {
		"twist", "paced", "slow burn", "nonlinear", "foreshadow",
		"mystery", "character study", "ensemble", "dialogue", "plot",
	},
	"ending": {
		"happy", "open", "bittersweet", "ending", "ambiguous", "tragic",
	},
}

// factorHints builds the hint for each top factor in order. A matching
// liked tag is preferred over a disliked one; with neither, the factor's
// display phrase stands alone.
func factorHints(in Input) []factorHint {
	hints := make([]factorHint, 0, len(in.Result.Breakdown.TopFactors))
	for _, f := range in.Result.Breakdown.TopFactors {
		display, ok := factorDisplay[f]
		if !ok {
			display = f
		}
		h := factorHint{display: display, phrase: display, markers: []string{display}}
		if tag := pickTagForFactor(f, in.LikedTags); tag != "" {
			h.phrase = "its " + tag + " quality"
			h.markers = append(h.markers, tag)
		} else if tag := pickTagForFactor(f, in.DislikedTags); tag != "" {
			h.phrase = "its " + tag + " streak"
			h.markers = append(h.markers, tag)
		}
		hints = append(hints, h)
	}
	return hints
}

// hintList renders hints as a readable "x and y" phrase list.
func hintList(hints []factorHint) string {
	if len(hints) == 0 {
		return "its overall profile"
	}
	phrases := make([]string, 0, len(hints))
	for _, h := range hints {
		phrases = append(phrases, h.phrase)
	}
	return strings.Join(phrases, " and ")
}

// pickTagForFactor returns the first tag from pool whose text matches one
// of the factor's keywords, scanning pool in a stable sorted order.
func pickTagForFactor(factor string, pool []string) string {
	kws, ok := factorKeywords[factor]
	if !ok || len(pool) == 0 {
		return ""
	}
	sorted := make([]string, len(pool))
	copy(sorted, pool)
	sort.Strings(sorted)
	for _, tag := range sorted {
		lower := strings.ToLower(tag)
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				return tag
			}
		}
	}
	return ""
}

var (
	sentenceEnd     = regexp.MustCompile(`[.!?]\s+`)
	probabilityLead = regexp.MustCompile(`(?i)\d+(\.\d+)?\s*%|\bpercent\b|\bprobability\b|\bchance\b|\blikelihood\b`)
)

// stripProbabilityOpener drops the first sentence when it restates the
// match probability, which generators tend to do despite instructions.
// Anything else is left intact.
func stripProbabilityOpener(text string) string {
	text = strings.TrimSpace(text)
	loc := sentenceEnd.FindStringIndex(text)
	if loc == nil {
		return text
	}
	first := text[:loc[0]+1]
	if !probabilityLead.MatchString(first) {
		return text
	}
	rest := strings.TrimSpace(text[loc[1]:])
	if rest == "" {
		return text
	}
	return rest
}

// enforceFactorCoverage appends a templated supplement naming every hint
// the generated text failed to mention, so both top factors always surface.
func enforceFactorCoverage(text string, hints []factorHint) string {
	lower := strings.ToLower(text)
	var missing []string
	for _, h := range hints {
		covered := false
		for _, m := range h.markers {
			if strings.Contains(lower, strings.ToLower(m)) {
				covered = true
				break
			}
		}
		if !covered {
			missing = append(missing, h.phrase)
		}
	}
	if len(missing) == 0 {
		return text
	}
	text = strings.TrimSpace(text)
	if text != "" && !strings.HasSuffix(text, ".") && !strings.HasSuffix(text, "!") && !strings.HasSuffix(text, "?") {
		text += "."
	}
	return text + " In particular, " + strings.Join(missing, " and ") + " matched your taste closely."
}
