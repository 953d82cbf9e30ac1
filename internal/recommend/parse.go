package recommend

import (
	"regexp"

	"github.com/goccy/go-json"
)

var (
	selectedIDsFragment = regexp.MustCompile(`\{[^{}]*"selected_ids"[^{}]*\}`)
	idMarker            = regexp.MustCompile(`\[ID:\s*([^\]\s]+)\]`)
)

// extractSelectedIDs pulls the generator's selection out of free-form text.
// It tries, in order: a {"selected_ids": [...]} JSON fragment, then inline
// [ID: x] markers. The second return is false when neither yields an ID,
// which tells the caller to fall back to retrieval order.
//
// IDs are returned as-is; allowlist filtering against the pool happens in
// the caller so that a drop can be logged with context.
func extractSelectedIDs(text string) ([]string, bool) {
	if frag := selectedIDsFragment.FindString(text); frag != "" {
		var payload struct {
			SelectedIDs []json.RawMessage `json:"selected_ids"`
		}
		if err := json.Unmarshal([]byte(frag), &payload); err == nil && len(payload.SelectedIDs) > 0 {
			ids := make([]string, 0, len(payload.SelectedIDs))
			for _, raw := range payload.SelectedIDs {
				if id := decodeID(raw); id != "" {
					ids = append(ids, id)
				}
			}
			if len(ids) > 0 {
				return ids, true
			}
		}
	}

	if matches := idMarker.FindAllStringSubmatch(text, -1); len(matches) > 0 {
		ids := make([]string, 0, len(matches))
		seen := make(map[string]bool, len(matches))
		for _, m := range matches {
			if !seen[m[1]] {
				seen[m[1]] = true
				ids = append(ids, m[1])
			}
		}
		return ids, true
	}

	return nil, false
}

// decodeID accepts both string and numeric JSON elements, since generators
// mix the two freely.
func decodeID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}
