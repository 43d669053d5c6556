// Selection-to-offset mapping.
//
// The browser original re-derived a selection's position by searching for
// the highlighted text in the clean text and always binding to the first
// occurrence, which is ambiguous when the substring repeats. That legacy
// behavior is preserved as the default (Locate); LocateAll exposes every
// occurrence so callers that know where the user actually clicked can
// disambiguate instead of silently accepting the first match.
package annotate

import "strings"

// Selection is a resolved highlight: a byte range [Start, End) of the clean
// text and the exact substring it covers.
type Selection struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// Locate resolves a highlighted substring to its first occurrence in clean.
// Empty or whitespace-only selections, and substrings that do not occur,
// yield no selection (ok = false).
//
// When selected occurs more than once, the first occurrence wins regardless
// of which instance the user highlighted. Use LocateAll to disambiguate.
func Locate(clean, selected string) (Selection, bool) {
	if strings.TrimSpace(selected) == "" {
		return Selection{}, false
	}
	start := strings.Index(clean, selected)
	if start < 0 {
		return Selection{}, false
	}
	return Selection{Start: start, End: start + len(selected), Text: selected}, true
}

// LocateAll returns every non-overlapping occurrence of selected in clean,
// in position order. Empty or whitespace-only selections yield nil.
func LocateAll(clean, selected string) []Selection {
	if strings.TrimSpace(selected) == "" {
		return nil
	}
	var out []Selection
	off := 0
	for {
		i := strings.Index(clean[off:], selected)
		if i < 0 {
			return out
		}
		start := off + i
		out = append(out, Selection{Start: start, End: start + len(selected), Text: selected})
		off = start + len(selected)
	}
}
