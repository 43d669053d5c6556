// Package annotate implements the annotation engine: mapping a highlighted
// substring of a speech's clean text to a byte range, recording emoji
// associations over such ranges, toggling each association between its
// emoji and the original text, and rendering the display string by
// overlaying the associations on the clean text.
//
// The engine is pure state-plus-functions: it performs no I/O and knows
// nothing about persistence or transport. Callers (the CLI session, the
// backend service) snapshot its state and store or mirror it as they see
// fit.
//
// Coordinate space: all positions and lengths are byte offsets into the
// clean text. The clean text is immutable for the lifetime of an engine, so
// offsets remain stable no matter how many associations accumulate.
package annotate

import (
	"errors"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Engine errors returned for predictable invariant violations.
var (
	// ErrOverlap is returned when a new association's range intersects an
	// existing one. Overlapping associations would corrupt rendering, so
	// the precondition is checked explicitly rather than left undefined.
	ErrOverlap = errors.New("association overlaps an existing association")

	// ErrInvalidSelection is returned when a selection is empty, out of
	// bounds, or does not match the clean text at its claimed position.
	ErrInvalidSelection = errors.New("selection does not match clean text")

	// ErrUnknownAssociation is returned by Toggle for an unknown ID.
	ErrUnknownAssociation = errors.New("unknown association")
)

// Association binds a byte range of the clean text to a replacement emoji.
type Association struct {
	ID           string `json:"id"`
	Position     int    `json:"position"`
	Length       int    `json:"length"`
	OriginalText string `json:"originalText"`
	Emoji        string `json:"emoji"`
}

// End returns the exclusive end offset of the association's range.
func (a Association) End() int { return a.Position + a.Length }

// Segment is one piece of the rendered display string: either plain clean
// text (Association nil) or a replacement produced by an association. For
// replacement segments, Text already reflects the association's toggle.
type Segment struct {
	Text        string
	Association *Association
}

// Flatten concatenates a rendered segment sequence into the display string.
func Flatten(segments []Segment) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteString(s.Text)
	}
	return b.String()
}

// Engine holds the annotation state for a single speech: the immutable
// clean text, the associations in ascending position order, and the
// per-association display toggles (false = show emoji, the default).
//
// Engine is not safe for concurrent use; the annotation flow is a
// single-user, single-goroutine interaction.
type Engine struct {
	clean        string
	assocs       []Association
	showOriginal map[string]bool
}

// NewEngine returns an empty engine over the given clean text.
func NewEngine(clean string) *Engine {
	return &Engine{
		clean:        clean,
		showOriginal: make(map[string]bool),
	}
}

// NewEngineWithState restores an engine from previously persisted state.
// Associations may arrive in any order; they are sorted by position. The
// restored set must satisfy the engine's invariants (in-bounds, matching
// original text, non-overlapping), otherwise an error is returned and the
// engine is not constructed.
func NewEngineWithState(clean string, assocs []Association, toggles map[string]bool) (*Engine, error) {
	e := NewEngine(clean)
	sorted := make([]Association, len(assocs))
	copy(sorted, assocs)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	prevEnd := 0
	for _, a := range sorted {
		if a.Position < 0 || a.End() > len(clean) || a.Length != len(a.OriginalText) ||
			clean[a.Position:a.End()] != a.OriginalText {
			return nil, ErrInvalidSelection
		}
		if a.Position < prevEnd {
			return nil, ErrOverlap
		}
		prevEnd = a.End()
	}
	e.assocs = sorted
	for id, v := range toggles {
		e.showOriginal[id] = v
	}
	return e, nil
}

// CleanText returns the immutable clean text.
func (e *Engine) CleanText() string { return e.clean }

// Associations returns a copy of the association set in position order.
func (e *Engine) Associations() []Association {
	out := make([]Association, len(e.assocs))
	copy(out, e.assocs)
	return out
}

// Toggles returns a copy of the toggle map.
func (e *Engine) Toggles() map[string]bool {
	out := make(map[string]bool, len(e.showOriginal))
	for k, v := range e.showOriginal {
		out[k] = v
	}
	return out
}

// Add records a new association replacing sel with emoji. It allocates a
// UUID, validates the selection against the clean text, rejects overlap
// with ErrOverlap, inserts the association keeping ascending position
// order, and defaults the toggle to "show emoji".
func (e *Engine) Add(sel Selection, emoji string) (Association, error) {
	if strings.TrimSpace(emoji) == "" {
		return Association{}, ErrInvalidSelection
	}
	if err := e.validate(sel); err != nil {
		return Association{}, err
	}

	a := Association{
		ID:           uuid.NewString(),
		Position:     sel.Start,
		Length:       len(sel.Text),
		OriginalText: sel.Text,
		Emoji:        emoji,
	}

	// Insert preserving ascending position order.
	i := sort.Search(len(e.assocs), func(i int) bool { return e.assocs[i].Position > a.Position })
	e.assocs = append(e.assocs, Association{})
	copy(e.assocs[i+1:], e.assocs[i:])
	e.assocs[i] = a

	e.showOriginal[a.ID] = false
	return a, nil
}

// validate checks a selection against the clean text and the existing
// association set.
func (e *Engine) validate(sel Selection) error {
	if strings.TrimSpace(sel.Text) == "" {
		return ErrInvalidSelection
	}
	if sel.Start < 0 || sel.End != sel.Start+len(sel.Text) || sel.End > len(e.clean) {
		return ErrInvalidSelection
	}
	if e.clean[sel.Start:sel.End] != sel.Text {
		return ErrInvalidSelection
	}
	for _, a := range e.assocs {
		if sel.Start < a.End() && a.Position < sel.End {
			return ErrOverlap
		}
	}
	return nil
}

// Toggle flips the display flag for the association with the given ID and
// returns the new value (true = show original text).
func (e *Engine) Toggle(id string) (bool, error) {
	for _, a := range e.assocs {
		if a.ID == id {
			e.showOriginal[id] = !e.showOriginal[id]
			return e.showOriginal[id], nil
		}
	}
	return false, ErrUnknownAssociation
}

// ShowOriginal reports the current display flag for the given association.
func (e *Engine) ShowOriginal(id string) bool { return e.showOriginal[id] }

// Render walks the associations in position order over the clean text and
// emits a plain segment for every gap before an association, a replacement
// segment (emoji or original text per its toggle) for each association,
// and a trailing plain segment after the last one. The result is recomputed
// on every call; the engine retains no rendered state.
//
// Cost is O(len(clean) + len(associations)).
func (e *Engine) Render() []Segment {
	segments := make([]Segment, 0, 2*len(e.assocs)+1)
	cursor := 0
	for i := range e.assocs {
		a := e.assocs[i]
		if a.Position > cursor {
			segments = append(segments, Segment{Text: e.clean[cursor:a.Position]})
		}
		text := a.Emoji
		if e.showOriginal[a.ID] {
			text = a.OriginalText
		}
		segments = append(segments, Segment{Text: text, Association: &e.assocs[i]})
		cursor = a.End()
	}
	if cursor < len(e.clean) {
		segments = append(segments, Segment{Text: e.clean[cursor:]})
	}
	return segments
}
