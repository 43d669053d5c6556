package annotate

import (
	"errors"
	"testing"
)

const clean = "Hello world! This is a test."

func mustLocate(t *testing.T, cleanText, selected string) Selection {
	t.Helper()
	sel, ok := Locate(cleanText, selected)
	if !ok {
		t.Fatalf("Locate(%q) failed", selected)
	}
	return sel
}

func TestAdd_ReplacesSelectionWithEmoji(t *testing.T) {
	e := NewEngine(clean)

	a, err := e.Add(mustLocate(t, clean, "Hello"), "😀")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if a.ID == "" || a.Position != 0 || a.Length != 5 || a.OriginalText != "Hello" || a.Emoji != "😀" {
		t.Fatalf("unexpected association: %+v", a)
	}

	if got := Flatten(e.Render()); got != "😀 world! This is a test." {
		t.Fatalf("rendered %q", got)
	}
	if e.CleanText() != clean {
		t.Fatalf("clean text mutated: %q", e.CleanText())
	}
}

func TestToggle_RoundTrip(t *testing.T) {
	e := NewEngine(clean)
	a, err := e.Add(mustLocate(t, clean, "Hello"), "😀")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// New associations show the emoji.
	if e.ShowOriginal(a.ID) {
		t.Fatalf("new association should default to emoji")
	}

	now, err := e.Toggle(a.ID)
	if err != nil || !now {
		t.Fatalf("first toggle = (%v, %v), want (true, nil)", now, err)
	}
	if got := Flatten(e.Render()); got != clean {
		t.Fatalf("after toggle rendered %q, want clean text", got)
	}

	now, err = e.Toggle(a.ID)
	if err != nil || now {
		t.Fatalf("second toggle = (%v, %v), want (false, nil)", now, err)
	}
	if got := Flatten(e.Render()); got != "😀 world! This is a test." {
		t.Fatalf("after toggle back rendered %q", got)
	}
}

func TestToggle_UnknownAssociation(t *testing.T) {
	e := NewEngine(clean)
	if _, err := e.Toggle("nope"); !errors.Is(err, ErrUnknownAssociation) {
		t.Fatalf("err = %v, want ErrUnknownAssociation", err)
	}
}

func TestAdd_RejectsOverlap(t *testing.T) {
	e := NewEngine(clean)
	if _, err := e.Add(mustLocate(t, clean, "world"), "🌍"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	cases := []Selection{
		{Start: 6, End: 11, Text: "world"},  // identical range
		{Start: 4, End: 8, Text: "o wo"},    // crosses the left edge
		{Start: 9, End: 13, Text: "ld! "},   // crosses the right edge
		{Start: 7, End: 10, Text: "orl"},    // fully inside
		{Start: 0, End: 28, Text: clean},    // envelops
	}
	for _, sel := range cases {
		if _, err := e.Add(sel, "💥"); !errors.Is(err, ErrOverlap) {
			t.Fatalf("Add(%+v) err = %v, want ErrOverlap", sel, err)
		}
	}

	// Adjacent ranges do not overlap.
	if _, err := e.Add(Selection{Start: 11, End: 12, Text: "!"}, "❗"); err != nil {
		t.Fatalf("adjacent Add: %v", err)
	}
}

func TestAdd_RejectsInvalidSelections(t *testing.T) {
	e := NewEngine(clean)

	cases := []struct {
		name string
		sel  Selection
	}{
		{"whitespace only", Selection{Start: 5, End: 6, Text: " "}},
		{"mismatched text", Selection{Start: 0, End: 5, Text: "Howdy"}},
		{"negative start", Selection{Start: -1, End: 4, Text: "Hello"}},
		{"end past text", Selection{Start: 24, End: 30, Text: "test.."}},
		{"inconsistent end", Selection{Start: 0, End: 4, Text: "Hello"}},
	}
	for _, tc := range cases {
		if _, err := e.Add(tc.sel, "😀"); !errors.Is(err, ErrInvalidSelection) {
			t.Fatalf("%s: err = %v, want ErrInvalidSelection", tc.name, err)
		}
	}

	if _, err := e.Add(mustLocate(t, clean, "Hello"), "  "); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("blank emoji: want ErrInvalidSelection")
	}
}

func TestRender_MultipleAssociationsWithGaps(t *testing.T) {
	e := NewEngine(clean)
	if _, err := e.Add(mustLocate(t, clean, "world"), "🌍"); err != nil {
		t.Fatalf("add world: %v", err)
	}
	if _, err := e.Add(mustLocate(t, clean, "test"), "🧪"); err != nil {
		t.Fatalf("add test: %v", err)
	}
	if _, err := e.Add(mustLocate(t, clean, "Hello"), "😀"); err != nil {
		t.Fatalf("add Hello: %v", err)
	}

	if got := Flatten(e.Render()); got != "😀 🌍! This is a 🧪." {
		t.Fatalf("rendered %q", got)
	}

	// Associations come back in position order regardless of insert order.
	assocs := e.Associations()
	if len(assocs) != 3 || assocs[0].OriginalText != "Hello" || assocs[1].OriginalText != "world" || assocs[2].OriginalText != "test" {
		t.Fatalf("unexpected order: %+v", assocs)
	}

	// Replacement segments carry their association; gaps do not.
	segs := e.Render()
	var replacements int
	for _, s := range segs {
		if s.Association != nil {
			replacements++
		}
	}
	if replacements != 3 {
		t.Fatalf("expected 3 replacement segments, got %d (%d total)", replacements, len(segs))
	}
}

func TestRender_MultiByteCleanText(t *testing.T) {
	text := "héllo wörld"
	e := NewEngine(text)

	sel, ok := Locate(text, "wörld")
	if !ok {
		t.Fatalf("Locate failed")
	}
	if sel.Start != 7 { // byte offset, not rune offset
		t.Fatalf("Start = %d, want byte offset 7", sel.Start)
	}
	if _, err := e.Add(sel, "🌍"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if got := Flatten(e.Render()); got != "héllo 🌍" {
		t.Fatalf("rendered %q", got)
	}
}

func TestNewEngineWithState_SortsAndValidates(t *testing.T) {
	a1 := Association{ID: "a1", Position: 13, Length: 4, OriginalText: "This", Emoji: "👉"}
	a2 := Association{ID: "a2", Position: 0, Length: 5, OriginalText: "Hello", Emoji: "😀"}

	e, err := NewEngineWithState(clean, []Association{a1, a2}, map[string]bool{"a1": true})
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	got := e.Associations()
	if got[0].ID != "a2" || got[1].ID != "a1" {
		t.Fatalf("not sorted by position: %+v", got)
	}
	if out := Flatten(e.Render()); out != "😀 world! This is a test." {
		t.Fatalf("rendered %q", out)
	}

	// Overlapping persisted state is rejected.
	bad := Association{ID: "a3", Position: 3, Length: 5, OriginalText: "lo wo", Emoji: "💥"}
	if _, err := NewEngineWithState(clean, []Association{a2, bad}, nil); !errors.Is(err, ErrOverlap) {
		t.Fatalf("err = %v, want ErrOverlap", err)
	}

	// State that no longer matches the clean text is rejected.
	stale := Association{ID: "a4", Position: 0, Length: 5, OriginalText: "Howdy", Emoji: "💥"}
	if _, err := NewEngineWithState(clean, []Association{stale}, nil); !errors.Is(err, ErrInvalidSelection) {
		t.Fatalf("err = %v, want ErrInvalidSelection", err)
	}
}

func TestAccessors_ReturnCopies(t *testing.T) {
	e := NewEngine(clean)
	a, err := e.Add(mustLocate(t, clean, "Hello"), "😀")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	assocs := e.Associations()
	assocs[0].Emoji = "💣"
	if e.Associations()[0].Emoji != "😀" {
		t.Fatalf("Associations returned internal slice")
	}

	tg := e.Toggles()
	tg[a.ID] = true
	if e.ShowOriginal(a.ID) {
		t.Fatalf("Toggles returned internal map")
	}
}
