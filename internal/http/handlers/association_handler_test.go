package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const assocClean = "Hello world! This is a test."

func intp(v int) *int    { return &v }
func boolp(v bool) *bool { return &v }

func saveAssociation(t *testing.T, r *gin.Engine, user, speechID string, pos int, text, emoji string, hdr map[string]string) *SaveEmojiAssociationResponse {
	t.Helper()
	w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", user, SaveEmojiAssociationRequest{
		SpeechID:     speechID,
		OriginalText: text,
		Emoji:        emoji,
		Position:     intp(pos),
		CleanSpeech:  assocClean,
	}, hdr)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d body=%s", w.Code, w.Body.String())
	}
	var resp SaveEmojiAssociationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode save: %v", err)
	}
	return &resp
}

func TestSaveEmojiAssociation_FieldValidation(t *testing.T) {
	r, _ := newTestRouter(t)

	base := func() SaveEmojiAssociationRequest {
		return SaveEmojiAssociationRequest{
			SpeechID:     "s1",
			OriginalText: "Hello",
			Emoji:        "😀",
			Position:     intp(0),
			CleanSpeech:  assocClean,
		}
	}

	cases := []struct {
		name    string
		mutate  func(*SaveEmojiAssociationRequest)
		wantMsg string
	}{
		{"missing speechId", func(r *SaveEmojiAssociationRequest) { r.SpeechID = "" }, "speechId is required"},
		{"missing originalText", func(r *SaveEmojiAssociationRequest) { r.OriginalText = "" }, "originalText is required"},
		{"missing emoji", func(r *SaveEmojiAssociationRequest) { r.Emoji = "" }, "emoji is required"},
		{"missing position", func(r *SaveEmojiAssociationRequest) { r.Position = nil }, "position is required and must be a number"},
		{"negative position", func(r *SaveEmojiAssociationRequest) { r.Position = intp(-1) }, "position must be >= 0"},
		{"missing cleanSpeech", func(r *SaveEmojiAssociationRequest) { r.CleanSpeech = "" }, "cleanSpeech is required"},
	}
	for _, tc := range cases {
		req := base()
		tc.mutate(&req)
		w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", req, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d body=%s", tc.name, w.Code, w.Body.String())
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if er.Message != tc.wantMsg {
			t.Fatalf("%s: message = %q, want %q", tc.name, er.Message, tc.wantMsg)
		}
	}
}

func TestSaveEmojiAssociation_PersistsAndSurfacesInSnapshot(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	resp := saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", nil)
	if resp.AssociationID == "" {
		t.Fatalf("no associationId in response")
	}
	if resp.Message != "Emoji association saved successfully" {
		t.Fatalf("message = %q", resp.Message)
	}

	w := doJSON(t, r, http.MethodGet, "/getSpeech/"+speechID, "u1", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("snapshot status = %d", w.Code)
	}
	var detail SpeechDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(detail.Associations) != 1 {
		t.Fatalf("snapshot associations = %d, want 1", len(detail.Associations))
	}
	a := detail.Associations[0]
	if a.ID != resp.AssociationID || a.OriginalText != "Hello" || a.Emoji != "😀" || a.Position != 0 {
		t.Fatalf("unexpected association: %+v", a)
	}
}

func TestSaveEmojiAssociation_SelectionErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	// Position beyond the clean text.
	w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", SaveEmojiAssociationRequest{
		SpeechID: speechID, OriginalText: "Hello", Emoji: "😀",
		Position: intp(999), CleanSpeech: assocClean,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("out-of-bounds status = %d body=%s", w.Code, w.Body.String())
	}

	// Text that does not match what is at the position.
	w = doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", SaveEmojiAssociationRequest{
		SpeechID: speechID, OriginalText: "world", Emoji: "🌍",
		Position: intp(0), CleanSpeech: assocClean,
	}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatch status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestSaveEmojiAssociation_OwnershipAndExistence(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u2", SaveEmojiAssociationRequest{
		SpeechID: speechID, OriginalText: "Hello", Emoji: "😀",
		Position: intp(0), CleanSpeech: assocClean,
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign owner status = %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", SaveEmojiAssociationRequest{
		SpeechID: uuid.NewString(), OriginalText: "Hello", Emoji: "😀",
		Position: intp(0), CleanSpeech: assocClean,
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing speech status = %d", w.Code)
	}
}

func TestSaveEmojiAssociation_OverlapConflict(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", nil)

	// "Hello world" covers bytes 0..11 and collides with the saved range.
	w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", SaveEmojiAssociationRequest{
		SpeechID: speechID, OriginalText: "Hello world", Emoji: "👋",
		Position: intp(0), CleanSpeech: assocClean,
	}, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("overlap status = %d body=%s", w.Code, w.Body.String())
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Code != ErrCodeOverlap {
		t.Fatalf("code = %q, want %q", er.Code, ErrCodeOverlap)
	}

	// An adjacent range still fits.
	saveAssociation(t, r, "u1", speechID, 6, "world", "🌍", nil)
}

func TestSaveEmojiAssociation_IdempotentReplay(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	key := uuid.NewString()
	hdr := map[string]string{"Idempotency-Key": key}

	first := saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", hdr)
	// The retry would overlap itself; the key collapses it to the stored result.
	second := saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", hdr)
	if first.AssociationID != second.AssociationID {
		t.Fatalf("replay ids differ: %q vs %q", first.AssociationID, second.AssociationID)
	}

	w := doJSON(t, r, http.MethodGet, "/getSpeech/"+speechID, "u1", nil, nil)
	var detail SpeechDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if len(detail.Associations) != 1 {
		t.Fatalf("replay duplicated the association: %d rows", len(detail.Associations))
	}
}

func TestSaveEmojiAssociation_MalformedIdempotencyKey(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)

	w := doJSON(t, r, http.MethodPost, "/saveEmojiAssociation", "u1", SaveEmojiAssociationRequest{
		SpeechID: speechID, OriginalText: "Hello", Emoji: "😀",
		Position: intp(0), CleanSpeech: assocClean,
	}, map[string]string{"Idempotency-Key": "bad key with spaces"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad key status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestUpdateAssociationToggle_Validation(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		name    string
		body    UpdateAssociationToggleRequest
		wantMsg string
	}{
		{"missing speechId", UpdateAssociationToggleRequest{AssociationID: "a1", ShowOriginal: boolp(true)}, "speechId is required"},
		{"missing assocId", UpdateAssociationToggleRequest{SpeechID: "s1", ShowOriginal: boolp(true)}, "assocId is required"},
		{"missing showOriginal", UpdateAssociationToggleRequest{SpeechID: "s1", AssociationID: "a1"}, "showOriginal is required and must be a boolean"},
	}
	for _, tc := range cases {
		w := doJSON(t, r, http.MethodPost, "/updateAssociationToggle", "u1", tc.body, nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d", tc.name, w.Code)
		}
		var er ErrorResponse
		if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if er.Message != tc.wantMsg {
			t.Fatalf("%s: message = %q, want %q", tc.name, er.Message, tc.wantMsg)
		}
	}
}

func TestUpdateAssociationToggle_MirrorsAndDropsStale(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)
	assoc := saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", nil)

	toggle := func(show bool, version int64) int {
		w := doJSON(t, r, http.MethodPost, "/updateAssociationToggle", "u1", UpdateAssociationToggleRequest{
			SpeechID:      speechID,
			AssociationID: assoc.AssociationID,
			ShowOriginal:  boolp(show),
			Version:       version,
		}, nil)
		return w.Code
	}

	if code := toggle(true, 5); code != http.StatusOK {
		t.Fatalf("toggle status = %d", code)
	}
	// A stale version is dropped silently; the call still succeeds.
	if code := toggle(false, 3); code != http.StatusOK {
		t.Fatalf("stale toggle status = %d", code)
	}

	w := doJSON(t, r, http.MethodGet, "/getSpeech/"+speechID, "u1", nil, nil)
	var detail SpeechDetailResponse
	if err := json.Unmarshal(w.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	ts, found := detail.Toggles[assoc.AssociationID]
	if !found {
		t.Fatalf("toggle missing from snapshot: %+v", detail.Toggles)
	}
	if !ts.ShowOriginal || ts.Version != 5 {
		t.Fatalf("toggle state = %+v, want show=true version=5", ts)
	}
}

func TestUpdateAssociationToggle_MembershipErrors(t *testing.T) {
	r, _ := newTestRouter(t)
	speechID := uploadSpeech(t, r, "u1", "Greeting", assocClean)
	assoc := saveAssociation(t, r, "u1", speechID, 0, "Hello", "😀", nil)

	// Unknown association under a real speech.
	w := doJSON(t, r, http.MethodPost, "/updateAssociationToggle", "u1", UpdateAssociationToggleRequest{
		SpeechID: speechID, AssociationID: uuid.NewString(), ShowOriginal: boolp(true),
	}, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown association status = %d", w.Code)
	}

	// Someone else's speech.
	w = doJSON(t, r, http.MethodPost, "/updateAssociationToggle", "u2", UpdateAssociationToggleRequest{
		SpeechID: speechID, AssociationID: assoc.AssociationID, ShowOriginal: boolp(true),
	}, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("foreign owner status = %d", w.Code)
	}
}
