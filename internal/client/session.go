// Session: the explicit unit of client state.
//
// A Session binds a user identity (bearer token), the API client, and the
// local state store. All annotation flows are local-first: the local state
// is updated and persisted first, then mirrored to the backend. Mirror
// failures degrade to a warning; the local copy stays authoritative.
package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/trippingly/go-speech-backend/internal/annotate"
	"github.com/trippingly/go-speech-backend/internal/domain"
)

// ErrAmbiguousSelection is returned by Annotate when the target text occurs
// more than once and no occurrence was chosen.
var ErrAmbiguousSelection = errors.New("selected text occurs more than once; pick an occurrence")

// Session is an authenticated client session with local annotation state.
// It is not safe for concurrent use; the annotation flow is a single-user
// interaction.
type Session struct {
	UserID string

	api   *Client
	store *StateStore
	log   zerolog.Logger
}

// NewSession opens a session against baseURL with the given bearer token,
// persisting annotation state under stateDir (DefaultStateDir when empty).
func NewSession(baseURL, token, userID, stateDir string) (*Session, error) {
	if stateDir == "" {
		d, err := DefaultStateDir()
		if err != nil {
			return nil, err
		}
		stateDir = d
	}
	store, err := NewStateStore(stateDir)
	if err != nil {
		return nil, err
	}
	return &Session{
		UserID: userID,
		api:    NewClient(baseURL, token),
		store:  store,
		log:    log.With().Str("component", "session").Str("user_id", userID).Logger(),
	}, nil
}

// API exposes the underlying API client for operations that need no local
// state (listing, raw fetches).
func (s *Session) API() *Client { return s.api }

// Store exposes the underlying local state store.
func (s *Session) Store() *StateStore { return s.store }

// Close ends the session. The bearer token is dropped so the session
// object cannot issue further authenticated calls; local state stays on
// disk for the next session.
func (s *Session) Close() error {
	s.api.SetToken("")
	return nil
}

// Upload stores a new speech on the backend and seeds the local state with
// its clean text.
func (s *Session) Upload(ctx context.Context, name, content string) (string, error) {
	id, err := s.api.UploadSpeech(ctx, name, content)
	if err != nil {
		return "", err
	}
	st := &SpeechState{SpeechID: id, Name: name, CleanText: content}
	if err := s.store.Save(st); err != nil {
		s.log.Warn().Err(err).Str("speech_id", id).Msg("seed local state failed")
	}
	return id, nil
}

// Speeches lists the user's speeches from the backend.
func (s *Session) Speeches(ctx context.Context) ([]domain.Speech, error) {
	return s.api.ListSpeeches(ctx)
}

// Delete removes a speech on the backend and drops its local state.
func (s *Session) Delete(ctx context.Context, speechID string) error {
	if err := s.api.DeleteSpeech(ctx, speechID); err != nil {
		return err
	}
	return s.store.Delete(speechID)
}

// Open returns the annotation engine and persisted state for a speech.
// Missing local state is hydrated from the backend snapshot, so a fresh
// device recovers the associations and toggles it last mirrored.
func (s *Session) Open(ctx context.Context, speechID string) (*annotate.Engine, *SpeechState, error) {
	st, err := s.store.Load(speechID)
	if errors.Is(err, ErrNoState) {
		st, err = s.hydrate(ctx, speechID)
	}
	if err != nil {
		return nil, nil, err
	}

	toggles := make(map[string]bool, len(st.Toggles))
	for id, t := range st.Toggles {
		toggles[id] = t.ShowOriginal
	}
	eng, err := annotate.NewEngineWithState(st.CleanText, st.Associations, toggles)
	if err != nil {
		return nil, nil, fmt.Errorf("restore annotation state: %w", err)
	}
	return eng, st, nil
}

// hydrate rebuilds local state from the backend snapshot. Backend
// association IDs double as local IDs for hydrated state, so RemoteIDs
// maps each ID to itself.
func (s *Session) hydrate(ctx context.Context, speechID string) (*SpeechState, error) {
	detail, err := s.api.GetSpeech(ctx, speechID)
	if err != nil {
		return nil, err
	}

	st := &SpeechState{
		SpeechID:  speechID,
		Name:      detail.Name,
		CleanText: detail.Content,
	}
	st.ensureMaps()
	for _, a := range detail.Associations {
		st.Associations = append(st.Associations, annotate.Association{
			ID:           a.ID,
			Position:     a.Position,
			Length:       a.Length,
			OriginalText: a.OriginalText,
			Emoji:        a.Emoji,
		})
		st.RemoteIDs[a.ID] = a.ID
	}
	for id, t := range detail.Toggles {
		st.Toggles[id] = ToggleState{ShowOriginal: t.ShowOriginal, Version: t.Version}
	}
	if err := s.store.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}

// Annotate replaces an occurrence of text with emoji in the speech.
//
// occurrence selects which instance of a repeated substring is meant:
// 0 binds to the first occurrence (the legacy behavior when the text is
// unique), 1..n selects explicitly; any other value for a repeated
// substring yields ErrAmbiguousSelection.
//
// The association is persisted locally first, then mirrored to the
// backend with the local ID as idempotency key. A mirror failure is
// logged as a warning and the local state stays authoritative.
func (s *Session) Annotate(ctx context.Context, speechID, text, emoji string, occurrence int) (annotate.Association, error) {
	eng, st, err := s.Open(ctx, speechID)
	if err != nil {
		return annotate.Association{}, err
	}

	sel, err := s.resolve(eng.CleanText(), text, occurrence)
	if err != nil {
		return annotate.Association{}, err
	}

	a, err := eng.Add(sel, emoji)
	if err != nil {
		return annotate.Association{}, err
	}

	st.Associations = eng.Associations()
	st.Toggles[a.ID] = ToggleState{ShowOriginal: false, Version: 0}
	if err := s.store.Save(st); err != nil {
		return annotate.Association{}, err
	}

	// Best-effort mirror; the local ID keys retries of the same save.
	remoteID, err := s.api.SaveAssociation(ctx, SaveAssociationRequest{
		SpeechID:       speechID,
		OriginalText:   a.OriginalText,
		Emoji:          a.Emoji,
		Position:       a.Position,
		CleanSpeech:    eng.CleanText(),
		IdempotencyKey: a.ID,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("speech_id", speechID).Msg("association mirror failed; kept locally")
		return a, nil
	}
	st.RemoteIDs[a.ID] = remoteID
	if err := s.store.Save(st); err != nil {
		s.log.Warn().Err(err).Str("speech_id", speechID).Msg("record remote id failed")
	}
	return a, nil
}

// resolve maps (text, occurrence) to a selection in clean.
func (s *Session) resolve(clean, text string, occurrence int) (annotate.Selection, error) {
	all := annotate.LocateAll(clean, text)
	switch {
	case len(all) == 0:
		return annotate.Selection{}, annotate.ErrInvalidSelection
	case occurrence == 0:
		if len(all) > 1 {
			s.log.Warn().Int("occurrences", len(all)).Msg("selected text repeats; binding to first occurrence")
		}
		return all[0], nil
	case occurrence >= 1 && occurrence <= len(all):
		return all[occurrence-1], nil
	default:
		return annotate.Selection{}, ErrAmbiguousSelection
	}
}

// Toggle flips an association's display flag locally, bumps its version,
// and mirrors the new value best-effort. The returned bool is the new flag
// (true = show original text).
func (s *Session) Toggle(ctx context.Context, speechID, associationID string) (bool, error) {
	eng, st, err := s.Open(ctx, speechID)
	if err != nil {
		return false, err
	}

	now, err := eng.Toggle(associationID)
	if err != nil {
		return false, err
	}

	t := st.Toggles[associationID]
	t.ShowOriginal = now
	t.Version++
	st.Toggles[associationID] = t
	if err := s.store.Save(st); err != nil {
		return false, err
	}

	remoteID, mirrored := st.RemoteIDs[associationID]
	if !mirrored {
		s.log.Warn().Str("association_id", associationID).Msg("toggle not mirrored; association exists only locally")
		return now, nil
	}
	if err := s.api.UpdateToggle(ctx, speechID, remoteID, now, t.Version); err != nil {
		s.log.Warn().Err(err).Str("association_id", associationID).Msg("toggle mirror failed; kept locally")
	}
	return now, nil
}

// Render returns the display string of a speech: clean text with each
// association shown as its emoji or original text per its toggle.
func (s *Session) Render(ctx context.Context, speechID string) (string, error) {
	eng, _, err := s.Open(ctx, speechID)
	if err != nil {
		return "", err
	}
	return annotate.Flatten(eng.Render()), nil
}
