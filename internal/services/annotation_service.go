// Package services – AnnotationService
//
// This file implements the AnnotationService, which governs the
// server-side half of the annotation flow: persisting emoji associations
// under a speech, mirroring per-association toggle state, and serving the
// combined annotation snapshot. It enforces the engine's invariants at the
// storage boundary (ownership, in-bounds selection, matching original
// text, non-overlapping ranges) and keeps the parent speech's content
// merged for durability.
//
// Service-level errors (ErrSelectionMismatch, ErrOverlappingAssociation,
// ...) are returned for predictable cases so handlers can map them to HTTP
// results consistently.
package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/domain"
	"github.com/trippingly/go-speech-backend/internal/repo"
)

// SaveAssociationInput carries the validated payload of a
// saveEmojiAssociation request.
type SaveAssociationInput struct {
	SpeechID     string
	OriginalText string
	Emoji        string
	Position     int
	CleanSpeech  string

	// IdempotencyKey, when non-empty, deduplicates retried saves: a replay
	// of a known key returns the originally created association.
	IdempotencyKey string
}

// AnnotationService implements the use-cases around emoji associations and
// their toggle mirrors. It is context-aware and opens its own transaction
// per mutating call.
type AnnotationService struct {
	// DB is the database handle used for all annotation operations.
	DB *gorm.DB

	// IdempotencyTTL bounds how long a given Idempotency-Key stays valid.
	IdempotencyTTL time.Duration
}

// Save validates and persists a new emoji association on behalf of userID.
//
// Semantics and validation:
//   - The speech must exist (ErrSpeechNotFound) and belong to userID
//     (ErrNotOwner).
//   - Position must be >= 0 and position+len(originalText) must lie within
//     the clean text (ErrInvalidPosition).
//   - The clean text must contain originalText exactly at position
//     (ErrSelectionMismatch). The clean text used is the request's
//     cleanSpeech when provided, else the stored content.
//   - The new range must not intersect any existing association
//     (ErrOverlappingAssociation).
//
// Side effect: the request's cleanSpeech is merged onto the parent
// speech's content column for durability. This is the only write path that
// touches content after upload, and it never clobbers other fields.
//
// The created flag is false when an idempotent replay returned a
// previously persisted association instead of inserting a new row.
func (s *AnnotationService) Save(ctx context.Context, userID string, in SaveAssociationInput) (assoc *domain.EmojiAssociation, created bool, err error) {
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sp, err := repo.GetSpeech(ctx, tx, in.SpeechID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSpeechNotFound
			}
			return err
		}
		if sp.UserID != userID {
			return ErrNotOwner
		}

		// Replay of a retried save: hand back the original row.
		if in.IdempotencyKey != "" {
			rec, err := repo.GetIdempotency(ctx, tx, userID, in.SpeechID, in.IdempotencyKey, time.Now().UTC())
			if err == nil && rec != nil {
				prev, err := repo.GetAssociation(ctx, tx, rec.AssociationID)
				if err != nil {
					return err
				}
				assoc = prev
				return nil
			}
			if err != nil && !errors.Is(err, repo.ErrNotFound) {
				return err
			}
		}

		clean := in.CleanSpeech
		if clean == "" {
			clean = sp.Content
		}
		end := in.Position + len(in.OriginalText)
		if in.Position < 0 || end > len(clean) {
			return ErrInvalidPosition
		}
		if clean[in.Position:end] != in.OriginalText {
			return ErrSelectionMismatch
		}

		existing, err := repo.ListAssociations(ctx, tx, in.SpeechID)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if in.Position < a.End() && a.Position < end {
				return ErrOverlappingAssociation
			}
		}

		a, err := repo.CreateAssociation(ctx, tx, in.SpeechID, in.Position, len(in.OriginalText), in.OriginalText, in.Emoji)
		if err != nil {
			return err
		}

		// Durability merge: content only, other columns untouched.
		if err := repo.UpdateSpeechContent(ctx, tx, in.SpeechID, clean); err != nil {
			return err
		}

		if in.IdempotencyKey != "" {
			ttl := s.IdempotencyTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			if _, err := repo.CreateIdempotency(ctx, tx, userID, in.SpeechID, in.IdempotencyKey, a.ID, http.StatusOK, ttl); err != nil &&
				!errors.Is(err, repo.ErrDuplicate) {
				return err
			}
		}

		assoc = a
		created = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return assoc, created, nil
}

// UpdateToggle upserts the backend mirror of an association's display flag.
// Racing mirrors resolve last-write-wins by the client-supplied monotonic
// version; a stale version is silently dropped (the call still succeeds,
// matching the best-effort contract of the sync path).
func (s *AnnotationService) UpdateToggle(ctx context.Context, userID, speechID, associationID string, showOriginal bool, version int64) error {
	sp, err := repo.GetSpeech(ctx, s.DB, speechID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSpeechNotFound
		}
		return err
	}
	if sp.UserID != userID {
		return ErrNotOwner
	}

	a, err := repo.GetAssociation(ctx, s.DB, associationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssociationNotFound
		}
		return err
	}
	if a.SpeechID != speechID {
		return ErrAssociationNotFound
	}

	_, err = repo.UpsertToggle(ctx, s.DB, speechID, associationID, showOriginal, version)
	return err
}

// Snapshot returns a speech together with its associations (position
// order) and toggle mirrors, so a client on a fresh device can reconstruct
// the annotation state it last mirrored.
func (s *AnnotationService) Snapshot(ctx context.Context, userID, speechID string) (*domain.Speech, []domain.EmojiAssociation, map[string]domain.AssociationToggle, error) {
	sp, err := repo.GetSpeech(ctx, s.DB, speechID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrSpeechNotFound
		}
		return nil, nil, nil, err
	}
	if sp.UserID != userID {
		return nil, nil, nil, ErrNotOwner
	}

	assocs, err := repo.ListAssociations(ctx, s.DB, speechID)
	if err != nil {
		return nil, nil, nil, err
	}
	toggles, err := repo.ListToggles(ctx, s.DB, speechID)
	if err != nil {
		return nil, nil, nil, err
	}
	return sp, assocs, toggles, nil
}
