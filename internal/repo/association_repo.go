// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// EmojiAssociation and AssociationToggle models.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/domain"
)

// CreateAssociation inserts a new EmojiAssociation row under speechID. The
// association ID is a randomly generated UUID and CreatedAt is set to UTC.
func CreateAssociation(ctx context.Context, db *gorm.DB, speechID string, position, length int, originalText, emoji string) (*domain.EmojiAssociation, error) {
	a := &domain.EmojiAssociation{
		ID:           uuid.NewString(),
		SpeechID:     speechID,
		Position:     position,
		Length:       length,
		OriginalText: originalText,
		Emoji:        emoji,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		return nil, err
	}
	return a, nil
}

// ListAssociations returns every association under speechID ordered by
// position ascending, which is the order the annotation engine consumes.
func ListAssociations(ctx context.Context, db *gorm.DB, speechID string) ([]domain.EmojiAssociation, error) {
	var out []domain.EmojiAssociation
	err := db.WithContext(ctx).
		Where("speech_id = ?", speechID).
		Order("position asc").
		Find(&out).Error
	return out, err
}

// GetAssociation fetches a single association by ID, or ErrNotFound.
func GetAssociation(ctx context.Context, db *gorm.DB, id string) (*domain.EmojiAssociation, error) {
	var a domain.EmojiAssociation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// UpsertToggle writes the toggle mirror for associationID. Writes carrying a
// version at or below the stored one are ignored (last-write-wins by
// client-supplied monotonic version). The boolean result reports whether the
// row was created or updated.
func UpsertToggle(ctx context.Context, db *gorm.DB, speechID, associationID string, showOriginal bool, version int64) (bool, error) {
	applied := false
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var cur domain.AssociationToggle
		err := tx.Where("association_id = ?", associationID).First(&cur).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec := domain.AssociationToggle{
				AssociationID: associationID,
				SpeechID:      speechID,
				ShowOriginal:  showOriginal,
				Version:       version,
				UpdatedAt:     time.Now().UTC(),
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			applied = true
			return nil
		case err != nil:
			return err
		}

		// Stale mirror write: drop it, the stored state is newer.
		if version <= cur.Version {
			return nil
		}
		res := tx.Model(&domain.AssociationToggle{}).
			Where("association_id = ? AND version < ?", associationID, version).
			Updates(map[string]any{
				"show_original": showOriginal,
				"version":       version,
				"updated_at":    time.Now().UTC(),
			})
		if res.Error != nil {
			return res.Error
		}
		applied = res.RowsAffected > 0
		return nil
	})
	return applied, err
}

// ListToggles returns the toggle mirrors for every association under
// speechID, keyed by association ID.
func ListToggles(ctx context.Context, db *gorm.DB, speechID string) (map[string]domain.AssociationToggle, error) {
	var rows []domain.AssociationToggle
	err := db.WithContext(ctx).
		Where("speech_id = ?", speechID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.AssociationToggle, len(rows))
	for _, r := range rows {
		out[r.AssociationID] = r
	}
	return out, nil
}
