// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Speech
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a speech is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Ownership note: GetSpeech deliberately fetches by ID alone. The service
// layer compares the stored owner against the caller so that a mismatch can
// be reported as Forbidden instead of being indistinguishable from NotFound.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSpeech inserts a new Speech row owned by userID. The speech ID is a
// randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted Speech. On failure, it returns a DB error.
func CreateSpeech(ctx context.Context, db *gorm.DB, userID, name, content string) (*domain.Speech, error) {
	s := &domain.Speech{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// ListSpeeches returns all speeches belonging to userID, ordered by creation
// time descending (most recent first). It returns an empty slice if the user
// has no speeches. On DB error, it returns the error.
func ListSpeeches(ctx context.Context, db *gorm.DB, userID string) ([]domain.Speech, error) {
	var out []domain.Speech
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountSpeeches returns the total number of speeches owned by userID.
// On DB error, it returns the error.
func CountSpeeches(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Speech{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListSpeechesPage returns a paginated slice of speeches for userID, ordered
// by creation time descending. Use CountSpeeches to obtain the total for
// pagination metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListSpeechesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Speech, error) {
	var out []domain.Speech
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// GetSpeech fetches a single speech by its ID, regardless of owner. If the
// record does not exist, it returns ErrNotFound. On other DB errors, the raw
// error is returned. Ownership is checked by the caller.
func GetSpeech(ctx context.Context, db *gorm.DB, id string) (*domain.Speech, error) {
	var s domain.Speech
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSpeech removes the speech identified by id and owned by userID.
// Deleting an absent or already-deleted speech is not an error; the delete
// is idempotent in effect. The boolean result reports whether a row was
// actually removed.
func DeleteSpeech(ctx context.Context, db *gorm.DB, id, userID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Speech{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateSpeechContent merges content onto the speech identified by id. Only
// the content column (and UpdatedAt) is written; name, owner, and creation
// time are untouched. If no rows are affected, it returns ErrNotFound.
func UpdateSpeechContent(ctx context.Context, db *gorm.DB, id, content string) error {
	res := db.WithContext(ctx).
		Model(&domain.Speech{}).
		Where("id = ?", id).
		Update("content", content)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
