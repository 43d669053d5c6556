// Package services – SpeechService
//
// This file implements the SpeechService, which manages the lifecycle of
// speeches. It validates and normalizes uploads, enforces ownership rules,
// and coordinates repository operations for creating, listing (with
// pagination), fetching, and deleting speeches.
//
// Service-level errors (e.g., ErrSpeechNotFound, ErrNotOwner) are returned
// for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/domain"
)

// SpeechRepo defines the repository contract required by SpeechService.
// Implementations are responsible for persistence of speech aggregates.
type SpeechRepo interface {
	// CreateSpeech inserts a new speech row for the given user.
	CreateSpeech(ctx context.Context, db *gorm.DB, userID, name, content string) (*domain.Speech, error)

	// ListSpeeches returns all speeches belonging to the user (non-paginated).
	ListSpeeches(ctx context.Context, db *gorm.DB, userID string) ([]domain.Speech, error)

	// GetSpeech fetches a speech by ID regardless of owner.
	GetSpeech(ctx context.Context, db *gorm.DB, id string) (*domain.Speech, error)

	// DeleteSpeech removes a speech owned by the user; absent rows are not
	// an error. The boolean reports whether a row was removed.
	DeleteSpeech(ctx context.Context, db *gorm.DB, id, userID string) (bool, error)

	// CountSpeeches returns the total number of speeches for pagination.
	CountSpeeches(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListSpeechesPage returns a page of speeches belonging to the user.
	ListSpeechesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Speech, error)
}

// SpeechService provides speech-level operations such as uploading,
// listing, fetching, and deleting. It enforces name/content rules and
// ownership constraints.
type SpeechService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the speech repository used by this service.
	Repo SpeechRepo

	// NameMaxLen caps stored speech names by rune length.
	NameMaxLen int
	// MaxContentLen caps uploaded content by byte length; 0 disables the cap.
	MaxContentLen int
}

// NewSpeechService constructs a SpeechService with sane defaults for name
// handling.
func NewSpeechService(db *gorm.DB, r SpeechRepo) *SpeechService {
	return &SpeechService{
		DB:         db,
		Repo:       r,
		NameMaxLen: 255,
	}
}

// Upload validates and persists a new speech owned by userID. Names are
// trimmed, whitespace-collapsed, NFC-normalized, and clipped; content is
// stored verbatim and becomes the immutable clean text of the speech.
//
// Returns ErrEmptyName or ErrEmptyContent when validation fails before any
// write, or ErrContentTooLong when the configured cap is exceeded.
func (s *SpeechService) Upload(ctx context.Context, userID, name, content string) (*domain.Speech, error) {
	name = normalizeName(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if s.MaxContentLen > 0 && len(content) > s.MaxContentLen {
		return nil, ErrContentTooLong
	}
	return s.Repo.CreateSpeech(ctx, s.DB, userID, s.clip(name), content)
}

// List returns all speeches for a user (non-paginated), newest first.
// Prefer ListPage for scalability on large datasets.
func (s *SpeechService) List(ctx context.Context, userID string) ([]domain.Speech, error) {
	return s.Repo.ListSpeeches(ctx, s.DB, userID)
}

// ListPage returns a page of speeches for a user (paginated).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *SpeechService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Speech, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountSpeeches(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Speech{}, 0, nil
	}

	items, err := s.Repo.ListSpeechesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Get fetches a speech by ID and verifies the caller owns it. A missing
// record yields ErrSpeechNotFound; an ownership mismatch yields ErrNotOwner
// even though storage queries are already owner-partitioned.
func (s *SpeechService) Get(ctx context.Context, userID, speechID string) (*domain.Speech, error) {
	sp, err := s.Repo.GetSpeech(ctx, s.DB, speechID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSpeechNotFound
		}
		return nil, err
	}
	if sp.UserID != userID {
		return nil, ErrNotOwner
	}
	return sp, nil
}

// Delete removes a speech owned by userID. Deleting an absent or
// already-deleted speech succeeds: the operation is idempotent in effect,
// so a second delete simply finds nothing to remove.
func (s *SpeechService) Delete(ctx context.Context, userID, speechID string) error {
	_, err := s.Repo.DeleteSpeech(ctx, s.DB, speechID, userID)
	return err
}

// clip truncates a speech name to the configured maximum rune length.
func (s *SpeechService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeName trims whitespace, collapses runs of whitespace to a single
// space, and applies Unicode NFC so visually identical names compare equal.
func normalizeName(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return norm.NFC.String(s)
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
