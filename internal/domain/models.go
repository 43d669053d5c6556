// Package domain defines the persistence models for speeches, emoji
// associations, and toggle mirrors. These types are mapped with GORM and
// form the core data layer of the Trippingly backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Speech represents an uploaded speech owned by a user. Content is the
// "clean text": it is fixed at upload time and serves as the coordinate
// space for every emoji association. The only later write to Content is
// the durability merge performed when an association is saved, and that
// write never touches any other column.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID: identifier of the owner partition; indexed for retrieval.
//   - Name: human-readable speech name derived from the uploaded file.
//   - Content: the immutable clean text of the speech.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Speech struct {
	ID        string         `json:"id"        gorm:"type:char(36);primaryKey"`
	UserID    string         `json:"userId"    gorm:"type:varchar(64);not null;index:idx_user_speeches"`
	Name      string         `json:"name"      gorm:"type:varchar(255);not null"`
	Content   string         `json:"content"   gorm:"type:text;not null"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-"         gorm:"index"`
}

// TableName returns the database table name for Speech.
func (Speech) TableName() string { return "speeches" }

// EmojiAssociation binds a byte range of a speech's clean text to a
// replacement emoji. Associations are append-only: they are created when a
// user replaces a selection and removed only when the parent speech is
// deleted. Position and Length are byte offsets into the clean text, so
// they stay stable no matter how many associations accumulate.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - SpeechID: foreign key to the owning speech (indexed, cascade delete).
//   - Position: byte offset of the replaced range in the clean text.
//   - Length: byte length of the replaced range.
//   - OriginalText: the exact substring that was replaced.
//   - Emoji: the replacement glyph.
//   - CreatedAt: timestamp managed by GORM.
type EmojiAssociation struct {
	ID           string    `json:"id"           gorm:"type:char(36);primaryKey"`
	SpeechID     string    `json:"speechId"     gorm:"type:char(36);not null;index:idx_speech_assocs,priority:1"`
	Position     int       `json:"position"     gorm:"not null;index:idx_speech_assocs,priority:2"`
	Length       int       `json:"length"       gorm:"not null"`
	OriginalText string    `json:"originalText" gorm:"type:text;not null"`
	Emoji        string    `json:"emoji"        gorm:"type:varchar(32);not null"`
	CreatedAt    time.Time `json:"createdAt"`

	// Speech is the parent record. Associations are cascade-deleted when
	// their speech is removed.
	Speech Speech `json:"-" gorm:"foreignKey:SpeechID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// End returns the exclusive end offset of the replaced range.
func (a EmojiAssociation) End() int { return a.Position + a.Length }

// TableName returns the database table name for EmojiAssociation.
func (EmojiAssociation) TableName() string { return "emoji_associations" }

// AssociationToggle is the backend mirror of a per-association display
// flag. ShowOriginal false means "show the emoji". The mirror exists for
// cross-session consistency only; the client remains authoritative for its
// own display state. Version is a client-supplied monotonic counter that
// resolves racing toggle syncs: an update carrying a version at or below
// the stored one is ignored.
type AssociationToggle struct {
	AssociationID string    `json:"associationId" gorm:"type:char(36);primaryKey"`
	SpeechID      string    `json:"speechId"      gorm:"type:char(36);not null;index"`
	ShowOriginal  bool      `json:"showOriginal"  gorm:"not null"`
	Version       int64     `json:"version"       gorm:"not null;default:0"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName returns the database table name for AssociationToggle.
func (AssociationToggle) TableName() string { return "association_toggles" }
