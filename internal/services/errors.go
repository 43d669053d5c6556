// Package services defines the business logic for speeches and emoji
// associations. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer;
// translation into user-facing messages or HTTP status codes is performed
// at the handler layer.
package services

import "errors"

// Speech-related errors.
var (
	// ErrEmptyName is returned when an upload carries no usable speech name.
	ErrEmptyName = errors.New("speech name is empty")

	// ErrEmptyContent is returned when an upload's content is empty or
	// whitespace-only.
	ErrEmptyContent = errors.New("speech content is empty")

	// ErrContentTooLong is returned when an upload exceeds the configured
	// content size limit.
	ErrContentTooLong = errors.New("speech content too long")

	// ErrSpeechNotFound indicates that the requested speech does not exist.
	ErrSpeechNotFound = errors.New("speech not found")

	// ErrNotOwner indicates that the speech exists but belongs to a
	// different user. Storage is already partitioned by owner; this is the
	// defense-in-depth check on top of it.
	ErrNotOwner = errors.New("speech belongs to another user")
)

// Association-related errors.
var (
	// ErrAssociationNotFound indicates that the referenced association does
	// not exist under the given speech.
	ErrAssociationNotFound = errors.New("association not found")

	// ErrInvalidPosition is returned when an association's position is
	// negative or its range falls outside the clean text.
	ErrInvalidPosition = errors.New("association position out of range")

	// ErrSelectionMismatch is returned when the clean text does not contain
	// the claimed original substring at the claimed position.
	ErrSelectionMismatch = errors.New("original text does not match clean text at position")

	// ErrOverlappingAssociation is returned when a new association's range
	// intersects an existing one. Overlap is a defined error, not undefined
	// behavior: silently accepting it would corrupt rendering offsets.
	ErrOverlappingAssociation = errors.New("association overlaps an existing association")
)
