// Annotation HTTP handlers.
//
// This file exposes the REST endpoints for emoji associations:
//   - POST /saveEmojiAssociation      (persist one association)
//   - POST /updateAssociationToggle   (mirror a display toggle)
//
// Request bodies are validated field by field against an explicit schema
// before any service call, producing enumerated validation errors rather
// than ad hoc shape checks. Handlers stay transport-thin and translate
// service errors into HTTP results.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trippingly/go-speech-backend/internal/http/middleware"
	"github.com/trippingly/go-speech-backend/internal/services"
)

// SaveEmojiAssociationRequest is the JSON payload for persisting a new
// emoji association. Pointer fields distinguish "absent" from zero values
// so each missing field gets its own validation error.
type SaveEmojiAssociationRequest struct {
	// SpeechID identifies the annotated speech.
	SpeechID string `json:"speechId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
	// OriginalText is the exact substring being replaced.
	OriginalText string `json:"originalText" example:"Hello"`
	// Emoji is the replacement glyph.
	Emoji string `json:"emoji" example:"😀"`
	// Position is the byte offset of the replaced range in the clean text.
	Position *int `json:"position" example:"0"`
	// CleanSpeech is the client's copy of the clean text, merged onto the
	// speech for durability.
	CleanSpeech string `json:"cleanSpeech" example:"Hello world! This is a test."`
}

// validate checks the request against the association schema and returns
// the first violated rule as a human-readable message.
func (r SaveEmojiAssociationRequest) validate() (string, bool) {
	switch {
	case r.SpeechID == "":
		return "speechId is required", false
	case r.OriginalText == "":
		return "originalText is required", false
	case r.Emoji == "":
		return "emoji is required", false
	case r.Position == nil:
		return "position is required and must be a number", false
	case *r.Position < 0:
		return "position must be >= 0", false
	case r.CleanSpeech == "":
		return "cleanSpeech is required", false
	}
	return "", true
}

// SaveEmojiAssociationResponse acknowledges a stored association.
type SaveEmojiAssociationResponse struct {
	Message       string `json:"message" example:"Emoji association saved successfully"`
	AssociationID string `json:"associationId" example:"fa4dfbe0-c3bf-47bd-b32f-d7de221cf43b"`
}

// UpdateAssociationToggleRequest is the JSON payload for mirroring a
// per-association display toggle.
type UpdateAssociationToggleRequest struct {
	SpeechID      string `json:"speechId"`
	AssociationID string `json:"assocId"`
	ShowOriginal  *bool  `json:"showOriginal"`
	// Version is a client-maintained monotonic counter; stale versions
	// lose against newer mirrored state.
	Version int64 `json:"version"`
}

// validate checks the toggle request schema.
func (r UpdateAssociationToggleRequest) validate() (string, bool) {
	switch {
	case r.SpeechID == "":
		return "speechId is required", false
	case r.AssociationID == "":
		return "assocId is required", false
	case r.ShowOriginal == nil:
		return "showOriginal is required and must be a boolean", false
	}
	return "", true
}

// SaveEmojiAssociation godoc
// @ID          saveEmojiAssociation
// @Summary     Save an emoji association
// @Description Appends an association under the speech and merges the clean text for durability. Retries may carry an Idempotency-Key to deduplicate.
// @Tags        Annotations
// @Accept      json
// @Produce     json
//
// @Param       Authorization    header  string  true   "Bearer token"
// @Param       Idempotency-Key  header  string  false  "Deduplicates retried saves"
// @Param       body             body    handlers.SaveEmojiAssociationRequest  true  "Association payload"
//
// @Success     200  {object} handlers.SaveEmojiAssociationResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid field"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid credential"
// @Failure     403  {object} handlers.ErrorResponse "Owner mismatch"
// @Failure     404  {object} handlers.ErrorResponse "Speech not found"
// @Failure     409  {object} handlers.ErrorResponse "Overlapping association"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /saveEmojiAssociation [post]
func (h *Handlers) SaveEmojiAssociation(c *gin.Context) {
	var req SaveEmojiAssociationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if msg, valid := req.validate(); !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	in := services.SaveAssociationInput{
		SpeechID:     req.SpeechID,
		OriginalText: req.OriginalText,
		Emoji:        req.Emoji,
		Position:     *req.Position,
		CleanSpeech:  req.CleanSpeech,
	}
	if key, present := middleware.GetIdempotencyKey(c); present {
		in.IdempotencyKey = key
	}

	assoc, _, err := h.annSvc.Save(c.Request.Context(), userID(c), in)
	if err != nil {
		switch err {
		case services.ErrSpeechNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "speech not found")
		case services.ErrNotOwner:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "speech belongs to another user")
		case services.ErrInvalidPosition:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "position is outside the clean text")
		case services.ErrSelectionMismatch:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "originalText does not match the clean text at position")
		case services.ErrOverlappingAssociation:
			fail(c, http.StatusConflict, ErrCodeOverlap, "association overlaps an existing association")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, SaveEmojiAssociationResponse{
		Message:       "Emoji association saved successfully",
		AssociationID: assoc.ID,
	})
}

// UpdateAssociationToggle godoc
// @ID          updateAssociationToggle
// @Summary     Mirror an association toggle
// @Description Best-effort mirror of a per-association display flag. Stale versions are dropped without error.
// @Tags        Annotations
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       body           body    handlers.UpdateAssociationToggleRequest  true  "Toggle payload"
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing or invalid field"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid credential"
// @Failure     403  {object} handlers.ErrorResponse "Owner mismatch"
// @Failure     404  {object} handlers.ErrorResponse "Speech or association not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /updateAssociationToggle [post]
func (h *Handlers) UpdateAssociationToggle(c *gin.Context) {
	var req UpdateAssociationToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if msg, valid := req.validate(); !valid {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, msg)
		return
	}

	err := h.annSvc.UpdateToggle(c.Request.Context(), userID(c), req.SpeechID, req.AssociationID, *req.ShowOriginal, req.Version)
	if err != nil {
		switch err {
		case services.ErrSpeechNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "speech not found")
		case services.ErrAssociationNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "association not found")
		case services.ErrNotOwner:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "speech belongs to another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, MessageResponse{Message: "Toggle updated"})
}
