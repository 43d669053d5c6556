// Speech HTTP handlers.
//
// This file exposes the REST endpoints for speech resources:
//   - POST   /uploadSpeech              (create from an uploaded text file)
//   - GET    /getSpeeches               (list, optional pagination, ETag support)
//   - GET    /getSpeech/:speechId       (fetch one, with annotation snapshot)
//   - DELETE /deleteSpeech/:speechId    (idempotent delete)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses (including
// conditional responses).
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/domain"
	"github.com/trippingly/go-speech-backend/internal/repo"
	"github.com/trippingly/go-speech-backend/internal/services"
	"github.com/trippingly/go-speech-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// SpeechService defines speech lifecycle operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SpeechService interface {
	// Upload validates and persists a new speech for userID.
	Upload(ctx context.Context, userID, name, content string) (*domain.Speech, error)
	// List returns all speeches for a user (legacy, non-paginated).
	List(ctx context.Context, userID string) ([]domain.Speech, error)
	// ListPage returns a page of speeches for a user and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Speech, int64, error)
	// Get fetches a speech owned by userID.
	Get(ctx context.Context, userID, speechID string) (*domain.Speech, error)
	// Delete removes a speech owned by userID; absent speeches are not an error.
	Delete(ctx context.Context, userID, speechID string) error
}

// AnnotationService defines association persistence and toggle mirroring
// operations consumed by HTTP handlers.
type AnnotationService interface {
	// Save persists a new emoji association (or replays an idempotent retry).
	Save(ctx context.Context, userID string, in services.SaveAssociationInput) (*domain.EmojiAssociation, bool, error)
	// UpdateToggle mirrors an association's display flag.
	UpdateToggle(ctx context.Context, userID, speechID, associationID string, showOriginal bool, version int64) error
	// Snapshot returns a speech with its associations and toggle mirrors.
	Snapshot(ctx context.Context, userID, speechID string) (*domain.Speech, []domain.EmojiAssociation, map[string]domain.AssociationToggle, error)
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for speeches and annotations. It
// depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	speechSvc SpeechService
	annSvc    AnnotationService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(speechSvc SpeechService, annSvc AnnotationService) *Handlers {
	return &Handlers{speechSvc: speechSvc, annSvc: annSvc}
}

// userID extracts the authenticated user id from Gin context (set by the
// auth middleware). If absent, it falls back to "X-User-ID" header (tests
// use it), and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// UploadSpeechRequest is the JSON payload for uploading a speech. The field
// names mirror the browser client's upload form.
type UploadSpeechRequest struct {
	// SpeechName is the display name, usually the file name without extension.
	SpeechName string `json:"speechName" example:"Gettysburg Address"`
	// FileContent is the full text of the uploaded .txt file.
	FileContent string `json:"fileContent" example:"Four score and seven years ago..."`
}

// UploadSpeechResponse acknowledges a stored speech.
type UploadSpeechResponse struct {
	Message  string `json:"message" example:"Speech uploaded successfully"`
	SpeechID string `json:"speechId" example:"141add05-4415-4938-b5a1-17e0d3171aff"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListSpeechesResponse wraps the caller's speeches. Pagination is present
// only when the caller asked for a page.
type ListSpeechesResponse struct {
	Message    string          `json:"message"`
	Speeches   []domain.Speech `json:"speeches"`
	Pagination *Pagination     `json:"pagination,omitempty"`
}

// SpeechDetailResponse is a speech plus its annotation snapshot, enough for
// a fresh device to reconstruct the state it last mirrored.
type SpeechDetailResponse struct {
	domain.Speech
	Associations []domain.EmojiAssociation           `json:"associations"`
	Toggles      map[string]domain.AssociationToggle `json:"toggles"`
}

// MessageResponse is the minimal success acknowledgement body.
type MessageResponse struct {
	Message string `json:"message" example:"Speech deleted successfully"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params,
// returning (page, pageSize, requested). requested is false when neither
// param was supplied, in which case the caller should return the full list.
func clampPagination(c *gin.Context) (page, pageSize int, requested bool) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	rawPage, rawSize := c.Query("page"), c.Query("page_size")
	if rawPage == "" && rawSize == "" {
		return defaultPage, defaultPageSize, false
	}
	page = utils.AtoiDefault(rawPage, defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(rawSize, defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize, true
}

//
// Handlers
//

// UploadSpeech godoc
// @ID          uploadSpeech
// @Summary     Upload a speech
// @Description Stores a new speech for the current user. The content becomes the immutable clean text.
// @Tags        Speeches
// @Accept      json
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       body           body    handlers.UploadSpeechRequest  true  "Upload payload"
//
// @Success     200  {object}  handlers.UploadSpeechResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing or empty fields"
// @Failure     401  {object}  handlers.ErrorResponse  "Missing or invalid credential"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /uploadSpeech [post]
func (h *Handlers) UploadSpeech(c *gin.Context) {
	var req UploadSpeechRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sp, err := h.speechSvc.Upload(c.Request.Context(), userID(c), req.SpeechName, req.FileContent)
	if err != nil {
		switch err {
		case services.ErrEmptyName:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "speechName is required")
		case services.ErrEmptyContent:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "fileContent must not be empty")
		case services.ErrContentTooLong:
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "fileContent exceeds the maximum allowed size")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUploadFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, UploadSpeechResponse{
		Message:  fmt.Sprintf("Speech %q uploaded successfully", sp.Name),
		SpeechID: sp.ID,
	})
}

// GetSpeeches godoc
// @ID          getSpeeches
// @Summary     List the caller's speeches
// @Description Returns the user's speeches, newest first. Supports optional pagination and a weak ETag via If-None-Match.
// @Tags        Speeches
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"
// @Param       page           query   int     false "Page number"     minimum(1)
// @Param       page_size      query   int     false "Items per page"  minimum(1) maximum(100)
//
// @Success     200  {object} handlers.ListSpeechesResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid credential"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /getSpeeches [get]
func (h *Handlers) GetSpeeches(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize, paginated := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.speechSvc.(*services.SpeechService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.SpeechesStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"speeches:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	resp := ListSpeechesResponse{Message: "Speeches retrieved successfully"}
	if paginated {
		items, total, err := h.speechSvc.ListPage(ctx, uid, page, pageSize)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
		totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
		resp.Speeches = items
		resp.Pagination = &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		}
	} else {
		items, err := h.speechSvc.List(ctx, uid)
		if err != nil {
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
			return
		}
		if items == nil {
			items = []domain.Speech{}
		}
		resp.Speeches = items
	}
	ok(c, http.StatusOK, resp)
}

// GetSpeech godoc
// @ID          getSpeech
// @Summary     Fetch one speech
// @Description Returns the speech plus its associations and toggle mirrors.
// @Tags        Speeches
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       speechId       path    string  true  "Speech ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.SpeechDetailResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid credential"
// @Failure     403  {object} handlers.ErrorResponse "Owner mismatch"
// @Failure     404  {object} handlers.ErrorResponse "Speech not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /getSpeech/{speechId} [get]
func (h *Handlers) GetSpeech(c *gin.Context) {
	sp, assocs, toggles, err := h.annSvc.Snapshot(c.Request.Context(), userID(c), c.Param("speechId"))
	if err != nil {
		switch err {
		case services.ErrSpeechNotFound:
			fail(c, http.StatusNotFound, ErrCodeNotFound, "speech not found")
		case services.ErrNotOwner:
			fail(c, http.StatusForbidden, ErrCodeForbidden, "speech belongs to another user")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	if assocs == nil {
		assocs = []domain.EmojiAssociation{}
	}
	ok(c, http.StatusOK, SpeechDetailResponse{
		Speech:       *sp,
		Associations: assocs,
		Toggles:      toggles,
	})
}

// DeleteSpeech godoc
// @ID          deleteSpeech
// @Summary     Delete a speech
// @Description Removes a speech and (with it) its associations. Deleting an absent speech still succeeds.
// @Tags        Speeches
// @Produce     json
//
// @Param       Authorization  header  string  true  "Bearer token"
// @Param       speechId       path    string  true  "Speech ID (UUID)"  format(uuid)
//
// @Success     200  {object} handlers.MessageResponse
// @Failure     401  {object} handlers.ErrorResponse "Missing or invalid credential"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /deleteSpeech/{speechId} [delete]
func (h *Handlers) DeleteSpeech(c *gin.Context) {
	if err := h.speechSvc.Delete(c.Request.Context(), userID(c), c.Param("speechId")); err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, MessageResponse{Message: "Speech deleted successfully"})
}
