// Package client implements the programmatic interface to the Trippingly
// backend: a typed HTTP API client, a local annotation state store, and a
// Session that ties the two together with local-first semantics.
//
// This file holds the API client. Every call is context-aware, carries the
// session's bearer token, and decodes the backend's structured error
// envelope into an *APIError so callers can branch on status and code.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/trippingly/go-speech-backend/internal/domain"
)

// APIError is a structured error decoded from the backend's error envelope.
type APIError struct {
	Status    int    `json:"-"`
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

// Error renders the status, code, and message in one line.
func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d (%s): %s", e.Status, e.Code, e.Message)
}

// Client is a thin HTTP client for the backend API. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient constructs a Client for the given base URL and bearer token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken replaces the bearer token used for subsequent calls.
func (c *Client) SetToken(token string) { c.token = token }

// SpeechDetail is a speech plus the annotation snapshot the backend
// mirrors for it.
type SpeechDetail struct {
	domain.Speech
	Associations []domain.EmojiAssociation           `json:"associations"`
	Toggles      map[string]domain.AssociationToggle `json:"toggles"`
}

// SaveAssociationRequest is the payload for mirroring one association.
type SaveAssociationRequest struct {
	SpeechID     string `json:"speechId"`
	OriginalText string `json:"originalText"`
	Emoji        string `json:"emoji"`
	Position     int    `json:"position"`
	CleanSpeech  string `json:"cleanSpeech"`

	// IdempotencyKey is sent as the Idempotency-Key header, not in the
	// body. A stable key makes retries of the same save collapse into one
	// stored association.
	IdempotencyKey string `json:"-"`
}

// UploadSpeech stores a new speech and returns its ID.
func (c *Client) UploadSpeech(ctx context.Context, name, content string) (string, error) {
	var out struct {
		Message  string `json:"message"`
		SpeechID string `json:"speechId"`
	}
	err := c.do(ctx, http.MethodPost, "/uploadSpeech", map[string]string{
		"speechName":  name,
		"fileContent": content,
	}, nil, &out)
	return out.SpeechID, err
}

// ListSpeeches returns the caller's speeches, newest first.
func (c *Client) ListSpeeches(ctx context.Context) ([]domain.Speech, error) {
	var out struct {
		Speeches []domain.Speech `json:"speeches"`
	}
	err := c.do(ctx, http.MethodGet, "/getSpeeches", nil, nil, &out)
	return out.Speeches, err
}

// GetSpeech returns one speech with its associations and toggle mirrors.
func (c *Client) GetSpeech(ctx context.Context, speechID string) (*SpeechDetail, error) {
	var out SpeechDetail
	if err := c.do(ctx, http.MethodGet, "/getSpeech/"+speechID, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteSpeech removes a speech. Deleting an absent speech succeeds.
func (c *Client) DeleteSpeech(ctx context.Context, speechID string) error {
	return c.do(ctx, http.MethodDelete, "/deleteSpeech/"+speechID, nil, nil, nil)
}

// SaveAssociation mirrors one emoji association and returns the backend's
// association ID.
func (c *Client) SaveAssociation(ctx context.Context, req SaveAssociationRequest) (string, error) {
	var hdr http.Header
	if req.IdempotencyKey != "" {
		hdr = http.Header{"Idempotency-Key": []string{req.IdempotencyKey}}
	}
	var out struct {
		Message       string `json:"message"`
		AssociationID string `json:"associationId"`
	}
	err := c.do(ctx, http.MethodPost, "/saveEmojiAssociation", req, hdr, &out)
	return out.AssociationID, err
}

// UpdateToggle mirrors an association's display flag with its monotonic
// version. A stale version is dropped server-side without error.
func (c *Client) UpdateToggle(ctx context.Context, speechID, associationID string, showOriginal bool, version int64) error {
	return c.do(ctx, http.MethodPost, "/updateAssociationToggle", map[string]any{
		"speechId":     speechID,
		"assocId":      associationID,
		"showOriginal": showOriginal,
		"version":      version,
	}, nil, nil)
}

// do issues one JSON request and decodes the response into out (when
// non-nil). Non-2xx responses are returned as *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any, extra http.Header, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vv := range extra {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Code: "unknown", Message: resp.Status}
		// Best effort: the envelope may be absent for proxy-level errors.
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
