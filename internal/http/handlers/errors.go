// Package handlers defines HTTP-layer error codes used across all API
// endpoints.
//
// These symbolic constants are passed to fail() alongside an HTTP status
// and a human-readable message, giving clients a stable machine-readable
// error taxonomy. Codes are lowercase snake_case; generic codes mirror
// common HTTP status semantics and domain-specific ones cover business
// failures a status alone cannot convey.
package handlers

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeUploadFailed     = "upload_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeDeleteFailed     = "delete_failed"
	ErrCodeOverlap          = "overlapping_association"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
