// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements bearer-token authentication. Every speech and
// annotation route requires a verified identity; the middleware extracts
// the Authorization header, verifies the token through an auth.Verifier,
// and stashes the resulting user ID in the Gin context under "userID" for
// handlers, logging, and rate limiting.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/trippingly/go-speech-backend/internal/auth"
)

const (
	// ctxKeyUserID is the Gin context key under which the verified user ID
	// is stored.
	ctxKeyUserID = "userID"
	// bearerPrefix is the expected Authorization scheme.
	bearerPrefix = "Bearer "
)

// RequireAuth returns a middleware that rejects requests lacking a valid
// bearer token.
//
// Behavior:
//   - Missing or malformed Authorization header: 401 with code "unauthorized".
//   - Token fails verification: 401 with code "unauthorized". The verifier's
//     error detail is not echoed to the client.
//   - On success the user ID is stored under "userID" and the chain proceeds.
func RequireAuth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if !strings.HasPrefix(raw, bearerPrefix) {
			unauthorized(c, "missing bearer token")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(raw, bearerPrefix))
		if token == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		userID, err := v.Verify(token)
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(ctxKeyUserID, userID)
		c.Next()
	}
}

// UserIDFrom returns the verified user ID stored by RequireAuth, or an
// empty string when no identity is attached.
func UserIDFrom(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// unauthorized writes the standard 401 envelope and aborts the chain.
func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}
