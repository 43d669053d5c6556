package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newIdemRouter(t *testing.T, opts IdempotencyOptions) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(IdempotencyValidator(opts))
	r.POST("/op", func(c *gin.Context) {
		key, present := GetIdempotencyKey(c)
		c.JSON(http.StatusOK, gin.H{"key": key, "present": present})
	})
	return r
}

func postOp(t *testing.T, r *gin.Engine, key string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/op", nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyValidator_AbsentHeaderIsNoOp(t *testing.T) {
	r := newIdemRouter(t, IdempotencyOptions{})

	w := postOp(t, r, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"present":false`) {
		t.Fatalf("key unexpectedly present: %s", w.Body.String())
	}
}

func TestIdempotencyValidator_StashesValidKey(t *testing.T) {
	r := newIdemRouter(t, IdempotencyOptions{})

	w := postOp(t, r, "retry-key.1~2:abc")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"key":"retry-key.1~2:abc"`) {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestIdempotencyValidator_RejectsBadKeys(t *testing.T) {
	r := newIdemRouter(t, IdempotencyOptions{})

	for _, key := range []string{
		"has spaces",
		"emoji-😀",
		"semi;colon",
		strings.Repeat("x", 201),
	} {
		w := postOp(t, r, key)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("key %q: status = %d, want 400", key, w.Code)
		}
		if !strings.Contains(w.Body.String(), "bad_idempotency_key") {
			t.Fatalf("key %q: body = %s", key, w.Body.String())
		}
	}
}

func TestIdempotencyValidator_CustomMaxLen(t *testing.T) {
	r := newIdemRouter(t, IdempotencyOptions{MaxLen: 8})

	if w := postOp(t, r, "12345678"); w.Code != http.StatusOK {
		t.Fatalf("at-limit status = %d", w.Code)
	}
	if w := postOp(t, r, "123456789"); w.Code != http.StatusBadRequest {
		t.Fatalf("over-limit status = %d", w.Code)
	}
}
