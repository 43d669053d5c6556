// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns
// such as tracing, correlation IDs, logging, panic recovery, metrics,
// compression, authentication, idempotency, rate limiting, CORS, and
// security headers.
//
// Design goals:
//   - Observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID, logging, recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/trippingly/go-speech-backend/internal/auth"
	"github.com/trippingly/go-speech-backend/internal/config"
	"github.com/trippingly/go-speech-backend/internal/domain"
	"github.com/trippingly/go-speech-backend/internal/http/handlers"
	"github.com/trippingly/go-speech-backend/internal/http/middleware"
	"github.com/trippingly/go-speech-backend/internal/repo"
	"github.com/trippingly/go-speech-backend/internal/services"
)

// speechRepoShim adapts the repository free functions to the
// services.SpeechRepo interface expected by the SpeechService. This keeps
// services decoupled from the concrete repo package while reusing the
// existing functions.
type speechRepoShim struct{}

// CreateSpeech proxies repo.CreateSpeech.
func (speechRepoShim) CreateSpeech(ctx context.Context, db *gorm.DB, userID, name, content string) (*domain.Speech, error) {
	return repo.CreateSpeech(ctx, db, userID, name, content)
}

// ListSpeeches proxies repo.ListSpeeches.
func (speechRepoShim) ListSpeeches(ctx context.Context, db *gorm.DB, userID string) ([]domain.Speech, error) {
	return repo.ListSpeeches(ctx, db, userID)
}

// GetSpeech proxies repo.GetSpeech.
func (speechRepoShim) GetSpeech(ctx context.Context, db *gorm.DB, id string) (*domain.Speech, error) {
	return repo.GetSpeech(ctx, db, id)
}

// DeleteSpeech proxies repo.DeleteSpeech.
func (speechRepoShim) DeleteSpeech(ctx context.Context, db *gorm.DB, id, userID string) (bool, error) {
	return repo.DeleteSpeech(ctx, db, id, userID)
}

// CountSpeeches proxies repo.CountSpeeches (pagination support).
func (speechRepoShim) CountSpeeches(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountSpeeches(ctx, db, userID)
}

// ListSpeechesPage proxies repo.ListSpeechesPage (pagination support).
func (speechRepoShim) ListSpeechesPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Speech, error) {
	return repo.ListSpeechesPage(ctx, db, userID, offset, limit)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given
// Gin engine. It configures observability (tracing, metrics), compression,
// authentication, idempotency and rate limiting, CORS and security
// headers, health and metrics endpoints, and then mounts the public API.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with query scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression
//  7. Metrics
//  8. Idempotency-Key validation
//  9. Rate limiter (per user/IP)
//  10. CORS and security headers
//
// Authentication runs per-group so /health, /metrics, and the banner stay
// public.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, verifier auth.Verifier, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured access logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit: the speech cap plus headroom for the JSON
	// envelope around it.
	r.Use(limitBody(int64(cfg.MaxSpeechLen) + 64<<10))

	// 6) Compress responses; speech payloads are highly compressible text.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency-Key shape validation (dedup lives in the service)
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
		MaxLen: 200,
	}))

	// 9) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps
		// tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in
		// addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Banner and liveness
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Hello from the Trippingly backend!")
	})
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services <- repo/db
	speechSvc := services.NewSpeechService(db, speechRepoShim{})
	speechSvc.MaxContentLen = cfg.MaxSpeechLen
	annSvc := &services.AnnotationService{
		DB:             db,
		IdempotencyTTL: cfg.IdempotencyTTL,
	}
	h := handlers.New(speechSvc, annSvc)

	// Public API (authenticated)
	api := groupWithPrefix(r, cfg.APIBasePath)
	api.Use(middleware.RequireAuth(verifier))
	{
		// Speeches
		api.POST("/uploadSpeech", h.UploadSpeech)
		api.GET("/getSpeeches", h.GetSpeeches)
		api.GET("/getSpeech/:speechId", h.GetSpeech)
		api.DELETE("/deleteSpeech/:speechId", h.DeleteSpeech)

		// Annotations
		api.POST("/saveEmojiAssociation", h.SaveEmojiAssociation)
		api.POST("/updateAssociationToggle", h.UpdateAssociationToggle)
	}
}

// limitBody returns a Gin middleware that caps the request body size for
// all endpoints to maxBytes using http.MaxBytesReader. Requests exceeding
// the cap cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
