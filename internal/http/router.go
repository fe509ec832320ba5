// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - The service must come up even with no database and every upstream down
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/config"
	"github.com/jotasones/guardias-backend/internal/http/handlers"
	"github.com/jotasones/guardias-backend/internal/http/middleware"
	"github.com/jotasones/guardias-backend/internal/repo"
	"github.com/jotasones/guardias-backend/internal/services"
	"github.com/jotasones/guardias-backend/internal/sources"
	"github.com/jotasones/guardias-backend/internal/store"
)

// idemRecorder adapts the idempotency repository functions to the
// handlers.IdempotencyRecorder interface.
type idemRecorder struct {
	db  *gorm.DB
	ttl time.Duration
}

// Record proxies repo.CreateIdempotency, treating a duplicate key as
// already recorded.
func (r idemRecorder) Record(ctx context.Context, key, date, absenceID string) error {
	_, err := repo.CreateIdempotency(ctx, r.db, key, date, absenceID, http.StatusCreated, r.ttl)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil
	}
	return err
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. db is the optional backing store handle and may be nil; st holds
// the absences and assignments regardless.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured access logs
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip compression (panel payloads are repetitive JSON)
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per IP, bypass on replay)
//  10. CORS and security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, st store.Store, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Compression; /metrics stays uncompressed for scrapers
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation, only meaningful with a backing store
	if db != nil {
		r.Use(middleware.IdempotencyValidator(
			middleware.IdempotencyOptions{MaxLen: 200},
			func(ctx context.Context, key, date string, now time.Time) (bool, error) {
				rec, err := repo.GetIdempotency(ctx, db, key, date, now)
				if err != nil || rec == nil {
					return false, nil
				}
				return true, nil
			},
		))
	}

	// 9) Token-bucket rate limiter per IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst)
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header.
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
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
			AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
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

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: adapters ← config, services ← adapters/store/db
	timeout := cfg.Sources.FetchTimeout
	adapters := []sources.Adapter{sources.NewLocalAdapter(st)}
	var profiles []services.ProfileSource
	if cfg.Sources.RemoteAPIURL != "" {
		remote := sources.NewRemoteAdapter(cfg.Sources.RemoteAPIURL, timeout)
		adapters = append(adapters, remote)
		profiles = append(profiles, remote)
	}
	if cfg.Sources.ScriptURL != "" {
		adapters = append(adapters, sources.NewScriptAdapter(cfg.Sources.ScriptURL, timeout))
	}
	if cfg.Sources.CSVURL != "" {
		adapters = append(adapters, sources.NewCSVAdapter(cfg.Sources.CSVURL, timeout))
	}

	panelSvc := services.NewPanelService(st, adapters...)
	absenceSvc := services.NewAbsenceService(st, db)
	dirSvc := services.NewDirectoryService(db, profiles...)

	h := handlers.New(panelSvc, absenceSvc, dirSvc)
	if db != nil {
		h = h.WithIdempotency(idemRecorder{db: db, ttl: cfg.IdempotencyTTL})
	}

	// Public API
	api := groupWithPrefix(r, cfg.APIBasePath)
	{
		// Panel
		api.GET("/panel", h.Panel)

		// Directory
		api.GET("/profesores", h.Teachers)
		api.GET("/grupos", h.Groups)
		api.GET("/profesores-disponibles", h.AvailableTeachers)

		// Absences
		api.POST("/ausencias", h.CreateAbsence)
		api.DELETE("/ausencias/:id", h.DeleteAbsence)

		// Assignments
		api.POST("/guardias", h.CreateAssignment)
		api.DELETE("/guardias/:id", h.DeleteAssignment)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
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
