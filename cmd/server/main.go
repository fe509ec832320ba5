// Command server runs the guardias backend: the HTTP API serving the
// aggregated absence panel, the absence and cover assignment lifecycle, and
// the merged staff directory.
//
// All configuration comes from the environment (a .env file is honored in
// development). Without DB_PATH the service runs entirely in memory; with it,
// absences, assignments, and the directory persist in SQLite.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/jotasones/guardias-backend/internal/config"
	httpapi "github.com/jotasones/guardias-backend/internal/http"
	"github.com/jotasones/guardias-backend/internal/observability"
	"github.com/jotasones/guardias-backend/internal/repo"
	"github.com/jotasones/guardias-backend/internal/store"
	"github.com/jotasones/guardias-backend/internal/sysutil"
)

// version is stamped at build time via -ldflags.
var version = "dev"

func main() {
	// .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	ctx := context.Background()
	shutdownTracing, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("tracing setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn().Err(err).Msg("tracing shutdown failed")
		}
	}()

	var replicator store.Replicator
	if cfg.ReplicaURL != "" {
		replicator = store.NewHTTPReplicator(cfg.ReplicaURL, cfg.Sources.FetchTimeout)
		log.Info().Str("url", cfg.ReplicaURL).Msg("write replication enabled")
	}

	// The backing store is optional: without DB_PATH everything lives in
	// process memory and the directory endpoints serve their fallbacks.
	var db *gorm.DB
	var st store.Store
	if cfg.DBPath != "" {
		db, err = repo.OpenSQLite(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("database open failed")
		}
		if err := repo.AutoMigrate(db); err != nil {
			log.Fatal().Err(err).Msg("database migration failed")
		}
		gs, err := store.NewGormStore(db, replicator)
		if err != nil {
			log.Fatal().Err(err).Msg("store initialization failed")
		}
		st = gs
		log.Info().Str("path", cfg.DBPath).Msg("sqlite backing store ready")
	} else {
		st = store.NewMemoryStore(replicator)
		log.Info().Msg("running with in-memory store")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, st, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	log.Info().Msg("bye")
}
