// Package main is the entry point for the micro-invest advisor service.
// It wires the risk model, allocation policy, projection engine and session
// store, then serves the advisory API over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aristath/microinvest/internal/config"
	"github.com/aristath/microinvest/internal/database"
	"github.com/aristath/microinvest/internal/modules/allocation"
	"github.com/aristath/microinvest/internal/modules/plan"
	"github.com/aristath/microinvest/internal/modules/projection"
	"github.com/aristath/microinvest/internal/modules/risk"
	"github.com/aristath/microinvest/internal/modules/sessions"
	"github.com/aristath/microinvest/internal/server"
	"github.com/aristath/microinvest/pkg/logger"
)

func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})

	log.Info().Msg("Starting micro-invest advisor")

	// Optionally refresh model artifacts from object storage before loading.
	// Failures are not fatal: the local artifact (if any) still applies.
	if cfg.ArtifactStore.Enabled() {
		fetchCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		fetcher, err := risk.NewArtifactFetcher(fetchCtx, risk.StoreOptions{
			Bucket:    cfg.ArtifactStore.Bucket,
			Prefix:    cfg.ArtifactStore.Prefix,
			Endpoint:  cfg.ArtifactStore.Endpoint,
			Region:    cfg.ArtifactStore.Region,
			AccessKey: cfg.ArtifactStore.AccessKey,
			SecretKey: cfg.ArtifactStore.SecretKey,
		}, log)
		if err != nil {
			log.Warn().Err(err).Msg("Artifact store unavailable, using local artifacts")
		} else if err := fetcher.FetchModelArtifacts(fetchCtx, cfg.ModelPath, cfg.ColumnsPath); err != nil {
			log.Warn().Err(err).Msg("Artifact fetch failed, using local artifacts")
		}
		cancel()
	}

	// The model may legitimately be absent; planning then fails its
	// precondition until an operator installs an artifact.
	model := risk.LoadModel(cfg.ModelPath, cfg.ColumnsPath, log)
	if model == nil {
		log.Warn().Msg("No risk model loaded - profile-based planning disabled until an artifact is installed")
	}

	sessionsDB, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "sessions.db"),
		Profile: database.ProfileCache,
		Name:    "sessions",
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open sessions database")
	}
	defer sessionsDB.Close()

	sessionRepo, err := sessions.NewRepository(sessionsDB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize session repository")
	}

	cleanup := sessions.NewCleanupJob(sessionRepo, time.Duration(cfg.SessionTTLHours)*time.Hour, log)
	if err := cleanup.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start session cleanup job")
	}

	engine := projection.NewEngine(log)
	planService := plan.NewService(model, allocation.ProbabilityPolicy{}, engine, sessionRepo, log)

	srv := server.New(server.Config{
		Log:         log,
		Port:        cfg.Port,
		DevMode:     cfg.DevMode,
		Config:      cfg,
		SessionsDB:  sessionsDB,
		SessionRepo: sessionRepo,
		PlanService: planService,
		RiskModel:   model,
	})

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	cleanup.Stop()
	log.Info().Msg("Session cleanup job stopped")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
