// Package server provides the HTTP server and routing for the advisor.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/microinvest/internal/config"
	"github.com/aristath/microinvest/internal/database"
	holdingshandlers "github.com/aristath/microinvest/internal/modules/holdings/handlers"
	"github.com/aristath/microinvest/internal/modules/plan"
	planhandlers "github.com/aristath/microinvest/internal/modules/plan/handlers"
	"github.com/aristath/microinvest/internal/modules/risk"
	riskhandlers "github.com/aristath/microinvest/internal/modules/risk/handlers"
	"github.com/aristath/microinvest/internal/modules/sessions"
	"github.com/aristath/microinvest/pkg/embedded"
)

// Config holds server configuration
type Config struct {
	Log         zerolog.Logger
	Port        int
	DevMode     bool
	Config      *config.Config
	SessionsDB  *database.DB
	SessionRepo *sessions.Repository
	PlanService *plan.Service
	RiskModel   *risk.Model
}

// Server represents the HTTP server
type Server struct {
	router *chi.Mux
	server *http.Server
	log    zerolog.Logger
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	s := &Server{
		router: chi.NewRouter(),
		log:    cfg.Log.With().Str("component", "server").Logger(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(30 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	systemHandlers := NewSystemHandlers(cfg.Log, cfg.SessionsDB)
	planHandlers := planhandlers.NewHandler(cfg.PlanService, cfg.SessionRepo, cfg.Log)
	riskHandlers := riskhandlers.NewHandler(cfg.RiskModel, cfg.Log)
	holdingsHandlers := holdingshandlers.NewHandler(cfg.Log)

	s.router.Route("/api", func(r chi.Router) {
		planHandlers.RegisterRoutes(r)
		riskHandlers.RegisterRoutes(r)
		holdingsHandlers.RegisterRoutes(r)
		systemHandlers.RegisterRoutes(r)
	})

	// Embedded frontend at the root
	if frontend, err := embedded.Frontend(); err == nil {
		fileServer := http.FileServer(http.FS(frontend))
		s.router.Get("/", fileServer.ServeHTTP)
		s.router.Get("/*", fileServer.ServeHTTP)
	} else {
		s.log.Warn().Err(err).Msg("Embedded frontend unavailable")
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	s.log.Info().Str("addr", s.server.Addr).Msg("HTTP server listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
