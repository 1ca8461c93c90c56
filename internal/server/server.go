// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the wiring layer. It connects the store, services,
// handlers, middleware and routes, and decides:
//   - Which URL patterns map to which handler functions
//   - What middleware runs on which routes
//   - How the server starts and stops gracefully
//
// DEPENDENCY INJECTION FLOW:
//
//	main.go loads config.Config → server.New
//	server.New: openStore → services (+ metrics.Collector) → handlers → routes
//
// This is the "composition root" pattern: all dependencies are wired in one
// place (New/setupRoutes), rather than scattered across the codebase.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/cors"

	"github.com/sakif/kudos-board/internal/auth"
	"github.com/sakif/kudos-board/internal/config"
	"github.com/sakif/kudos-board/internal/handler"
	"github.com/sakif/kudos-board/internal/metrics"
	"github.com/sakif/kudos-board/internal/middleware"
	"github.com/sakif/kudos-board/internal/repository"
	"github.com/sakif/kudos-board/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the store. Start closes it after the HTTP server has
// drained, so no handler ever runs against a closed pool.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    repository.Store
	verifier *auth.TokenVerifier
	registry *prometheus.Registry
}

// New opens the configured store, seeds demo users when asked to, and builds
// the router.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	verifier, err := auth.NewTokenVerifier(cfg.JWTSecret, cfg.Issuer, cfg.Audience)
	if err != nil {
		return nil, fmt.Errorf("creating token verifier: %w", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}

	s := &Server{
		router:   chi.NewRouter(),
		config:   cfg,
		logger:   logger,
		store:    store,
		verifier: verifier,
		registry: prometheus.NewRegistry(),
	}

	if cfg.SeedDemoUsers {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		_, err := service.SeedDemoUsers(ctx, store, logger)
		cancel()
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("seeding demo users: %w", err)
		}
	}

	if err := s.setupRoutes(); err != nil {
		store.Close() // Clean up the store if route setup fails
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// Handler returns the fully wired router. Tests drive it with httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /health                 → DB ping (public)
// GET    /metrics                → Prometheus scrape (public)
// GET    /api/auth/user          → caller's user record (auth)
// GET    /api/users              → everyone, for the recipient picker (public)
// GET    /api/kudos              → the feed (public)
// POST   /api/kudos              → send a kudo (auth + sync)
// POST   /api/kudos/{id}/hide    → hide a kudo (auth + sync)
// GET    /*                      → SPA bundle, when STATIC_DIR is set
//
// MIDDLEWARE ORDER MATTERS:
// Middleware executes in the order it's added. Our order:
//  1. RequestID: assigns a unique ID to each request (for tracing)
//  2. RealIP: extracts the real client IP from proxy headers
//  3. CORS: answers preflights before any other work happens
//  4. OptionalAuth: attaches the caller, if any, so the logger can see it
//  5. Logger and Metrics: one log line and one sample per request
//  6. Recoverer: turns panics into 500s INSIDE the logger, so they get logged
func (s *Server) setupRoutes() error {
	collector := metrics.NewCollector(s.registry)
	s.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// === Global Middleware ===
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(cors.New(s.config.CORSOptions()).Handler)
	s.router.Use(auth.OptionalAuth(s.verifier))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(middleware.Metrics(collector))
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	// The Collector doubles as the kudo event recorder.
	var profiles service.ProfileFetcher
	if s.config.UserInfoURL != "" {
		profiles = auth.NewUserInfoClient(s.config.UserInfoURL)
	}
	userService := service.NewUserService(s.store, profiles, s.logger)
	kudoService := service.NewKudoService(s.store, collector, s.logger)

	// === Handlers ===
	authHandler := handler.NewAuthHandler(userService, s.logger)
	userHandler := handler.NewUserHandler(userService)
	kudoHandler := handler.NewKudoHandler(kudoService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	s.router.Get("/health", healthHandler.HandleHealth)
	s.router.Handle("/metrics", metrics.Handler(s.registry))

	requireAuth := auth.RequireAuth(s.verifier)

	s.router.Route("/api", func(r chi.Router) {
		// Unknown API paths get a JSON 404 instead of falling through
		// to the SPA's index.html.
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not_found","message":"Not found"}` + "\n"))
		})

		r.With(requireAuth).Get("/auth/user", authHandler.HandleCurrentUser)
		r.Get("/users", userHandler.HandleList)
		r.Get("/kudos", kudoHandler.HandleList)

		// Writes need a verified caller who also exists as a row, since
		// kudos reference users by foreign key.
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(authHandler.SyncUser)
			r.Post("/kudos", kudoHandler.HandleCreate)
			r.Post("/kudos/{id}/hide", kudoHandler.HandleHide)
		})
	})

	// === Static Files ===
	if s.config.StaticDir != "" {
		spa, err := handler.NewSPAHandler(s.config.StaticDir)
		if err != nil {
			return fmt.Errorf("creating SPA handler: %w", err)
		}
		s.router.Handle("/*", spa)
	}

	return nil
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store (flushes the SQLite WAL, releases pool connections)
func (s *Server) Start() error {
	// Runs AFTER everything else in this function finishes.
	defer func() {
		if err := s.store.Close(); err != nil {
			s.logger.Error("closing store", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
