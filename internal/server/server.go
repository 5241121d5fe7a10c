// Package server sets up the HTTP server, router, and all route definitions.
//
// SERVER ARCHITECTURE:
// This package is the "wiring" layer. It decides:
//   - which store backs the repositories (SQLite file or hosted Postgres)
//   - which URL patterns map to which handler functions
//   - what middleware runs on which routes
//   - how the server starts and stops
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → openStore → repositories
//	repositories  → ProjectService / NoteService / AuthService (+ events.Broker)
//	services      → API, page and auth handlers → chi routes
//
// This is the "composition root": every dependency is built in New and
// nothing below it constructs its own collaborators.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/sakif/project-vault/internal/auth"
	"github.com/sakif/project-vault/internal/config"
	"github.com/sakif/project-vault/internal/events"
	"github.com/sakif/project-vault/internal/handler"
	"github.com/sakif/project-vault/internal/middleware"
	"github.com/sakif/project-vault/internal/repository"
	"github.com/sakif/project-vault/internal/repository/postgres"
	sqliteRepo "github.com/sakif/project-vault/internal/repository/sqlite"
	"github.com/sakif/project-vault/internal/service"
	"github.com/sakif/project-vault/web"
)

// shutdownTimeout is how long in-flight requests get after SIGINT/SIGTERM.
const shutdownTimeout = 30 * time.Second

// store is what the server needs from either database.
type store interface {
	handler.Pinger
	Close() error
}

// repositories is one store's per-table views.
type repositories struct {
	projects repository.ProjectRepository
	notes    repository.NoteRepository
	users    repository.UserRepository
}

// Server represents the HTTP server and all its dependencies.
//
// RESOURCE MANAGEMENT:
// The Server owns the database pool and the change broker. Run closes both
// after the HTTP server has drained.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     store
	broker *events.Broker
}

// New opens the store and wires every route. The caller must Run (or Close)
// the returned server.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, repos, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
		broker: events.NewBroker(),
	}

	if err := s.setupRoutes(repos, web.FS); err != nil {
		s.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// openStore picks the database from config.
//
// IMPORT ALIAS:
// repository/sqlite is imported as sqliteRepo so it is not confused with the
// modernc driver it wraps.
func openStore(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (store, repositories, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		db, err := postgres.Open(ctx, cfg.DatabaseURL, cfg.TablePrefix)
		if err != nil {
			return nil, repositories{}, fmt.Errorf("opening postgres: %w", err)
		}
		return db, repositories{projects: db.Projects(), notes: db.Notes(), users: db.Users()}, nil

	case config.DriverSQLite:
		// like `mkdir -p`; the file itself is created by the driver
		if dir := filepath.Dir(cfg.SQLitePath); dir != "." && cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, repositories{}, fmt.Errorf("creating database directory %s: %w", dir, err)
			}
		}
		db, err := sqliteRepo.New(cfg.SQLitePath)
		if err != nil {
			return nil, repositories{}, fmt.Errorf("opening sqlite: %w", err)
		}
		logger.Info("sqlite store opened", slog.String("path", cfg.SQLitePath))
		return db, repositories{projects: db.Projects(), notes: db.Notes(), users: db.Users()}, nil

	default:
		return nil, repositories{}, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET  /health/live, /health/ready          probes
//	GET  /static/*                            embedded CSS/JS
//	GET  /                                    gallery (optional auth)
//	GET  /login, POST /login, POST /logout    sign-in
//	GET  /auth/github/login, /callback        GitHub sign-in (if configured)
//	     /admin..., /notes...                 admin pages (redirect to /login)
//	     /api/projects (GET public)           JSON API
//	     /api/notes, /api/me, mutations       JSON API (401 without token)
//	GET  /api/events                          SSE change feed
//
// MIDDLEWARE ORDER MATTERS:
// RequestID first so the logger can print it; Recoverer last so it wraps the
// handler directly and a panic still produces a logged 500.
func (s *Server) setupRoutes(repos repositories, assets fs.FS) error {
	cfg := s.config

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}

	var github *auth.GitHubProvider
	if cfg.Auth.GitHub.Enabled() {
		github = auth.NewGitHubProvider(cfg.Auth.GitHub.ClientID, cfg.Auth.GitHub.ClientSecret, cfg.Auth.GitHub.CallbackURL)
	}

	// === Services ===
	projects := service.NewProjectService(repos.projects, s.broker, s.logger)
	notes := service.NewNoteService(repos.notes, s.broker, s.logger)
	authService := service.NewAuthService(repos.users, tokens, auth.NewPasswordService(), service.AdminPolicy{
		PasswordHash:  cfg.Auth.AdminPasswordHash,
		AllowedLogins: cfg.Auth.GitHub.AllowedLogins,
	}, s.logger)

	// === Handlers ===
	views, err := handler.NewViews(assets, s.logger)
	if err != nil {
		return err
	}
	pages := handler.NewPageHandler(projects, notes, views, s.logger)
	authHandler := handler.NewAuthHandler(authService, github, views, tokens.TTL(), cfg.Auth.CookieSecure, s.logger)
	projectAPI := handler.NewProjectHandler(projects, s.logger)
	noteAPI := handler.NewNoteHandler(notes, s.logger)
	health := handler.NewHealthHandler(s.db, s.logger)

	// === Global Middleware ===
	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(s.logger))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health/live", health.HandleLive)
	r.Get("/health/ready", health.HandleReady)

	static, err := fs.Sub(assets, "static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(static))))

	// === Pages ===
	r.With(auth.OptionalAuth(tokens)).Get("/", pages.HandleGallery)
	r.Get("/login", authHandler.HandleLoginPage)
	r.Post("/login", authHandler.HandleLogin)
	r.Post("/logout", authHandler.HandleLogout)
	if github != nil {
		r.Get("/auth/github/login", authHandler.HandleGitHubLogin)
		r.Get("/auth/github/callback", authHandler.HandleGitHubCallback)
	}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequirePage(tokens))
		r.Get("/admin", pages.HandleAdmin)
		r.Post("/admin/projects", pages.HandleSaveProject)
		r.Post("/admin/projects/{id}", pages.HandleSaveProject)
		r.Post("/admin/projects/{id}/delete", pages.HandleDeleteProject)
		r.Get("/notes", pages.HandleNotes)
		r.Post("/notes", pages.HandleSaveNote)
		r.Post("/notes/{id}", pages.HandleSaveNote)
		r.Post("/notes/{id}/delete", pages.HandleDeleteNote)
	})

	// === API ===
	// CORS only matters for the JSON API; pages are same-origin.
	apiCORS := cors.New(cors.Options{
		AllowedOrigins:   cfg.App.HTTP.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(apiCORS.Handler)

		r.Get("/projects", projectAPI.HandleList)
		r.Get("/projects/{id}", projectAPI.HandleGetByID)
		r.Get("/events", s.broker.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(tokens))
			r.Get("/me", authHandler.HandleMe)

			r.Post("/projects", projectAPI.HandleCreate)
			r.Put("/projects/{id}", projectAPI.HandleUpdate)
			r.Patch("/projects/{id}/snippet", projectAPI.HandleUpdateSnippet)
			r.Delete("/projects/{id}", projectAPI.HandleDelete)

			r.Get("/notes", noteAPI.HandleList)
			r.Get("/notes/{id}", noteAPI.HandleGetByID)
			r.Post("/notes", noteAPI.HandleCreate)
			r.Put("/notes/{id}", noteAPI.HandleUpdate)
			r.Delete("/notes/{id}", noteAPI.HandleDelete)
		})
	})

	return nil
}

// Handler exposes the router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the broker and the database. Safe after Run.
func (s *Server) Close() {
	s.broker.Close()
	if err := s.db.Close(); err != nil {
		s.logger.Error("closing database", slog.String("error", err.Error()))
	}
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives.
//
// GRACEFUL SHUTDOWN:
//  1. stop accepting connections
//  2. give in-flight requests up to 30s
//  3. close the broker (ends open /api/events streams) and the database
//
// The SSE streams would otherwise hold Shutdown for the full timeout, so the
// broker is closed as soon as shutdown starts.
func (s *Server) Run(ctx context.Context) error {
	defer s.Close()

	httpServer := &http.Server{
		Addr:              s.config.App.HTTP.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: /api/events streams indefinitely
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server starting",
			slog.String("address", httpServer.Addr),
			slog.String("url", s.config.App.HTTP.BaseURL),
			slog.String("store", s.config.Store.Driver),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		case <-gCtx.Done():
		}

		s.broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	})

	return g.Wait()
}
