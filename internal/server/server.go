// Package server wires the application together and runs the HTTP server.
//
// This is the composition root: New builds every dependency from a
// config.Config, in one place:
//
//	sqlite.DB ─┬─ AuthService ─────── AuthHandler
//	           ├─ SubmissionService ─ SubmissionHandler
//	           └─ HealthHandler
//
// Services receive repository interfaces and handlers receive service
// interfaces, so no layer reaches past the one below it.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/intervw/internal/apperror"
	"github.com/sakif/intervw/internal/auth"
	"github.com/sakif/intervw/internal/config"
	"github.com/sakif/intervw/internal/handler"
	"github.com/sakif/intervw/internal/middleware"
	sqliteRepo "github.com/sakif/intervw/internal/repository/sqlite"
	"github.com/sakif/intervw/internal/service"
	"github.com/sakif/intervw/internal/validate"
)

// Server owns the router and the database handle. The database is closed by
// Close, or by Start once the server has shut down.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New opens the database, applies migrations and builds the route table.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("creating token service: %w", err)
	}

	db, err := sqliteRepo.New(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens)

	return s, nil
}

// setupRoutes configures middleware and routes.
//
// ROUTES:
//
//	GET    /healthz                  → liveness (pings the database)
//	POST   /api/register             → create account, returns {user, token}
//	POST   /api/login                → verify credentials, returns {user, token}
//	GET    /api/submissions          → public paged listing (?page=&limit=)
//	GET    /api/me                   → caller's account             [auth]
//	POST   /api/submissions          → create                       [auth]
//	GET    /api/submissions/user     → caller's submissions         [auth]
//	PUT    /api/submissions/{id}     → partial update, owner only   [auth]
//	DELETE /api/submissions/{id}     → delete, owner only           [auth]
//
// MIDDLEWARE ORDER: RequestID first so every later log line can carry it,
// Recoverer last so a panic still produces a logged 500.
func (s *Server) setupRoutes(tokens *auth.TokenService) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	errs := handler.NewErrorWriter(s.logger, s.config.IsDevelopment())
	v := validate.New()

	authService := service.NewAuthService(s.db, tokens, auth.NewPasswordService(s.config.BcryptCost), v, s.logger)
	submissionService := service.NewSubmissionService(s.db, v, service.PageLimits{
		Default: s.config.DefaultPageSize,
		Max:     s.config.MaxPageSize,
	}, s.logger)

	authHandler := handler.NewAuthHandler(authService, errs, s.logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, errs, s.logger)
	healthHandler := handler.NewHealthHandler(s.db, s.logger)

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		errs.Write(w, r, apperror.NotFound("route", r.URL.Path))
	})
	s.router.MethodNotAllowed(errs.MethodNotAllowed)

	s.router.Get("/healthz", healthHandler.HandleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.HandleRegister)
		r.Post("/login", authHandler.HandleLogin)
		r.Get("/submissions", submissionHandler.HandleList)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(authService, errs.Unauthorized))

			r.Get("/me", authHandler.HandleMe)
			r.Post("/submissions", submissionHandler.HandleCreate)
			r.Get("/submissions/user", submissionHandler.HandleListMine)
			r.Put("/submissions/{id}", submissionHandler.HandleUpdate)
			r.Delete("/submissions/{id}", submissionHandler.HandleDelete)
		})
	})
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database.
func (s *Server) Close() error {
	return s.db.Close()
}

// Start serves HTTP until ctx is cancelled, then shuts down gracefully:
// stop accepting connections, give in-flight requests up to
// ShutdownTimeout, and close the database.
func (s *Server) Start(ctx context.Context) error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.config.DBPath),
			slog.String("env", s.config.AppEnv),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil

	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
		return nil
	}
}
