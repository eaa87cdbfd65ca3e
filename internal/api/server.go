// Copyright (c) 2026 Digital Hub. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/digitalhub/internal/news"
	"github.com/taibuivan/digitalhub/internal/platform/apperr"
	"github.com/taibuivan/digitalhub/internal/platform/config"
	"github.com/taibuivan/digitalhub/internal/platform/constants"
	"github.com/taibuivan/digitalhub/internal/platform/metrics"
	"github.com/taibuivan/digitalhub/internal/platform/middleware"
	"github.com/taibuivan/digitalhub/internal/platform/respond"
	"github.com/taibuivan/digitalhub/internal/users/account"
	"github.com/taibuivan/digitalhub/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here and a Mount below.
type Handlers struct {
	// Liveness is the /health handler. It returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Metrics serves the Prometheus exposition format.
	Metrics http.Handler

	// Auth handles the session lifecycle (register, login, refresh, logout, reset).
	Auth *auth.Handler

	// Account manages the caller's own profile and preferences.
	Account *account.Handler

	// News serves the public feed and the editorial endpoint.
	News *news.Handler

	// Notify upgrades /ws to a WebSocket notification session.
	Notify http.Handler
}

// # Server Initialization

/*
NewServer constructs the chi router with the full middleware chain and
registers all route groups.

# Pipeline

 1. RealIP (only behind a trusted proxy), RequestID, StructuredLogger, Metrics
 2. Diagnostics, PanicRecovery, SecureHeaders, CORS, CleanPath
 3. Probes and /metrics, outside the rate limiter
 4. /api/v1: per-IP limiter, bearer authentication, request timeout

The context bounds the rate limiter janitor.
*/
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, m *metrics.Metrics, authenticator middleware.Authenticator, h Handlers) *Server {
	r := chi.NewRouter()
	limiter := middleware.NewIPRateLimiter(context, cfg.RateLimitMax, cfg.RateLimitWindow)

	// # Middleware Chain
	// Global middleware applied in order of execution.
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.Metrics(m))
	r.Use(middleware.Diagnostics(!cfg.IsProduction()))
	r.Use(middleware.PanicRecovery())
	r.Use(middleware.SecureHeaders(cfg.IsProduction()))
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(chimw.CleanPath)

	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})
	r.MethodNotAllowed(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	// # Infrastructure Endpoints
	// Unauthenticated probes for container orchestration and scraping.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)
	if h.Metrics != nil {
		r.Handle("/metrics", h.Metrics)
	}

	// # Application API
	// Domain-specific route groups mounted under versioned prefix.
	r.Route(constants.APIBasePath, func(api chi.Router) {
		api.Use(limiter.Middleware)
		api.Use(middleware.Authenticate(authenticator))

		// Long-lived sessions skip the request timeout.
		if h.Notify != nil {
			api.Handle("/ws", h.Notify)
		}

		api.Group(func(rest chi.Router) {
			rest.Use(chimw.Timeout(constants.GlobalRequestTimeout))
			rest.Mount("/auth", h.Auth.Routes())
			rest.Mount("/users", h.Account.Routes())
			rest.Mount("/news", h.News.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
