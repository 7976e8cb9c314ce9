// SPDX-License-Identifier: MIT

// Package server is the thin HTTP API: GET/POST /api/search plus the
// engines/stats/health/version/cache routes. Uses the same chi wiring
// (request ID, real IP, CORS, security headers, recoverer) as the rest of
// this project's HTTP surface, narrowed to just these routes, no admin
// panel, no auth, no templates.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/apimgr/seesea/src/logging"
	"github.com/apimgr/seesea/src/ratelimit"
	"github.com/apimgr/seesea/src/search/orchestrator"
)

// Version is set by main at build time (ldflags) or left as "dev".
var Version = "dev"

// Server wires the orchestrator behind chi's router.
type Server struct {
	orc     *orchestrator.Orchestrator
	logger  *logging.Logger
	limiter *ratelimit.EndpointLimiters
	router  *chi.Mux
	http    *http.Server
}

// New builds a Server. logger and limiter may be nil, both degrade
// gracefully (no rate limiting, stdout-only logging).
func New(orc *orchestrator.Orchestrator, logger *logging.Logger, limiter *ratelimit.EndpointLimiters) *Server {
	s := &Server{orc: orc, logger: logger, limiter: limiter, router: chi.NewRouter()}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)
	s.router.Use(metricsMiddleware)

	if s.logger != nil {
		s.router.Use(s.logger.AccessMiddleware)
	}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if reqID := middleware.GetReqID(r.Context()); reqID != "" {
				w.Header().Set("X-Request-ID", reqID)
			}
			if r.URL.Path != "/metrics" {
				w.Header().Set("Cache-Control", "no-store")
			}
			next.ServeHTTP(w, r)
		})
	})
}

func (s *Server) searchMiddleware(next http.Handler) http.Handler {
	if s.limiter == nil {
		return next
	}
	return s.limiter.Get(ratelimit.EndpointSearch).Middleware(next)
}

func (s *Server) setupRoutes() {
	s.router.Get("/metrics", metricsHandler().ServeHTTP)

	s.router.Route("/api", func(r chi.Router) {
		r.With(s.searchMiddleware).Get("/search", s.handleSearch)
		r.With(s.searchMiddleware).Post("/search", s.handleSearch)
		r.Get("/stream", s.handleStream)

		r.Get("/engines", s.handleEngines)
		r.Get("/stats", s.handleStats)
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)

		r.Get("/cache/stats", s.handleCacheStats)
		r.Post("/cache/clear", s.handleCacheClear)
		r.Post("/cache/cleanup", s.handleCacheCleanup)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "no such route")
	})
}

// Handler exposes the underlying http.Handler, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
