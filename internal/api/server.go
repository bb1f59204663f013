// Copyright (c) 2026 Yomira. All rights reserved.
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

	"github.com/taibuivan/comicvoice/internal/core/catalog"
	"github.com/taibuivan/comicvoice/internal/core/ingest"
	"github.com/taibuivan/comicvoice/internal/core/progress"
	"github.com/taibuivan/comicvoice/internal/platform/apperr"
	"github.com/taibuivan/comicvoice/internal/platform/config"
	"github.com/taibuivan/comicvoice/internal/platform/constants"
	"github.com/taibuivan/comicvoice/internal/platform/middleware"
	"github.com/taibuivan/comicvoice/internal/platform/respond"
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
type Handlers struct {
	// Liveness is the /health handler. It answers 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler. It answers 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Catalog serves comics, chapters, pages and the OCR write-back.
	Catalog *catalog.Handler

	// Progress records and reads per-user reading positions.
	Progress *progress.Handler

	// Ingest runs synchronous source ingestion.
	Ingest *ingest.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *Server {
	r := NewRouter(context, cfg, log, h)

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

// NewRouter builds the routing tree on its own so tests can drive it with httptest.
func NewRouter(context context.Context, cfg *config.Config, log *slog.Logger, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// Unknown routes answer with the same envelope as a missing comic
	r.NotFound(func(writer http.ResponseWriter, request *http.Request) {
		respond.Error(writer, request, apperr.NotFound("Route"))
	})

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Group(func(reads chi.Router) {
			reads.Use(chimw.Timeout(constants.GlobalRequestTimeout))

			reads.Mount("/comics", h.Catalog.ComicRoutes())
			reads.Mount("/chapters", h.Catalog.ChapterRoutes())
			reads.Mount("/pages", h.Catalog.PageRoutes())
			reads.Mount("/progress", h.Progress.Routes())
		})

		// Ingestion waits on the scraper, so it gets a longer deadline and a tighter budget.
		api.Group(func(ingestion chi.Router) {
			ingestion.Use(chimw.Timeout(constants.IngestRequestTimeout))
			ingestion.Use(middleware.RateLimitWith(context, constants.IngestRateLimitRPS, constants.IngestRateLimitBurst))

			ingestion.Mount("/ingest", h.Ingest.Routes())
		})
	})

	return r
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
