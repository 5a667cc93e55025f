// Package server exposes chartkit over HTTP: datasets are uploaded as CSV,
// held in memory, and laid out into scenes on request.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/spektr-org/chartkit/config"
	"github.com/spektr-org/chartkit/schema"
)

// Server is the chartkit HTTP server.
type Server struct {
	cfg     *config.Config
	catalog *schema.Config // nil: each upload discovers its own
	store   *Store
	router  *chi.Mux
	server  *http.Server
}

// New creates a Server. A nil catalog makes every upload draft its own
// catalog from the CSV header and values.
func New(cfg *config.Config, catalog *schema.Config) *Server {
	s := &Server{
		cfg:     cfg,
		catalog: catalog,
		store:   NewStore(cfg.Server.MaxDatasets),
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if t := s.cfg.Server.RequestTimeout; t > 0 {
		s.router.Use(middleware.Timeout(t))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/catalog", s.handleCatalog)

		r.Post("/datasets", s.handleUpload)
		r.Get("/datasets/{id}", s.handleGetDataset)
		r.Delete("/datasets/{id}", s.handleDeleteDataset)

		r.Get("/datasets/{id}/scene", s.handleScene)
		r.Get("/datasets/{id}/scene.svg", s.handleSceneSVG)
		r.Get("/datasets/{id}/table", s.handleTable)
	})
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("chartkit: listening", "addr", sc.Addr(), "catalog", s.catalog != nil)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}
