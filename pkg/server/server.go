// Package server exposes point queries over HTTP.
//
// Routes:
//
//	GET  /v1/docs/{id}          processed doc of one documentable
//	GET  /v1/query?path=&from=  resolve a path query
//	GET  /v1/highlights?id=     tag highlights of a source doc
//	GET  /v1/completions        completion entries of every tag
//	GET  /v1/graph?format=      reference graph (dot, svg, json)
//	POST /v1/reload             reload the corpus and update the snapshot
//	GET  /metrics               Prometheus metrics
//	GET  /healthz               liveness
//
// Documentable IDs contain slashes and '#'; clients escape them as one
// path segment or pass them verbatim after /v1/docs/.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/docsmith/pkg/corpus"
	"github.com/matzehuels/docsmith/pkg/errors"
	"github.com/matzehuels/docsmith/pkg/pipeline"
	"github.com/matzehuels/docsmith/pkg/snapshot"
)

// LoadFunc loads the current documentables of the served corpus.
type LoadFunc func(ctx context.Context) ([]*corpus.Documentable, error)

// Config configures a Server.
type Config struct {
	Runner  *pipeline.Runner
	Store   *snapshot.Store
	Options pipeline.Options
	Load    LoadFunc

	// Metrics serves /metrics. Nil disables the route.
	Metrics http.Handler

	Logger *log.Logger
}

// Server answers point queries against a snapshot of one corpus.
type Server struct {
	runner  *pipeline.Runner
	store   *snapshot.Store
	opts    pipeline.Options
	load    LoadFunc
	metrics http.Handler
	logger  *log.Logger

	// mu guards ix. Queries mutate the docs of ix, so they hold it
	// exclusively.
	mu sync.Mutex
	ix *corpus.Index
}

// New creates a server. Call Reload before serving.
func New(cfg Config) (*Server, error) {
	if cfg.Load == nil {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "server needs a corpus loader")
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = snapshot.New(cfg.Logger)
	}
	cfg.Options.Mode = pipeline.ModeInteractive
	cfg.Options.Logger = cfg.Logger
	if err := cfg.Options.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &Server{
		runner:  cfg.Runner,
		store:   cfg.Store,
		opts:    cfg.Options,
		load:    cfg.Load,
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}, nil
}

// Reload loads the corpus and brings the snapshot up to date.
func (s *Server) Reload(ctx context.Context) (*pipeline.Result, error) {
	docs, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := corpus.NewIndex(docs)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.runner.Update(ctx, s.store, ix, s.opts)
	if err != nil {
		return nil, err
	}
	s.ix = ix
	return res, nil
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/docs/*", s.observe("/v1/docs/*", s.handleDoc))
		r.Get("/query", s.observe("/v1/query", s.handleQuery))
		r.Get("/highlights", s.observe("/v1/highlights", s.handleHighlights))
		r.Get("/completions", s.observe("/v1/completions", s.handleCompletions))
		r.Get("/graph", s.observe("/v1/graph", s.handleGraph))
		r.Post("/reload", s.observe("/v1/reload", s.handleReload))
	})
	return r
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// index returns the loaded index; callers hold s.mu.
func (s *Server) index() (*corpus.Index, error) {
	if s.ix == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no corpus loaded")
	}
	return s.ix, nil
}
