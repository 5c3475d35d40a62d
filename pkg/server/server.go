// Package server exposes mapping roots over HTTP.
//
// Every route lives under /api/roots/{root}. The server keeps one
// [editor.Editor] per root, so a mutation that arrives while another is in
// flight on the same root is answered with 409 Conflict.
//
//	GET    /api/roots                              list roots
//	GET    /api/roots/{root}/graph                 graph document (JSON)
//	GET    /api/roots/{root}/graph.svg             rendered graph
//	GET    /api/roots/{root}/snapshot              snapshot (JSON)
//	PUT    /api/roots/{root}/snapshot              import a snapshot
//	POST   /api/roots/{root}/mappings              {"source", "target"}
//	DELETE /api/roots/{root}/mappings?path=        delete a mapping subtree
//	PUT    /api/roots/{root}/mappings/expression   {"output", "expression"}
//	POST   /api/roots/{root}/elements              {"path"}
//	POST   /api/roots/{root}/reset
//	POST   /api/roots/{root}/visibility/toggle     {"path", "direction"}
//	PUT    /api/roots/{root}/search                {"input", "output"}
//
// Mutating routes answer with the rebuilt graph document.
package server

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/datamapper/pkg/cache"
	"github.com/matzehuels/datamapper/pkg/editor"
	"github.com/matzehuels/datamapper/pkg/pipeline"
	"github.com/matzehuels/datamapper/pkg/store"
)

// maxBodyBytes bounds request bodies, snapshots included.
const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	Logger *log.Logger
	// Cache holds rendered SVG. Nil disables caching.
	Cache cache.Cache
	// Detailed renders kinds and add-element markers in SVG output.
	Detailed bool
}

// Server routes HTTP requests to per-root editors.
type Server struct {
	store    store.Store
	runner   *pipeline.Runner
	logger   *log.Logger
	detailed bool

	mu      sync.Mutex
	editors map[string]*editor.Editor
}

// New creates a server backed by s.
func New(s store.Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Server{
		store:    s,
		runner:   pipeline.NewRunner(opts.Cache, nil, logger),
		logger:   logger,
		detailed: opts.Detailed,
		editors:  make(map[string]*editor.Editor),
	}
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/roots", func(r chi.Router) {
		r.Get("/", s.handleListRoots)
		r.Route("/{root}", func(r chi.Router) {
			r.Get("/graph", s.handleGraph)
			r.Get("/graph.svg", s.handleGraphSVG)
			r.Get("/snapshot", s.handleGetSnapshot)
			r.Put("/snapshot", s.handlePutSnapshot)
			r.Post("/mappings", s.handleCreateMapping)
			r.Delete("/mappings", s.handleDeleteMapping)
			r.Put("/mappings/expression", s.handleUpdateExpression)
			r.Post("/elements", s.handleAddElement)
			r.Post("/reset", s.handleReset)
			r.Post("/visibility/toggle", s.handleToggle)
			r.Put("/search", s.handleSearch)
		})
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// editor returns the session for root, loading it on first use.
func (s *Server) editor(ctx context.Context, root string) (*editor.Editor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ed, ok := s.editors[root]; ok {
		return ed, nil
	}
	ed, err := editor.Open(ctx, s.store, root, editor.Options{Logger: s.logger})
	if err != nil {
		return nil, err
	}
	s.editors[root] = ed
	return ed, nil
}

// editorForImport is [Server.editor] that starts an empty session for roots
// the store does not know yet.
func (s *Server) editorForImport(ctx context.Context, root string) (*editor.Editor, error) {
	ed, err := s.editor(ctx, root)
	if !store.IsNotFound(err) {
		return ed, err
	}
	p, err := store.NewPersister(s.store, root)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ed, ok := s.editors[root]; ok {
		return ed, nil
	}
	ed = editor.New(root, nil, p, editor.Options{Logger: s.logger})
	s.editors[root] = ed
	return ed, nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
