// Package server implements the callout HTTP API.
//
// # Routes
//
//	GET    /healthz                   liveness and build info
//	POST   /v1/place                  placement.Input → placement.Result
//	POST   /v1/render?format=svg      scene body → artifact
//	GET    /v1/scenes                 stored scenes, newest first
//	POST   /v1/scenes                 store a scene, returns its id
//	GET    /v1/scenes/{id}            stored scene
//	PUT    /v1/scenes/{id}            replace a stored scene
//	DELETE /v1/scenes/{id}            delete a stored scene
//	GET    /v1/scenes/{id}/render     render a stored scene
//
// Errors are JSON objects {"code": ..., "error": ...}; INVALID_* codes map
// to 400, NOT_FOUND to 404, everything else to 500.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/callout/pkg/observability"
	"github.com/matzehuels/callout/pkg/pipeline"
	"github.com/matzehuels/callout/pkg/store"
)

const (
	// DefaultMaxBodyBytes limits request bodies.
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRequestTimeout bounds a single request.
	DefaultRequestTimeout = 30 * time.Second

	shutdownTimeout = 10 * time.Second
)

// Config wires the server's dependencies.
type Config struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger

	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

// Server serves the HTTP API.
type Server struct {
	runner  *pipeline.Runner
	store   store.Store
	logger  *log.Logger
	maxBody int64
	timeout time.Duration
}

// New creates a server. A nil Runner renders without caching, a nil Store
// keeps scenes in memory.
func New(cfg Config) *Server {
	s := &Server{
		runner:  cfg.Runner,
		store:   cfg.Store,
		logger:  cfg.Logger,
		maxBody: cfg.MaxBodyBytes,
		timeout: cfg.RequestTimeout,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.runner == nil {
		s.runner = pipeline.NewRunner(nil, nil, s.logger)
	}
	if s.store == nil {
		s.store = store.NewMemoryStore()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	if s.timeout <= 0 {
		s.timeout = DefaultRequestTimeout
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.timeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/place", s.handlePlace)
		r.Post("/render", s.handleRender)

		r.Route("/scenes", func(r chi.Router) {
			r.Get("/", s.handleListScenes)
			r.Post("/", s.handleCreateScene)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetScene)
				r.Put("/", s.handlePutScene)
				r.Delete("/", s.handleDeleteScene)
				r.Get("/render", s.handleRenderScene)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorBody{Code: "NOT_FOUND", Error: "no route for " + r.URL.Path})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close releases the runner and store.
func (s *Server) Close() error {
	return errors.Join(s.runner.Close(), s.store.Close())
}

// logRequests logs each request and reports it to the HTTP hooks.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		dur := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, dur)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", dur,
			"request_id", middleware.GetReqID(r.Context()))
	})
}
