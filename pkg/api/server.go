// Package api exposes timeline compilation and record editing over HTTP.
//
// # Endpoints
//
//	GET    /healthz
//	GET    /v1/users/{user}/nodes
//	POST   /v1/users/{user}/nodes           {"record": {...}, "insertion": {...}}
//	GET    /v1/users/{user}/nodes/{id}
//	PUT    /v1/users/{user}/nodes/{id}
//	DELETE /v1/users/{user}/nodes/{id}      removes descendants too
//	GET    /v1/users/{user}/timeline        compiled layout (json, dot or svg)
//
// The insertion contract on POST is the one emitted on affordances and
// edges of a compiled layout: the server resolves it to the new record's
// parent, so a client can hand back exactly what it was given.
//
// Errors are JSON objects {"error": {"code": ..., "message": ...}} with the
// status derived from the error code.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/journeyline/journeyline/pkg/pipeline"
	"github.com/journeyline/journeyline/pkg/render/position"
	"github.com/journeyline/journeyline/pkg/store"
)

// Default server timeouts.
const (
	DefaultRequestTimeout = 60 * time.Second
	shutdownTimeout       = 10 * time.Second
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	store  store.Store
	layout position.Config
	logger *log.Logger
	router chi.Router
}

// New creates a server. The runner must share st as its store so that
// timeline reads see the records written through the API.
func New(runner *pipeline.Runner, st store.Store, layout position.Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		runner: runner,
		store:  st,
		layout: layout,
		logger: logger,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(DefaultRequestTimeout))

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1/users/{user}", func(r chi.Router) {
		r.Use(validateUser)

		r.Get("/timeline", s.handleTimeline)

		r.Route("/nodes", func(r chi.Router) {
			r.Get("/", s.handleListNodes)
			r.Post("/", s.handleCreateNode)

			r.Route("/{id}", func(r chi.Router) {
				r.Use(validateNodeID)
				r.Get("/", s.handleGetNode)
				r.Put("/", s.handleReplaceNode)
				r.Delete("/", s.handleDeleteNode)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, notFound("no route for %s %s", r.Method, r.URL.Path))
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, readTimeout, writeTimeout time.Duration) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
