// Package server exposes the carve pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz           liveness and version
//	POST /v1/carve          carve the image in the request body
//	POST /v1/energy         energy map of the image in the request body
//	GET  /v1/jobs           recent carve jobs, newest first
//	GET  /v1/jobs/{id}      one carve job
//
// Carve parameters are query parameters: width, height, direction, seed,
// format, name, refresh, and view=overlay to receive the seam overlay
// instead of the carved image (styled by overlay_width and overlay_dim).
// Every carve request records a job whose ID
// is returned in the X-Job-ID header.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seamcarver/pkg/jobs"
	"github.com/matzehuels/seamcarver/pkg/observability"
	"github.com/matzehuels/seamcarver/pkg/pipeline"
)

// Options tune request handling.
type Options struct {
	// MaxUploadBytes caps the request body.
	MaxUploadBytes int64
	// Timeout bounds one carve request.
	Timeout time.Duration
	// JobTTL is how long job records are kept.
	JobTTL time.Duration
}

// Defaults for zero Options fields.
const (
	DefaultMaxUploadBytes = 32 << 20
	DefaultTimeout        = 2 * time.Minute
)

// Server serves the HTTP API.
type Server struct {
	runner *pipeline.Runner
	jobs   jobs.Store
	logger *log.Logger
	opts   Options
	router chi.Router
}

// New creates a server. A nil store keeps jobs in memory.
func New(runner *pipeline.Runner, store jobs.Store, logger *log.Logger, opts Options) *Server {
	if store == nil {
		store = jobs.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.JobTTL <= 0 {
		opts.JobTTL = jobs.DefaultTTL
	}

	s := &Server{runner: runner, jobs: store, logger: logger, opts: opts}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/carve", s.handleCarve)
		r.Post("/energy", s.handleEnergy)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
	})
	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is canceled, then shuts down
// gracefully, giving in-flight requests up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// instrument logs every request and forwards it to the HTTP hooks.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		duration := time.Since(start)

		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, route)
		hooks.OnResponse(r.Context(), r.Method, route, status, duration)

		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", duration.Round(time.Millisecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
