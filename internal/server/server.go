// Package server is the dexview web front end: an HTML viewer page, a small
// JSON API and the operational endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/dexview/internal/config"
	"github.com/Sternrassler/dexview/internal/session"
	"github.com/Sternrassler/dexview/pkg/metrics"
)

var httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "dexview_http_requests_total",
	Help: "HTTP requests served by route pattern and status",
}, []string{"route", "status"})

// Deps are the collaborators the server needs.
type Deps struct {
	Fetcher    session.RangeFetcher
	Vocabulary *session.Vocabulary
	Sessions   *session.Store
}

// Server represents the HTTP server.
type Server struct {
	config config.ServerConfig
	viewer config.ViewerConfig
	router *chi.Mux
	deps   Deps
	page   *template.Template
	logger zerolog.Logger
}

// New creates a server with all routes registered.
func New(cfg config.ServerConfig, viewer config.ViewerConfig, deps Deps) (*Server, error) {
	if deps.Fetcher == nil {
		return nil, errors.New("range fetcher is required")
	}
	if deps.Vocabulary == nil {
		deps.Vocabulary = &session.Vocabulary{}
	}
	if deps.Sessions == nil {
		deps.Sessions = session.NewStore(session.DefaultIdleTimeout)
	}

	page, err := parsePage()
	if err != nil {
		return nil, fmt.Errorf("parse page template: %w", err)
	}

	s := &Server{
		config: cfg,
		viewer: viewer,
		deps:   deps,
		page:   page,
		logger: log.With().Str("component", "http-server").Logger(),
	}
	s.setupRouter()
	return s, nil
}

// Router returns the configured router.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)
	if s.config.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.RequestTimeout))
	}

	origins := s.config.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", sessionHeader},
		ExposedHeaders:   []string{sessionHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Get("/", s.handlePage)

	r.Route("/api", func(r chi.Router) {
		r.Get("/types", s.handleTypes)
		r.Post("/range", s.handleRange)
		r.Get("/view", s.handleView)
	})

	s.router = r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
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

	timeout := s.config.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	s.logger.Info().Msg("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestsTotal.WithLabelValues(route, strconv.Itoa(status)).Inc()

		s.logger.Debug().
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

// handleReady reports ready once the one-off vocabulary load has finished,
// whether or not it succeeded.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	vocab := s.deps.Vocabulary
	if !vocab.Done() {
		http.Error(w, "loading type vocabulary", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	if !vocab.Ready() {
		fmt.Fprint(w, "OK (type vocabulary unavailable)")
		return
	}
	fmt.Fprint(w, "OK")
}
