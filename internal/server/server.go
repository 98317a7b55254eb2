// Package server provides the HTTP status API for investsync.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/aristath/investsync/internal/database"
	"github.com/aristath/investsync/internal/runlog"
	"github.com/aristath/investsync/internal/syncer"
)

// SyncRunner starts synchronization runs
type SyncRunner interface {
	SyncInstruments(ctx context.Context) (*syncer.Report, error)
	SyncCandles(ctx context.Context, figis []string, table string) (*syncer.Report, error)
}

// RunStore reads the run journal
type RunStore interface {
	List(ctx context.Context, kind syncer.Kind, limit int) ([]runlog.Summary, error)
	Get(ctx context.Context, runID string) (*syncer.Report, error)
}

// JobLister reports registered scheduler jobs
type JobLister interface {
	Jobs() []string
}

// Config holds server configuration
type Config struct {
	Log       zerolog.Logger
	Port      int
	DevMode   bool
	Engine    SyncRunner
	Runs      RunStore
	Databases []*database.DB
	Jobs      JobLister // optional
	// RunTimeout bounds runs triggered over HTTP
	RunTimeout time.Duration
}

// Server represents the HTTP server
type Server struct {
	router     *chi.Mux
	server     *http.Server
	log        zerolog.Logger
	port       int
	engine     SyncRunner
	runs       RunStore
	databases  []*database.DB
	jobs       JobLister
	runTimeout time.Duration
	startedAt  time.Time

	// triggered runs outlive their request
	background sync.WaitGroup
}

// New creates a new HTTP server
func New(cfg Config) *Server {
	runTimeout := cfg.RunTimeout
	if runTimeout <= 0 {
		runTimeout = time.Hour
	}

	s := &Server{
		router:     chi.NewRouter(),
		log:        cfg.Log.With().Str("component", "server").Logger(),
		port:       cfg.Port,
		engine:     cfg.Engine,
		runs:       cfg.Runs,
		databases:  cfg.Databases,
		jobs:       cfg.Jobs,
		runTimeout: runTimeout,
		startedAt:  time.Now(),
	}

	s.setupMiddleware(cfg.DevMode)
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware(devMode bool) {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(10 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	if !devMode {
		s.router.Use(middleware.Compress(5))
	}
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/system", s.handleSystem)

		r.Route("/runs", func(r chi.Router) {
			r.Get("/", s.handleListRuns)
			r.Get("/{id}", s.handleGetRun)
		})

		r.Route("/sync", func(r chi.Router) {
			r.Post("/instruments", s.handleSyncInstruments)
			r.Post("/candles", s.handleSyncCandles)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server and waits for triggered runs
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	err := s.server.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.log.Warn().Msg("Triggered runs still in progress at shutdown")
	}
	return err
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
