// Package server exposes answer sources over a websocket and plain HTTP and
// turns answers into PDF downloads.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"pkt.systems/mdpage/answer"
	"pkt.systems/mdpage/export"
	"pkt.systems/mdpage/internal/metrics"
)

// Config holds server settings.
type Config struct {
	// AllowedOrigins lists browser origins allowed for CORS and websocket
	// upgrades. Requests without an Origin header are always allowed.
	AllowedOrigins    []string
	MaxExportBytes    int64
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

const (
	defaultMaxExportBytes = 4 << 20
	maxQueryFrameBytes    = 64 << 10
	frameWriteTimeout     = 10 * time.Second
)

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	source   answer.Source
	exporter *export.Exporter
	log      zerolog.Logger
	cfg      Config
	upgrader websocket.Upgrader
}

// New creates and configures the HTTP server.
func New(src answer.Source, exp *export.Exporter, log zerolog.Logger, cfg Config) *Server {
	if cfg.MaxExportBytes <= 0 {
		cfg.MaxExportBytes = defaultMaxExportBytes
	}
	if exp == nil {
		exp = export.New(export.WithLogger(log))
	}
	s := &Server{
		source:   src,
		exporter: exp,
		log:      log,
		cfg:      cfg,
	}
	s.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(r.Header.Get("Origin"), s.cfg.AllowedOrigins)
		},
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(Metrics)
	r.Use(CORS(s.cfg.AllowedOrigins))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/ws", s.handleWebSocket)
	r.Post("/process", s.handleProcess)
	r.Post("/export", s.handleExport)

	s.router = r
}

// ListenAndServe serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("server: listen: %w", err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx ends.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	readHeaderTimeout := s.cfg.ReadHeaderTimeout
	if readHeaderTimeout <= 0 {
		readHeaderTimeout = 10 * time.Second
	}
	shutdownTimeout := s.cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	srv := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", ln.Addr().String()).Str("source", s.source.Name()).Msg("listening")
		errCh <- srv.Serve(ln)
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.log.Info().Msg("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server: %w", err)
	}
	return nil
}
