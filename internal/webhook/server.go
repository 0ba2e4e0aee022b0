package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mattjoyce/s3-maven-cleaner/internal/scheduler"
)

// Server represents the webhook HTTP server.
type Server struct {
	config  Config
	runs    RunStarter
	metrics http.Handler
	logger  *slog.Logger
	server  *http.Server

	// baseCtx outlives requests so a started pass is not cancelled when
	// its triggering request returns.
	baseCtx context.Context
}

// New creates a webhook server. metrics may be nil.
func New(config Config, runs RunStarter, metrics http.Handler, logger *slog.Logger) *Server {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = DefaultMaxBodySize
	}
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.SignatureHeader == "" {
		config.SignatureHeader = DefaultSignatureHeader
	}
	return &Server{
		config:  config,
		runs:    runs,
		metrics: metrics,
		logger:  logger.With("component", "webhook"),
		baseCtx: context.Background(),
	}
}

// Start starts the webhook HTTP server and blocks until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.baseCtx = ctx
	s.server = &http.Server{
		Addr:         s.config.Listen,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server starting",
		"listen", s.config.Listen,
		"trigger", s.config.Enabled,
		"metrics", s.metrics != nil,
	)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("webhook server shutdown failed: %w", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return fmt.Errorf("webhook server error: %w", err)
	}
}

// Handler returns the HTTP router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Recoverer)

	if s.config.Enabled {
		r.Post(s.config.Path, s.handleTrigger)
	}
	r.Get("/status", s.handleStatus)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// loggingMiddleware logs HTTP requests (excludes payloads).
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Debug("webhook request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", middleware.GetReqID(r.Context()),
			"remote_addr", r.RemoteAddr,
		)
	})
}

func (s *Server) handleTrigger(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, s.config.MaxBodySize+1))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read request body")
		return
	}
	if int64(len(body)) > s.config.MaxBodySize {
		s.respondError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}

	signature := r.Header.Get(s.config.SignatureHeader)
	if signature == "" {
		s.logger.Warn("webhook signature missing", "path", r.URL.Path, "header", s.config.SignatureHeader)
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}
	if err := Verify(body, signature, s.config.Secret); err != nil {
		s.logger.Warn("webhook signature verification failed", "path", r.URL.Path)
		s.respondError(w, http.StatusForbidden, "forbidden")
		return
	}

	runID, err := s.runs.Start(s.baseCtx, "webhook")
	if errors.Is(err, scheduler.ErrBusy) {
		s.respondError(w, http.StatusConflict, "a clean run is already in progress")
		return
	}
	if err != nil {
		s.logger.Error("failed to start run", "error", err)
		s.respondError(w, http.StatusInternalServerError, "failed to start run")
		return
	}

	s.logger.Info("webhook run started", "run_id", runID, "request_id", middleware.GetReqID(r.Context()))
	s.respondJSON(w, http.StatusAccepted, TriggerResponse{RunID: runID})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	resp := StatusResponse{Busy: s.runs.Busy()}
	if last, ok := s.runs.Last(); ok {
		resp.Last = &last
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}
