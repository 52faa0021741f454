package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/jonathan/worker-profile-wizard/internal/metrics"
	"github.com/jonathan/worker-profile-wizard/internal/refdata"
	"github.com/jonathan/worker-profile-wizard/internal/schemas"
	"github.com/jonathan/worker-profile-wizard/internal/server/middleware"
	"github.com/jonathan/worker-profile-wizard/internal/server/ratelimit"
	"github.com/jonathan/worker-profile-wizard/internal/service"
)

// Server represents the HTTP server
type Server struct {
	httpServer     *http.Server
	wizard         *service.WizardService
	refData        *refdata.Data
	metrics        *metrics.Metrics
	logger         *zap.Logger
	rateLimiter    *ratelimit.Limiter
	jwtService     *JWTService
	streamInterval time.Duration
}

// Config holds server configuration
type Config struct {
	Port        int
	Wizard      *service.WizardService
	RefData     *refdata.Data
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	JWT         *JWTService
	RateLimiter *ratelimit.Limiter // nil disables rate limiting
	// StreamInterval is how often the session stream polls for changes.
	StreamInterval time.Duration
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Wizard == nil {
		return nil, fmt.Errorf("wizard service is required")
	}
	if cfg.JWT == nil {
		return nil, fmt.Errorf("JWT service is required")
	}
	if cfg.RefData == nil {
		data, err := refdata.Load()
		if err != nil {
			return nil, err
		}
		cfg.RefData = data
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewWithRegistry(prometheus.NewRegistry())
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.StreamInterval <= 0 {
		cfg.StreamInterval = 250 * time.Millisecond
	}

	s := &Server{
		wizard:         cfg.Wizard,
		refData:        cfg.RefData,
		metrics:        cfg.Metrics,
		logger:         cfg.Logger.With(zap.String("component", "http")),
		rateLimiter:    cfg.RateLimiter,
		jwtService:     cfg.JWT,
		streamInterval: cfg.StreamInterval,
	}

	auth := middleware.AuthMiddleware(cfg.JWT.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /reference-data", s.handleReferenceData)
	mux.HandleFunc("GET /wizard/steps", s.handleListSteps)

	// Wizard sessions
	mux.Handle("POST /wizard/sessions", protected(s.handleStartSession))
	mux.Handle("GET /wizard/sessions/{id}", protected(s.handleGetSession))
	mux.Handle("GET /wizard/sessions/{id}/stream", protected(s.handleStreamSession))
	mux.Handle("POST /wizard/sessions/{id}/next", protected(s.handleNext))
	mux.Handle("POST /wizard/sessions/{id}/prev", protected(s.handlePrev))
	mux.Handle("POST /wizard/sessions/{id}/steps/{step}", protected(s.handleGoTo))
	mux.Handle("PATCH /wizard/sessions/{id}/fields", protected(s.handleUpdateFields))
	mux.Handle("PUT /wizard/sessions/{id}/experiences", protected(s.handleReplaceExperiences))
	mux.Handle("POST /wizard/sessions/{id}/experiences", protected(s.handleAddExperience))
	mux.Handle("DELETE /wizard/sessions/{id}/experiences/{entry_id}", protected(s.handleRemoveExperience))
	mux.Handle("POST /wizard/sessions/{id}/work-days/{day}", protected(s.handleToggleWorkDay))
	mux.Handle("POST /wizard/sessions/{id}/save", protected(s.handleSave))
	mux.Handle("POST /wizard/sessions/{id}/uploads/{kind}", protected(s.handlePresignUpload))

	// Saved profile
	mux.Handle("GET /profile", protected(s.handleGetProfile))
	mux.Handle("GET /profile/revisions", protected(s.handleListRevisions))
	mux.Handle("DELETE /profile", protected(s.handleDeleteProfile))

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
		// No WriteTimeout: the session stream is long-lived.
	}

	return s, nil
}

// Handler returns the root handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects clients over their budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	if s.rateLimiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// withLogging logs each request and records HTTP metrics by route pattern.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		elapsed := time.Since(start)
		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		s.metrics.ObserveHTTP(r.Method, route, rec.status, elapsed)

		fields := []zap.Field{
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed),
			zap.String("remote", r.RemoteAddr),
		}
		if rec.status >= http.StatusInternalServerError {
			s.logger.Warn("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", zap.Error(err))
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// serviceError maps err to a status and writes it. Internal errors are
// logged and hidden from the client.
func (s *Server) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	var schemaErr *schemas.ValidationError
	if errors.As(err, &schemaErr) {
		s.jsonResponse(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   "profile validation failed",
			"details": schemaErr.Errors,
		})
		return
	}

	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorResponse(w, status, "internal error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]any{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
	}
	if !info.ResetTime.IsZero() {
		response["reset_at"] = info.ResetTime.Format(time.RFC3339)
	}
	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Seconds()) + 1
		response["retry_after"] = secs
		w.Header().Set("Retry-After", strconv.Itoa(secs))
	}

	s.logger.Info("rate limit exceeded",
		zap.String("client", s.extractClientID(r)),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("limit", info.Limit),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
