// Package server exposes the practice engine over HTTP and WebSocket.
package server

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/p-n-ai/pai-practice/internal/coach"
	"github.com/p-n-ai/pai-practice/internal/practice"
	"github.com/p-n-ai/pai-practice/internal/transfer"
)

// ParentPINHeader carries the parent PIN on parent-only endpoints.
const ParentPINHeader = "X-Parent-PIN"

// maxBodyBytes bounds request bodies, attempt log imports included.
const maxBodyBytes = 4 << 20

const readyTimeout = 3 * time.Second

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Option configures a Server.
type Option func(*Server)

// WithParentPIN enables parent endpoints for the given bcrypt hash.
func WithParentPIN(hash string) Option {
	return func(s *Server) {
		if hash != "" {
			s.pinHash = []byte(hash)
		}
	}
}

// WithHealthCheck registers a dependency checked by /readyz.
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.checks[name] = check
	}
}

// Server routes practice requests to the engine.
type Server struct {
	engine  *coach.Engine
	pinHash []byte
	checks  map[string]HealthCheck
	mux     *http.ServeMux
}

// New creates the HTTP handler for engine.
func New(engine *coach.Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		checks: make(map[string]HealthCheck),
		mux:    http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
	s.mux.HandleFunc("GET /readyz", s.handleReadyz)
	s.mux.HandleFunc("GET /v1/skills", s.handleSkills)

	s.mux.HandleFunc("POST /v1/learners/{learner}/exercises", s.handleNextExercise)
	s.mux.HandleFunc("POST /v1/learners/{learner}/attempts", s.handleSubmit)
	s.mux.HandleFunc("POST /v1/learners/{learner}/skips", s.handleSkip)
	s.mux.HandleFunc("GET /v1/learners/{learner}/review", s.handleReview)
	s.mux.HandleFunc("POST /v1/learners/{learner}/review/exercises", s.handleReviewExercises)
	s.mux.HandleFunc("GET /v1/learners/{learner}/level/{skill}", s.handleLevel)
	s.mux.HandleFunc("GET /v1/learners/{learner}/report", s.handleReport)
	s.mux.HandleFunc("GET /v1/learners/{learner}/practice/ws", s.handlePracticeWS)

	s.mux.HandleFunc("GET /v1/learners/{learner}/report.xlsx", s.parentOnly(s.handleReportXLSX))
	s.mux.HandleFunc("GET /v1/learners/{learner}/attempts/export", s.parentOnly(s.handleExport))
	s.mux.HandleFunc("POST /v1/learners/{learner}/attempts/import", s.parentOnly(s.handleImport))
	s.mux.HandleFunc("DELETE /v1/learners/{learner}/attempts", s.parentOnly(s.handleClear))
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	s.mux.ServeHTTP(rec, r)
	slog.Debug("http request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", rec.status,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack is needed for the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	r.status = http.StatusSwitchingProtocols
	return http.NewResponseController(r.ResponseWriter).Hijack()
}

// parentOnly gates a handler behind the parent PIN. With no PIN configured
// parent endpoints are disabled.
func (s *Server) parentOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if len(s.pinHash) == 0 {
			writeError(w, http.StatusForbidden, "parent access is disabled")
			return
		}
		pin := r.Header.Get(ParentPINHeader)
		if pin == "" {
			writeError(w, http.StatusUnauthorized, "parent PIN required")
			return
		}
		if err := bcrypt.CompareHashAndPassword(s.pinHash, []byte(pin)); err != nil {
			slog.Warn("parent PIN rejected", "learner_id", r.PathValue("learner"), "remote", r.RemoteAddr)
			writeError(w, http.StatusForbidden, "invalid parent PIN")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, coach.ErrUnknownExercise):
		return http.StatusNotFound
	case errors.Is(err, coach.ErrSkillDisabled):
		return http.StatusConflict
	case errors.Is(err, coach.ErrLearnerRequired),
		errors.Is(err, practice.ErrUnsupportedSkill),
		errors.Is(err, practice.ErrInvalidDifficulty),
		errors.Is(err, practice.ErrInvalidConfidence),
		errors.Is(err, transfer.ErrInvalidLog),
		errors.Is(err, coach.ErrInvalidAttempt):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
