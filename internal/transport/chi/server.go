// Package chi exposes the retrieval service over HTTP: the chat UI, a
// streaming question endpoint, deployment info, and health.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/synaptiq/neurag/internal/domain"
	healthuc "github.com/synaptiq/neurag/internal/usecase/health"
)

// errorCode identifies an error class in the JSON error response.
type errorCode string

const (
	codeBadRequest       errorCode = "bad_request"
	codeValidationFailed errorCode = "validation_failed"
	codeIndexUnavailable errorCode = "index_unavailable"
	codeEmbeddingError   errorCode = "embedding_provider_error"
	codeCompletionError  errorCode = "completion_provider_error"
	codeInternalError    errorCode = "internal_error"
)

type errorResponse struct {
	Code    errorCode `json:"code"`
	Message string    `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// AskService answers a question by streaming content fragments to onDelta.
type AskService interface {
	Ask(ctx context.Context, question string, onDelta func(delta string) error) error
}

// HealthService aggregates component health checks.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Info describes the deployment for GET /api/info.
type Info struct {
	App        string `json:"app"`
	Embeddings string `json:"embeddings"`
	LLM        string `json:"llm"`
	Chunks     int    `json:"chunks"`
	Strategy   string `json:"strategy"`
	Version    string `json:"version"`
}

// Server is the HTTP API server.
type Server struct {
	ask           AskService
	health        HealthService
	info          Info
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(ask AskService, health HealthService, info Info, logger *zap.Logger) *Server {
	s := &Server{
		ask:    ask,
		health: health,
		info:   info,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, codeValidationFailed),
		sentinelHandler(domain.ErrIndexNotReady, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrEmptyIndex, http.StatusServiceUnavailable, codeIndexUnavailable),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, codeEmbeddingError),
		sentinelHandler(domain.ErrCompletionProviderError, http.StatusBadGateway, codeCompletionError),
	}
	return s
}

// Register mounts all routes on the router. Middleware is the caller's job.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Home)
	r.Post("/api/chat", s.Chat)
	r.Get("/api/info", s.GetInfo)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Home handles GET / with the embedded chat UI.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(chatUI)
}

// Chat handles POST /api/chat: it answers the question as a plain-text
// stream, flushing each fragment as soon as the model produces it.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeBadRequest, "Invalid request body: "+err.Error())
		return
	}

	flusher, _ := w.(http.Flusher)

	wrote := false
	err := s.ask.Ask(r.Context(), req.Question, func(delta string) error {
		if !wrote {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			wrote = true
		}
		if _, err := w.Write([]byte(delta)); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
	if err != nil {
		if wrote {
			// Headers are gone; the truncated stream is all we can offer.
			s.logger.Error("chat stream interrupted", zap.Error(err))
			return
		}
		s.handleDomainError(w, err)
	}
}

// GetInfo handles GET /api/info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.info)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrInvalidArgument,
		domain.ErrInvalidInput,
		domain.ErrIndexNotReady,
		domain.ErrEmptyIndex,
		domain.ErrVectorDimMismatch,
		domain.ErrEmbeddingProviderError,
		domain.ErrCompletionProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code errorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
