// Package rest provides the HTTP API for EDIFACT summarization.
package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/auth"
	"github.com/hochfrequenz/transformerbee-mcp/internal/domain/ratelimit"
	"github.com/hochfrequenz/transformerbee-mcp/internal/port/outbound"
	"github.com/hochfrequenz/transformerbee-mcp/internal/service"
)

// summarizeRequest is the POST /summarize request body.
type summarizeRequest struct {
	Edifact string `json:"edifact"`
}

// summarizeResponse is the POST /summarize response body.
type summarizeResponse struct {
	Summary string `json:"summary"`
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Detail string `json:"detail"`
}

// healthResponse is the GET /health response body.
type healthResponse struct {
	Status          string `json:"status"`
	OllamaHost      string `json:"ollama_host"`
	OllamaReachable bool   `json:"ollama_reachable"`
	Model           string `json:"model"`
	ModelAvailable  bool   `json:"model_available"`
	Error           string `json:"error,omitempty"`
}

// Handler serves the summarization endpoints.
type Handler struct {
	service  *service.SummarizeService
	verifier auth.TokenVerifier
	metrics  *Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler. metrics may be nil (no recording).
func NewHandler(svc *service.SummarizeService, verifier auth.TokenVerifier, metrics *Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		service:  svc,
		verifier: verifier,
		metrics:  metrics,
		logger:   logger,
	}
}

// Summarize handles POST /summarize: bearer auth, rate limiting and the
// conversion-plus-summarization pipeline.
func (h *Handler) Summarize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Detail: "Method not allowed"})
		return
	}

	logger := LoggerFromContext(r.Context())

	token, ok := bearerToken(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: "Not authenticated"})
		return
	}

	claims, err := h.verifier.Verify(r.Context(), token)
	if err != nil {
		var invalid *auth.InvalidTokenError
		detail := "Invalid token"
		if errors.As(err, &invalid) {
			detail = fmt.Sprintf("Invalid token: %s", invalid.Reason)
		}
		logger.Warn("token verification failed", "error", err)
		writeJSON(w, http.StatusUnauthorized, errorResponse{Detail: detail})
		return
	}

	var req summarizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Invalid request body"})
		return
	}
	if req.Edifact == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "Field 'edifact' is required"})
		return
	}

	identity := claims.Identity()
	logger.Info("summarization requested", "identity", identity)

	summary, err := h.service.SummarizeEdifact(r.Context(), req.Edifact, identity, "", nil)
	if err != nil {
		h.writeSummarizeError(w, logger, err)
		return
	}

	h.countSummary("ok")
	writeJSON(w, http.StatusOK, summarizeResponse{Summary: summary})
}

// writeSummarizeError maps pipeline failures to the HTTP error contract.
func (h *Handler) writeSummarizeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		exceeded  *ratelimit.ExceededError
		statusErr *outbound.SummarizerStatusError
		multiMsg  *service.MultipleMessagesError
		multiTx   *service.MultipleTransactionsError
	)

	switch {
	case errors.As(err, &exceeded):
		if h.metrics != nil {
			h.metrics.RateLimitRejections.Inc()
		}
		writeJSON(w, http.StatusTooManyRequests, errorResponse{Detail: exceeded.Error()})

	case errors.As(err, &statusErr):
		h.countSummary("summarizer_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: fmt.Sprintf("Ollama error: %d", statusErr.Code)})

	case errors.Is(err, outbound.ErrSummarizerUnreachable):
		h.countSummary("summarizer_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: fmt.Sprintf("Cannot connect to Ollama: %v", err)})

	case errors.Is(err, outbound.ErrSummarizerTimeout):
		h.countSummary("summarizer_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: fmt.Sprintf("Ollama request timed out: %v", err)})

	case errors.As(err, &multiMsg), errors.As(err, &multiTx):
		h.countSummary("conversion_error")
		writeJSON(w, http.StatusNotImplemented, errorResponse{Detail: err.Error()})

	default:
		logger.Error("summarization failed", "error", err)
		h.countSummary("conversion_error")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Detail: "Internal server error"})
	}
}

// Health handles GET /health. No auth, always 200: the status field carries
// the verdict so monitoring gets a structured answer even when unhealthy.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snapshot := h.service.Health(r.Context())

	status := "unhealthy"
	if snapshot.Reachable && snapshot.ModelAvailable {
		status = "healthy"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Status:          status,
		OllamaHost:      snapshot.Host,
		OllamaReachable: snapshot.Reachable,
		Model:           snapshot.Model,
		ModelAvailable:  snapshot.ModelAvailable,
		Error:           snapshot.Error,
	})
}

func (h *Handler) countSummary(outcome string) {
	if h.metrics != nil {
		h.metrics.SummariesTotal.WithLabelValues(outcome).Inc()
	}
}

// bearerToken extracts the bearer token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" {
		return "", false
	}
	return token, true
}

// writeJSON serializes v with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
