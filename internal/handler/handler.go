package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"askstream/internal/agent"
	"askstream/internal/config"
	"askstream/internal/models"
	"askstream/internal/search"
	"askstream/pkg/logger"
)

// Handler routes API requests to the streaming orchestrator.
type Handler struct {
	config       *config.Config
	orchestrator *agent.Orchestrator
	searchClient *search.Client
	version      string
}

// New creates the API handler.
func New(cfg *config.Config, orch *agent.Orchestrator, searchClient *search.Client, version string) *Handler {
	return &Handler{
		config:       cfg,
		orchestrator: orch,
		searchClient: searchClient,
		version:      version,
	}
}

// ServeHTTP handles all HTTP requests
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Extract or generate trace ID
	// Check multiple headers that clients or proxies might use
	traceID := extractTraceID(r)
	if traceID == "" {
		traceID = generateTraceID()
	}

	// Store trace ID in context
	ctx := logger.ContextWithTraceID(r.Context(), traceID)
	r = r.WithContext(ctx)

	// Create logger with trace ID
	log := logger.WithTraceID(traceID)
	log.Info("request received",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
	)

	// Add trace ID to response headers
	w.Header().Set("X-Trace-ID", traceID)

	// Route request
	switch r.URL.Path {
	case "/health":
		h.handleHealth(w, r, log)
	case "/v1/tools":
		h.handleTools(w, r, log)
	case "/v1/ask":
		h.handleAsk(w, r, log)
	default:
		h.handleError(w, http.StatusNotFound, "not_found", "Endpoint not found", log)
	}

	// Log request completion
	duration := time.Since(start).Milliseconds()
	log.Info("request completed",
		zap.Int64("duration_ms", duration),
	)
}

// handleHealth handles health check requests
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	h.writeJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Service: "askstream",
		Version: h.version,
	})
}

// handleTools reports which tools the orchestrator can call and how they
// are configured. Credentials are never included.
func (h *Handler) handleTools(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	if r.Method != http.MethodGet {
		h.handleError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only GET method is allowed", log)
		return
	}

	tools := []models.ToolStatus{
		{
			Name:      models.ToolWebSearch,
			Mode:      h.searchClient.Mode(),
			Available: h.searchClient.Available(),
			Engine:    h.searchClient.Engine(),
		},
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"tools": tools,
	})
}

// writeJSON writes a JSON response body
func (h *Handler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleError handles errors
func (h *Handler) handleError(w http.ResponseWriter, status int, errType, message string, log *zap.Logger) {
	log.Error("request error",
		zap.String("error_type", errType),
		zap.String("message", message),
		zap.Int("status", status),
	)

	h.writeJSON(w, status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Type:    errType,
			Message: message,
		},
	})
}

// extractTraceID extracts trace ID from various possible headers
func extractTraceID(r *http.Request) string {
	// Check common trace ID headers in order of preference
	headers := []string{
		"X-Trace-ID",
		"X-Request-ID",
		"X-Correlation-ID",
		"Trace-ID",
		"Request-ID",
	}

	for _, header := range headers {
		if id := r.Header.Get(header); id != "" {
			return id
		}
	}

	return ""
}

// generateTraceID generates a new trace ID
func generateTraceID() string {
	id := uuid.New()
	return id.String()[:16]
}
