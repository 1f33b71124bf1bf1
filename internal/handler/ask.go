package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"askstream/internal/models"
	"askstream/internal/stream"
)

// handleAsk runs one query through the orchestrator and streams the
// resulting events. Every response from this endpoint, including request
// rejections, uses SSE framing so clients need a single read path.
func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request, log *zap.Logger) {
	if r.Method != http.MethodPost {
		h.handleError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Only POST method is allowed", log)
		return
	}

	maxBytes := h.config.HTTP.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	defer r.Body.Close()

	var req models.AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to decode ask request", zap.Error(err))
		h.streamError(w, http.StatusBadRequest, `Request body must be a JSON object with a "query" string.`, log)
		return
	}

	req.Normalize()
	if err := req.Validate(); err != nil {
		log.Warn("rejected ask request", zap.Error(err))
		h.streamError(w, http.StatusBadRequest, err.Error(), log)
		return
	}

	log.Info("ask request accepted", zap.Int("query_length", len(req.Query)))

	stream.SetHeaders(w)
	writer, err := stream.NewWriter(w, log)
	if err != nil {
		h.handleError(w, http.StatusInternalServerError, "streaming_unsupported", "Streaming is not supported by this connection", log)
		return
	}

	h.orchestrator.Run(r.Context(), req.Query, writer)
}

// streamError rejects a request with the given status while keeping the
// SSE wire format: one error event, then the stream closes.
func (h *Handler) streamError(w http.ResponseWriter, status int, message string, log *zap.Logger) {
	stream.SetHeaders(w)
	w.WriteHeader(status)

	writer, err := stream.NewWriter(w, log)
	if err != nil {
		return
	}
	if err := writer.Emit(models.ErrorEvent(message)); err != nil {
		log.Warn("failed to write rejection event", zap.Error(err))
	}
	writer.Close()
}
