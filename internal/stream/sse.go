package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"askstream/internal/models"
)

// ErrStreamingUnsupported is returned when the response writer cannot
// flush incrementally.
var ErrStreamingUnsupported = errors.New("response writer does not support streaming")

// Writer serializes events onto an open HTTP response as "data: <json>"
// frames, flushing after every write so the client sees each event as it
// happens. Frames go out in emission order; nothing is buffered, stored
// or replayed.
type Writer struct {
	w       http.ResponseWriter
	flusher http.Flusher
	log     *zap.Logger
	events  int
}

// SetHeaders announces the event-stream content type. Must be called
// before the status line is written and before the first Emit.
func SetHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache, no-transform")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // disable nginx buffering
}

// NewWriter wraps w for event streaming.
func NewWriter(w http.ResponseWriter, log *zap.Logger) (*Writer, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrStreamingUnsupported
	}
	return &Writer{w: w, flusher: flusher, log: log}, nil
}

// Emit writes one event frame and flushes it immediately. A write error
// means the client is gone.
func (s *Writer) Emit(event models.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	s.flusher.Flush()
	s.events++

	s.log.Debug("stream event sent",
		zap.String("type", event.Type),
		zap.String("data", truncateString(string(data), 200)),
	)
	return nil
}

// Close flushes whatever is pending. The connection itself closes when
// the handler returns.
func (s *Writer) Close() error {
	s.flusher.Flush()
	s.log.Debug("stream closed", zap.Int("events", s.events))
	return nil
}

// truncateString truncates a string for logging
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
