package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"askstream/internal/agent"
	"askstream/internal/config"
	"askstream/internal/models"
	"askstream/internal/search"
)

// scriptedCompleter returns canned outputs in order.
type scriptedCompleter struct {
	mu      sync.Mutex
	outputs []string
	calls   int
}

func (c *scriptedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls >= len(c.outputs) {
		return "", errors.New("no scripted output")
	}
	out := c.outputs[c.calls]
	c.calls++
	return out, nil
}

func newTestHandler(outputs ...string) *Handler {
	cfg := &config.Config{
		HTTP: config.HTTPConfig{MaxBodyBytes: 1 << 20},
	}
	searchClient := search.NewClient(&config.SearchConfig{Mode: search.ModeMock}, nil)
	orch := agent.New(&scriptedCompleter{outputs: outputs}, searchClient)
	return New(cfg, orch, searchClient, "test")
}

// decodeEvents parses an SSE body into its events.
func decodeEvents(t *testing.T, body string) []models.StreamEvent {
	t.Helper()

	var events []models.StreamEvent
	for _, frame := range strings.Split(strings.TrimSpace(body), "\n\n") {
		data, ok := strings.CutPrefix(frame, "data: ")
		if !ok {
			t.Fatalf("frame missing data prefix: %q", frame)
		}
		var ev models.StreamEvent
		if err := json.Unmarshal([]byte(data), &ev); err != nil {
			t.Fatalf("frame is not valid JSON: %q: %v", frame, err)
		}
		events = append(events, ev)
	}
	return events
}

func eventKinds(events []models.StreamEvent) string {
	kinds := make([]string, len(events))
	for i, ev := range events {
		kinds[i] = ev.Type
	}
	return strings.Join(kinds, " ")
}

func TestHealth(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("X-Trace-ID") == "" {
		t.Error("X-Trace-ID header missing")
	}

	var body models.HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Status != "healthy" || body.Service != "askstream" {
		t.Errorf("body = %+v, want healthy askstream", body)
	}
}

func TestTraceIDEchoed(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-1234")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Trace-ID"); got != "req-1234" {
		t.Errorf("X-Trace-ID = %q, want %q", got, "req-1234")
	}
}

func TestTools(t *testing.T) {
	h := newTestHandler()

	t.Run("reports web search in mock mode", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tools", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}

		var body struct {
			Tools []models.ToolStatus `json:"tools"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
			t.Fatalf("invalid JSON body: %v", err)
		}
		if len(body.Tools) != 1 {
			t.Fatalf("len(tools) = %d, want 1", len(body.Tools))
		}
		tool := body.Tools[0]
		if tool.Name != models.ToolWebSearch || tool.Mode != search.ModeMock || !tool.Available {
			t.Errorf("tool = %+v, want available web_search in mock mode", tool)
		}
	})

	t.Run("rejects POST", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/tools", nil))

		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("status = %d, want 405", rec.Code)
		}
	})
}

func TestNotFound(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body models.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if body.Error.Type != "not_found" {
		t.Errorf("error type = %q, want not_found", body.Error.Type)
	}
}

func TestAskRejectsNonPost(t *testing.T) {
	h := newTestHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/ask", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestAskValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"blank query", `{"query":"   "}`},
		{"missing query", `{}`},
		{"malformed JSON", `{"query":`},
		{"oversized query", `{"query":"` + strings.Repeat("a", models.MaxQueryLength+1) + `"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler()

			req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
				t.Errorf("Content-Type = %q, want text/event-stream", ct)
			}

			events := decodeEvents(t, rec.Body.String())
			if len(events) != 1 || events[0].Type != models.EventError {
				t.Fatalf("events = %q, want a single error event", eventKinds(events))
			}
			if events[0].Content == "" {
				t.Error("error event has empty content")
			}
		})
	}
}

func TestAskRejectsOversizedBody(t *testing.T) {
	h := newTestHandler()
	h.config.HTTP.MaxBodyBytes = 64

	body := `{"query":"` + strings.Repeat("a", 256) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	events := decodeEvents(t, rec.Body.String())
	if len(events) != 1 || events[0].Type != models.EventError {
		t.Fatalf("events = %q, want a single error event", eventKinds(events))
	}
}

func TestAskStreamsDirectAnswer(t *testing.T) {
	h := newTestHandler("false", "Paris is the capital of France.")

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"query":"What is the capital of France?"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Content-Type = %q, want text/event-stream", ct)
	}

	events := decodeEvents(t, rec.Body.String())
	want := "reasoning reasoning reasoning response reasoning done"
	if got := eventKinds(events); got != want {
		t.Fatalf("event kinds = %q, want %q", got, want)
	}

	response := events[3]
	if response.Content != "Paris is the capital of France." {
		t.Errorf("response content = %q", response.Content)
	}
}

func TestAskStreamsToolCall(t *testing.T) {
	h := newTestHandler("true", "Recent results suggest sunny weather [1].")

	req := httptest.NewRequest(http.MethodPost, "/v1/ask", strings.NewReader(`{"query":"weather in Paris today"}`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	events := decodeEvents(t, rec.Body.String())
	want := "reasoning reasoning reasoning tool_call reasoning response reasoning done"
	if got := eventKinds(events); got != want {
		t.Fatalf("event kinds = %q, want %q", got, want)
	}

	toolCall := events[3]
	if toolCall.Tool != models.ToolWebSearch {
		t.Errorf("tool = %q, want %q", toolCall.Tool, models.ToolWebSearch)
	}
	if toolCall.Input != "weather in Paris today" {
		t.Errorf("input = %q, want the query", toolCall.Input)
	}
	if toolCall.Output == nil || len(toolCall.Output.Results) == 0 {
		t.Fatal("tool_call output is missing search results")
	}
}
