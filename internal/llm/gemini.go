package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"askstream/internal/config"
	"askstream/internal/retry"
	"askstream/pkg/logger"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.0-flash"

	// Sampling is fixed for every call the pipeline makes.
	temperature     = 0.7
	maxOutputTokens = 1024

	requestTimeout = 60 * time.Second
)

// ErrInvalidResponseShape marks a response whose payload lacks the
// expected nested text field. Never retried.
var ErrInvalidResponseShape = errors.New("generation response missing text content")

// UnavailableError wraps a transport or HTTP failure that survived the
// retry budget. Fatal to the request: no answer is possible without the
// generation service.
type UnavailableError struct {
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("generation service unavailable: %v", e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// Client turns prompts into completions from a Gemini-style endpoint.
// The credential travels in a request header, never in the URL, so it
// cannot surface in wrapped transport errors or logs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
	apiKey     string
	retryCfg   retry.Config
}

// NewClient creates the completion client from configuration.
func NewClient(cfg *config.GenerationConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := requestTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		apiKey:     cfg.APIKey,
		retryCfg:   retry.DefaultConfig(),
	}
}

// geminiRequest is the generateContent request body
type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

// geminiContent holds the prompt parts
type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

// geminiPart is one text fragment
type geminiPart struct {
	Text string `json:"text"`
}

// geminiGenerationConfig carries the sampling parameters
type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiResponse is the generateContent response envelope
type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends prompt to the generation service and returns the first
// candidate's text, trimmed. Transport failures are retried by policy and
// escalate as *UnavailableError; a well-formed HTTP success with no text
// field escalates as ErrInvalidResponseShape.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt must not be empty")
	}

	payload, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxOutputTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation request: %w", err)
	}

	requestURL := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)

	body, err := retry.Do(ctx, c.retryCfg, func() ([]byte, error) {
		return c.post(ctx, requestURL, payload)
	})
	if err != nil {
		logger.Error("generation call failed",
			zap.String("model", c.model),
			zap.Error(err),
		)
		return "", &UnavailableError{Err: err}
	}

	var genResp geminiResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		logger.Error("generation response unparseable", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrInvalidResponseShape, err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		logger.Error("generation response missing candidates",
			zap.String("model", c.model),
			zap.Int("candidates", len(genResp.Candidates)),
		)
		return "", ErrInvalidResponseShape
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	out := strings.TrimSpace(text.String())

	logger.Debug("generation call completed",
		zap.String("model", c.model),
		zap.Int("prompt_chars", len(prompt)),
		zap.Int("completion_chars", len(out)),
	)
	return out, nil
}

// post executes one HTTP attempt. Non-200 statuses surface as
// retry.HTTPError so 5xx responses are retried and 4xx fail fast.
func (c *Client) post(ctx context.Context, requestURL string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{StatusCode: resp.StatusCode, Body: clip(string(body), 200)}
	}
	return body, nil
}

// clip shortens s for logs and error text.
func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
