package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"askstream/internal/config"
	"askstream/internal/models"
	"askstream/internal/retry"
	"askstream/pkg/logger"
)

// SearchAPIProvider resolves queries against a SearchApi-style engine:
// GET with query parameters, bearer credential, organic_results payload.
type SearchAPIProvider struct {
	apiKey     string
	baseURL    string
	engine     string
	locale     string
	maxResults int
	client     *http.Client
	retryCfg   retry.Config
}

// NewSearchAPIProvider creates the live provider from configuration.
func NewSearchAPIProvider(cfg *config.SearchConfig) *SearchAPIProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://www.searchapi.io/api/v1/search"
	}
	engine := cfg.Engine
	if engine == "" {
		engine = "google"
	}
	locale := cfg.Locale
	if locale == "" {
		locale = "en"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 || maxResults > 10 {
		maxResults = 10
	}

	return &SearchAPIProvider{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		engine:     engine,
		locale:     locale,
		maxResults: maxResults,
		client: &http.Client{
			Timeout: time.Duration(timeout) * time.Second,
		},
		retryCfg: retry.DefaultConfig(),
	}
}

// Name returns the provider name.
func (p *SearchAPIProvider) Name() string {
	return "searchapi"
}

// IsAvailable reports whether a credential is configured.
func (p *SearchAPIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// searchapiResponse represents the provider response envelope
type searchapiResponse struct {
	OrganicResults    []searchapiResult `json:"organic_results"`
	SearchInformation struct {
		TotalResults int `json:"total_results"`
	} `json:"search_information"`
}

// searchapiResult represents a single provider hit
type searchapiResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`
	Source  string `json:"source,omitempty"`
}

// Search performs one live search and maps the hits into the fixed shape.
func (p *SearchAPIProvider) Search(ctx context.Context, query string) (*models.SearchResponse, error) {
	if !p.IsAvailable() {
		return nil, fmt.Errorf("searchapi provider not configured: missing API key")
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("engine", p.engine)
	params.Set("num", fmt.Sprintf("%d", p.maxResults))
	params.Set("hl", p.locale)
	requestURL := fmt.Sprintf("%s?%s", p.baseURL, params.Encode())

	body, err := retry.Do(ctx, p.retryCfg, func() ([]byte, error) {
		return p.fetch(ctx, requestURL)
	})
	if err != nil {
		return nil, fmt.Errorf("searchapi request: %w", err)
	}

	var searchResp searchapiResponse
	if err := json.Unmarshal(body, &searchResp); err != nil {
		return nil, fmt.Errorf("parse searchapi response: %w", err)
	}

	results := make([]models.SearchResult, 0, len(searchResp.OrganicResults))
	for _, item := range searchResp.OrganicResults {
		if len(results) == p.maxResults {
			break
		}
		results = append(results, normalizeResult(item.Title, item.Link, item.Snippet, item.Date, item.Source))
	}

	total := searchResp.SearchInformation.TotalResults
	if total == 0 {
		total = len(results)
	}

	logger.Info("searchapi search completed",
		zap.String("engine", p.engine),
		zap.String("query", query),
		zap.Int("result_count", len(results)),
		zap.Int("total_results", total),
	)

	return &models.SearchResponse{
		Query:        query,
		TotalResults: total,
		Results:      results,
	}, nil
}

// fetch executes one HTTP attempt. Non-200 statuses surface as
// retry.HTTPError so 5xx responses are retried and 4xx fail fast.
func (p *SearchAPIProvider) fetch(ctx context.Context, requestURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", p.apiKey))

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	logger.Debug("searchapi response",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_bytes", len(body)),
	)

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
