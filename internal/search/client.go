package search

import (
	"context"

	"go.uber.org/zap"

	"askstream/internal/config"
	"askstream/internal/models"
	"askstream/pkg/logger"
)

// Search modes.
const (
	ModeMock = "mock"
	ModeLive = "live"
)

// Cache stores successful live responses keyed by query. Implementations
// decide expiry; a miss simply refetches.
type Cache interface {
	Get(query string) (*models.SearchResponse, bool)
	Put(query string, resp *models.SearchResponse) error
}

// Client resolves queries through the configured provider. It never
// returns an error: search is best-effort, and every failure degrades to
// an empty response whose summary explains what happened.
type Client struct {
	provider Provider
	mode     string
	engine   string
	cache    Cache
}

// NewClient selects the provider from configuration. cache may be nil.
func NewClient(cfg *config.SearchConfig, cache Cache) *Client {
	mode := cfg.Mode
	if mode != ModeLive {
		mode = ModeMock
	}

	var provider Provider
	if mode == ModeLive {
		provider = NewSearchAPIProvider(cfg)
	} else {
		provider = NewMockProvider()
	}

	logger.Info("search client initialized",
		zap.String("mode", mode),
		zap.String("provider", provider.Name()),
		zap.Bool("available", provider.IsAvailable()),
	)

	return &Client{
		provider: provider,
		mode:     mode,
		engine:   cfg.Engine,
		cache:    cache,
	}
}

// Mode returns the active search mode.
func (c *Client) Mode() string {
	return c.mode
}

// Engine returns the configured live engine, or "" in mock mode.
func (c *Client) Engine() string {
	if c.mode == ModeLive {
		return c.engine
	}
	return ""
}

// Available reports whether the active provider can serve queries.
func (c *Client) Available() bool {
	return c.provider.IsAvailable()
}

// Search resolves query into a response, always non-nil. A missing
// credential or any transport failure yields an empty response with an
// explanatory summary instead of an error.
func (c *Client) Search(ctx context.Context, query string) *models.SearchResponse {
	if !c.provider.IsAvailable() {
		logger.Warn("search skipped: provider not configured",
			zap.String("provider", c.provider.Name()),
		)
		return emptyResponse(query, "Live search is not configured (missing search API credential); answering without web results.")
	}

	if c.mode == ModeLive && c.cache != nil {
		if cached, ok := c.cache.Get(query); ok {
			logger.Debug("search cache hit", zap.String("query", query))
			return cached
		}
	}

	resp, err := c.provider.Search(ctx, query)
	if err != nil {
		logger.Warn("search failed, degrading to empty results",
			zap.String("provider", c.provider.Name()),
			zap.String("query", query),
			zap.Error(err),
		)
		return emptyResponse(query, "Search request failed; answering without web results.")
	}

	if resp.Summary == "" {
		resp.Summary = summarize(resp.TotalResults, resp.Results)
	}

	if c.mode == ModeLive && c.cache != nil && len(resp.Results) > 0 {
		if err := c.cache.Put(query, resp); err != nil {
			logger.Warn("search cache write failed", zap.Error(err))
		}
	}

	return resp
}

// emptyResponse builds the degraded zero-result response.
func emptyResponse(query, summary string) *models.SearchResponse {
	return &models.SearchResponse{
		Query:        query,
		TotalResults: 0,
		Results:      []models.SearchResult{},
		Summary:      summary,
	}
}
