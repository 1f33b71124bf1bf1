package search

import (
	"context"
	"fmt"

	"askstream/internal/models"
)

// MockProvider returns a fixed result set so the pipeline can run without
// network access or credentials. Output is stable for a given query.
type MockProvider struct{}

// NewMockProvider creates the offline provider.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// Name returns the provider name.
func (p *MockProvider) Name() string {
	return "mock"
}

// IsAvailable always reports true; the mock needs no configuration.
func (p *MockProvider) IsAvailable() bool {
	return true
}

// Search returns the three-entry fixture.
func (p *MockProvider) Search(_ context.Context, query string) (*models.SearchResponse, error) {
	results := []models.SearchResult{
		{
			Title:   fmt.Sprintf("Example result 1 for %q", query),
			Link:    "https://www.example.com/articles/1",
			Snippet: "A broad overview of the topic with background, context and the figures most commonly cited by recent coverage.",
			Date:    "2025-06-01",
			Source:  "example.com",
		},
		{
			Title:   fmt.Sprintf("Example result 2 for %q", query),
			Link:    "https://example.org/reports/2",
			Snippet: "An in-depth report covering recent developments, including expert commentary and primary data.",
			Date:    "2025-06-15",
			Source:  "example.org",
		},
		{
			Title:   fmt.Sprintf("Example result 3 for %q", query),
			Link:    "https://example.net/news/3",
			Snippet: "A news summary of the latest updates with links to source announcements.",
			Date:    "2025-07-01",
			Source:  "example.net",
		},
	}

	return &models.SearchResponse{
		Query:        query,
		TotalResults: len(results),
		Results:      results,
	}, nil
}
