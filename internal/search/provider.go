package search

import (
	"context"

	"askstream/internal/models"
)

// Provider is one way of resolving a query into normalized results.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Search performs one search call and normalizes the output.
	Search(ctx context.Context, query string) (*models.SearchResponse, error)

	// IsAvailable reports whether the provider is configured to run.
	IsAvailable() bool
}
