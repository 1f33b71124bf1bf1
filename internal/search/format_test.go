package search

import (
	"strings"
	"testing"

	"askstream/internal/models"
)

func TestFormatCitationsLayout(t *testing.T) {
	resp := &models.SearchResponse{
		Query:        "test",
		TotalResults: 2,
		Results: []models.SearchResult{
			{
				Title:   "First Article",
				Link:    "https://example.com/a",
				Snippet: "First snippet.",
				Date:    "2025-05-01",
				Source:  "example.com",
			},
			{
				Title:   "Second Article",
				Link:    "https://example.org/b",
				Snippet: "Second snippet.",
				Source:  "example.org",
			},
		},
	}

	want := `[1] "First Article"
  First snippet.
  → https://example.com/a (2025-05-01) (via example.com)

[2] "Second Article"
  Second snippet.
  → https://example.org/b (via example.org)`

	if got := FormatCitations(resp); got != want {
		t.Errorf("FormatCitations =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatCitationsDeterministic(t *testing.T) {
	resp := &models.SearchResponse{
		Query:        "stable",
		TotalResults: 1,
		Results: []models.SearchResult{
			{Title: "Only", Link: "https://example.com", Snippet: "s", Source: "example.com"},
		},
	}
	first := FormatCitations(resp)
	second := FormatCitations(resp)
	if first != second {
		t.Errorf("formatting is not idempotent:\n%s\nvs:\n%s", first, second)
	}
	if !strings.Contains(first, "[1]") {
		t.Errorf("formatted output missing [1] marker: %q", first)
	}
}

func TestFormatCitationsEmpty(t *testing.T) {
	if got := FormatCitations(nil); got != noResultsText {
		t.Errorf("FormatCitations(nil) = %q, want sentinel", got)
	}
	empty := &models.SearchResponse{Query: "q", Results: []models.SearchResult{}}
	if got := FormatCitations(empty); got != noResultsText {
		t.Errorf("FormatCitations(empty) = %q, want sentinel", got)
	}
}
