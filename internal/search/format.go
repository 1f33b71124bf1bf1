package search

import (
	"fmt"
	"strings"

	"askstream/internal/models"
)

// noResultsText is returned when there is nothing to cite.
const noResultsText = "No search results were found."

// FormatCitations renders a response as numbered citation blocks for the
// synthesis prompt:
//
//	[1] "Title"
//	  snippet
//	  → https://example.com/page (2025-06-01) (via example.com)
//
// The 1-based numbers match the inline [n] markers the model is told to
// use. Output is deterministic for identical input.
func FormatCitations(resp *models.SearchResponse) string {
	if resp == nil || len(resp.Results) == 0 {
		return noResultsText
	}

	blocks := make([]string, 0, len(resp.Results))
	for i, r := range resp.Results {
		var b strings.Builder
		fmt.Fprintf(&b, "[%d] %q\n", i+1, r.Title)
		fmt.Fprintf(&b, "  %s\n", r.Snippet)
		fmt.Fprintf(&b, "  → %s", r.Link)
		if r.Date != "" {
			fmt.Fprintf(&b, " (%s)", r.Date)
		}
		if r.Source != "" {
			fmt.Fprintf(&b, " (via %s)", r.Source)
		}
		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}
