package search

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"askstream/internal/models"
)

const (
	snippetMaxLen = 300
	ellipsis      = "..."
)

// truncateSnippet caps s at snippetMaxLen characters including the
// ellipsis, cutting at a word boundary so no word is ever split.
func truncateSnippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= snippetMaxLen {
		return s
	}

	cut := s[:snippetMaxLen-len(ellipsis)]
	if idx := strings.LastIndexFunc(cut, unicode.IsSpace); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRightFunc(cut, unicode.IsSpace) + ellipsis
}

// sourceFromLink derives a source label from the link's hostname,
// stripping a leading "www.". Returns "" when no hostname is present.
func sourceFromLink(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// normalizeResult maps raw provider fields into the fixed result shape:
// missing titles become "Untitled", missing links "#", the snippet is
// capped, and the source falls back hostname -> provider field -> "Unknown".
func normalizeResult(title, link, snippet, date, providerSource string) models.SearchResult {
	if title == "" {
		title = "Untitled"
	}
	if link == "" {
		link = "#"
	}
	source := sourceFromLink(link)
	if source == "" {
		source = providerSource
	}
	if source == "" {
		source = "Unknown"
	}
	return models.SearchResult{
		Title:   title,
		Link:    link,
		Snippet: truncateSnippet(snippet),
		Date:    date,
		Source:  source,
	}
}

// summarize names the total hit count and up to the first three distinct
// sources, in result order.
func summarize(total int, results []models.SearchResult) string {
	if total == 0 && len(results) == 0 {
		return "No results found."
	}

	var sources []string
	seen := make(map[string]bool)
	for _, r := range results {
		if r.Source == "" || r.Source == "Unknown" || seen[r.Source] {
			continue
		}
		seen[r.Source] = true
		sources = append(sources, r.Source)
		if len(sources) == 3 {
			break
		}
	}

	if len(sources) == 0 {
		return fmt.Sprintf("Found %d results.", total)
	}
	return fmt.Sprintf("Found %d results from sources including %s.", total, strings.Join(sources, ", "))
}
