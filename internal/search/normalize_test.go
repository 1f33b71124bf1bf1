package search

import (
	"context"
	"strings"
	"testing"
	"unicode"
)

func TestTruncateSnippet(t *testing.T) {
	t.Run("short input unchanged", func(t *testing.T) {
		in := "A short snippet."
		if got := truncateSnippet(in); got != in {
			t.Errorf("truncateSnippet(%q) = %q, want unchanged", in, got)
		}
	})

	t.Run("input at cap unchanged", func(t *testing.T) {
		in := strings.Repeat("a", snippetMaxLen)
		if got := truncateSnippet(in); got != in {
			t.Errorf("input of exactly %d chars was modified", snippetMaxLen)
		}
	})

	t.Run("long input cut at word boundary", func(t *testing.T) {
		in := strings.TrimSpace(strings.Repeat("lorem ipsum dolor sit amet ", 20))
		got := truncateSnippet(in)

		if len(got) > snippetMaxLen {
			t.Errorf("truncated snippet is %d chars, cap is %d", len(got), snippetMaxLen)
		}
		if !strings.HasSuffix(got, ellipsis) {
			t.Fatalf("truncated snippet does not end with %q: %q", ellipsis, got)
		}
		pre := strings.TrimSuffix(got, ellipsis)
		if !strings.HasPrefix(in, pre) {
			t.Errorf("pre-ellipsis content is not a prefix of the input: %q", pre)
		}
		// The character after the kept prefix must be whitespace,
		// otherwise a word was split.
		if next := in[len(pre)]; !unicode.IsSpace(rune(next)) {
			t.Errorf("cut splits a word: next char after prefix is %q", next)
		}
	})

	t.Run("single giant word hard cut", func(t *testing.T) {
		in := strings.Repeat("x", 2*snippetMaxLen)
		got := truncateSnippet(in)
		if len(got) > snippetMaxLen {
			t.Errorf("hard cut is %d chars, cap is %d", len(got), snippetMaxLen)
		}
		if !strings.HasSuffix(got, ellipsis) {
			t.Errorf("hard cut does not end with %q", ellipsis)
		}
	})
}

func TestSourceFromLink(t *testing.T) {
	tests := []struct {
		name string
		link string
		want string
	}{
		{"www stripped", "https://www.example.com/articles/1", "example.com"},
		{"subdomain kept", "https://news.site.org/a", "news.site.org"},
		{"placeholder link", "#", ""},
		{"empty link", "", ""},
		{"path only", "/relative/path", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sourceFromLink(tt.link); got != tt.want {
				t.Errorf("sourceFromLink(%q) = %q, want %q", tt.link, got, tt.want)
			}
		})
	}
}

func TestNormalizeResult(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		got := normalizeResult("", "", "", "", "")
		if got.Title != "Untitled" {
			t.Errorf("Title = %q, want %q", got.Title, "Untitled")
		}
		if got.Link != "#" {
			t.Errorf("Link = %q, want %q", got.Link, "#")
		}
		if got.Source != "Unknown" {
			t.Errorf("Source = %q, want %q", got.Source, "Unknown")
		}
	})

	t.Run("hostname wins over provider source", func(t *testing.T) {
		got := normalizeResult("T", "https://www.reuters.com/article", "s", "", "somefeed")
		if got.Source != "reuters.com" {
			t.Errorf("Source = %q, want %q", got.Source, "reuters.com")
		}
	})

	t.Run("provider source used when link has no host", func(t *testing.T) {
		got := normalizeResult("T", "", "s", "", "newswire")
		if got.Source != "newswire" {
			t.Errorf("Source = %q, want %q", got.Source, "newswire")
		}
	})

	t.Run("date passes through", func(t *testing.T) {
		got := normalizeResult("T", "https://example.com", "s", "2025-03-04", "")
		if got.Date != "2025-03-04" {
			t.Errorf("Date = %q, want %q", got.Date, "2025-03-04")
		}
	})
}

func TestSummarize(t *testing.T) {
	t.Run("no results", func(t *testing.T) {
		if got := summarize(0, nil); got != "No results found." {
			t.Errorf("summarize(0, nil) = %q", got)
		}
	})

	t.Run("first three distinct sources", func(t *testing.T) {
		resp, _ := NewMockProvider().Search(context.Background(), "q")
		got := summarize(40, resp.Results)
		want := "Found 40 results from sources including example.com, example.org, example.net."
		if got != want {
			t.Errorf("summarize = %q, want %q", got, want)
		}
	})

	t.Run("duplicate and unknown sources skipped", func(t *testing.T) {
		resp, _ := NewMockProvider().Search(context.Background(), "q")
		results := resp.Results
		results[1].Source = "example.com"
		results[2].Source = "Unknown"
		got := summarize(3, results)
		want := "Found 3 results from sources including example.com."
		if got != want {
			t.Errorf("summarize = %q, want %q", got, want)
		}
	})

	t.Run("count only when no usable sources", func(t *testing.T) {
		resp, _ := NewMockProvider().Search(context.Background(), "q")
		results := resp.Results
		for i := range results {
			results[i].Source = "Unknown"
		}
		if got := summarize(7, results); got != "Found 7 results." {
			t.Errorf("summarize = %q", got)
		}
	})
}
