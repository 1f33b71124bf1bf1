package models

// SearchResult is one normalized search hit. Provider field names never
// leak past the search package; the rest of the pipeline sees only this.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Date    string `json:"date,omitempty"`   // ISO date when the provider supplies one
	Source  string `json:"source,omitempty"` // domain, e.g. "reuters.com"
}

// SearchResponse is the normalized output of one search call.
type SearchResponse struct {
	Query        string         `json:"query"`
	TotalResults int            `json:"totalResults"`
	Results      []SearchResult `json:"results"`
	Summary      string         `json:"summary,omitempty"`
}
