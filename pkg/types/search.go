// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the report-engine pipeline.
//
// See docs/ARCHITECTURE § Pipeline Interface, § Data Structures.
package types

// SearchRequest describes one query against the web search provider. The
// planner stage produces these; the execute stage converts each into a
// provider call. Requests are treated as immutable once planned.
type SearchRequest struct {
	// Query is the free-text search string.
	Query string `json:"query" yaml:"query"`

	// Category narrows the search to a provider category
	// (e.g. "research paper", "news", "company").
	Category string `json:"category,omitempty" yaml:"category,omitempty"`

	// Type selects the provider search mode: "neural", "keyword", or "auto".
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// NumResults caps how many hits the provider returns for this request.
	NumResults int `json:"num_results,omitempty" yaml:"num_results,omitempty"`

	// ExcludeDomains lists domains the provider must not return hits from.
	ExcludeDomains []string `json:"exclude_domains,omitempty" yaml:"exclude_domains,omitempty"`

	// StartPublishedDate restricts hits to content published on or after
	// this date (YYYY-MM-DD).
	StartPublishedDate string `json:"start_published_date,omitempty" yaml:"start_published_date,omitempty"`

	// EndPublishedDate restricts hits to content published on or before
	// this date (YYYY-MM-DD).
	EndPublishedDate string `json:"end_published_date,omitempty" yaml:"end_published_date,omitempty"`

	// Contents shapes the text returned with each hit.
	Contents ContentsOptions `json:"contents,omitempty" yaml:"contents,omitempty"`

	// UseCache asks the provider to serve cached index content when
	// available. Nil means true.
	UseCache *bool `json:"use_cache,omitempty" yaml:"use_cache,omitempty"`
}

// ContentsOptions shapes the page content attached to each search hit.
type ContentsOptions struct {
	// MaxCharacters truncates each hit's text excerpt.
	MaxCharacters int `json:"max_characters,omitempty" yaml:"max_characters,omitempty"`

	// NumHighlights is how many highlight snippets to return per hit.
	NumHighlights int `json:"num_highlights,omitempty" yaml:"num_highlights,omitempty"`

	// Summary asks the provider for a generated summary of each hit.
	Summary bool `json:"summary,omitempty" yaml:"summary,omitempty"`

	// Livecrawl controls whether the provider recrawls the page:
	// "never", "fallback", or "always".
	Livecrawl string `json:"livecrawl,omitempty" yaml:"livecrawl,omitempty"`
}

// CacheEnabled resolves the UseCache flag, defaulting to true when unset.
func (r SearchRequest) CacheEnabled() bool {
	return r.UseCache == nil || *r.UseCache
}

// SearchHit is one document returned by the provider.
type SearchHit struct {
	// Title is the document title.
	Title string `json:"title" yaml:"title"`

	// URL is the document location.
	URL string `json:"url" yaml:"url"`

	// PublishedDate is the provider-reported publication date, when known.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Author is the provider-reported author, when known.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// Score is the provider relevance score.
	Score float64 `json:"score,omitempty" yaml:"score,omitempty"`

	// Text is the (possibly truncated) page text excerpt.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Highlights are short relevant snippets from the page.
	Highlights []string `json:"highlights,omitempty" yaml:"highlights,omitempty"`

	// Summary is the provider-generated page summary, when requested.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// SearchResult is the outcome of executing one SearchRequest.
type SearchResult struct {
	// Query echoes the request's query string.
	Query string `json:"query" yaml:"query"`

	// Hits lists the returned documents in provider rank order.
	Hits []SearchHit `json:"hits" yaml:"hits"`
}
