// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch queries the Exa web search API and returns unified results.
//
// The client enforces the provider admission policy locally: a token bucket
// sized by SearchConfig.QueueCapacity refilled every RefreshInterval. Callers
// fan out concurrently; the limiter smooths the call rate.
//
// See docs/ARCHITECTURE § Search.
package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/report-engine/internal/httputil"
	"github.com/pdiddy/report-engine/pkg/types"
)

// exaAPIURL is the Exa search endpoint. Package-level var for test substitution.
var exaAPIURL = "https://api.exa.ai/search"

const (
	defaultNumResults      = 10
	defaultQueueCapacity   = 5
	defaultRefreshInterval = time.Second
	defaultTimeout         = 30 * time.Second
)

// Client calls the Exa search API with rate-limited admission.
type Client struct {
	apiKey     string
	userAgent  string
	numResults int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient builds a Client from search configuration, applying defaults for
// unset admission and result-count values.
func NewClient(cfg types.SearchConfig) *Client {
	capacity := cfg.QueueCapacity
	if capacity <= 0 {
		capacity = defaultQueueCapacity
	}
	refresh := cfg.RefreshInterval
	if refresh <= 0 {
		refresh = defaultRefreshInterval
	}
	numResults := cfg.DefaultNumResults
	if numResults <= 0 {
		numResults = defaultNumResults
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
		numResults: numResults,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Every(refresh), capacity),
	}
}

// exaRequest is the wire form of one search call.
type exaRequest struct {
	Query              string       `json:"query"`
	Category           string       `json:"category,omitempty"`
	Type               string       `json:"type,omitempty"`
	NumResults         int          `json:"numResults,omitempty"`
	ExcludeDomains     []string     `json:"excludeDomains,omitempty"`
	StartPublishedDate string       `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string       `json:"endPublishedDate,omitempty"`
	Contents           *exaContents `json:"contents,omitempty"`
	UseCache           bool         `json:"useCache"`
}

// exaContents shapes the page content attached to each hit.
type exaContents struct {
	Text       *exaText       `json:"text,omitempty"`
	Highlights *exaHighlights `json:"highlights,omitempty"`
	Summary    bool           `json:"summary,omitempty"`
	Livecrawl  string         `json:"livecrawl,omitempty"`
}

type exaText struct {
	MaxCharacters int `json:"maxCharacters,omitempty"`
}

type exaHighlights struct {
	NumSentences int `json:"numSentences,omitempty"`
}

// exaResponse is the wire form of the search result.
type exaResponse struct {
	Results []exaHit `json:"results"`
}

type exaHit struct {
	Title         string   `json:"title"`
	URL           string   `json:"url"`
	PublishedDate string   `json:"publishedDate"`
	Author        string   `json:"author"`
	Score         float64  `json:"score"`
	Text          string   `json:"text"`
	Highlights    []string `json:"highlights"`
	Summary       string   `json:"summary"`
}

// descriptor converts a planned SearchRequest into the provider call form,
// applying client defaults. The cache flag defaults to enabled.
func (c *Client) descriptor(req types.SearchRequest) exaRequest {
	d := exaRequest{
		Query:              req.Query,
		Category:           req.Category,
		Type:               req.Type,
		NumResults:         req.NumResults,
		ExcludeDomains:     req.ExcludeDomains,
		StartPublishedDate: req.StartPublishedDate,
		EndPublishedDate:   req.EndPublishedDate,
		UseCache:           req.CacheEnabled(),
	}
	if d.Type == "" {
		d.Type = "neural"
	}
	if d.NumResults <= 0 {
		d.NumResults = c.numResults
	}

	co := req.Contents
	if co.MaxCharacters > 0 || co.NumHighlights > 0 || co.Summary || co.Livecrawl != "" {
		contents := &exaContents{
			Summary:   co.Summary,
			Livecrawl: co.Livecrawl,
		}
		if co.MaxCharacters > 0 {
			contents.Text = &exaText{MaxCharacters: co.MaxCharacters}
		}
		if co.NumHighlights > 0 {
			contents.Highlights = &exaHighlights{NumSentences: co.NumHighlights}
		}
		d.Contents = contents
	}
	return d
}

// Search executes one request against the Exa API, waiting for admission
// capacity first. The returned result preserves the provider's rank order.
func (c *Client) Search(ctx context.Context, req types.SearchRequest) (types.SearchResult, error) {
	if req.Query == "" {
		return types.SearchResult{}, fmt.Errorf("empty search query")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return types.SearchResult{}, fmt.Errorf("waiting for search capacity: %w", err)
	}

	body, err := json.Marshal(c.descriptor(req))
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, exaAPIURL, bytes.NewReader(body))
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	if c.userAgent != "" {
		httpReq.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, httpReq, 0)
	if err != nil {
		return types.SearchResult{}, fmt.Errorf("Exa API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return types.SearchResult{}, fmt.Errorf("Exa API returned HTTP %d: %s", resp.StatusCode, string(b))
	}

	var er exaResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return types.SearchResult{}, fmt.Errorf("parsing Exa response: %w", err)
	}

	result := types.SearchResult{Query: req.Query}
	for _, hit := range er.Results {
		result.Hits = append(result.Hits, types.SearchHit{
			Title:         hit.Title,
			URL:           hit.URL,
			PublishedDate: hit.PublishedDate,
			Author:        hit.Author,
			Score:         hit.Score,
			Text:          hit.Text,
			Highlights:    hit.Highlights,
			Summary:       hit.Summary,
		})
	}
	return result, nil
}
