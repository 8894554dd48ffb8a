// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pdiddy/report-engine/pkg/types"
)

func testCfg() types.SearchConfig {
	return types.SearchConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   10 * time.Second,
			UserAgent: "test/0.1",
		},
		APIKey:            "exa-test-key",
		QueueCapacity:     10,
		RefreshInterval:   time.Millisecond,
		DefaultNumResults: 5,
	}
}

// newExaTestServer stands in for the Exa API.
func newExaTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := exaAPIURL
	exaAPIURL = ts.URL
	t.Cleanup(func() { exaAPIURL = old })

	return ts
}

func TestDescriptorDefaults(t *testing.T) {
	c := NewClient(testCfg())

	d := c.descriptor(types.SearchRequest{Query: "attention"})
	if d.Type != "neural" {
		t.Errorf("Type = %q, want neural", d.Type)
	}
	if d.NumResults != 5 {
		t.Errorf("NumResults = %d, want client default 5", d.NumResults)
	}
	if !d.UseCache {
		t.Error("UseCache = false, want true by default")
	}
	if d.Contents != nil {
		t.Errorf("Contents = %+v, want nil when unshaped", d.Contents)
	}
}

func TestDescriptorExplicitValues(t *testing.T) {
	c := NewClient(testCfg())
	noCache := false

	d := c.descriptor(types.SearchRequest{
		Query:              "llm evals",
		Category:           "research paper",
		Type:               "keyword",
		NumResults:         3,
		ExcludeDomains:     []string{"reddit.com"},
		StartPublishedDate: "2025-01-01",
		UseCache:           &noCache,
		Contents: types.ContentsOptions{
			MaxCharacters: 2000,
			NumHighlights: 2,
			Summary:       true,
			Livecrawl:     "fallback",
		},
	})

	if d.Type != "keyword" || d.NumResults != 3 || d.Category != "research paper" {
		t.Errorf("descriptor = %+v", d)
	}
	if d.UseCache {
		t.Error("UseCache = true, want explicit false honored")
	}
	if d.Contents == nil || d.Contents.Text == nil || d.Contents.Text.MaxCharacters != 2000 {
		t.Fatalf("Contents = %+v", d.Contents)
	}
	if d.Contents.Highlights == nil || d.Contents.Highlights.NumSentences != 2 {
		t.Errorf("Highlights = %+v", d.Contents.Highlights)
	}
	if !d.Contents.Summary || d.Contents.Livecrawl != "fallback" {
		t.Errorf("Contents = %+v", d.Contents)
	}
}

func TestSearch(t *testing.T) {
	var gotKey string
	var gotBody exaRequest

	newExaTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(exaResponse{
			Results: []exaHit{
				{Title: "Paper A", URL: "https://example.org/a", Score: 0.9, Highlights: []string{"h1"}},
				{Title: "Paper B", URL: "https://example.org/b", Score: 0.7},
			},
		})
	})

	c := NewClient(testCfg())
	result, err := c.Search(context.Background(), types.SearchRequest{Query: "X findings"})
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotKey != "exa-test-key" {
		t.Errorf("x-api-key = %q", gotKey)
	}
	if gotBody.Query != "X findings" {
		t.Errorf("request query = %q", gotBody.Query)
	}
	if result.Query != "X findings" {
		t.Errorf("result query = %q", result.Query)
	}
	if len(result.Hits) != 2 || result.Hits[0].Title != "Paper A" || result.Hits[1].URL != "https://example.org/b" {
		t.Errorf("hits = %+v", result.Hits)
	}
	if len(result.Hits[0].Highlights) != 1 {
		t.Errorf("highlights = %+v", result.Hits[0].Highlights)
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), types.SearchRequest{})
	if err == nil || !strings.Contains(err.Error(), "empty search query") {
		t.Errorf("err = %v, want empty-query error", err)
	}
}

func TestSearchAPIError(t *testing.T) {
	newExaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "invalid key"}`))
	})

	c := NewClient(testCfg())
	_, err := c.Search(context.Background(), types.SearchRequest{Query: "x"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestSearchHonorsAdmissionPolicy(t *testing.T) {
	newExaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(exaResponse{})
	})

	cfg := testCfg()
	cfg.QueueCapacity = 1
	cfg.RefreshInterval = 20 * time.Millisecond
	c := NewClient(cfg)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := c.Search(context.Background(), types.SearchRequest{Query: "x"}); err != nil {
			t.Fatalf("Search() error: %v", err)
		}
	}
	// Capacity 1 with 20 ms refresh: the second and third calls must wait.
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("elapsed = %v, want at least 40ms of limiter waits", elapsed)
	}
}

func TestSearchContextCancelledWhileWaiting(t *testing.T) {
	cfg := testCfg()
	cfg.QueueCapacity = 1
	cfg.RefreshInterval = time.Hour
	c := NewClient(cfg)

	// Consume the single admission token.
	newExaTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(exaResponse{})
	})
	if _, err := c.Search(context.Background(), types.SearchRequest{Query: "x"}); err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := c.Search(ctx, types.SearchRequest{Query: "y"})
	if err == nil {
		t.Error("expected error when capacity wait outlives context")
	}
}
