// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/report-engine/pkg/types"
)

// newClaudeTestServer stands in for the Claude API and captures the request.
func newClaudeTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	old := claudeAPIURL
	claudeAPIURL = ts.URL
	t.Cleanup(func() { claudeAPIURL = old })

	return ts
}

func TestClaudeComplete(t *testing.T) {
	var gotReq claudeRequest
	var gotKey, gotVersion string

	newClaudeTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{{Type: "text", Text: "hello back"}},
		})
	})

	b := NewClaudeBackend(types.AIConfig{
		Model:     "claude-sonnet-4-5-20250929",
		APIKey:    "sk-test",
		MaxTokens: 2048,
	}, nil)

	out, err := b.Complete(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out != "hello back" {
		t.Errorf("out = %q, want %q", out, "hello back")
	}
	if gotKey != "sk-test" {
		t.Errorf("x-api-key = %q, want sk-test", gotKey)
	}
	if gotVersion != claudeAPIVersion {
		t.Errorf("anthropic-version = %q, want %q", gotVersion, claudeAPIVersion)
	}
	if gotReq.Model != "claude-sonnet-4-5-20250929" || gotReq.MaxTokens != 2048 {
		t.Errorf("request = %+v", gotReq)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", gotReq.Messages)
	}
}

func TestClaudeCompleteSkipsNonTextBlocks(t *testing.T) {
	newClaudeTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{
			Content: []claudeContent{
				{Type: "thinking", Text: "hmm"},
				{Type: "text", Text: "answer"},
			},
		})
	})

	b := NewClaudeBackend(types.AIConfig{Model: "m", APIKey: "k"}, nil)
	out, err := b.Complete(context.Background(), "q")
	if err != nil {
		t.Fatalf("Complete() error: %v", err)
	}
	if out != "answer" {
		t.Errorf("out = %q, want %q", out, "answer")
	}
}

func TestClaudeCompleteAPIError(t *testing.T) {
	newClaudeTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"message": "invalid model"}}`))
	})

	b := NewClaudeBackend(types.AIConfig{Model: "bad", APIKey: "k"}, nil)
	_, err := b.Complete(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("err = %v, want status in message", err)
	}
}

func TestClaudeCompleteEmptyContent(t *testing.T) {
	newClaudeTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(w).Encode(claudeResponse{})
	})

	b := NewClaudeBackend(types.AIConfig{Model: "m", APIKey: "k"}, nil)
	_, err := b.Complete(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "no text content") {
		t.Errorf("err = %v, want no-text-content error", err)
	}
}
