// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/pdiddy/report-engine/pkg/types"
)

// GeminiBackend calls the Gemini API through the official genai client.
type GeminiBackend struct {
	client    *genai.Client
	model     string
	maxTokens int
}

// NewGeminiBackend builds a GeminiBackend from AI configuration. The caller
// owns the backend and must Close it when done.
func NewGeminiBackend(ctx context.Context, cfg types.AIConfig) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &GeminiBackend{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}, nil
}

// Name returns the backend identifier.
func (g *GeminiBackend) Name() string { return "gemini" }

// Close releases the underlying API client.
func (g *GeminiBackend) Close() error {
	return g.client.Close()
}

// Complete sends one prompt to the Gemini API and returns the text response.
func (g *GeminiBackend) Complete(ctx context.Context, prompt string) (string, error) {
	model := g.client.GenerativeModel(g.model)
	if g.maxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.maxTokens))
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("calling Gemini API: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates in Gemini response")
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("no text content in Gemini response")
	}
	return b.String(), nil
}

// NewBackend constructs the configured backend. Gemini backends carry an
// open API client; callers should Close them via the returned cleanup.
func NewBackend(ctx context.Context, cfg types.AIConfig) (Backend, func() error, error) {
	switch cfg.Provider {
	case types.ProviderGemini:
		b, err := NewGeminiBackend(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Close, nil
	case types.ProviderClaude, "":
		b := NewClaudeBackend(cfg, nil)
		return b, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown AI provider %q", cfg.Provider)
	}
}
