// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "report-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// AIProvider identifies the language-model backend.
type AIProvider string

const (
	ProviderClaude AIProvider = "claude"
	ProviderGemini AIProvider = "gemini"
)

// AIConfig holds settings for stages that call a Generative AI API.
type AIConfig struct {
	// Provider selects the backend: claude or gemini.
	Provider AIProvider `json:"provider" yaml:"provider"`

	// Model is the AI model identifier (e.g. "claude-sonnet-4-5-20250929").
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxTokens caps the response length per call (default 4096).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// SearchConfig holds settings for the web search provider client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey is the search provider authentication key.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// QueueCapacity is the provider client's admission burst: how many
	// calls may be dispatched before waiting on capacity refresh.
	QueueCapacity int `json:"queue_capacity" yaml:"queue_capacity"`

	// RefreshInterval is how often one unit of call capacity is restored.
	RefreshInterval time.Duration `json:"refresh_interval" yaml:"refresh_interval"`

	// DefaultNumResults is used for requests that do not set NumResults
	// (default 10).
	DefaultNumResults int `json:"default_num_results" yaml:"default_num_results"`
}

// StoreConfig holds settings for the report history store.
type StoreConfig struct {
	// DataDir is the directory holding the report database.
	DataDir string `json:"data_dir" yaml:"data_dir"`
}

// ServeConfig holds settings for the HTTP API.
type ServeConfig struct {
	// BindAddr is the listen address (e.g. ":8080").
	BindAddr string `json:"bind_addr" yaml:"bind_addr"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	AI     AIConfig     `json:"ai" yaml:"ai"`
	Search SearchConfig `json:"search" yaml:"search"`
	Store  StoreConfig  `json:"store" yaml:"store"`
	Serve  ServeConfig  `json:"serve" yaml:"serve"`
}
