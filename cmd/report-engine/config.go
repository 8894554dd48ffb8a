// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/report-engine/internal/secrets"
	"github.com/pdiddy/report-engine/pkg/types"
)

// buildConfig assembles the pipeline configuration from viper (config file
// plus REPORT_ENGINE_* environment) and the loaded secrets. An explicit
// provider/model flag value overrides the configured one.
func buildConfig(providerFlag, modelFlag string) (types.PipelineConfig, error) {
	viper.SetDefault("ai.provider", string(types.ProviderClaude))
	viper.SetDefault("ai.model", "claude-sonnet-4-5-20250929")
	viper.SetDefault("ai.max_tokens", 4096)
	viper.SetDefault("search.timeout", "30s")
	viper.SetDefault("search.user_agent", "report-engine/"+version)
	viper.SetDefault("search.queue_capacity", 5)
	viper.SetDefault("search.refresh_interval", "1s")
	viper.SetDefault("search.default_num_results", 10)
	viper.SetDefault("store.data_dir", "data")
	viper.SetDefault("serve.bind_addr", ":8080")

	provider := types.AIProvider(viper.GetString("ai.provider"))
	if providerFlag != "" {
		provider = types.AIProvider(providerFlag)
	}
	model := viper.GetString("ai.model")
	if modelFlag != "" {
		model = modelFlag
	}

	cfg := types.PipelineConfig{
		AI: types.AIConfig{
			Provider:  provider,
			Model:     model,
			MaxTokens: viper.GetInt("ai.max_tokens"),
		},
		Search: types.SearchConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("search.timeout"),
				UserAgent: viper.GetString("search.user_agent"),
			},
			QueueCapacity:     viper.GetInt("search.queue_capacity"),
			RefreshInterval:   viper.GetDuration("search.refresh_interval"),
			DefaultNumResults: viper.GetInt("search.default_num_results"),
		},
		Store: types.StoreConfig{
			DataDir: viper.GetString("store.data_dir"),
		},
		Serve: types.ServeConfig{
			BindAddr: viper.GetString("serve.bind_addr"),
		},
	}

	switch provider {
	case types.ProviderClaude:
		cfg.AI.APIKey = secrets.Resolve(loadedSecrets, secrets.KeyAnthropic, "ANTHROPIC_API_KEY", viper.GetString("ai.api_key"))
		if cfg.AI.APIKey == "" {
			return cfg, fmt.Errorf("no Claude API key: add .secrets/%s or set ANTHROPIC_API_KEY", secrets.KeyAnthropic)
		}
	case types.ProviderGemini:
		cfg.AI.APIKey = secrets.Resolve(loadedSecrets, secrets.KeyGemini, "GEMINI_API_KEY", viper.GetString("ai.api_key"))
		if cfg.AI.APIKey == "" {
			return cfg, fmt.Errorf("no Gemini API key: add .secrets/%s or set GEMINI_API_KEY", secrets.KeyGemini)
		}
	default:
		return cfg, fmt.Errorf("unknown AI provider %q", provider)
	}

	cfg.Search.APIKey = secrets.Resolve(loadedSecrets, secrets.KeyExa, "EXA_API_KEY", viper.GetString("search.api_key"))
	if cfg.Search.APIKey == "" {
		return cfg, fmt.Errorf("no Exa API key: add .secrets/%s or set EXA_API_KEY", secrets.KeyExa)
	}

	if cfg.Search.RefreshInterval <= 0 {
		cfg.Search.RefreshInterval = time.Second
	}
	return cfg, nil
}
