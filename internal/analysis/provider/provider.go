// Package provider selects the analysis.Generator backend from configuration.
package provider

import (
	"context"
	"fmt"
	"strings"

	"docvault/internal/analysis"
	"docvault/internal/analysis/gemini"
	"docvault/internal/analysis/openai"
	"docvault/internal/config"
)

// New returns the configured Generator. A missing API key yields analysis.Unconfigured
// so the service still starts and reports a configuration error per request.
func New(ctx context.Context, cfg config.AnalysisConfig) (analysis.Generator, error) {
	if cfg.APIKey == "" {
		return analysis.Unconfigured(), nil
	}
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		return gemini.New(ctx, cfg.APIKey, cfg.Model)
	case "openai":
		return openai.New(cfg.APIKey, cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unknown analysis provider %q", cfg.Provider)
	}
}

// ModelName reports the model a configuration resolves to.
func ModelName(cfg config.AnalysisConfig) string {
	if cfg.Model != "" {
		return cfg.Model
	}
	if strings.EqualFold(cfg.Provider, "openai") {
		return openai.DefaultModel
	}
	return gemini.DefaultModel
}
