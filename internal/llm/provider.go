package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Lllllllleong/examdocumentflow/internal/config"
	"github.com/Lllllllleong/examdocumentflow/internal/gcp"
)

// NewBackend builds the backend selected by cfg.LLM.Provider.
func NewBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch cfg.LLM.Provider {
	case config.ProviderVertex:
		vc, err := gcp.NewVertexClient(ctx, cfg.ProjectID, cfg.Region, cfg.LLM.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create vertex client: %w", err)
		}
		return NewVertexBackend(vc), nil
	case config.ProviderGemini:
		return NewGeminiBackend(ctx, cfg.LLM.GoogleAPIKey, cfg.LLM.Model)
	case config.ProviderAnthropic:
		return NewAnthropicBackend(cfg.LLM.AnthropicAPIKey, cfg.LLM.Model, cfg.LLM.MaxTokens)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

// NewFromConfig builds a ready Client for the configured provider.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	backend, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("Completion client initialized.", "provider", backend.Name(), "timeout", cfg.LLM.Timeout, "rateLimit", cfg.LLM.RateLimit)
	return NewClient(backend, ClientConfig{
		Timeout:   cfg.LLMTimeout(),
		RateLimit: cfg.LLM.RateLimit,
	}), nil
}
