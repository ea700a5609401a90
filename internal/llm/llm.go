package llm

import (
	"context"
	"fmt"

	"github.com/comigor/tailortalk/internal/config"
	"github.com/sashabaranov/go-openai"
)

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return openai.NewClientWithConfig(config)
}

// NewBackend builds the backend named by cfg.Provider.
func NewBackend(ctx context.Context, cfg config.LLMConfig) (Backend, error) {
	switch cfg.Provider {
	case config.ProviderGemini, "":
		return NewGeminiBackend(ctx, cfg.APIKey, cfg.Model)
	case config.ProviderOpenAI:
		return NewOpenAIBackend(NewClient(cfg), cfg.Model), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.Provider)
	}
}
