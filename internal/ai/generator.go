// Package ai drafts implementation plans with a language model: the Claude
// Code CLI by default, or a hosted OpenAI / Anthropic model.
package ai

import (
	"context"
	"fmt"

	"github.com/pablasso/planfirst/internal/config"
)

// Generator turns a prompt into text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New returns the generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.AIConfig) (Generator, error) {
	switch cfg.Provider {
	case "", config.ProviderClaudeCLI:
		return &ClaudeCLI{Timeout: cfg.Timeout}, nil
	case config.ProviderOpenAI:
		m, err := newOpenAIModel(ctx, cfg.Model, config.APIKey(cfg.Provider))
		if err != nil {
			return nil, err
		}
		return NewChatModel(m), nil
	case config.ProviderAnthropic:
		m, err := newAnthropicModel(ctx, cfg.Model, config.APIKey(cfg.Provider))
		if err != nil {
			return nil, err
		}
		return NewChatModel(m), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s (supported: claude-cli, openai, anthropic)", cfg.Provider)
	}
}
