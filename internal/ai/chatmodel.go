package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Default models for hosted providers when ai.model is unset.
const (
	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-5"
)

const anthropicMaxTokens = 4096

// ChatModel generates text through an eino chat model.
type ChatModel struct {
	model model.BaseChatModel
}

// NewChatModel wraps an existing eino chat model.
func NewChatModel(m model.BaseChatModel) *ChatModel {
	return &ChatModel{model: m}
}

// Generate sends prompt as a single user message.
func (c *ChatModel) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("chat model request failed: %w", err)
	}
	if resp == nil {
		return "", errors.New("chat model returned no message")
	}
	text := stripCodeFence(resp.Content)
	if text == "" {
		return "", errors.New("chat model returned an empty response")
	}
	return text, nil
}

func newOpenAIModel(ctx context.Context, modelName, apiKey string) (model.BaseChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is required for the openai provider")
	}
	if modelName == "" {
		modelName = DefaultOpenAIModel
	}
	return openai.NewChatModel(ctx, &openai.ChatModelConfig{
		Model:  modelName,
		APIKey: apiKey,
	})
}

func newAnthropicModel(ctx context.Context, modelName, apiKey string) (model.BaseChatModel, error) {
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY is required for the anthropic provider")
	}
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}
	return claude.NewChatModel(ctx, &claude.Config{
		APIKey:    apiKey,
		Model:     modelName,
		MaxTokens: anthropicMaxTokens,
	})
}
