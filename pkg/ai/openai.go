package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/troikatech/voice-assistant/pkg/client"
)

// OpenAIProvider implements the Provider interface for OpenAI chat completions
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
	logger *zap.Logger
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(apiKey, model string, timeout time.Duration, logger *zap.Logger) *OpenAIProvider {
	return NewOpenAIProviderWithBaseURL(apiKey, model, "", timeout, logger)
}

// NewOpenAIProviderWithBaseURL points the provider at an OpenAI-compatible endpoint
func NewOpenAIProviderWithBaseURL(apiKey, model, baseURL string, timeout time.Duration, logger *zap.Logger) *OpenAIProvider {
	if apiKey == "" {
		return &OpenAIProvider{logger: logger}
	}

	config := openai.DefaultConfig(apiKey)
	config.HTTPClient = client.NewHTTPClient("openai", timeout)
	if baseURL != "" {
		config.BaseURL = baseURL
	}

	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		client: openai.NewClientWithConfig(config),
		logger: logger,
	}
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// IsAvailable checks if the provider is available
func (p *OpenAIProvider) IsAvailable() bool {
	return p.apiKey != ""
}

// Complete generates a reply using the chat completions API
func (p *OpenAIProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	if !p.IsAvailable() {
		return "", fmt.Errorf("OpenAI provider not available")
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserMessage},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("OpenAI chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty completion content")
	}

	return content, nil
}
