package ai

import (
	"context"
)

// Provider is the base interface for all LLM providers
type Provider interface {
	// Complete returns the model's reply to a single system + user exchange
	Complete(ctx context.Context, req *CompletionRequest) (string, error)

	// IsAvailable checks if the provider is available/configured
	IsAvailable() bool

	// Name returns the provider name
	Name() string
}

// CompletionRequest is the LLM collaborator request shape
type CompletionRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float32
}
