package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNoProviders is returned when no configured provider can take the request
var ErrNoProviders = errors.New("no AI providers available")

// Manager manages AI providers with fallback logic
type Manager struct {
	providers []Provider
	logger    *zap.Logger
}

// NewManager creates a new AI provider manager
func NewManager(providers []Provider, logger *zap.Logger) *Manager {
	return &Manager{
		providers: providers,
		logger:    logger,
	}
}

// GetAvailableProvider returns the first available provider
func (m *Manager) GetAvailableProvider() Provider {
	for _, provider := range m.providers {
		if provider.IsAvailable() {
			return provider
		}
	}
	return nil
}

// ExecuteWithFallback executes a method on providers with fallback logic
func (m *Manager) ExecuteWithFallback(
	ctx context.Context,
	method func(Provider, context.Context) (interface{}, error),
) (interface{}, error) {
	if m.GetAvailableProvider() == nil {
		return nil, ErrNoProviders
	}

	var lastErr error
	for _, provider := range m.providers {
		if !provider.IsAvailable() {
			continue
		}

		result, err := method(provider, ctx)
		if err == nil {
			m.logger.Debug("Successfully used AI provider",
				zap.String("provider", provider.Name()),
			)
			return result, nil
		}

		lastErr = err
		m.logger.Warn("AI provider failed, trying next",
			zap.String("provider", provider.Name()),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	return nil, fmt.Errorf("all AI providers failed. Last error: %w", lastErr)
}

// Complete runs a completion with fallback across providers
func (m *Manager) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	result, err := m.ExecuteWithFallback(ctx, func(provider Provider, ctx context.Context) (interface{}, error) {
		return provider.Complete(ctx, req)
	})

	if err != nil {
		return "", err
	}

	return result.(string), nil
}
