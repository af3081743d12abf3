package ai_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"polyglot/internal/service/ai"
)

func TestNewProvider_Validation(t *testing.T) {
	_, err := ai.NewProvider(ai.Config{Provider: ai.ProviderOpenAI, Model: "gpt-4o-mini"})
	require.ErrorIs(t, err, ai.ErrMissingAPIKey)

	_, err = ai.NewProvider(ai.Config{Provider: ai.ProviderOpenAI, APIKey: "key"})
	require.ErrorIs(t, err, ai.ErrMissingModel)

	_, err = ai.NewProvider(ai.Config{Provider: ai.ProviderCompatible, APIKey: "key", Model: "m"})
	require.ErrorIs(t, err, ai.ErrMissingBaseURL)

	_, err = ai.NewProvider(ai.Config{Provider: "deepl", APIKey: "key", Model: "m"})
	require.ErrorIs(t, err, ai.ErrInvalidProvider)
}

func TestNewProvider_GeminiDefaults(t *testing.T) {
	p, err := ai.NewProvider(ai.Config{Provider: ai.ProviderGemini, APIKey: "key"})
	require.NoError(t, err)
	require.Equal(t, ai.ProviderGemini, p.Name())
	require.Equal(t, ai.DefaultGeminiModel, p.Model())
}

func TestNewProvider_Names(t *testing.T) {
	cases := []ai.Config{
		{Provider: ai.ProviderOpenAI, APIKey: "key", Model: "gpt-4o-mini"},
		{Provider: ai.ProviderAnthropic, APIKey: "key", Model: "claude-3"},
		{Provider: ai.ProviderCompatible, APIKey: "key", Model: "llama3", BaseURL: "http://localhost:11434/v1"},
	}
	for _, cfg := range cases {
		p, err := ai.NewProvider(cfg)
		require.NoError(t, err)
		require.Equal(t, cfg.Provider, p.Name())
		require.Equal(t, cfg.Model, p.Model())
	}
}

func TestOpenAIProvider_IsReasoningModel(t *testing.T) {
	provider, err := ai.NewOpenAIProvider("key", "", "gpt-5-mini", nil, false, "")
	require.NoError(t, err)
	require.True(t, ai.IsReasoningModelForTest(provider))

	provider, err = ai.NewOpenAIProvider("key", "", "gpt-4o-mini", nil, false, "")
	require.NoError(t, err)
	require.False(t, ai.IsReasoningModelForTest(provider))
}

func TestAnthropicProvider_WithBaseURL(t *testing.T) {
	provider, err := ai.NewAnthropicProvider("key", "https://example.com", "claude-3", nil)
	require.NoError(t, err)
	require.Equal(t, ai.ProviderAnthropic, provider.Name())
}

func TestHolder(t *testing.T) {
	holder := ai.NewHolder(nil)
	_, err := holder.Get()
	require.ErrorIs(t, err, ai.ErrProviderNotConfigured)

	p, err := ai.NewGeminiProvider("key", "", "", nil)
	require.NoError(t, err)
	holder.Set(p)

	got, err := holder.Get()
	require.NoError(t, err)
	require.Same(t, p, got)
}

func TestRateLimiter_SetLimit(t *testing.T) {
	limiter := ai.NewRateLimiter(0)
	require.Equal(t, ai.DefaultRateLimit, limiter.Limit())

	limiter.SetLimit(20)
	require.Equal(t, 20, limiter.Limit())

	limiter.SetLimit(-1)
	require.Equal(t, ai.DefaultRateLimit, limiter.Limit())
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	limiter := ai.NewRateLimiter(1)
	require.NoError(t, limiter.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limiter.Wait(ctx)
	require.Error(t, err)
	require.Contains(t, err.Error(), "rate limit")
}
