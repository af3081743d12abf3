package ai

import (
	"context"
	"errors"
	"net/http"
	"sync"
)

// Provider defines the interface for AI providers.
type Provider interface {
	// Test sends a test message and returns the response.
	Test(ctx context.Context) (string, error)
	// Name returns the provider name.
	Name() string
	// Model returns the model identifier requests are sent to.
	Model() string
	// CompleteJSON generates a response constrained to the given schema and
	// returns the raw JSON text.
	CompleteJSON(ctx context.Context, systemPrompt, content string, schema JSONSchema) (string, error)
}

// Config holds the configuration for an AI provider.
type Config struct {
	Provider        string // gemini, openai, anthropic, compatible
	APIKey          string
	BaseURL         string // optional for gemini/openai/anthropic, required for compatible
	Model           string
	Thinking        bool   // enable thinking/reasoning
	ThinkingBudget  int    // Anthropic/Compatible budget_tokens
	ReasoningEffort string // OpenAI/Compatible effort: low/medium/high/minimal
	HTTPClient      *http.Client
}

// ProviderType constants
const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

// DefaultTemperature keeps translations close to literal.
const DefaultTemperature = 0.2

var (
	ErrInvalidProvider       = errors.New("invalid provider")
	ErrMissingAPIKey         = errors.New("API key is required")
	ErrMissingBaseURL        = errors.New("base URL is required for compatible provider")
	ErrMissingModel          = errors.New("model is required")
	ErrProviderNotConfigured = errors.New("AI provider is not configured")
)

// NewProvider creates a new AI provider based on the config.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" && cfg.Provider != ProviderGemini {
		return nil, ErrMissingModel
	}

	switch cfg.Provider {
	case ProviderGemini:
		return NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.HTTPClient)
	case ProviderOpenAI:
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.HTTPClient, cfg.Thinking, cfg.ReasoningEffort)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.HTTPClient)
	case ProviderCompatible:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewCompatibleProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.HTTPClient, cfg.Thinking, cfg.ThinkingBudget, cfg.ReasoningEffort)
	default:
		return nil, ErrInvalidProvider
	}
}

// Holder keeps the provider shared by all translation calls. It is built once
// at startup and replaced only when the AI settings change.
type Holder struct {
	mu       sync.RWMutex
	provider Provider
}

// NewHolder returns a holder for p. A nil p leaves the holder unconfigured.
func NewHolder(p Provider) *Holder {
	return &Holder{provider: p}
}

// Get returns the current provider.
func (h *Holder) Get() (Provider, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.provider == nil {
		return nil, ErrProviderNotConfigured
	}
	return h.provider, nil
}

// Set replaces the current provider.
func (h *Holder) Set(p Provider) {
	h.mu.Lock()
	h.provider = p
	h.mu.Unlock()
}
