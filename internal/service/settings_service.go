package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"polyglot/internal/logger"
	"polyglot/internal/repository"
	"polyglot/internal/service/ai"
)

// AISettings holds the AI configuration.
type AISettings struct {
	Provider        string `json:"provider"`
	APIKey          string `json:"apiKey"`
	BaseURL         string `json:"baseUrl"`
	Model           string `json:"model"`
	Thinking        bool   `json:"thinking"`
	ThinkingBudget  int    `json:"thinkingBudget"`
	ReasoningEffort string `json:"reasoningEffort"`
	RateLimit       int    `json:"rateLimit"`
}

// Setting keys
const (
	keyAIProvider        = "ai.provider"
	keyAIAPIKey          = "ai.api_key"
	keyAIBaseURL         = "ai.base_url"
	keyAIModel           = "ai.model"
	keyAIThinking        = "ai.thinking"
	keyAIThinkingBudget  = "ai.thinking_budget"
	keyAIReasoningEffort = "ai.reasoning_effort"
	keyAIRateLimit       = "ai.rate_limit"
)

// SettingsService manages the provider configuration. Stored settings take
// precedence over the defaults it was created with.
type SettingsService interface {
	// GetAISettings returns the effective AI configuration with a masked API key.
	GetAISettings(ctx context.Context) (*AISettings, error)
	// SetAISettings validates, persists and activates the configuration.
	// An empty or masked API key keeps the existing key.
	SetAISettings(ctx context.Context, settings *AISettings) error
	// TestAI sends a test request with the given configuration without saving it.
	TestAI(ctx context.Context, settings *AISettings) (string, error)
	// Apply activates the effective configuration; called once at startup.
	Apply(ctx context.Context) error
}

type settingsService struct {
	repo        repository.SettingsRepository
	providers   *ai.Holder
	rateLimiter *ai.RateLimiter
	defaults    AISettings
	httpClient  *http.Client
}

// NewSettingsService creates a settings service. defaults usually come from
// the environment; httpClient carries the outbound proxy, if any.
func NewSettingsService(repo repository.SettingsRepository, providers *ai.Holder, rateLimiter *ai.RateLimiter, defaults AISettings, httpClient *http.Client) SettingsService {
	if defaults.Provider == "" {
		defaults.Provider = ai.ProviderGemini
	}
	if defaults.RateLimit <= 0 {
		defaults.RateLimit = ai.DefaultRateLimit
	}
	return &settingsService{
		repo:        repo,
		providers:   providers,
		rateLimiter: rateLimiter,
		defaults:    defaults,
		httpClient:  httpClient,
	}
}

func (s *settingsService) GetAISettings(ctx context.Context) (*AISettings, error) {
	settings, err := s.effective(ctx)
	if err != nil {
		return nil, err
	}
	settings.APIKey = maskAPIKey(settings.APIKey)
	return settings, nil
}

// effective merges stored values over the defaults.
func (s *settingsService) effective(ctx context.Context) (*AISettings, error) {
	stored, err := s.repo.GetByPrefix(ctx, "ai.")
	if err != nil {
		return nil, fmt.Errorf("load ai settings: %w", err)
	}

	settings := s.defaults
	for _, kv := range stored {
		switch kv.Key {
		case keyAIProvider:
			if kv.Value != "" {
				settings.Provider = kv.Value
			}
		case keyAIAPIKey:
			if kv.Value != "" {
				settings.APIKey = kv.Value
			}
		case keyAIBaseURL:
			settings.BaseURL = kv.Value
		case keyAIModel:
			settings.Model = kv.Value
		case keyAIThinking:
			settings.Thinking = kv.Value == "true"
		case keyAIThinkingBudget:
			if n, err := strconv.Atoi(kv.Value); err == nil && n > 0 {
				settings.ThinkingBudget = n
			}
		case keyAIReasoningEffort:
			// Empty overrides the default for budget mode.
			settings.ReasoningEffort = kv.Value
		case keyAIRateLimit:
			if n, err := strconv.Atoi(kv.Value); err == nil && n > 0 {
				settings.RateLimit = n
			}
		}
	}
	return &settings, nil
}

func (s *settingsService) SetAISettings(ctx context.Context, settings *AISettings) error {
	if settings == nil {
		return ErrInvalid
	}
	current, err := s.effective(ctx)
	if err != nil {
		return err
	}

	next := *settings
	if next.Provider == "" {
		next.Provider = current.Provider
	}
	if next.APIKey == "" || isMaskedKey(next.APIKey) {
		next.APIKey = current.APIKey
	}
	if next.RateLimit <= 0 {
		next.RateLimit = current.RateLimit
	}

	provider, err := s.buildProvider(&next)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	values := map[string]string{
		keyAIProvider:        next.Provider,
		keyAIBaseURL:         next.BaseURL,
		keyAIModel:           next.Model,
		keyAIThinking:        strconv.FormatBool(next.Thinking),
		keyAIThinkingBudget:  strconv.Itoa(next.ThinkingBudget),
		keyAIReasoningEffort: next.ReasoningEffort,
		keyAIRateLimit:       strconv.Itoa(next.RateLimit),
	}
	// Keys that came from the environment are not copied into the database.
	if next.APIKey != current.APIKey {
		values[keyAIAPIKey] = next.APIKey
	}
	if err := s.repo.SetMany(ctx, values); err != nil {
		return fmt.Errorf("save ai settings: %w", err)
	}

	s.providers.Set(provider)
	s.rateLimiter.SetLimit(next.RateLimit)
	logger.Info("ai settings updated", "module", "service", "action", "update", "resource", "settings", "result", "ok", "provider", provider.Name(), "model", provider.Model())
	return nil
}

func (s *settingsService) TestAI(ctx context.Context, settings *AISettings) (string, error) {
	if settings == nil {
		return "", ErrInvalid
	}
	candidate := *settings
	// A masked key means "use what is configured".
	if candidate.APIKey == "" || isMaskedKey(candidate.APIKey) {
		current, err := s.effective(ctx)
		if err != nil {
			return "", err
		}
		candidate.APIKey = current.APIKey
	}

	p, err := s.buildProvider(&candidate)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return p.Test(ctx)
}

func (s *settingsService) Apply(ctx context.Context) error {
	settings, err := s.effective(ctx)
	if err != nil {
		return err
	}
	s.rateLimiter.SetLimit(settings.RateLimit)

	if settings.APIKey == "" {
		logger.Warn("ai provider not configured", "module", "service", "action", "init", "resource", "settings", "result", "skipped", "provider", settings.Provider)
		return nil
	}
	provider, err := s.buildProvider(settings)
	if err != nil {
		return fmt.Errorf("build ai provider: %w", err)
	}
	s.providers.Set(provider)
	logger.Info("ai provider ready", "module", "service", "action", "init", "resource", "settings", "result", "ok", "provider", provider.Name(), "model", provider.Model())
	return nil
}

func (s *settingsService) buildProvider(settings *AISettings) (ai.Provider, error) {
	if strings.TrimSpace(settings.APIKey) == "" {
		return nil, ai.ErrMissingAPIKey
	}
	p, err := ai.NewProvider(ai.Config{
		Provider:        settings.Provider,
		APIKey:          settings.APIKey,
		BaseURL:         settings.BaseURL,
		Model:           settings.Model,
		Thinking:        settings.Thinking,
		ThinkingBudget:  settings.ThinkingBudget,
		ReasoningEffort: settings.ReasoningEffort,
		HTTPClient:      s.httpClient,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// maskAPIKey returns a masked version of the API key for display.
func maskAPIKey(apiKey string) string {
	if apiKey == "" {
		return ""
	}
	if len(apiKey) <= 8 {
		return "***"
	}
	// Find prefix (e.g., "sk-" for OpenAI)
	prefixEnd := 0
	for i, c := range apiKey {
		if c == '-' {
			prefixEnd = i + 1
			break
		}
		if i >= 4 {
			break
		}
	}
	return apiKey[:prefixEnd] + "***" + apiKey[len(apiKey)-3:]
}

// isMaskedKey checks if a string looks like a masked API key.
func isMaskedKey(key string) bool {
	if len(key) == 0 || len(key) >= 20 {
		return false
	}
	return strings.Contains(key, "***")
}
