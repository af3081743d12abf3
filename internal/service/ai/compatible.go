package ai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// CompatibleProvider implements Provider for OpenAI-compatible APIs.
// This supports services like OpenRouter, Azure OpenAI, Ollama, etc.
type CompatibleProvider struct {
	client          openai.Client
	model           string
	thinking        bool
	thinkingBudget  int
	reasoningEffort string
}

// NewCompatibleProvider creates a new OpenAI-compatible provider.
func NewCompatibleProvider(apiKey, baseURL, model string, httpClient *http.Client, thinking bool, thinkingBudget int, reasoningEffort string) (*CompatibleProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &CompatibleProvider{
		client:          openai.NewClient(opts...),
		model:           model,
		thinking:        thinking,
		thinkingBudget:  thinkingBudget,
		reasoningEffort: reasoningEffort,
	}, nil
}

// Test sends a test message and returns the response.
func (p *CompatibleProvider) Test(ctx context.Context) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello world"),
		},
		MaxTokens: openai.Int(50),
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, p.reasoningOptions()...)
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

// Name returns the provider name.
func (p *CompatibleProvider) Name() string {
	return ProviderCompatible
}

// Model returns the configured model.
func (p *CompatibleProvider) Model() string {
	return p.model
}

// CompleteJSON requests JSON object mode, which compatible servers support
// more widely than json_schema. The schema itself travels in the prompt.
func (p *CompatibleProvider) CompleteJSON(ctx context.Context, systemPrompt, content string, schema JSONSchema) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.model),
		Messages:    chatMessages(systemPrompt, content),
		Temperature: openai.Float(DefaultTemperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	resp, err := p.client.Chat.Completions.New(ctx, params, p.reasoningOptions()...)
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

// reasoningOptions builds the OpenRouter-style reasoning parameter.
func (p *CompatibleProvider) reasoningOptions() []option.RequestOption {
	if !p.thinking {
		return []option.RequestOption{
			option.WithJSONSet("reasoning", map[string]interface{}{"enabled": false}),
		}
	}

	reasoning := map[string]interface{}{}
	if p.reasoningEffort != "" {
		// Effort-based mode for o1/Grok models
		reasoning["effort"] = p.reasoningEffort
	} else if p.thinkingBudget > 0 {
		// Budget-based mode for Anthropic/Gemini models
		reasoning["max_tokens"] = p.thinkingBudget
	}
	if len(reasoning) == 0 {
		return nil
	}
	return []option.RequestOption{option.WithJSONSet("reasoning", reasoning)}
}
