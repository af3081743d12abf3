package ai

import (
	"context"
	"net/http"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	// DefaultGeminiBaseURL is Google AI's OpenAI-compatible endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	// DefaultGeminiModel is used when no model is configured.
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiProvider implements Provider for Google AI (Gemini) through its
// OpenAI-compatible endpoint.
type GeminiProvider struct {
	client openai.Client
	model  string
}

// NewGeminiProvider creates a new Gemini provider.
func NewGeminiProvider(apiKey, baseURL, model string, httpClient *http.Client) (*GeminiProvider, error) {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	return &GeminiProvider{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

// Test sends a test message and returns the response.
func (p *GeminiProvider) Test(ctx context.Context) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello world"),
		},
		MaxTokens: openai.Int(50),
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return ProviderGemini
}

// Model returns the configured model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// CompleteJSON generates a response constrained by the response schema.
func (p *GeminiProvider) CompleteJSON(ctx context.Context, systemPrompt, content string, schema JSONSchema) (string, error) {
	resp, err := p.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:          openai.ChatModel(p.model),
		Messages:       chatMessages(systemPrompt, content),
		Temperature:    openai.Float(DefaultTemperature),
		ResponseFormat: jsonSchemaFormat(schema),
	})
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}
