package ai

import (
	"context"
	"net/http"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIProvider implements Provider for OpenAI API.
type OpenAIProvider struct {
	client          openai.Client
	model           string
	thinking        bool
	reasoningEffort string
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, baseURL, model string, httpClient *http.Client, thinking bool, reasoningEffort string) (*OpenAIProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}

	client := openai.NewClient(opts...)
	return &OpenAIProvider{
		client:          client,
		model:           model,
		thinking:        thinking,
		reasoningEffort: reasoningEffort,
	}, nil
}

// Test sends a test message and returns the response.
func (p *OpenAIProvider) Test(ctx context.Context) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage("Hello world"),
		},
	}

	// For reasoning models (o1, o3, gpt-5), use reasoning_effort
	if p.thinking && p.isReasoningModel() && p.reasoningEffort != "" {
		params.ReasoningEffort = shared.ReasoningEffort(p.reasoningEffort)
	} else {
		params.MaxTokens = openai.Int(50)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

// isReasoningModel checks if the model supports reasoning_effort parameter.
// Supports: o1, o3, o4, gpt-5 series
func (p *OpenAIProvider) isReasoningModel() bool {
	model := strings.ToLower(p.model)
	return strings.HasPrefix(model, "o1") ||
		strings.HasPrefix(model, "o3") ||
		strings.HasPrefix(model, "o4") ||
		strings.HasPrefix(model, "gpt-5")
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return ProviderOpenAI
}

// Model returns the configured model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// CompleteJSON generates a response using structured outputs.
func (p *OpenAIProvider) CompleteJSON(ctx context.Context, systemPrompt, content string, schema JSONSchema) (string, error) {
	params := p.params(systemPrompt, content)
	params.ResponseFormat = jsonSchemaFormat(schema)

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", err
	}
	return firstChoice(resp), nil
}

func (p *OpenAIProvider) params(systemPrompt, content string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(p.model),
		Messages: chatMessages(systemPrompt, content),
	}

	// Reasoning models reject temperature
	if p.isReasoningModel() {
		if p.thinking && p.reasoningEffort != "" {
			params.ReasoningEffort = shared.ReasoningEffort(p.reasoningEffort)
		}
	} else {
		params.Temperature = openai.Float(DefaultTemperature)
	}
	return params
}

func chatMessages(systemPrompt, content string) []openai.ChatCompletionMessageParamUnion {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	return append(messages, openai.UserMessage(content))
}

func jsonSchemaFormat(schema JSONSchema) openai.ChatCompletionNewParamsResponseFormatUnion {
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
			JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:        schema.Name,
				Description: openai.String(schema.Description),
				Schema:      schema.Schema,
				Strict:      openai.Bool(true),
			},
		},
	}
}

func firstChoice(resp *openai.ChatCompletion) string {
	if len(resp.Choices) == 0 {
		return ""
	}
	return resp.Choices[0].Message.Content
}
