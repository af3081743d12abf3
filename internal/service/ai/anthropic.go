package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 4096

// AnthropicProvider implements Provider for Anthropic API.
type AnthropicProvider struct {
	client anthropic.Client
	model  string
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, baseURL, model string, httpClient *http.Client) (*AnthropicProvider, error) {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	client := anthropic.NewClient(opts...)
	return &AnthropicProvider{
		client: client,
		model:  model,
	}, nil
}

// Test sends a test message and returns the response.
func (p *AnthropicProvider) Test(ctx context.Context) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 50,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Hello world")),
		},
	}

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	return firstText(resp), nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return ProviderAnthropic
}

// Model returns the configured model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// CompleteJSON has no native schema support on this API. The schema is
// appended to the system prompt and the reply is prefilled with "{".
func (p *AnthropicProvider) CompleteJSON(ctx context.Context, systemPrompt, content string, schema JSONSchema) (string, error) {
	raw, err := json.Marshal(schema.Schema)
	if err != nil {
		return "", fmt.Errorf("encode schema: %w", err)
	}
	system := fmt.Sprintf("%s\n\n<json_schema>\n%s\n</json_schema>\nRespond with a single JSON object only.", systemPrompt, raw)

	params := p.params(system, content)
	params.Messages = append(params.Messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock("{")))

	resp, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", err
	}
	return "{" + firstText(resp), nil
}

func (p *AnthropicProvider) params(systemPrompt, content string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(p.model),
		MaxTokens:   anthropicMaxTokens,
		Temperature: anthropic.Float(DefaultTemperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(content)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	return params
}

// firstText extracts the first text block, skipping thinking blocks.
func firstText(resp *anthropic.Message) string {
	for _, block := range resp.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			return v.Text
		}
	}
	return ""
}
