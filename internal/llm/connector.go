package llm

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"github.com/formshift/pkg/models"
)

// Provider represents an AI provider type
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
	ProviderClaude Provider = "claude"
	ProviderOllama Provider = "ollama"
)

// ModelConfig contains the sampling configuration for a specific model.
// Low temperature and top-p keep generated code deterministic.
type ModelConfig struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
	Model       string  `json:"model,omitempty"`
}

// ConnectorOptions contains options for creating a connector
type ConnectorOptions struct {
	Provider    Provider    `json:"provider"`
	APIKey      string      `json:"api_key"`
	BaseURL     string      `json:"base_url,omitempty"`
	ModelConfig ModelConfig `json:"model_config,omitempty"`
}

// Connector is the concrete Client backed by a langchaingo model.
type Connector struct {
	provider Provider
	llm      llms.Model
	options  ConnectorOptions
}

// NewConnector creates a new connector for the specified provider
func NewConnector(ctx context.Context, options ConnectorOptions) (*Connector, error) {
	var model llms.Model
	var err error

	log.Debug().
		Str("provider", string(options.Provider)).
		Str("model", options.ModelConfig.Model).
		Float64("temperature", options.ModelConfig.Temperature).
		Msg("Creating new connector")

	switch options.Provider {
	case ProviderOpenAI:
		model, err = createOpenAIModel(ctx, options)
	case ProviderGemini:
		model, err = createGeminiModel(ctx, options)
	case ProviderClaude:
		model, err = createAnthropicModel(ctx, options)
	case ProviderOllama:
		model, err = createOllamaModel(ctx, options)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", options.Provider)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", options.Provider, err)
	}

	return &Connector{
		provider: options.Provider,
		llm:      model,
		options:  options,
	}, nil
}

// Generate performs one remote call with the connector's sampling
// configuration and returns the raw response text.
func (c *Connector) Generate(ctx context.Context, prompt, systemPrompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeHuman, prompt),
	}
	if systemPrompt != "" {
		messages = []llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
			llms.TextParts(schema.ChatMessageTypeHuman, prompt),
		}
	}

	callOptions := []llms.CallOption{
		llms.WithTemperature(c.options.ModelConfig.Temperature),
	}
	if c.options.ModelConfig.TopP > 0 {
		callOptions = append(callOptions, llms.WithTopP(c.options.ModelConfig.TopP))
	}
	if c.options.ModelConfig.MaxTokens > 0 {
		callOptions = append(callOptions, llms.WithMaxTokens(c.options.ModelConfig.MaxTokens))
	}
	if c.options.ModelConfig.Model != "" {
		callOptions = append(callOptions, llms.WithModel(c.options.ModelConfig.Model))
	}

	response, err := c.llm.GenerateContent(ctx, messages, callOptions...)
	if err != nil {
		log.Error().Err(err).
			Str("provider", string(c.provider)).
			Str("model", c.options.ModelConfig.Model).
			Msg("Generation call failed")
		return "", err
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("provider %s returned no choices", c.provider)
	}

	return response.Choices[0].Content, nil
}

// ValidateAPIKey validates the provided API key against the provider
// with a minimal generation call.
func ValidateAPIKey(ctx context.Context, provider Provider, apiKey string, baseURL string) (bool, error) {
	options := ConnectorOptions{
		Provider: provider,
		APIKey:   apiKey,
		BaseURL:  baseURL,
		ModelConfig: ModelConfig{
			Temperature: 0.2,
			MaxTokens:   10,
		},
	}

	switch provider {
	case ProviderOpenAI:
		options.ModelConfig.Model = "gpt-4o-mini"
	case ProviderGemini:
		options.ModelConfig.Model = "gemini-2.5-flash"
	case ProviderClaude:
		options.ModelConfig.Model = "claude-3-5-haiku-latest"
	case ProviderOllama:
		options.ModelConfig.Model = "llama3"
	default:
		return false, fmt.Errorf("unsupported provider: %s", provider)
	}

	connector, err := NewConnector(ctx, options)
	if err != nil {
		return false, fmt.Errorf("failed to create connector: %w", err)
	}

	_, err = connector.Generate(ctx, "test", "")
	if err != nil {
		// A quota error means the key is valid but currently throttled.
		if ClassifyError(err) == models.ErrorKindRateLimited {
			return false, fmt.Errorf("quota exceeded - the key appears valid but is rate limited: %w", err)
		}
		log.Debug().Err(err).Str("provider", string(provider)).Msg("API key validation failed")
		return false, nil
	}

	return true, nil
}

// Helper functions to create models for specific providers

func createOpenAIModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(options.ModelConfig.Model),
		openai.WithToken(options.APIKey),
	}

	if options.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(options.BaseURL))
	}

	return openai.New(opts...)
}

func createGeminiModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	opts := []googleai.Option{
		googleai.WithAPIKey(options.APIKey),
		googleai.WithDefaultModel(options.ModelConfig.Model),
	}

	model, err := googleai.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini model: %w", err)
	}

	return model, nil
}

func createAnthropicModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(options.APIKey),
		anthropic.WithModel(options.ModelConfig.Model),
	}

	return anthropic.New(opts...)
}

func createOllamaModel(ctx context.Context, options ConnectorOptions) (llms.Model, error) {
	if options.BaseURL == "" {
		options.BaseURL = "http://localhost:11434"
	}

	opts := []ollama.Option{
		ollama.WithServerURL(options.BaseURL),
		ollama.WithModel(options.ModelConfig.Model),
	}

	return ollama.New(opts...)
}
