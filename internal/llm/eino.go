package llm

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// jsonInstruction is prepended as a system message for GenerateJSON since eino chat models
// have no provider-neutral response MIME type.
const jsonInstruction = "Respond with JSON only. Do not wrap the output in markdown."

// ChatModelFactory builds an eino chat model for a concrete model name.
type ChatModelFactory func(ctx context.Context, modelName string) (model.BaseChatModel, error)

// EinoClient implements Client on top of eino chat models (OpenAI, Ollama).
// Chat models are created lazily per model name and reused.
type EinoClient struct {
	config  *Config
	factory ChatModelFactory

	mu     sync.Mutex
	models map[string]model.BaseChatModel
}

// NewEinoClient creates a client for the OpenAI or Ollama provider.
func NewEinoClient(_ context.Context, config *Config, apiKey string) (*EinoClient, error) {
	var factory ChatModelFactory
	switch config.Provider {
	case ProviderOpenAI:
		if apiKey == "" {
			return nil, fmt.Errorf("OpenAI API key is required")
		}
		factory = func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
			return openai.NewChatModel(ctx, &openai.ChatModelConfig{
				Model:  modelName,
				APIKey: apiKey,
			})
		}
	case ProviderOllama:
		baseURL := config.BaseURL
		if baseURL == "" {
			baseURL = DefaultOllamaURL
		}
		factory = func(ctx context.Context, modelName string) (model.BaseChatModel, error) {
			return ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
				BaseURL: baseURL,
				Model:   modelName,
			})
		}
	default:
		return nil, fmt.Errorf("provider %s is not served by eino", config.Provider)
	}
	return NewEinoClientWithFactory(config, factory), nil
}

// NewEinoClientWithFactory creates a client with a custom chat model factory.
func NewEinoClientWithFactory(config *Config, factory ChatModelFactory) *EinoClient {
	return &EinoClient{
		config:  config,
		factory: factory,
		models:  make(map[string]model.BaseChatModel),
	}
}

func (c *EinoClient) chatModel(ctx context.Context, tier ModelTier) (model.BaseChatModel, error) {
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, fmt.Errorf("no model configured for tier %s", tier)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok := c.models[name]; ok {
		return m, nil
	}
	m, err := c.factory(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create model: %w", err)
	}
	c.models[name] = m
	return m, nil
}

func (c *EinoClient) generate(ctx context.Context, tier ModelTier, messages []*schema.Message) (string, error) {
	m, err := c.chatModel(ctx, tier)
	if err != nil {
		return "", err
	}
	resp, err := m.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("llm generate: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("empty response from %s", c.config.Provider)
	}
	return resp.Content, nil
}

// GenerateContent generates text content using the specified model tier
func (c *EinoClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, tier, []*schema.Message{schema.UserMessage(prompt)})
}

// GenerateJSON generates JSON content using the specified model tier
func (c *EinoClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, tier, []*schema.Message{
		schema.SystemMessage(jsonInstruction),
		schema.UserMessage(prompt),
	})
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *EinoClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; eino chat models hold no closable resources.
func (c *EinoClient) Close() error {
	return nil
}
