// Package llm provides LLM configuration and client abstractions used by the rebalance advisor.
package llm

import "fmt"

// ModelTier represents the capability level of a model
type ModelTier string

const (
	// TierLite is for short classification-style prompts
	TierLite ModelTier = "lite"
	// TierStandard is for structured output over small inputs
	TierStandard ModelTier = "standard"
	// TierAdvanced is for multi-resource reasoning such as rebalancing plans
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI provider, reached through eino
	ProviderOpenAI Provider = "openai"
	// ProviderOllama is a local Ollama server, reached through eino
	ProviderOllama Provider = "ollama"
)

// DefaultOllamaURL is used when no base URL is configured for Ollama.
const DefaultOllamaURL = "http://localhost:11434"

// Config holds the model configuration for the advisor
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
	// BaseURL is only read by the Ollama provider.
	BaseURL string
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultConfigFor(ProviderGemini)
}

// DefaultConfigFor returns the tier table for a provider.
func DefaultConfigFor(p Provider) *Config {
	switch p {
	case ProviderOpenAI:
		return &Config{
			Provider: ProviderOpenAI,
			Models: map[ModelTier]string{
				TierLite:     "gpt-4o-mini",
				TierStandard: "gpt-4o-mini",
				TierAdvanced: "gpt-4o",
			},
		}
	case ProviderOllama:
		return &Config{
			Provider: ProviderOllama,
			BaseURL:  DefaultOllamaURL,
			Models: map[ModelTier]string{
				TierLite:     "llama3.2",
				TierStandard: "llama3.2",
				TierAdvanced: "llama3.1:8b",
			},
		}
	default:
		return &Config{
			Provider: ProviderGemini,
			Models: map[ModelTier]string{
				TierLite:     "gemini-2.5-flash-lite",
				TierStandard: "gemini-2.5-flash",
				TierAdvanced: "gemini-2.5-pro",
			},
		}
	}
}

// ValidateProvider checks if the given provider string is supported.
func ValidateProvider(p string) (Provider, error) {
	switch Provider(p) {
	case ProviderGemini, ProviderOpenAI, ProviderOllama:
		return Provider(p), nil
	default:
		return "", fmt.Errorf("unsupported provider: %s (supported: gemini, openai, ollama)", p)
	}
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	out := &Config{
		Provider: c.Provider,
		BaseURL:  c.BaseURL,
		Models:   make(map[ModelTier]string, len(c.Models)+1),
	}
	for k, v := range c.Models {
		out.Models[k] = v
	}
	out.Models[tier] = model
	return out
}
