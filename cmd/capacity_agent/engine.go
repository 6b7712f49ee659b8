package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/jonathan/capacity-planner/internal/advisory"
	"github.com/jonathan/capacity-planner/internal/config"
	"github.com/jonathan/capacity-planner/internal/db"
	"github.com/jonathan/capacity-planner/internal/forecast"
	"github.com/jonathan/capacity-planner/internal/llm"
	"github.com/jonathan/capacity-planner/internal/snapshot"
)

// backend is an opened store plus what the caller must release.
type backend struct {
	store  forecast.Store
	db     *db.DB
	advice *advisory.Gateway
	close  []func()
}

// Close releases the database pool and LLM client, if any.
func (b *backend) Close() {
	for i := len(b.close) - 1; i >= 0; i-- {
		b.close[i]()
	}
	b.close = nil
}

// openBackend opens the configured store and, when a provider is configured, the advisor.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	b := &backend{}

	switch {
	case cfg.Snapshot != "":
		snap, err := snapshot.NewOsLoader().Load(cfg.Snapshot)
		if err != nil {
			return nil, err
		}
		slog.Debug("loaded snapshot",
			"path", cfg.Snapshot,
			"resources", len(snap.Resources),
			"assignments", len(snap.Assignments),
			"tasks", len(snap.Tasks))
		b.store = snapshot.NewStore(snap)
	case cfg.DatabaseURL != "":
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.db = database
		b.store = database
		b.close = append(b.close, database.Close)
	default:
		return nil, fmt.Errorf("either --snapshot or --database-url must be provided")
	}

	gateway, closeClient, err := newAdvisor(ctx, cfg)
	if err != nil {
		b.Close()
		return nil, err
	}
	b.advice = gateway
	if closeClient != nil {
		b.close = append(b.close, closeClient)
	}
	return b, nil
}

// engine builds a forecast engine over the backend.
func (b *backend) engine(opts ...forecast.Option) *forecast.Engine {
	if b.advice != nil {
		opts = append([]forecast.Option{forecast.WithAdvisor(b.advice)}, opts...)
	}
	return forecast.NewEngineFromStore(b.store, opts...)
}

// newAdvisor returns a nil gateway when no provider is configured or its client cannot be built.
// Only an unknown provider name is an error.
func newAdvisor(ctx context.Context, cfg config.Config) (*advisory.Gateway, func(), error) {
	if cfg.LLMProvider == "" {
		return nil, nil, nil
	}
	provider, err := llm.ValidateProvider(cfg.LLMProvider)
	if err != nil {
		return nil, nil, err
	}

	llmConfig := llm.DefaultConfigFor(provider)
	if cfg.LLMModel != "" {
		llmConfig = llmConfig.WithModel(llm.TierAdvanced, cfg.LLMModel)
	}
	if provider == llm.ProviderOllama {
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			llmConfig.BaseURL = baseURL
		}
	}

	apiKey := resolveAPIKey(provider, cfg.APIKey)
	client, err := llm.NewClient(ctx, llmConfig, apiKey)
	if err != nil {
		// suggestions are optional; forecasts run without them
		slog.Warn("advisory disabled: failed to create LLM client", "provider", provider, "error", err)
		return nil, nil, nil
	}

	gateway := advisory.NewGateway(advisory.NewLLMProvider(client), cfg.AdvisoryTimeoutDuration())
	slog.Debug("advisory enabled",
		"provider", provider,
		"model", llmConfig.GetModel(llm.TierAdvanced),
		"timeout", gateway.Timeout())

	return gateway, func() { _ = client.Close() }, nil
}

// resolveAPIKey falls back to the provider's conventional environment variable.
func resolveAPIKey(provider llm.Provider, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch provider {
	case llm.ProviderGemini:
		return os.Getenv("GEMINI_API_KEY")
	case llm.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	default:
		return ""
	}
}
