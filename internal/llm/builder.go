package llm

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"charm.land/fantasy"
	"charm.land/fantasy/providers/anthropic"
	"charm.land/fantasy/providers/openai"
	"github.com/charmbracelet/catwalk/pkg/catwalk"

	"github.com/guilhermegouw/socchat/internal/config"
)

// Builder creates fantasy language models from configuration. Providers are
// built once and cached.
type Builder struct {
	cfg   *config.Config
	cache map[string]fantasy.Provider
	mu    sync.Mutex
}

// NewBuilder creates a new provider Builder.
func NewBuilder(cfg *config.Config) *Builder {
	return &Builder{
		cfg:   cfg,
		cache: make(map[string]fantasy.Provider),
	}
}

// LanguageModel returns the language model for a model reference such as
// "llama3.2:3b" or "groq/llama-3.3-70b-versatile".
func (b *Builder) LanguageModel(ctx context.Context, ref string) (fantasy.LanguageModel, error) {
	providerID, modelID := b.cfg.ResolveModel(ref)

	providerCfg, ok := b.cfg.Providers[providerID]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", providerID)
	}
	if providerCfg.Disable {
		return nil, fmt.Errorf("provider %q is disabled", providerID)
	}

	provider, err := b.getOrBuildProvider(providerID, providerCfg)
	if err != nil {
		return nil, err
	}

	lm, err := provider.LanguageModel(ctx, modelID)
	if err != nil {
		return nil, fmt.Errorf("getting language model %q: %w", modelID, err)
	}
	return lm, nil
}

// getOrBuildProvider returns a cached provider or builds a new one.
func (b *Builder) getOrBuildProvider(id string, providerCfg *config.ProviderConfig) (fantasy.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if p, ok := b.cache[id]; ok {
		return p, nil
	}

	p, err := b.buildProvider(providerCfg)
	if err != nil {
		return nil, fmt.Errorf("building provider %q: %w", id, err)
	}

	b.cache[id] = p
	return p, nil
}

// buildProvider creates a fantasy provider from configuration.
func (b *Builder) buildProvider(providerCfg *config.ProviderConfig) (fantasy.Provider, error) {
	headers := maps.Clone(providerCfg.ExtraHeaders)

	apiKey, err := b.cfg.Resolve(providerCfg.APIKey)
	if err != nil {
		return nil, fmt.Errorf("resolving api key: %w", err)
	}
	baseURL, err := b.cfg.Resolve(providerCfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("resolving base url: %w", err)
	}

	//nolint:exhaustive // Only openai-style and anthropic providers are supported.
	switch providerCfg.Type {
	case openai.Name, catwalk.TypeOpenAICompat:
		return buildOpenAIProvider(baseURL, apiKey, headers)
	case anthropic.Name:
		return buildAnthropicProvider(baseURL, apiKey, headers)
	default:
		return nil, fmt.Errorf("unsupported provider type: %q", providerCfg.Type)
	}
}

// buildOpenAIProvider creates an OpenAI fantasy provider.
func buildOpenAIProvider(baseURL, apiKey string, headers map[string]string) (fantasy.Provider, error) {
	var opts []openai.Option

	if apiKey != "" {
		opts = append(opts, openai.WithAPIKey(apiKey))
	}
	if len(headers) > 0 {
		opts = append(opts, openai.WithHeaders(headers))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}

	return openai.New(opts...)
}

// buildAnthropicProvider creates an Anthropic fantasy provider.
func buildAnthropicProvider(baseURL, apiKey string, headers map[string]string) (fantasy.Provider, error) {
	var opts []anthropic.Option

	if apiKey != "" {
		opts = append(opts, anthropic.WithAPIKey(apiKey))
	}
	if len(headers) > 0 {
		opts = append(opts, anthropic.WithHeaders(headers))
	}
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}

	return anthropic.New(opts...)
}
