package config

import (
	"maps"
	"slices"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
)

// ProviderTemplate is a built-in provider definition. A configured provider
// whose ID matches a template inherits any field it leaves empty.
type ProviderTemplate struct {
	DefaultHeaders map[string]string
	Name           string
	ID             string
	Type           catwalk.Type
	BaseURL        string
	APIKey         string
	Description    string
	Models         []catwalk.Model
}

// ProviderTemplates returns all built-in provider templates keyed by ID.
func ProviderTemplates() map[string]ProviderTemplate {
	return map[string]ProviderTemplate{
		"ollama": {
			Name:    "Ollama",
			ID:      "ollama",
			Type:    catwalk.TypeOpenAICompat,
			BaseURL: "http://localhost:11434/v1",
			// The OpenAI client requires a key; Ollama ignores it.
			APIKey: "ollama",
			Models: []catwalk.Model{
				{
					ID:               "llama3.2:3b",
					Name:             "Llama 3.2 3B",
					ContextWindow:    131072,
					DefaultMaxTokens: 500,
				},
				{
					ID:               "llama3.1:8b",
					Name:             "Llama 3.1 8B",
					ContextWindow:    131072,
					DefaultMaxTokens: 1024,
				},
				{
					ID:               "qwen2.5:7b",
					Name:             "Qwen 2.5 7B",
					ContextWindow:    32768,
					DefaultMaxTokens: 1024,
				},
				{
					ID:               "mistral:7b",
					Name:             "Mistral 7B",
					ContextWindow:    32768,
					DefaultMaxTokens: 1024,
				},
			},
			Description: "Local Ollama server for running open-source models",
		},
		"lmstudio": {
			Name:    "LM Studio",
			ID:      "lmstudio",
			Type:    catwalk.TypeOpenAICompat,
			BaseURL: "http://localhost:1234/v1",
			APIKey:  "lmstudio",
			Models: []catwalk.Model{
				{
					ID:               "qwen2.5-7b-instruct",
					Name:             "Qwen 2.5 7B Instruct",
					ContextWindow:    32768,
					DefaultMaxTokens: 1024,
				},
			},
			Description: "LM Studio local inference server",
		},
		"groq": {
			Name:    "Groq",
			ID:      "groq",
			Type:    catwalk.TypeOpenAICompat,
			BaseURL: "https://api.groq.com/openai/v1",
			APIKey:  "$GROQ_API_KEY",
			Models: []catwalk.Model{
				{
					ID:               "llama-3.3-70b-versatile",
					Name:             "Llama 3.3 70B Versatile",
					ContextWindow:    131072,
					DefaultMaxTokens: 1024,
				},
			},
			Description: "Groq hosted inference",
		},
		"anthropic": {
			Name:    "Anthropic",
			ID:      "anthropic",
			Type:    catwalk.TypeAnthropic,
			BaseURL: "https://api.anthropic.com",
			APIKey:  "$ANTHROPIC_API_KEY",
			Models: []catwalk.Model{
				{
					ID:               "claude-3-5-haiku-20241022",
					Name:             "Claude 3.5 Haiku",
					ContextWindow:    200000,
					DefaultMaxTokens: 1024,
				},
			},
			Description: "Anthropic Messages API",
		},
	}
}

// GetTemplate returns a provider template by ID.
func GetTemplate(id string) (ProviderTemplate, bool) {
	template, ok := ProviderTemplates()[id]
	return template, ok
}

// ListTemplateIDs returns all template IDs in sorted order.
func ListTemplateIDs() []string {
	return slices.Sorted(maps.Keys(ProviderTemplates()))
}

// ProviderConfig converts the template into a provider configuration.
func (pt ProviderTemplate) ProviderConfig() *ProviderConfig {
	return &ProviderConfig{
		ExtraHeaders: maps.Clone(pt.DefaultHeaders),
		Models:       slices.Clone(pt.Models),
		ID:           pt.ID,
		Name:         pt.Name,
		Type:         pt.Type,
		BaseURL:      pt.BaseURL,
		APIKey:       pt.APIKey,
	}
}

// fillFromTemplate copies template values into fields pc leaves empty.
func (pc *ProviderConfig) fillFromTemplate(pt ProviderTemplate) {
	if pc.Name == "" {
		pc.Name = pt.Name
	}
	if pc.Type == "" {
		pc.Type = pt.Type
	}
	if pc.BaseURL == "" {
		pc.BaseURL = pt.BaseURL
	}
	if pc.APIKey == "" {
		pc.APIKey = pt.APIKey
	}
	if len(pc.Models) == 0 {
		pc.Models = slices.Clone(pt.Models)
	}
	for k, v := range pt.DefaultHeaders {
		if pc.ExtraHeaders == nil {
			pc.ExtraHeaders = make(map[string]string)
		}
		if _, ok := pc.ExtraHeaders[k]; !ok {
			pc.ExtraHeaders[k] = v
		}
	}
}
