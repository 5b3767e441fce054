// Package config provides configuration management for socchat.
package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
)

const appName = "socchat"

// Storage drivers.
const (
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// Defaults applied when a field is left unset.
const (
	DefaultAddr              = ":5001"
	DefaultModel             = "llama3.2:3b"
	DefaultMaxTokens         = 500
	DefaultWindowSize        = 10
	DefaultTemperature       = 0.7
	DefaultTopP              = 0.9
	DefaultGenerationTimeout = 120 * time.Second
	DefaultProviderID        = "ollama"
	DefaultLogLevel          = "info"
)

// DefaultStop is the set of stop sequences used when none are configured.
var DefaultStop = []string{"\n\n\n", "---", "###"}

// Config is the top-level configuration structure.
type Config struct {
	Providers       map[string]*ProviderConfig `json:"providers,omitempty"`
	Options         *Options                   `json:"options,omitempty"`
	Server          ServerConfig               `json:"server"`
	Storage         StorageConfig              `json:"storage"`
	DefaultProvider string                     `json:"default_provider,omitempty"`
	Chat            ChatConfig                 `json:"chat"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string `json:"addr,omitempty"`
}

// StorageConfig selects and locates the session store.
type StorageConfig struct {
	Driver string `json:"driver,omitempty"`
	Path   string `json:"path,omitempty"`
}

// ChatConfig holds per-exchange generation settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type ChatConfig struct {
	DefaultModel      string   `json:"default_model,omitempty"`
	DefaultMaxTokens  int      `json:"default_max_tokens,omitempty"`
	WindowSize        int      `json:"window_size,omitempty"`
	Persona           string   `json:"persona,omitempty"`
	Temperature       *float64 `json:"temperature,omitempty"`
	TopP              *float64 `json:"top_p,omitempty"`
	Stop              []string `json:"stop,omitempty"`
	GenerationTimeout Duration `json:"generation_timeout,omitempty"`
}

// ProviderConfig holds provider authentication and settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type ProviderConfig struct {
	ExtraHeaders map[string]string `json:"extra_headers,omitempty"`
	Models       []catwalk.Model   `json:"models,omitempty"`
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name,omitempty"`
	Type         catwalk.Type      `json:"type,omitempty"`
	BaseURL      string            `json:"base_url,omitempty"`
	APIKey       string            `json:"api_key,omitempty"`
	Disable      bool              `json:"disable,omitempty"`
}

// Options holds optional configuration settings.
//
//nolint:govet // Field order is intentional for JSON readability.
type Options struct {
	DataDir  string `json:"data_directory,omitempty"`
	LogLevel string `json:"log_level,omitempty"`
	Debug    bool   `json:"debug,omitempty"`
}

// Duration is a time.Duration that reads and writes as a Go duration string.
type Duration time.Duration

// MarshalJSON encodes the duration as a string such as "120s".
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("parsing duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	var n int64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("duration must be a string or integer: %w", err)
	}
	*d = Duration(n)
	return nil
}

// NewConfig creates a new Config with initialized maps.
func NewConfig() *Config {
	return &Config{
		Providers: make(map[string]*ProviderConfig),
		Options:   &Options{},
	}
}

// GetModel returns the model configuration for the given provider and model IDs.
func (c *Config) GetModel(providerID, modelID string) *catwalk.Model {
	provider, ok := c.Providers[providerID]
	if !ok {
		return nil
	}
	for i := range provider.Models {
		if provider.Models[i].ID == modelID {
			return &provider.Models[i]
		}
	}
	return nil
}

// ResolveModel splits a model reference into provider and model IDs. A
// reference of the form "provider/model" names a configured provider;
// anything else is routed to the default provider unchanged.
func (c *Config) ResolveModel(ref string) (providerID, modelID string) {
	if prefix, rest, ok := strings.Cut(ref, "/"); ok {
		if _, known := c.Providers[prefix]; known {
			return prefix, rest
		}
	}
	return c.DefaultProvider, ref
}

// ModelRef returns the shortest reference that ResolveModel maps back to the
// given provider and model.
func (c *Config) ModelRef(providerID, modelID string) string {
	if providerID == c.DefaultProvider {
		return modelID
	}
	return providerID + "/" + modelID
}

// ModelRefs lists the default model followed by every model of every enabled
// provider, without duplicates.
func (c *Config) ModelRefs() []string {
	refs := []string{c.Chat.DefaultModel}
	seen := map[string]bool{c.Chat.DefaultModel: true}

	ids := slices.Sorted(maps.Keys(c.Providers))
	for _, id := range ids {
		p := c.Providers[id]
		if p.Disable {
			continue
		}
		for _, m := range p.Models {
			ref := c.ModelRef(id, m.ID)
			if !seen[ref] {
				seen[ref] = true
				refs = append(refs, ref)
			}
		}
	}
	return refs
}

// GenerationTimeout returns the configured model call timeout.
func (c *Config) GenerationTimeout() time.Duration {
	return time.Duration(c.Chat.GenerationTimeout)
}
