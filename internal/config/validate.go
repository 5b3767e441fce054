package config

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
)

// ValidationError represents a single invalid configuration field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// Validate checks a loaded configuration and joins every problem found.
func Validate(cfg *Config) error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	switch cfg.Storage.Driver {
	case StorageSQLite, StorageMemory:
	default:
		add("storage.driver", "unknown driver %q", cfg.Storage.Driver)
	}

	if cfg.Chat.DefaultMaxTokens < 0 {
		add("chat.default_max_tokens", "must be positive, got %d", cfg.Chat.DefaultMaxTokens)
	}
	if cfg.Chat.WindowSize < 0 {
		add("chat.window_size", "must not be negative, got %d", cfg.Chat.WindowSize)
	}
	if cfg.Chat.GenerationTimeout < 0 {
		add("chat.generation_timeout", "must not be negative")
	}

	if p, ok := cfg.Providers[cfg.DefaultProvider]; !ok {
		add("default_provider", "provider %q is not configured", cfg.DefaultProvider)
	} else if p.Disable {
		add("default_provider", "provider %q is disabled", cfg.DefaultProvider)
	}

	for id, p := range cfg.Providers {
		field := "providers." + id
		if !isValidProviderType(p.Type) {
			add(field+".type", "unsupported provider type %q", p.Type)
		}
		if p.BaseURL != "" {
			if err := validateURL(p.BaseURL); err != nil {
				add(field+".base_url", "%v", err)
			}
		}
		seen := make(map[string]bool)
		for _, m := range p.Models {
			if m.ID == "" {
				add(field+".models", "model ID is required")
				continue
			}
			if seen[m.ID] {
				add(field+".models", "duplicate model ID %q", m.ID)
			}
			seen[m.ID] = true
		}
	}

	return errors.Join(errs...)
}

// isValidProviderType checks if the provider type can be built.
func isValidProviderType(providerType catwalk.Type) bool {
	switch providerType {
	case catwalk.TypeOpenAI, catwalk.TypeOpenAICompat, catwalk.TypeAnthropic:
		return true
	default:
		return false
	}
}

// validateURL validates that a string is a valid URL.
func validateURL(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}

	return nil
}
