package config

import (
	"errors"
	"testing"

	"github.com/charmbracelet/catwalk/pkg/catwalk"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:   "defaults are valid",
			mutate: func(*Config) {},
		},
		{
			name:      "unknown storage driver",
			mutate:    func(c *Config) { c.Storage.Driver = "redis" },
			wantField: "storage.driver",
		},
		{
			name:      "missing default provider",
			mutate:    func(c *Config) { c.DefaultProvider = "nowhere" },
			wantField: "default_provider",
		},
		{
			name:      "disabled default provider",
			mutate:    func(c *Config) { c.Providers[c.DefaultProvider].Disable = true },
			wantField: "default_provider",
		},
		{
			name: "unsupported provider type",
			mutate: func(c *Config) {
				c.Providers["vx"] = &ProviderConfig{Type: catwalk.TypeVertexAI}
			},
			wantField: "providers.vx.type",
		},
		{
			name: "bad base URL",
			mutate: func(c *Config) {
				c.Providers["x"] = &ProviderConfig{Type: catwalk.TypeOpenAI, BaseURL: "localhost:1234"}
			},
			wantField: "providers.x.base_url",
		},
		{
			name: "duplicate model",
			mutate: func(c *Config) {
				c.Providers["x"] = &ProviderConfig{
					Type:   catwalk.TypeOpenAI,
					Models: []catwalk.Model{{ID: "m"}, {ID: "m"}},
				}
			},
			wantField: "providers.x.models",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}

			var ve ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Validate() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", ve.Field, tt.wantField)
			}
		})
	}
}

func TestTemplates(t *testing.T) {
	ids := ListTemplateIDs()
	if len(ids) == 0 {
		t.Fatal("no templates")
	}
	for i := 1; i < len(ids); i++ {
		if ids[i-1] > ids[i] {
			t.Errorf("ListTemplateIDs() not sorted: %v", ids)
		}
	}

	tmpl, ok := GetTemplate("ollama")
	if !ok {
		t.Fatal("ollama template missing")
	}
	pc := tmpl.ProviderConfig()
	pc.Models[0].ID = "mutated"
	if again, _ := GetTemplate("ollama"); again.Models[0].ID == "mutated" {
		t.Error("ProviderConfig() shares model slice with template")
	}

	custom := &ProviderConfig{BaseURL: "http://other:11434/v1"}
	custom.fillFromTemplate(tmpl)
	if custom.BaseURL != "http://other:11434/v1" {
		t.Errorf("fillFromTemplate overwrote BaseURL: %q", custom.BaseURL)
	}
	if custom.Type != tmpl.Type || custom.APIKey != tmpl.APIKey {
		t.Errorf("fillFromTemplate did not fill empty fields: %+v", custom)
	}
}
