package llm

import (
	"context"
	"errors"
	"testing"

	"charm.land/fantasy"
	"github.com/charmbracelet/catwalk/pkg/catwalk"

	"github.com/guilhermegouw/socchat/internal/config"
	"github.com/guilhermegouw/socchat/internal/message"
)

// mockModel implements fantasy.LanguageModel for testing
type mockModel struct {
	generateFunc func(ctx context.Context, call fantasy.Call) (*fantasy.Response, error)
}

func (m *mockModel) Generate(ctx context.Context, call fantasy.Call) (*fantasy.Response, error) {
	if m.generateFunc != nil {
		return m.generateFunc(ctx, call)
	}
	return &fantasy.Response{}, nil
}

func (m *mockModel) Stream(ctx context.Context, call fantasy.Call) (fantasy.StreamResponse, error) {
	return func(yield func(fantasy.StreamPart) bool) {}, nil
}

func (m *mockModel) GenerateObject(ctx context.Context, call fantasy.ObjectCall) (*fantasy.ObjectResponse, error) {
	return &fantasy.ObjectResponse{}, nil
}

func (m *mockModel) StreamObject(ctx context.Context, call fantasy.ObjectCall) (fantasy.ObjectStreamResponse, error) {
	return func(yield func(fantasy.ObjectStreamPart) bool) {}, nil
}

func (m *mockModel) Provider() string { return "mock" }
func (m *mockModel) Model() string    { return "mock-model" }

var _ fantasy.LanguageModel = (*mockModel)(nil)

type staticSource struct {
	model fantasy.LanguageModel
	refs  []string
}

func (s *staticSource) LanguageModel(_ context.Context, ref string) (fantasy.LanguageModel, error) {
	s.refs = append(s.refs, ref)
	return s.model, nil
}

func textResponse(text string) *fantasy.Response {
	return &fantasy.Response{
		Content: fantasy.ResponseContent{fantasy.TextContent{Text: text}},
	}
}

func TestFantasyGenerator_Generate(t *testing.T) {
	t.Run("sends prompt and options", func(t *testing.T) {
		var got fantasy.Call
		model := &mockModel{
			generateFunc: func(_ context.Context, call fantasy.Call) (*fantasy.Response, error) {
				got = call
				return textResponse("Check the firewall logs."), nil
			},
		}
		source := &staticSource{model: model}
		gen := NewFantasyGenerator(source)

		temp, topP := 0.7, 0.9
		text, err := gen.Generate(context.Background(), Request{
			Model: "llama3.2:3b",
			Messages: []message.Turn{
				{Role: message.RoleSystem, Content: "persona"},
				{Role: message.RoleUser, Content: "hello"},
			},
			Options: Options{MaxTokens: 500, Temperature: &temp, TopP: &topP},
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if text != "Check the firewall logs." {
			t.Errorf("Generate() = %q", text)
		}
		if len(source.refs) != 1 || source.refs[0] != "llama3.2:3b" {
			t.Errorf("model refs = %v, want [llama3.2:3b]", source.refs)
		}
		if got.MaxOutputTokens == nil || *got.MaxOutputTokens != 500 {
			t.Errorf("MaxOutputTokens = %v, want 500", got.MaxOutputTokens)
		}
		if got.Temperature == nil || *got.Temperature != 0.7 {
			t.Errorf("Temperature = %v, want 0.7", got.Temperature)
		}
		if got.TopP == nil || *got.TopP != 0.9 {
			t.Errorf("TopP = %v, want 0.9", got.TopP)
		}
		if len(got.Prompt) != 2 {
			t.Fatalf("len(Prompt) = %d, want 2", len(got.Prompt))
		}
		if got.Prompt[0].Role != fantasy.MessageRoleSystem {
			t.Errorf("Prompt[0].Role = %v, want system", got.Prompt[0].Role)
		}
	})

	t.Run("applies stop sequences", func(t *testing.T) {
		model := &mockModel{
			generateFunc: func(context.Context, fantasy.Call) (*fantasy.Response, error) {
				return textResponse("Isolate the host.\n---\nignored"), nil
			},
		}
		gen := NewFantasyGenerator(&staticSource{model: model})

		text, err := gen.Generate(context.Background(), Request{
			Options: Options{Stop: []string{"\n\n\n", "---"}},
		})
		if err != nil {
			t.Fatalf("Generate() error = %v", err)
		}
		if text != "Isolate the host.\n" {
			t.Errorf("Generate() = %q, want %q", text, "Isolate the host.\n")
		}
	})

	t.Run("propagates model errors", func(t *testing.T) {
		errDown := errors.New("connection refused")
		model := &mockModel{
			generateFunc: func(context.Context, fantasy.Call) (*fantasy.Response, error) {
				return nil, errDown
			},
		}
		gen := NewFantasyGenerator(&staticSource{model: model})

		_, err := gen.Generate(context.Background(), Request{Model: "m"})
		if !errors.Is(err, errDown) {
			t.Errorf("Generate() error = %v, want %v", err, errDown)
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	turns := []message.Turn{
		{Role: message.RoleSystem, Content: "persona"},
		{Role: message.RoleUser, Content: "q1"},
		{Role: message.RoleSystem, Content: "stale note"},
		{Role: message.RoleAssistant, Content: "a1"},
		{Role: message.RoleUser, Content: "q2"},
	}

	prompt := buildPrompt(turns)

	wantRoles := []fantasy.MessageRole{
		fantasy.MessageRoleSystem,
		fantasy.MessageRoleUser,
		fantasy.MessageRoleAssistant,
		fantasy.MessageRoleUser,
	}
	if len(prompt) != len(wantRoles) {
		t.Fatalf("len(prompt) = %d, want %d", len(prompt), len(wantRoles))
	}
	for i, want := range wantRoles {
		if prompt[i].Role != want {
			t.Errorf("prompt[%d].Role = %v, want %v", i, prompt[i].Role, want)
		}
	}
}

func TestCutAtStop(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		stops []string
		want  string
	}{
		{"no stops", "abc", nil, "abc"},
		{"no match", "abc", []string{"###"}, "abc"},
		{"earliest wins", "a###b---c", []string{"---", "###"}, "a"},
		{"empty stop ignored", "abc", []string{""}, "abc"},
		{"stop at start", "---abc", []string{"---"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cutAtStop(tt.text, tt.stops); got != tt.want {
				t.Errorf("cutAtStop(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	newConfig := func() *config.Config {
		cfg := config.NewConfig()
		cfg.DefaultProvider = "local"
		cfg.Providers["local"] = &config.ProviderConfig{
			ID:      "local",
			Type:    catwalk.TypeOpenAICompat,
			BaseURL: "http://localhost:11434/v1",
			APIKey:  "ollama",
		}
		return cfg
	}

	t.Run("caches providers", func(t *testing.T) {
		b := NewBuilder(newConfig())

		if _, err := b.LanguageModel(context.Background(), "llama3.2:3b"); err != nil {
			t.Fatalf("LanguageModel() error = %v", err)
		}
		if _, err := b.LanguageModel(context.Background(), "local/qwen2.5:7b"); err != nil {
			t.Fatalf("LanguageModel() error = %v", err)
		}
		if len(b.cache) != 1 {
			t.Errorf("len(cache) = %d, want 1", len(b.cache))
		}
	})

	t.Run("rejects disabled provider", func(t *testing.T) {
		cfg := newConfig()
		cfg.Providers["local"].Disable = true

		if _, err := NewBuilder(cfg).LanguageModel(context.Background(), "m"); err == nil {
			t.Error("expected error for disabled provider")
		}
	})

	t.Run("rejects unsupported type", func(t *testing.T) {
		cfg := newConfig()
		cfg.Providers["local"].Type = catwalk.TypeVertexAI

		if _, err := NewBuilder(cfg).LanguageModel(context.Background(), "m"); err == nil {
			t.Error("expected error for unsupported provider type")
		}
	})

	t.Run("fails on unset api key variable", func(t *testing.T) {
		cfg := newConfig()
		cfg.Providers["local"].APIKey = "$SOCCHAT_TEST_UNSET_KEY"

		if _, err := NewBuilder(cfg).LanguageModel(context.Background(), "m"); err == nil {
			t.Error("expected error for unresolved api key")
		}
	})
}
