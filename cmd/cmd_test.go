package cmd

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/guilhermegouw/socchat/internal/config"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestConfigCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "socchat.json")

	t.Run("path honors --file", func(t *testing.T) {
		out, err := run(t, "config", "path", "--file", path)
		if err != nil {
			t.Fatalf("config path error = %v", err)
		}
		if strings.TrimSpace(out) != path {
			t.Errorf("config path = %q, want %q", out, path)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if _, err := run(t, "config", "set", "chat.window_size", "6", "--file", path); err != nil {
			t.Fatalf("config set error = %v", err)
		}
		out, err := run(t, "config", "get", "chat.window_size", "--file", path)
		if err != nil {
			t.Fatalf("config get error = %v", err)
		}
		if strings.TrimSpace(out) != "6" {
			t.Errorf("config get = %q, want 6", out)
		}

		cfg, err := config.LoadFromFile(path)
		if err != nil {
			t.Fatalf("LoadFromFile() error = %v", err)
		}
		if cfg.Chat.WindowSize != 6 {
			t.Errorf("WindowSize = %d, want 6 (stored as a number)", cfg.Chat.WindowSize)
		}
	})

	t.Run("get missing key fails", func(t *testing.T) {
		if _, err := run(t, "config", "get", "chat.persona", "--file", path); err == nil {
			t.Error("expected error for unset key")
		}
	})
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.Contains(out, version) {
		t.Errorf("version output = %q", out)
	}
}

func TestSessionsClearAllRequiresConfirmation(t *testing.T) {
	if _, err := run(t, "sessions", "clear-all"); err == nil {
		t.Error("expected clear-all without --yes to fail")
	}
}

func TestNewApp(t *testing.T) {
	t.Run("memory store", func(t *testing.T) {
		cfg := config.Default()
		a, err := newApp(cfg, true)
		if err != nil {
			t.Fatalf("newApp() error = %v", err)
		}
		defer a.Close() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		if a.storage != config.StorageMemory || a.db != nil {
			t.Errorf("storage = %q, db = %v, want memory store", a.storage, a.db)
		}

		sess, err := a.chat.NewSession(context.Background(), "", "")
		if err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		if sess.Model != cfg.Chat.DefaultModel {
			t.Errorf("Model = %q, want %q", sess.Model, cfg.Chat.DefaultModel)
		}
	})

	t.Run("sqlite store", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "socchat.db")

		a, err := newApp(cfg, false)
		if err != nil {
			t.Fatalf("newApp() error = %v", err)
		}
		defer a.Close() //nolint:errcheck // Intentionally ignoring close error in test cleanup

		if a.db == nil || a.db.Path() != cfg.Storage.Path {
			t.Fatalf("db not opened at %s", cfg.Storage.Path)
		}
		if _, err := a.chat.NewSession(context.Background(), "", "Triage"); err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}
		summaries, err := a.chat.Sessions(context.Background())
		if err != nil {
			t.Fatalf("Sessions() error = %v", err)
		}
		if len(summaries) != 1 || summaries[0].Title != "Triage" {
			t.Errorf("Sessions() = %+v", summaries)
		}
	})
}

func TestSettingsFrom(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.Persona = "custom {max_tokens}"

	s := settingsFrom(cfg)

	if s.Persona != cfg.Chat.Persona {
		t.Errorf("Persona = %q", s.Persona)
	}
	if s.MaxTokens != config.DefaultMaxTokens || s.WindowSize != config.DefaultWindowSize {
		t.Errorf("MaxTokens = %d, WindowSize = %d", s.MaxTokens, s.WindowSize)
	}
	if s.Temperature == nil || *s.Temperature != config.DefaultTemperature {
		t.Errorf("Temperature = %v", s.Temperature)
	}
	if len(s.Stop) != len(config.DefaultStop) {
		t.Errorf("Stop = %q", s.Stop)
	}
}

type stubRenderer struct {
	out string
	err error
}

func (r stubRenderer) Render(string, int) (string, error) { return r.out, r.err }

func TestWriteReply(t *testing.T) {
	const reply = "Isolate **WS-3**."

	tests := []struct {
		name     string
		renderer markdownRenderer
		want     string
	}{
		{name: "raw", renderer: nil, want: reply + "\n"},
		{name: "rendered", renderer: stubRenderer{out: "styled"}, want: "styled"},
		{name: "render error falls back", renderer: stubRenderer{err: errors.New("bad style")}, want: reply + "\n"},
		{name: "empty render falls back", renderer: stubRenderer{}, want: reply + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			writeReply(&out, tt.renderer, reply)
			if got := out.String(); got != tt.want {
				t.Errorf("writeReply() wrote %q, want %q", got, tt.want)
			}
		})
	}
}
