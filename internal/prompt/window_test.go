package prompt

import (
	"fmt"
	"strings"
	"testing"

	"github.com/guilhermegouw/socchat/internal/message"
)

func history(n int) []message.Turn {
	turns := make([]message.Turn, n)
	for i := range turns {
		role := message.RoleUser
		if i%2 == 1 {
			role = message.RoleAssistant
		}
		turns[i] = message.Turn{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}
	return turns
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name    string
		turns   int
		size    int
		wantLen int
	}{
		{"empty history", 0, 10, 1},
		{"shorter than window", 4, 10, 5},
		{"exactly window", 10, 10, 11},
		{"longer than window", 25, 10, 11},
		{"custom size", 25, 3, 4},
		{"zero size keeps persona only", 5, 0, 1},
		{"negative size keeps persona only", 5, -1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turns := history(tt.turns)
			got := Window(turns, "persona", tt.size)

			if len(got) != tt.wantLen {
				t.Fatalf("len(Window()) = %d, want %d", len(got), tt.wantLen)
			}
			if got[0].Role != message.RoleSystem || got[0].Content != "persona" {
				t.Errorf("Window()[0] = %+v, want system persona", got[0])
			}

			tail := got[1:]
			offset := len(turns) - len(tail)
			for i, turn := range tail {
				if turn != turns[offset+i] {
					t.Errorf("Window()[%d] = %+v, want %+v", i+1, turn, turns[offset+i])
				}
			}
		})
	}
}

func TestWindow_DoesNotAliasInput(t *testing.T) {
	turns := history(3)
	got := Window(turns, "persona", DefaultWindowSize)

	got[1].Content = "mutated"
	if turns[0].Content != "turn 0" {
		t.Error("Window() result aliases the input slice")
	}
}

func TestWindow_Deterministic(t *testing.T) {
	turns := history(15)
	a := Window(turns, "persona", DefaultWindowSize)
	b := Window(turns, "persona", DefaultWindowSize)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("index %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPersona(t *testing.T) {
	t.Run("default persona carries budget", func(t *testing.T) {
		got := Persona("", 500)
		if !strings.Contains(got, "500 tokens") {
			t.Error("expected rendered budget in default persona")
		}
		if strings.Contains(got, MaxTokensPlaceholder) {
			t.Error("placeholder left unrendered")
		}
	})

	t.Run("custom template", func(t *testing.T) {
		got := Persona("Budget: {max_tokens}.", 42)
		if got != "Budget: 42." {
			t.Errorf("Persona() = %q", got)
		}
	})
}
