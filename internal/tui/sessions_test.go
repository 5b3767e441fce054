package tui

import (
	"context"
	"testing"
	"time"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{"seconds", 30 * time.Second, "just now"},
		{"one minute", time.Minute, "1 min ago"},
		{"minutes", 12 * time.Minute, "12 mins ago"},
		{"one hour", time.Hour, "1 hour ago"},
		{"hours", 5 * time.Hour, "5 hours ago"},
		{"yesterday", 30 * time.Hour, "yesterday"},
		{"days", 4 * 24 * time.Hour, "4 days ago"},
		{"older", 20 * 24 * time.Hour, "Feb 22"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatRelativeTime(now.Add(-tt.ago), now); got != tt.want {
				t.Errorf("formatRelativeTime() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSessionList_Navigation(t *testing.T) {
	l := NewSessionList(NewStyles(nil))
	l.SetSize(80, 8) // two rows visible

	if _, ok := l.Selected(); ok {
		t.Error("expected no selection on an empty list")
	}

	l.SetSummaries([]chat.Summary{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}})

	steps := []struct {
		key        string
		wantID     string
		wantOffset int
	}{
		{"down", "b", 0},
		{"down", "c", 1},
		{"down", "d", 2},
		{"down", "d", 2},
		{"home", "a", 0},
		{"end", "d", 2},
		{"up", "c", 2},
	}

	for _, step := range steps {
		switch step.key {
		case "down":
			l.Update(keyDown)
		case "up":
			l.Update(keyUp)
		case "home":
			l.Update(char('g'))
		case "end":
			l.Update(char('G'))
		}
		selected, _ := l.Selected()
		if selected.ID != step.wantID {
			t.Errorf("after %s: selected = %q, want %q", step.key, selected.ID, step.wantID)
		}
		if l.offset != step.wantOffset {
			t.Errorf("after %s: offset = %d, want %d", step.key, l.offset, step.wantOffset)
		}
	}

	// Shrinking the list keeps the cursor in range.
	l.SetSummaries([]chat.Summary{{ID: "a"}})
	if selected, _ := l.Selected(); selected.ID != "a" {
		t.Errorf("selected = %q after shrink, want a", selected.ID)
	}
}

func TestSessionsModal(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) *harness {
		t.Helper()
		h := newHarness(t, "Contain and eradicate.", nil, Options{})
		for _, msg := range []string{"Alert one", "Alert two"} {
			if _, err := h.chat.Exchange(ctx, chat.Request{Message: msg}); err != nil {
				t.Fatalf("Exchange() error = %v", err)
			}
		}
		h.press(t, ctrl('o'))
		if !h.model.modal.IsVisible() {
			t.Fatal("expected the modal to open")
		}
		if len(h.model.modal.list.summaries) != 2 {
			t.Fatalf("listed %d sessions, want 2", len(h.model.modal.list.summaries))
		}
		return h
	}

	t.Run("open switches session", func(t *testing.T) {
		h := setup(t)
		h.press(t, keyDown)
		want, _ := h.model.modal.list.Selected()
		h.press(t, keyEnter)

		if h.model.modal.IsVisible() {
			t.Error("expected the modal to close")
		}
		if h.model.SessionID() != want.ID {
			t.Errorf("SessionID() = %q, want %q", h.model.SessionID(), want.ID)
		}
		if len(h.model.transcript.Turns()) != 2 {
			t.Errorf("len(turns) = %d, want 2", len(h.model.transcript.Turns()))
		}
	})

	t.Run("rename", func(t *testing.T) {
		h := setup(t)
		target, _ := h.model.modal.list.Selected()
		h.press(t, keyEnter)
		h.press(t, ctrl('o'))

		h.press(t, char('r'))
		if h.model.modal.step != stepRename {
			t.Fatalf("step = %v, want rename", h.model.modal.step)
		}
		h.model.modal.rename.SetValue("Credential stuffing")
		h.press(t, keyEnter)

		hist, err := h.chat.History(ctx, target.ID)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if hist.Session.Title != "Credential stuffing" {
			t.Errorf("Title = %q, want Credential stuffing", hist.Session.Title)
		}
		if h.model.title != "Credential stuffing" {
			t.Errorf("current title = %q, want the new title", h.model.title)
		}
		if h.model.modal.list.summaries[0].Title != "Credential stuffing" {
			t.Error("expected the list to reload after rename")
		}
	})

	t.Run("blank rename is ignored", func(t *testing.T) {
		h := setup(t)
		h.press(t, char('r'))
		h.model.modal.rename.SetValue("   ")
		h.press(t, keyEnter)
		if h.model.modal.step != stepRename {
			t.Errorf("step = %v, want rename to stay open", h.model.modal.step)
		}
		h.press(t, keyEsc)
		if h.model.modal.step != stepList {
			t.Errorf("step = %v, want list after esc", h.model.modal.step)
		}
	})

	t.Run("delete current session", func(t *testing.T) {
		h := setup(t)
		target, _ := h.model.modal.list.Selected()
		h.press(t, keyEnter)
		h.press(t, ctrl('o'))

		h.press(t, char('d'))
		if h.model.modal.step != stepDeleteConfirm {
			t.Fatalf("step = %v, want delete confirm", h.model.modal.step)
		}
		h.press(t, char('y'))

		hist, err := h.chat.History(ctx, target.ID)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if hist.Session != nil {
			t.Error("expected the session to be deleted")
		}
		if h.model.SessionID() != "" {
			t.Errorf("SessionID() = %q, want a fresh chat", h.model.SessionID())
		}
		if len(h.model.modal.list.summaries) != 1 {
			t.Errorf("listed %d sessions, want 1", len(h.model.modal.list.summaries))
		}
	})

	t.Run("declined delete keeps session", func(t *testing.T) {
		h := setup(t)
		h.press(t, char('d'))
		h.press(t, char('n'))
		summaries, err := h.chat.Sessions(ctx)
		if err != nil {
			t.Fatalf("Sessions() error = %v", err)
		}
		if len(summaries) != 2 {
			t.Errorf("len(sessions) = %d, want 2", len(summaries))
		}
	})

	t.Run("clear all needs explicit yes", func(t *testing.T) {
		h := setup(t)
		h.press(t, char('x'))
		h.press(t, keyEnter)
		if h.model.modal.step != stepClearAllConfirm {
			t.Fatalf("step = %v, want clear all confirm", h.model.modal.step)
		}
		h.press(t, char('y'))

		summaries, err := h.chat.Sessions(ctx)
		if err != nil {
			t.Fatalf("Sessions() error = %v", err)
		}
		if len(summaries) != 0 {
			t.Errorf("len(sessions) = %d, want 0", len(summaries))
		}
		if got := h.model.status.Text(); got != "Ready · all sessions and chats cleared" {
			t.Errorf("status = %q", got)
		}
	})

	t.Run("new chat closes modal", func(t *testing.T) {
		h := setup(t)
		h.press(t, keyEnter)
		if h.model.SessionID() == "" {
			t.Fatal("expected a session to be open")
		}
		h.press(t, ctrl('o'))
		h.press(t, char('n'))
		if h.model.modal.IsVisible() {
			t.Error("expected the modal to close")
		}
		if h.model.SessionID() != "" {
			t.Errorf("SessionID() = %q, want empty", h.model.SessionID())
		}
	})

	t.Run("session event reloads open list", func(t *testing.T) {
		h := setup(t)
		if _, err := h.chat.NewSession(ctx, "", "Created elsewhere"); err != nil {
			t.Fatalf("NewSession() error = %v", err)
		}

		_, cmd := h.model.Update(sessionEventMsg{event: pubsub.Event[events.SessionEvent]{
			Type:    pubsub.EventCreated,
			Payload: events.NewSessionCreatedEvent("x", "Created elsewhere", defaultModel),
		}})
		drain(t, h.model, cmd)

		if len(h.model.modal.list.summaries) != 3 {
			t.Errorf("listed %d sessions, want 3", len(h.model.modal.list.summaries))
		}
	})

	t.Run("esc closes modal", func(t *testing.T) {
		h := setup(t)
		h.press(t, keyEsc)
		if h.model.modal.IsVisible() {
			t.Error("expected the modal to close")
		}
	})
}
