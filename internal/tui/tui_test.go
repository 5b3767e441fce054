package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/muesli/termenv"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/llm"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/session"
)

const defaultModel = "llama3.2:3b"

var testModels = []string{defaultModel, "deepseek-r1:8b", "llama3.2:1b"}

type harness struct {
	model    *Model
	chat     *chat.Service
	sessions *session.Service
	requests []llm.Request
	copied   []string
	mu       sync.Mutex
}

func newHarness(t *testing.T, reply string, genErr error, opts Options) *harness {
	t.Helper()

	h := &harness{}
	gen := llm.GeneratorFunc(func(ctx context.Context, req llm.Request) (string, error) {
		h.mu.Lock()
		h.requests = append(h.requests, req)
		h.mu.Unlock()
		if genErr != nil {
			return "", genErr
		}
		return reply, nil
	})
	h.build(t, gen, opts)
	return h
}

func (h *harness) build(t *testing.T, gen llm.Generator, opts Options) {
	t.Helper()

	msgStore := message.NewMemoryStore()
	h.sessions = session.NewService(session.NewMemoryStore(), msgStore, session.WithDefaultModel(defaultModel))
	h.chat = chat.NewService(h.sessions, message.NewService(msgStore, nil), gen)

	if opts.Models == nil {
		opts.Models = testModels
	}
	opts.Profile = termenv.Ascii
	opts.Copy = func(s string) error {
		h.copied = append(h.copied, s)
		return nil
	}
	h.model = New(context.Background(), h.chat, opts)
	h.model.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
}

func (h *harness) press(t *testing.T, k tea.KeyPressMsg) {
	t.Helper()
	_, cmd := h.model.Update(k)
	drain(t, h.model, cmd)
}

func (h *harness) send(t *testing.T, text string) {
	t.Helper()
	h.model.input.SetValue(text)
	h.press(t, keyEnter)
}

var (
	keyEnter = tea.KeyPressMsg{Code: tea.KeyEnter}
	keyEsc   = tea.KeyPressMsg{Code: tea.KeyEscape}
	keyDown  = tea.KeyPressMsg{Code: tea.KeyDown}
	keyUp    = tea.KeyPressMsg{Code: tea.KeyUp}
)

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func alt(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code, Mod: tea.ModAlt}
}

func char(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

// drain runs cmd and feeds the resulting messages back into m until no work
// is left. Commands that wait on timers, such as cursor blinks, are dropped.
func drain(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()

	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command queue did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}

		switch msg := runCmd(next).(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case exchangeDoneMsg, exchangeFailedMsg, historyLoadedMsg, sessionsLoadedMsg,
			sessionsChangedMsg, replyCopiedMsg, modalClosedMsg, switchSessionMsg,
			newSessionMsg, renameSessionMsg, deleteSessionMsg, clearAllSessionsMsg,
			spinner.TickMsg:
			_, follow := m.Update(msg)
			queue = append(queue, follow)
		}
	}
}

func runCmd(cmd tea.Cmd) tea.Msg {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(250 * time.Millisecond):
		return nil
	}
}

func TestModel_SendRecordsExchange(t *testing.T) {
	h := newHarness(t, "Isolate FIN-WS-12 and collect memory.", nil, Options{})

	h.model.input.SetValue("Ransomware note on FIN-WS-12")
	_, cmd := h.model.Update(keyEnter)

	if !h.model.busy {
		t.Error("expected busy while the reply is pending")
	}
	if h.model.input.IsEnabled() {
		t.Error("expected input disabled while the reply is pending")
	}
	if h.model.status.Status() != StatusThinking {
		t.Errorf("status = %v, want thinking", h.model.status.Status())
	}

	drain(t, h.model, cmd)

	if h.model.busy {
		t.Error("expected not busy after the reply")
	}
	if h.model.SessionID() == "" {
		t.Fatal("expected a session id after the first exchange")
	}
	turns := h.model.transcript.Turns()
	if len(turns) != 2 {
		t.Fatalf("len(turns) = %d, want 2", len(turns))
	}
	if turns[0].Content != "Ransomware note on FIN-WS-12" {
		t.Errorf("user turn = %q", turns[0].Content)
	}
	if got := h.model.transcript.LastReply(); got != "Isolate FIN-WS-12 and collect memory." {
		t.Errorf("LastReply() = %q", got)
	}
	if h.model.input.Value() != "" {
		t.Errorf("input = %q, want empty", h.model.input.Value())
	}
	if !strings.HasPrefix(h.model.status.Text(), "Ready") {
		t.Errorf("status = %q, want Ready", h.model.status.Text())
	}

	if len(h.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(h.requests))
	}
	if h.requests[0].Model != defaultModel {
		t.Errorf("model = %q, want %q", h.requests[0].Model, defaultModel)
	}
	if h.requests[0].Options.MaxTokens != chat.DefaultMaxTokens {
		t.Errorf("max tokens = %d, want %d", h.requests[0].Options.MaxTokens, chat.DefaultMaxTokens)
	}

	sessions, err := h.sessions.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != h.model.SessionID() {
		t.Errorf("sessions = %+v, want the exchanged session only", sessions)
	}

	// A second message continues the same session.
	id := h.model.SessionID()
	h.send(t, "Any lateral movement?")
	if h.model.SessionID() != id {
		t.Errorf("SessionID() = %q, want %q", h.model.SessionID(), id)
	}
	if len(h.model.transcript.Turns()) != 4 {
		t.Errorf("len(turns) = %d, want 4", len(h.model.transcript.Turns()))
	}
}

func TestModel_SendIgnoresBlankInput(t *testing.T) {
	h := newHarness(t, "unused", nil, Options{})

	h.model.input.SetValue("   ")
	_, cmd := h.model.Update(keyEnter)

	if cmd != nil {
		t.Error("expected no command for blank input")
	}
	if h.model.busy {
		t.Error("expected not busy")
	}
}

func TestModel_FailureKeepsInput(t *testing.T) {
	h := newHarness(t, "", errors.New("connection refused"), Options{})

	h.send(t, "Beaconing from 10.0.4.7")

	if h.model.status.Status() != StatusError {
		t.Fatalf("status = %v, want error", h.model.status.Status())
	}
	if !strings.Contains(h.model.status.Text(), "connection refused") {
		t.Errorf("status = %q, want the generation error", h.model.status.Text())
	}
	if h.model.input.Value() != "Beaconing from 10.0.4.7" {
		t.Errorf("input = %q, want the unsent message", h.model.input.Value())
	}
	if !h.model.input.IsEnabled() {
		t.Error("expected input enabled after failure")
	}
	if h.model.SessionID() != "" {
		t.Errorf("SessionID() = %q, want empty", h.model.SessionID())
	}
	if len(h.model.transcript.Turns()) != 0 {
		t.Errorf("len(turns) = %d, want 0", len(h.model.transcript.Turns()))
	}

	sessions, err := h.sessions.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(sessions) != 0 {
		t.Errorf("len(sessions) = %d, want 0", len(sessions))
	}
}

func TestModel_EscCancelsPendingReply(t *testing.T) {
	h := &harness{}
	h.build(t, llm.GeneratorFunc(func(ctx context.Context, _ llm.Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), Options{})

	h.model.input.SetValue("Suspicious PowerShell on HR-LT-3")
	_, cmd := h.model.Update(keyEnter)
	h.model.Update(keyEsc)
	drain(t, h.model, cmd)

	if h.model.busy {
		t.Error("expected not busy after cancel")
	}
	if got := h.model.status.Text(); got != "Error: reply cancelled" {
		t.Errorf("status = %q, want cancelled", got)
	}
	if h.model.input.Value() != "Suspicious PowerShell on HR-LT-3" {
		t.Errorf("input = %q, want the unsent message", h.model.input.Value())
	}
}

func TestModel_Controls(t *testing.T) {
	tests := []struct {
		name       string
		opts       Options
		keys       []tea.KeyPressMsg
		wantTokens int
		wantModel  string
	}{
		{
			name:       "defaults",
			wantTokens: chat.DefaultMaxTokens,
			wantModel:  defaultModel,
		},
		{
			name:       "raise budget",
			keys:       []tea.KeyPressMsg{alt(tea.KeyUp), alt(tea.KeyUp)},
			wantTokens: 700,
			wantModel:  defaultModel,
		},
		{
			name:       "budget stops at minimum",
			opts:       Options{MaxTokens: 200},
			keys:       []tea.KeyPressMsg{alt(tea.KeyDown), alt(tea.KeyDown), alt(tea.KeyDown)},
			wantTokens: MinMaxTokens,
			wantModel:  defaultModel,
		},
		{
			name:       "budget stops at maximum",
			opts:       Options{MaxTokens: 5000},
			keys:       []tea.KeyPressMsg{alt(tea.KeyUp)},
			wantTokens: MaxMaxTokens,
			wantModel:  defaultModel,
		},
		{
			name:       "cycle models",
			keys:       []tea.KeyPressMsg{ctrl('t'), ctrl('t')},
			wantTokens: chat.DefaultMaxTokens,
			wantModel:  "llama3.2:1b",
		},
		{
			name:       "cycle wraps",
			keys:       []tea.KeyPressMsg{ctrl('t'), ctrl('t'), ctrl('t')},
			wantTokens: chat.DefaultMaxTokens,
			wantModel:  defaultModel,
		},
		{
			name:       "preferred model not in list",
			opts:       Options{Model: "groq/llama-3.3-70b-versatile"},
			wantTokens: chat.DefaultMaxTokens,
			wantModel:  "groq/llama-3.3-70b-versatile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "ok", nil, tt.opts)
			for _, k := range tt.keys {
				h.press(t, k)
			}
			if got := h.model.MaxTokens(); got != tt.wantTokens {
				t.Errorf("MaxTokens() = %d, want %d", got, tt.wantTokens)
			}
			if got := h.model.SelectedModel(); got != tt.wantModel {
				t.Errorf("SelectedModel() = %q, want %q", got, tt.wantModel)
			}
		})
	}
}

func TestModel_SendUsesSelectedControls(t *testing.T) {
	h := newHarness(t, "ok", nil, Options{})

	h.press(t, ctrl('t'))
	h.press(t, alt(tea.KeyDown))
	h.send(t, "Triage this alert")

	if len(h.requests) != 1 {
		t.Fatalf("generator calls = %d, want 1", len(h.requests))
	}
	if h.requests[0].Model != "deepseek-r1:8b" {
		t.Errorf("model = %q, want deepseek-r1:8b", h.requests[0].Model)
	}
	if h.requests[0].Options.MaxTokens != 400 {
		t.Errorf("max tokens = %d, want 400", h.requests[0].Options.MaxTokens)
	}

	sess, err := h.sessions.Get(context.Background(), h.model.SessionID())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if sess.Model != "deepseek-r1:8b" {
		t.Errorf("session model = %q, want deepseek-r1:8b", sess.Model)
	}
}

func TestModel_ResumeLoadsHistory(t *testing.T) {
	h := newHarness(t, "Block the C2 domain.", nil, Options{})
	ctx := context.Background()

	res, err := h.chat.Exchange(ctx, chat.Request{Message: "DNS to evil.example", Model: "llama3.2:1b"})
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if err := h.chat.Rename(ctx, res.SessionID, "C2 beacon"); err != nil {
		t.Fatalf("Rename() error = %v", err)
	}

	m := New(ctx, h.chat, Options{SessionID: res.SessionID, Models: []string{defaultModel}, Profile: termenv.Ascii})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	drain(t, m, m.Init())

	if m.SessionID() != res.SessionID {
		t.Errorf("SessionID() = %q, want %q", m.SessionID(), res.SessionID)
	}
	if m.title != "C2 beacon" {
		t.Errorf("title = %q, want C2 beacon", m.title)
	}
	if m.SelectedModel() != "llama3.2:1b" {
		t.Errorf("SelectedModel() = %q, want the session's model", m.SelectedModel())
	}
	if len(m.transcript.Turns()) != 2 {
		t.Errorf("len(turns) = %d, want 2", len(m.transcript.Turns()))
	}
}

func TestModel_NewChatAndClear(t *testing.T) {
	h := newHarness(t, "Reset the account password.", nil, Options{})
	ctx := context.Background()

	h.send(t, "Impossible travel for j.doe")
	id := h.model.SessionID()

	h.press(t, ctrl('l'))
	if len(h.model.transcript.Turns()) != 0 {
		t.Errorf("len(turns) = %d after clear, want 0", len(h.model.transcript.Turns()))
	}
	hist, err := h.chat.History(ctx, id)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(hist.Turns) != 0 || hist.Session == nil {
		t.Errorf("history = %+v, want a registered session without turns", hist)
	}

	h.press(t, ctrl('n'))
	if h.model.SessionID() != "" {
		t.Errorf("SessionID() = %q after new chat, want empty", h.model.SessionID())
	}
	if h.model.title != session.DefaultTitle {
		t.Errorf("title = %q, want %q", h.model.title, session.DefaultTitle)
	}

	h.send(t, "Second incident")
	if h.model.SessionID() == id {
		t.Error("expected a new session for the new chat")
	}
}

func TestModel_CopyReply(t *testing.T) {
	h := newHarness(t, "Quarantine the attachment.", nil, Options{})

	h.press(t, ctrl('y'))
	if len(h.copied) != 0 {
		t.Errorf("copied %q with no reply", h.copied)
	}

	h.send(t, "Phishing email with macro")
	h.press(t, ctrl('y'))
	if len(h.copied) != 1 || h.copied[0] != "Quarantine the attachment." {
		t.Errorf("copied = %q, want the last reply", h.copied)
	}
	if got := h.model.status.Text(); got != "Ready · reply copied" {
		t.Errorf("status = %q", got)
	}
}

func TestModel_View(t *testing.T) {
	h := newHarness(t, "ok", nil, Options{})

	view := h.model.View()
	if !view.AltScreen {
		t.Error("expected alt screen")
	}
	for _, want := range []string{"socchat", session.DefaultTitle, defaultModel, "max 500 tokens", "Ready"} {
		if !strings.Contains(view.Content, want) {
			t.Errorf("view missing %q", want)
		}
	}

	h.press(t, ctrl('o'))
	if !strings.Contains(h.model.View().Content, "No sessions yet") {
		t.Error("expected the empty sessions modal")
	}
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := New(context.Background(), nil, Options{})
	if got := m.View().Content; got != "Loading..." {
		t.Errorf("View() = %q, want Loading...", got)
	}
}
