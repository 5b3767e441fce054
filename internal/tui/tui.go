// Package tui provides the interactive terminal chat for socchat.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/pubsub"
	"github.com/guilhermegouw/socchat/internal/render"
	"github.com/guilhermegouw/socchat/internal/session"
)

// Response budget bounds and step for the max tokens control.
const (
	MinMaxTokens  = 100
	MaxMaxTokens  = 1000
	MaxTokensStep = 100
)

// Options configure the chat UI.
type Options struct {
	// Events refreshes the open session list on registry changes.
	Events pubsub.Subscriber[events.SessionEvent]
	Theme  *render.Theme
	// Copy writes to the system clipboard. Nil selects atotto/clipboard.
	Copy func(string) error
	// SessionID resumes an existing session.
	SessionID string
	// Model is selected first. It is added to Models when missing.
	Model     string
	Models    []string
	MaxTokens int
	// Timeout bounds one exchange. Zero means no limit.
	Timeout time.Duration
	Profile termenv.Profile
}

// Model is the top-level bubbletea model.
type Model struct {
	ctx        context.Context
	chat       *chat.Service
	transcript *Transcript
	input      *Input
	status     *StatusBar
	modal      *Modal
	copy       func(string) error
	cancel     context.CancelFunc
	styles     Styles
	spinner    spinner.Model
	resume     string
	sessionID  string
	title      string
	models     []string
	selected   int
	maxTokens  int
	timeout    time.Duration
	width      int
	height     int
	busy       bool
	ready      bool
}

// New creates the chat UI over svc. ctx bounds every operation it starts.
func New(ctx context.Context, svc *chat.Service, opts Options) *Model {
	st := NewStyles(opts.Theme)

	theme := opts.Theme
	if theme == nil {
		theme = render.DefaultTheme()
	}

	copyFn := opts.Copy
	if copyFn == nil {
		copyFn = clipboard.WriteAll
	}

	m := &Model{
		ctx:        ctx,
		chat:       svc,
		styles:     st,
		transcript: NewTranscript(st, render.NewMarkdownRenderer(theme, opts.Profile)),
		input:      NewInput(st),
		status:     NewStatusBar(st),
		modal:      NewModal(st),
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(st.Secondary)),
		copy:       copyFn,
		resume:     opts.SessionID,
		title:      session.DefaultTitle,
		models:     slices.Clone(opts.Models),
		maxTokens:  clampTokens(opts.MaxTokens),
		timeout:    opts.Timeout,
	}
	if opts.Model != "" {
		m.selectModel(opts.Model)
	}
	return m
}

// Init focuses the input and loads the resumed session, if any.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.input.Init()}
	if m.resume != "" {
		cmds = append(cmds, m.loadHistory(m.resume))
	}
	return tea.Batch(cmds...)
}

// Update handles messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.layout()
		return m, nil

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case tea.MouseWheelMsg:
		if m.modal.IsVisible() {
			return m, nil
		}
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		m.status.SetSpinner(m.spinner.View())
		return m, cmd

	case exchangeDoneMsg:
		return m, m.exchangeDone(msg)

	case exchangeFailedMsg:
		return m, m.exchangeFailed(msg)

	case historyLoadedMsg:
		m.historyLoaded(msg)
		return m, nil

	case sessionsLoadedMsg:
		if msg.err != nil {
			m.status.SetError(msg.err.Error())
			return m, nil
		}
		m.modal.SetSummaries(msg.summaries)
		return m, nil

	case sessionsChangedMsg:
		return m, m.sessionsChanged(msg)

	case replyCopiedMsg:
		if msg.err != nil {
			m.status.SetError("copying reply: " + msg.err.Error())
		} else {
			m.status.SetInfo("reply copied")
		}
		return m, nil

	case sessionEventMsg:
		debug.Event("tui", "session_event", fmt.Sprintf("type=%s session=%s", msg.event.Payload.Type, msg.event.Payload.SessionID))
		if m.modal.IsVisible() {
			return m, m.loadSessions()
		}
		return m, nil

	case modalClosedMsg:
		m.modal.Close()
		return m, nil

	case switchSessionMsg:
		m.modal.Close()
		return m, m.loadHistory(msg.SessionID)

	case newSessionMsg:
		m.modal.Close()
		m.reset()
		return m, nil

	case renameSessionMsg:
		return m, m.renameSession(msg.SessionID, msg.Title)

	case deleteSessionMsg:
		return m, m.deleteSession(msg.SessionID)

	case clearAllSessionsMsg:
		return m, m.clearAll()
	}

	// Cursor blinks and other component messages.
	if m.modal.IsVisible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		if m.cancel != nil {
			m.cancel()
		}
		return tea.Quit
	}

	if m.modal.IsVisible() {
		var cmd tea.Cmd
		m.modal, cmd = m.modal.Update(msg)
		return cmd
	}

	switch key {
	case "esc":
		if m.busy && m.cancel != nil {
			m.cancel()
		}
		return nil
	case "enter":
		return m.send()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return cmd
	case "ctrl+y":
		return m.copyReply()
	}

	if m.busy {
		return nil
	}

	switch key {
	case "ctrl+o":
		m.modal.Open()
		m.layout()
		return m.loadSessions()
	case "ctrl+n":
		m.reset()
		return nil
	case "ctrl+l":
		return m.clearCurrent()
	case "ctrl+t":
		m.cycleModel()
		return nil
	case "alt+up":
		m.maxTokens = clampTokens(m.maxTokens + MaxTokensStep)
		return nil
	case "alt+down":
		m.maxTokens = clampTokens(m.maxTokens - MaxTokensStep)
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

// send starts an exchange with the input text.
func (m *Model) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if m.busy || text == "" {
		return nil
	}

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if m.timeout > 0 {
		ctx, cancel = context.WithTimeout(m.ctx, m.timeout)
	} else {
		ctx, cancel = context.WithCancel(m.ctx)
	}
	m.cancel = cancel
	m.busy = true

	m.input.Clear()
	m.input.Disable()
	m.transcript.SetPending(text)
	m.status.SetStatus(StatusThinking)
	m.status.SetSpinner(m.spinner.View())

	req := chat.Request{
		SessionID: m.sessionID,
		Message:   text,
		Model:     m.SelectedModel(),
		MaxTokens: m.maxTokens,
	}
	debug.Event("tui", "send", fmt.Sprintf("session=%q model=%s max_tokens=%d", req.SessionID, req.Model, req.MaxTokens))

	svc := m.chat
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		defer cancel()
		res, err := svc.Exchange(ctx, req)
		if err != nil {
			return exchangeFailedMsg{err: err, message: text}
		}
		return exchangeDoneMsg{result: res, message: text}
	})
}

func (m *Model) exchangeDone(msg exchangeDoneMsg) tea.Cmd {
	m.finish()
	res := msg.result

	m.sessionID = res.SessionID
	m.transcript.Append(
		message.Turn{Role: message.RoleUser, Content: msg.message, Timestamp: res.Timestamp},
		message.Turn{Role: message.RoleAssistant, Content: res.Response, Timestamp: res.Timestamp},
	)
	m.status.SetInfo(fmt.Sprintf("%s replied in %.1fs", res.Model, res.ResponseTime.Seconds()))
	return m.input.Enable()
}

func (m *Model) exchangeFailed(msg exchangeFailedMsg) tea.Cmd {
	m.finish()
	debug.Error("tui", msg.err, "exchange")

	// Keep the text so it can be resent.
	m.input.SetValue(msg.message)
	switch {
	case errors.Is(msg.err, context.Canceled):
		m.status.SetError("reply cancelled")
	case errors.Is(msg.err, context.DeadlineExceeded):
		m.status.SetError("reply timed out")
	default:
		m.status.SetError(msg.err.Error())
	}
	return m.input.Enable()
}

func (m *Model) finish() {
	m.busy = false
	m.cancel = nil
	m.transcript.ClearPending()
}

func (m *Model) historyLoaded(msg historyLoadedMsg) {
	if msg.err != nil {
		m.status.SetError(msg.err.Error())
		return
	}

	h := msg.history
	m.sessionID = h.SessionID
	m.title = session.DefaultTitle
	if h.Session != nil {
		m.title = h.Session.Title
		m.selectModel(h.Session.Model)
	}
	m.transcript.SetTurns(h.Turns)
	m.status.SetInfo(fmt.Sprintf("loaded %d exchanges", h.Exchanges))
}

func (m *Model) sessionsChanged(msg sessionsChangedMsg) tea.Cmd {
	if msg.err != nil {
		m.status.SetError(msg.err.Error())
	} else {
		m.status.SetInfo(msg.info)
		switch {
		case msg.all, msg.deleted != "" && msg.deleted == m.sessionID:
			m.reset()
		case msg.renamed != "" && msg.renamed == m.sessionID:
			m.title = msg.title
		case msg.cleared != "" && msg.cleared == m.sessionID:
			m.transcript.SetTurns(nil)
		}
	}

	if m.modal.IsVisible() {
		return m.loadSessions()
	}
	return nil
}

// reset starts a new conversation. The session is registered by its first
// exchange.
func (m *Model) reset() {
	m.sessionID = ""
	m.title = session.DefaultTitle
	m.transcript.SetTurns(nil)
	m.status.SetStatus(StatusReady)
}

func (m *Model) loadHistory(id string) tea.Cmd {
	ctx, svc := m.ctx, m.chat
	return func() tea.Msg {
		h, err := svc.History(ctx, id)
		return historyLoadedMsg{history: h, err: err}
	}
}

func (m *Model) loadSessions() tea.Cmd {
	ctx, svc := m.ctx, m.chat
	return func() tea.Msg {
		summaries, err := svc.Sessions(ctx)
		return sessionsLoadedMsg{summaries: summaries, err: err}
	}
}

func (m *Model) renameSession(id, title string) tea.Cmd {
	ctx, svc := m.ctx, m.chat
	return func() tea.Msg {
		if err := svc.Rename(ctx, id, title); err != nil {
			return sessionsChangedMsg{err: err}
		}
		return sessionsChangedMsg{info: "session renamed", renamed: id, title: title}
	}
}

func (m *Model) deleteSession(id string) tea.Cmd {
	ctx, svc := m.ctx, m.chat
	return func() tea.Msg {
		if err := svc.Delete(ctx, id); err != nil {
			return sessionsChangedMsg{err: err}
		}
		return sessionsChangedMsg{info: "session deleted", deleted: id}
	}
}

func (m *Model) clearAll() tea.Cmd {
	ctx, svc := m.ctx, m.chat
	return func() tea.Msg {
		if err := svc.ClearAll(ctx); err != nil {
			return sessionsChangedMsg{err: err}
		}
		return sessionsChangedMsg{info: "all sessions and chats cleared", all: true}
	}
}

func (m *Model) clearCurrent() tea.Cmd {
	if m.sessionID == "" {
		m.transcript.SetTurns(nil)
		return nil
	}

	ctx, svc, id := m.ctx, m.chat, m.sessionID
	return func() tea.Msg {
		if err := svc.Clear(ctx, id); err != nil {
			return sessionsChangedMsg{err: err}
		}
		return sessionsChangedMsg{info: "chat cleared", cleared: id}
	}
}

func (m *Model) copyReply() tea.Cmd {
	reply := m.transcript.LastReply()
	if reply == "" {
		m.status.SetInfo("no reply to copy")
		return nil
	}
	copyFn := m.copy
	return func() tea.Msg {
		return replyCopiedMsg{err: copyFn(reply)}
	}
}

// SelectedModel returns the selected model reference, or "" for the configured
// default.
func (m *Model) SelectedModel() string {
	if m.selected < len(m.models) {
		return m.models[m.selected]
	}
	return ""
}

// MaxTokens returns the current response budget.
func (m *Model) MaxTokens() int {
	return m.maxTokens
}

// SessionID returns the current session, or "" before the first exchange.
func (m *Model) SessionID() string {
	return m.sessionID
}

func (m *Model) selectModel(ref string) {
	if ref == "" {
		return
	}
	if i := slices.Index(m.models, ref); i >= 0 {
		m.selected = i
		return
	}
	m.models = append(m.models, ref)
	m.selected = len(m.models) - 1
}

func (m *Model) cycleModel() {
	if len(m.models) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.models)
	m.status.SetInfo("model " + m.SelectedModel())
}

func clampTokens(n int) int {
	if n <= 0 {
		n = chat.DefaultMaxTokens
	}
	return min(max(n, MinMaxTokens), MaxMaxTokens)
}

func (m *Model) layout() {
	m.input.SetWidth(m.width)
	m.status.SetWidth(m.width)
	m.modal.SetSize(m.width, m.height)

	// Header, input and status bar.
	m.transcript.SetSize(m.width, max(1, m.height-1-m.input.Height()-1))
}

func (m *Model) header() string {
	model := m.SelectedModel()
	if model == "" {
		model = "default model"
	}
	left := m.styles.Primary.Bold(true).Render("socchat") + m.styles.Muted.Render(" · ") + m.styles.Text.Render(m.title)
	right := m.styles.Accent.Render(model) + m.styles.Muted.Render(fmt.Sprintf(" · max %d tokens", m.maxTokens))

	gap := max(1, m.width-lipgloss.Width(left)-lipgloss.Width(right))
	return left + strings.Repeat(" ", gap) + right
}

// View renders the UI.
func (m *Model) View() tea.View {
	var view tea.View
	view.AltScreen = true
	view.MouseMode = tea.MouseModeCellMotion

	if !m.ready {
		view.Content = "Loading..."
		return view
	}

	if m.modal.IsVisible() {
		view.Content = lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.modal.View())
		return view
	}

	view.Content = lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.transcript.View(),
		m.input.View(),
		m.status.View(),
	)
	return view
}

// Run starts the chat UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, svc *chat.Service, opts Options) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("socchat chat requires an interactive terminal: stdin/stdout must be connected to a TTY")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, svc, opts))

	if opts.Events != nil {
		go forwardSessionEvents(ctx, p, opts.Events)
	}
	go func() {
		<-ctx.Done()
		p.Quit()
	}()

	debug.Event("tui", "start", fmt.Sprintf("session=%q model=%q", opts.SessionID, opts.Model))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func forwardSessionEvents(ctx context.Context, p *tea.Program, src pubsub.Subscriber[events.SessionEvent]) {
	for ev := range src.Subscribe(ctx) {
		p.Send(sessionEventMsg{event: ev})
	}
}
