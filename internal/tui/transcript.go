package tui

import (
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/socchat/internal/debug"
	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/render"
)

// Transcript is the scrollable conversation view.
type Transcript struct {
	viewport viewport.Model
	markdown *render.MarkdownRenderer
	styles   Styles
	pending  string
	turns    []message.Turn
	width    int
	height   int
}

// NewTranscript creates an empty transcript. Assistant turns are rendered
// with md when it is set.
func NewTranscript(st Styles, md *render.MarkdownRenderer) *Transcript {
	return &Transcript{
		viewport: viewport.New(),
		markdown: md,
		styles:   st,
	}
}

// SetSize sets the transcript dimensions.
func (t *Transcript) SetSize(width, height int) {
	t.width = width
	t.height = height
	t.viewport.SetWidth(width)
	t.viewport.SetHeight(height)
	t.refresh()
}

// SetTurns replaces the conversation.
func (t *Transcript) SetTurns(turns []message.Turn) {
	t.turns = append([]message.Turn(nil), turns...)
	t.pending = ""
	t.refresh()
}

// Append adds turns to the end of the conversation.
func (t *Transcript) Append(turns ...message.Turn) {
	t.turns = append(t.turns, turns...)
	t.refresh()
}

// SetPending shows a user message that is awaiting its reply.
func (t *Transcript) SetPending(text string) {
	t.pending = text
	t.refresh()
}

// ClearPending drops the pending message.
func (t *Transcript) ClearPending() {
	t.pending = ""
	t.refresh()
}

// Turns returns the displayed turns.
func (t *Transcript) Turns() []message.Turn {
	return t.turns
}

// LastReply returns the most recent assistant turn, or "".
func (t *Transcript) LastReply() string {
	for i := len(t.turns) - 1; i >= 0; i-- {
		if t.turns[i].Role == message.RoleAssistant {
			return t.turns[i].Content
		}
	}
	return ""
}

// Update handles scrolling.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the conversation.
func (t *Transcript) View() string {
	if len(t.turns) == 0 && t.pending == "" {
		return lipgloss.Place(t.width, t.height, lipgloss.Center, lipgloss.Center,
			t.styles.Muted.Render("No messages yet. Paste an alert to start the investigation."))
	}
	return t.viewport.View()
}

func (t *Transcript) refresh() {
	blocks := make([]string, 0, len(t.turns)+1)
	for _, turn := range t.turns {
		blocks = append(blocks, t.renderTurn(turn))
	}
	if t.pending != "" {
		blocks = append(blocks, t.renderTurn(message.Turn{Role: message.RoleUser, Content: t.pending}))
		blocks = append(blocks, t.styles.Muted.Italic(true).Render("Analyzing..."))
	}
	t.viewport.SetContent(strings.Join(blocks, "\n\n"))
	t.viewport.GotoBottom()
}

func (t *Transcript) renderTurn(turn message.Turn) string {
	width := max(20, t.width-2)

	if turn.Role != message.RoleAssistant {
		header := t.styles.Accent.Bold(true).Render("You")
		body := t.styles.Text.Width(width).Render(turn.Content)
		return header + "\n" + body
	}

	header := t.styles.Primary.Bold(true).Render("Assistant")
	body := turn.Content
	if t.markdown != nil {
		rendered, err := t.markdown.Render(turn.Content, width)
		if err != nil {
			debug.Error("tui", err, "rendering reply")
		}
		body = strings.Trim(rendered, "\n")
	}
	if body == "" {
		body = turn.Content
	}
	return header + "\n" + body
}
