package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/socchat/internal/chat"
)

// SessionList displays sessions with keyboard navigation.
type SessionList struct {
	now       func() time.Time
	styles    Styles
	summaries []chat.Summary
	cursor    int
	offset    int
	width     int
	height    int
}

// NewSessionList creates an empty list.
func NewSessionList(st Styles) *SessionList {
	return &SessionList{styles: st, now: time.Now}
}

// SetSummaries replaces the listed sessions and keeps the cursor in range.
func (l *SessionList) SetSummaries(summaries []chat.Summary) {
	l.summaries = summaries
	if l.cursor >= len(l.summaries) {
		l.cursor = max(0, len(l.summaries)-1)
	}
	l.ensureVisible()
}

// SetSize sets the list dimensions.
func (l *SessionList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

// Selected returns the session under the cursor.
func (l *SessionList) Selected() (chat.Summary, bool) {
	if l.cursor >= 0 && l.cursor < len(l.summaries) {
		return l.summaries[l.cursor], true
	}
	return chat.Summary{}, false
}

// Update handles navigation keys.
func (l *SessionList) Update(msg tea.Msg) (*SessionList, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		return l, nil
	}

	switch keyMsg.String() {
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
	case "down", "j":
		if l.cursor < len(l.summaries)-1 {
			l.cursor++
			l.ensureVisible()
		}
	case "home", "g":
		l.cursor = 0
		l.offset = 0
	case "end", "G":
		l.cursor = max(0, len(l.summaries)-1)
		l.ensureVisible()
	case "enter":
		if selected, ok := l.Selected(); ok {
			return l, emit(switchSessionMsg{SessionID: selected.ID})
		}
	case "n":
		return l, emit(newSessionMsg{})
	}

	return l, nil
}

func (l *SessionList) ensureVisible() {
	rows := l.visibleRows()
	if l.cursor < l.offset {
		l.offset = l.cursor
	} else if l.cursor >= l.offset+rows {
		l.offset = l.cursor - rows + 1
	}
}

func (l *SessionList) visibleRows() int {
	// Title line, preview line and a blank separator.
	return max(1, (l.height-2)/3)
}

// View renders the list.
func (l *SessionList) View() string {
	if len(l.summaries) == 0 {
		return l.styles.Muted.
			Width(l.width).
			Align(lipgloss.Center).
			Padding(2, 0).
			Render("No sessions yet. Press [n] to start one.")
	}

	end := min(l.offset+l.visibleRows(), len(l.summaries))
	rows := make([]string, 0, end-l.offset+2)
	if l.offset > 0 {
		rows = append(rows, l.styles.Muted.Render(fmt.Sprintf("  ↑ %d more above", l.offset)))
	}
	for i := l.offset; i < end; i++ {
		rows = append(rows, l.renderRow(l.summaries[i], i == l.cursor))
	}
	if remaining := len(l.summaries) - end; remaining > 0 {
		rows = append(rows, l.styles.Muted.Render(fmt.Sprintf("  ↓ %d more below", remaining)))
	}
	return strings.Join(rows, "\n")
}

func (l *SessionList) renderRow(s chat.Summary, selected bool) string {
	title := truncate(s.Title, l.width-28)
	meta := fmt.Sprintf("%s · %d exchanges · %s", s.Model, s.ExchangeCount, formatRelativeTime(s.UpdatedAt, l.now()))

	preview := strings.ReplaceAll(s.Preview, "\n", " ")
	if preview == "" {
		preview = "(no messages)"
	}
	preview = truncate(preview, l.width-4)

	var sb strings.Builder
	if selected {
		sb.WriteString(l.styles.Primary.Bold(true).Render("> " + title))
		sb.WriteString("  ")
		sb.WriteString(l.styles.Muted.Render(meta))
		sb.WriteString("\n")
		sb.WriteString(l.styles.Text.Render("  " + preview))
	} else {
		sb.WriteString(l.styles.Text.Render("  " + title))
		sb.WriteString("  ")
		sb.WriteString(l.styles.Muted.Render(meta))
		sb.WriteString("\n")
		sb.WriteString(l.styles.Subtle.Render("  " + preview))
	}
	sb.WriteString("\n")
	return sb.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if width < 4 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

// formatRelativeTime formats t relative to now.
func formatRelativeTime(t, now time.Time) string {
	diff := now.Sub(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 min ago"
		}
		return fmt.Sprintf("%d mins ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2")
	}
}

// RenameInput edits a session title.
type RenameInput struct {
	input textinput.Model
}

// NewRenameInput creates an empty rename input.
func NewRenameInput() *RenameInput {
	ti := textinput.New()
	ti.Placeholder = "Session title..."
	ti.CharLimit = 100
	return &RenameInput{input: ti}
}

// SetWidth sets the input width.
func (r *RenameInput) SetWidth(width int) {
	r.input.SetWidth(max(10, width))
}

// SetValue replaces the text and moves the cursor to its end.
func (r *RenameInput) SetValue(value string) {
	r.input.SetValue(value)
	r.input.CursorEnd()
}

// Value returns the current text.
func (r *RenameInput) Value() string {
	return r.input.Value()
}

// Focus focuses the input.
func (r *RenameInput) Focus() tea.Cmd {
	return r.input.Focus()
}

// Reset clears and blurs the input.
func (r *RenameInput) Reset() {
	r.input.SetValue("")
	r.input.Blur()
}

// Update handles messages.
func (r *RenameInput) Update(msg tea.Msg) (*RenameInput, tea.Cmd) {
	var cmd tea.Cmd
	r.input, cmd = r.input.Update(msg)
	return r, cmd
}

// View renders the input.
func (r *RenameInput) View() string {
	return r.input.View()
}

type modalStep int

const (
	stepList modalStep = iota
	stepRename
	stepDeleteConfirm
	stepClearAllConfirm
)

// Modal is the session manager: browse, open, rename, delete and clear all.
type Modal struct {
	list    *SessionList
	rename  *RenameInput
	styles  Styles
	target  chat.Summary
	step    modalStep
	width   int
	height  int
	visible bool
}

// NewModal creates a hidden modal.
func NewModal(st Styles) *Modal {
	return &Modal{
		list:   NewSessionList(st),
		rename: NewRenameInput(),
		styles: st,
	}
}

// Open shows the modal on the list step.
func (m *Modal) Open() {
	m.visible = true
	m.step = stepList
}

// Close hides the modal.
func (m *Modal) Close() {
	m.visible = false
	m.step = stepList
	m.rename.Reset()
}

// IsVisible returns whether the modal is shown.
func (m *Modal) IsVisible() bool {
	return m.visible
}

// SetSummaries refreshes the listed sessions.
func (m *Modal) SetSummaries(summaries []chat.Summary) {
	m.list.SetSummaries(summaries)
}

// SetSize sizes the modal for a terminal of the given dimensions.
func (m *Modal) SetSize(width, height int) {
	m.width = min(max(40, width-8), 100)
	m.height = max(10, height-6)
	m.list.SetSize(m.width-4, m.height-6)
	m.rename.SetWidth(m.width - 8)
}

// Update handles keys for the current step.
func (m *Modal) Update(msg tea.Msg) (*Modal, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyPressMsg)
	if !ok {
		if m.step == stepRename {
			var cmd tea.Cmd
			m.rename, cmd = m.rename.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	key := keyMsg.String()
	switch m.step {
	case stepRename:
		switch key {
		case "esc":
			m.rename.Reset()
			m.step = stepList
			return m, nil
		case "enter":
			title := strings.TrimSpace(m.rename.Value())
			if title == "" {
				return m, nil
			}
			m.rename.Reset()
			m.step = stepList
			return m, emit(renameSessionMsg{SessionID: m.target.ID, Title: title})
		}
		var cmd tea.Cmd
		m.rename, cmd = m.rename.Update(msg)
		return m, cmd

	case stepDeleteConfirm:
		switch key {
		case "y", "enter":
			m.step = stepList
			return m, emit(deleteSessionMsg{SessionID: m.target.ID})
		case "n", "esc":
			m.step = stepList
		}
		return m, nil

	case stepClearAllConfirm:
		switch key {
		case "y":
			m.step = stepList
			return m, emit(clearAllSessionsMsg{})
		case "n", "esc":
			m.step = stepList
		}
		return m, nil
	}

	switch key {
	case "esc", "q":
		m.Close()
		return m, emit(modalClosedMsg{})
	case "r":
		if selected, ok := m.list.Selected(); ok {
			m.target = selected
			m.step = stepRename
			m.rename.SetValue(selected.Title)
			return m, m.rename.Focus()
		}
		return m, nil
	case "d":
		if selected, ok := m.list.Selected(); ok {
			m.target = selected
			m.step = stepDeleteConfirm
		}
		return m, nil
	case "x":
		m.step = stepClearAllConfirm
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the modal box.
func (m *Modal) View() string {
	title := m.styles.Primary.Bold(true).Render("Sessions")

	var body, hints string
	switch m.step {
	case stepRename:
		body = m.styles.Text.Render("Rename \""+m.target.Title+"\"") + "\n\n" + m.rename.View()
		hints = "enter save · esc cancel"
	case stepDeleteConfirm:
		body = m.styles.Error.Render("Delete \""+m.target.Title+"\" and its history?")
		hints = "y delete · n cancel"
	case stepClearAllConfirm:
		body = m.styles.Error.Render("Delete every session and every chat?")
		hints = "y clear all · n cancel"
	default:
		body = m.list.View()
		hints = "↑/↓ move · enter open · n new · r rename · d delete · x clear all · esc close"
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		body,
		"",
		m.styles.Muted.Render(hints),
	)

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.styles.BorderFocus).
		Padding(1, 2).
		Width(m.width).
		Render(content)
}
