package tui

import (
	"charm.land/bubbles/v2/textarea"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// inputLines is the visible height of the message editor.
const inputLines = 3

// Input is the multi-line message editor. Enter sends; ctrl+j inserts a
// newline.
type Input struct {
	area    textarea.Model
	styles  Styles
	width   int
	enabled bool
}

// NewInput creates an enabled input.
func NewInput(st Styles) *Input {
	ta := textarea.New()
	ta.Placeholder = "Paste an alert or ask about an incident..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 8192
	ta.SetHeight(inputLines)
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")

	return &Input{
		area:    ta,
		styles:  st,
		enabled: true,
	}
}

// Init focuses the editor.
func (i *Input) Init() tea.Cmd {
	return i.area.Focus()
}

// Update handles editor events. A disabled input ignores them.
func (i *Input) Update(msg tea.Msg) (*Input, tea.Cmd) {
	if !i.enabled {
		return i, nil
	}

	var cmd tea.Cmd
	i.area, cmd = i.area.Update(msg)
	return i, cmd
}

// View renders the editor inside a rounded border.
func (i *Input) View() string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(i.styles.BorderFocus).
		Width(max(0, i.width-2))

	if !i.enabled {
		style = style.BorderForeground(i.styles.Border)
	}

	return style.Render(i.area.View())
}

// SetWidth sets the input width.
func (i *Input) SetWidth(width int) {
	i.width = width
	i.area.SetWidth(max(10, width-4)) // border and padding
}

// Height is the rendered height including the border.
func (i *Input) Height() int {
	return inputLines + 2
}

// Value returns the current text.
func (i *Input) Value() string {
	return i.area.Value()
}

// SetValue replaces the current text.
func (i *Input) SetValue(value string) {
	i.area.SetValue(value)
}

// Clear empties the editor.
func (i *Input) Clear() {
	i.area.Reset()
}

// Enable enables and focuses the input.
func (i *Input) Enable() tea.Cmd {
	i.enabled = true
	return i.area.Focus()
}

// Disable disables the input while a reply is pending.
func (i *Input) Disable() {
	i.enabled = false
	i.area.Blur()
}

// IsEnabled returns whether the input accepts keys.
func (i *Input) IsEnabled() bool {
	return i.enabled
}
