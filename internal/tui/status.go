package tui

import (
	"charm.land/lipgloss/v2"
)

// Status represents the current chat status.
type Status int

const (
	StatusReady Status = iota
	StatusThinking
	StatusError
)

const helpHint = "enter send · ctrl+o sessions · ctrl+n new · ctrl+t model · alt+↑/↓ tokens · ctrl+c quit"

// StatusBar displays the chat status and key hints.
type StatusBar struct {
	styles   Styles
	errorMsg string
	info     string
	spinner  string
	status   Status
	width    int
}

// NewStatusBar creates a ready status bar.
func NewStatusBar(st Styles) *StatusBar {
	return &StatusBar{styles: st}
}

// SetStatus sets the current status and drops any message.
func (s *StatusBar) SetStatus(status Status) {
	s.status = status
	s.errorMsg = ""
	s.info = ""
}

// SetError shows an error.
func (s *StatusBar) SetError(msg string) {
	s.status = StatusError
	s.errorMsg = msg
}

// SetInfo shows a note next to the ready status.
func (s *StatusBar) SetInfo(msg string) {
	s.status = StatusReady
	s.errorMsg = ""
	s.info = msg
}

// SetSpinner sets the frame shown while thinking.
func (s *StatusBar) SetSpinner(frame string) {
	s.spinner = frame
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

// Status returns the current status.
func (s *StatusBar) Status() Status {
	return s.status
}

// Text returns the status message without styling.
func (s *StatusBar) Text() string {
	switch s.status {
	case StatusThinking:
		return "Thinking..."
	case StatusError:
		return "Error: " + s.errorMsg
	default:
		if s.info != "" {
			return "Ready · " + s.info
		}
		return "Ready"
	}
}

// View renders the status bar.
func (s *StatusBar) View() string {
	var left string
	switch s.status {
	case StatusThinking:
		left = s.styles.Secondary.Render(s.spinner + " " + s.Text())
	case StatusError:
		left = s.styles.Error.Render(s.Text())
	default:
		left = s.styles.Success.Render(s.Text())
	}

	right := s.styles.Muted.Render(helpHint)
	gap := s.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return lipgloss.NewStyle().Width(s.width).Padding(0, 1).Render(left)
	}

	return lipgloss.NewStyle().
		Width(s.width).
		Padding(0, 1).
		Render(left + lipgloss.NewStyle().Width(gap).Render("") + right)
}
