package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/guilhermegouw/socchat/internal/chat"
	"github.com/guilhermegouw/socchat/internal/message"
)

// Column widths of the session table.
const (
	idWidth      = 36
	titleWidth   = 24
	modelWidth   = 18
	previewWidth = 40
)

// SessionTable writes one line per session summary.
func SessionTable(w io.Writer, theme *Theme, summaries []chat.Summary) error {
	if len(summaries) == 0 {
		_, err := fmt.Fprintln(w, lipgloss.NewStyle().Foreground(theme.FgMuted).Render("No sessions."))
		return err
	}

	header := lipgloss.NewStyle().Foreground(theme.Primary).Bold(true)
	muted := lipgloss.NewStyle().Foreground(theme.FgMuted)

	lines := []string{header.Render(row("ID", "TITLE", "MODEL", "TURNS", "UPDATED", "PREVIEW"))}
	for _, s := range summaries {
		lines = append(lines, row(
			s.ID,
			s.Title,
			s.Model,
			fmt.Sprintf("%d", s.ExchangeCount),
			s.UpdatedAt.Local().Format(time.DateTime),
			muted.Render(ansi.Truncate(s.Preview, previewWidth, "…")),
		))
	}

	_, err := fmt.Fprintln(w, strings.Join(lines, "\n"))
	return err
}

func row(id, title, model, turns, updated, preview string) string {
	return strings.Join([]string{
		cell(id, idWidth),
		cell(title, titleWidth),
		cell(model, modelWidth),
		cell(turns, 5),
		cell(updated, len(time.DateTime)),
		preview,
	}, "  ")
}

// cell truncates s to width display cells and pads it.
func cell(s string, width int) string {
	s = ansi.Truncate(s, width, "…")
	if pad := width - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// Transcript writes a session's turns with role labels.
func Transcript(w io.Writer, theme *Theme, turns []message.Turn) error {
	user := lipgloss.NewStyle().Foreground(theme.Accent).Bold(true)
	assistant := lipgloss.NewStyle().Foreground(theme.Success).Bold(true)

	for _, t := range turns {
		label := user.Render("analyst")
		if t.Role == message.RoleAssistant {
			label = assistant.Render("assistant")
		}
		if _, err := fmt.Fprintf(w, "%s  %s\n%s\n\n", label, t.Timestamp.Local().Format(time.Kitchen), t.Content); err != nil {
			return err
		}
	}
	return nil
}
