package tui

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/guilhermegouw/socchat/internal/render"
)

// Styles are the lipgloss styles derived from a render theme.
type Styles struct {
	Text        lipgloss.Style
	Muted       lipgloss.Style
	Subtle      lipgloss.Style
	Primary     lipgloss.Style
	Secondary   lipgloss.Style
	Accent      lipgloss.Style
	Success     lipgloss.Style
	Error       lipgloss.Style
	Border      color.Color
	BorderFocus color.Color
}

// NewStyles builds the styles for theme. A nil theme selects the dark palette.
func NewStyles(theme *render.Theme) Styles {
	if theme == nil {
		theme = render.DefaultTheme()
	}
	base := lipgloss.NewStyle()
	return Styles{
		Text:        base.Foreground(theme.FgBase),
		Muted:       base.Foreground(theme.FgMuted),
		Subtle:      base.Foreground(theme.FgSubtle),
		Primary:     base.Foreground(theme.Primary),
		Secondary:   base.Foreground(theme.Secondary),
		Accent:      base.Foreground(theme.Accent),
		Success:     base.Foreground(theme.Success),
		Error:       base.Foreground(theme.Error),
		Border:      theme.FgSubtle,
		BorderFocus: theme.Primary,
	}
}
