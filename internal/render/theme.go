// Package render formats chat output for the terminal.
package render

import (
	"fmt"
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Theme is the palette used for terminal output.
type Theme struct {
	Primary   color.Color
	Secondary color.Color
	Accent    color.Color
	FgBase    color.Color
	FgMuted   color.Color
	FgSubtle  color.Color
	Success   color.Color
	Error     color.Color
	IsDark    bool
}

// DefaultTheme returns the dark palette.
func DefaultTheme() *Theme {
	return &Theme{
		IsDark:    true,
		Primary:   colorful.MustParseHex("#61afef"),
		Secondary: colorful.MustParseHex("#56b6c2"),
		Accent:    colorful.MustParseHex("#c678dd"),
		FgBase:    colorful.MustParseHex("#abb2bf"),
		FgMuted:   colorful.MustParseHex("#7f848e"),
		FgSubtle:  colorful.MustParseHex("#5c6370"),
		Success:   colorful.MustParseHex("#98c379"),
		Error:     colorful.MustParseHex("#e06c75"),
	}
}

// LightTheme returns a palette readable on light backgrounds.
func LightTheme() *Theme {
	return &Theme{
		Primary:   colorful.MustParseHex("#0550ae"),
		Secondary: colorful.MustParseHex("#0a7d8c"),
		Accent:    colorful.MustParseHex("#8250df"),
		FgBase:    colorful.MustParseHex("#24292f"),
		FgMuted:   colorful.MustParseHex("#57606a"),
		FgSubtle:  colorful.MustParseHex("#8c959f"),
		Success:   colorful.MustParseHex("#1a7f37"),
		Error:     colorful.MustParseHex("#cf222e"),
	}
}

// colorToHex converts a color.Color to hex string.
func colorToHex(c color.Color) string {
	r, g, b, _ := c.RGBA()
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}
