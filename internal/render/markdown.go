package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/muesli/termenv"
)

// DefaultWidth is the wrap width used when the terminal width is unknown.
const DefaultWidth = 100

// MarkdownRenderer renders replies as styled terminal markdown.
type MarkdownRenderer struct {
	renderer    *glamour.TermRenderer
	theme       *Theme
	profile     termenv.Profile
	cachedWidth int
	mu          sync.RWMutex
}

// NewMarkdownRenderer creates a renderer for the given theme and color
// profile.
func NewMarkdownRenderer(theme *Theme, profile termenv.Profile) *MarkdownRenderer {
	return &MarkdownRenderer{theme: theme, profile: profile}
}

// DetectTheme picks a theme from the terminal background.
func DetectTheme() *Theme {
	if termenv.HasDarkBackground() {
		return DefaultTheme()
	}
	return LightTheme()
}

// Render renders markdown content to styled terminal output. On failure the
// content is returned unchanged along with the error.
func (m *MarkdownRenderer) Render(content string, width int) (string, error) {
	if content == "" {
		return "", nil
	}
	if width <= 0 {
		width = DefaultWidth
	}

	renderer, err := m.getRenderer(width)
	if err != nil {
		return content, err
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}

func (m *MarkdownRenderer) getRenderer(width int) (*glamour.TermRenderer, error) {
	m.mu.RLock()
	if m.renderer != nil && m.cachedWidth == width {
		defer m.mu.RUnlock()
		return m.renderer, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer != nil && m.cachedWidth == width {
		return m.renderer, nil
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStyles(m.buildStyle()),
		glamour.WithWordWrap(width),
		glamour.WithColorProfile(m.profile),
	)
	if err != nil {
		return nil, err
	}

	m.renderer = renderer
	m.cachedWidth = width
	return renderer, nil
}

// buildStyle creates a glamour style config from the theme.
func (m *MarkdownRenderer) buildStyle() ansi.StyleConfig {
	t := m.theme

	style := glamourstyles.LightStyleConfig
	if t.IsDark {
		style = glamourstyles.DarkStyleConfig
	}

	primary := colorToHex(t.Primary)
	secondary := colorToHex(t.Secondary)
	accent := colorToHex(t.Accent)
	muted := colorToHex(t.FgMuted)
	subtle := colorToHex(t.FgSubtle)

	style.H1.Color = stringPtr(accent)
	style.H1.Bold = boolPtr(true)
	style.H1.Prefix = ""
	style.H1.Suffix = ""
	style.H2.Color = stringPtr(primary)
	style.H2.Bold = boolPtr(true)
	style.H2.Prefix = ""
	style.H3.Color = stringPtr(secondary)
	style.H3.Bold = boolPtr(true)
	style.H3.Prefix = ""

	style.Code.Color = stringPtr(secondary)
	style.Link.Color = stringPtr(primary)
	style.Link.Underline = boolPtr(true)

	style.Item.BlockPrefix = "  "
	style.Enumeration.BlockPrefix = "  "

	style.BlockQuote.Color = stringPtr(muted)
	style.BlockQuote.Italic = boolPtr(true)
	style.HorizontalRule.Color = stringPtr(subtle)

	return style
}

func stringPtr(s string) *string { return &s }
func boolPtr(b bool) *bool       { return &b }
