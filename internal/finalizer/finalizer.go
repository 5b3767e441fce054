// Package finalizer turns raw, token-capped model output into text that ends
// on a complete thought and fits the token budget.
package finalizer

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// CharsPerToken is the fixed ratio used to estimate token counts.
const CharsPerToken = 4

// danglingMarkers are trailing fragments that signal a cut-off thought.
// Longer ellipses come first so "..." is not mistaken for "..".
var danglingMarkers = []string{
	"...", "..", "…",
	" -", " •", " □", " [", " (",
}

var bareListItem = regexp.MustCompile(`^\s*(\d+\.|\*|-|•)\s*$`)

// Finalize completes or truncates raw so that it does not end mid-sentence,
// mid-bracket or mid-list-item, and so that its estimated token count does
// not exceed maxTokens. It is pure and never lengthens its input.
func Finalize(raw string, maxTokens int) string {
	text := trimDanglingMarker(raw)
	text = completeSentence(text)
	text = enforceBudget(text, maxTokens)
	text = dropBareListItems(text)
	return strings.TrimSpace(text)
}

// trimDanglingMarker strips at most one trailing incomplete marker.
func trimDanglingMarker(text string) string {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	for _, marker := range danglingMarkers {
		if strings.HasSuffix(trimmed, marker) {
			return strings.TrimRightFunc(strings.TrimSuffix(trimmed, marker), unicode.IsSpace)
		}
		if trimmed == strings.TrimSpace(marker) {
			return ""
		}
	}
	return text
}

// completeSentence drops an unterminated final fragment when an earlier
// sentence boundary exists.
func completeSentence(text string) string {
	trimmed := strings.TrimRightFunc(text, unicode.IsSpace)
	if trimmed == "" || endsWithTerminal(trimmed) {
		return text
	}

	fragments := strings.Split(text, ".")
	if len(fragments) < 2 {
		return text
	}
	return strings.Join(fragments[:len(fragments)-1], ".") + "."
}

// enforceBudget cuts text to maxTokens*CharsPerToken characters, preferring a
// sentence boundary in the last fifth of the slice.
func enforceBudget(text string, maxTokens int) string {
	maxChars := max(maxTokens, 0) * CharsPerToken
	if utf8.RuneCountInString(text) <= maxChars {
		return text
	}

	slice := string([]rune(text)[:maxChars])

	lastPeriod := strings.LastIndex(slice, ".")
	if lastPeriod >= 0 && utf8.RuneCountInString(slice[:lastPeriod])*5 > maxChars*4 {
		return slice[:lastPeriod+1]
	}
	// No late boundary: fall back to the last complete sentence of the slice.
	// "Step 1. Contain the host. Step 2." at 3 tokens becomes "Step 1.", not
	// the raw "Step 1. Cont".
	return completeSentence(slice)
}

// dropBareListItems removes trailing lines that hold only a list marker.
func dropBareListItems(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for len(lines) > 0 && bareListItem.MatchString(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

func endsWithTerminal(text string) bool {
	switch text[len(text)-1] {
	case '.', '!', '?', ':', ';':
		return true
	default:
		return false
	}
}
