// Package prompt assembles the messages sent to the model on each exchange.
package prompt

import (
	"github.com/guilhermegouw/socchat/internal/message"
)

// DefaultWindowSize is the number of history turns kept in the context window.
const DefaultWindowSize = 10

// Window returns the persona as a system turn followed by the last size turns
// of history in their original order. The persona is not counted toward size.
// The returned slice never aliases turns.
func Window(turns []message.Turn, persona string, size int) []message.Turn {
	keep := min(max(size, 0), len(turns))

	window := make([]message.Turn, 0, keep+1)
	window = append(window, message.Turn{Role: message.RoleSystem, Content: persona})
	return append(window, turns[len(turns)-keep:]...)
}
