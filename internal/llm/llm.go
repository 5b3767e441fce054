// Package llm is the boundary to the generative model runtime.
package llm

import (
	"context"
	"strings"

	"github.com/guilhermegouw/socchat/internal/message"
)

// Options control a single generation.
type Options struct {
	Temperature *float64
	TopP        *float64
	Stop        []string
	MaxTokens   int
}

// Request is one generation call: the full prompt, first turn being the
// persona, and the model to run it on.
type Request struct {
	Model    string
	Messages []message.Turn
	Options  Options
}

// Generator produces the raw completion for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f GeneratorFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// cutAtStop truncates text at the earliest stop sequence.
func cutAtStop(text string, stops []string) string {
	cut := len(text)
	for _, stop := range stops {
		if stop == "" {
			continue
		}
		if i := strings.Index(text[:cut], stop); i >= 0 {
			cut = i
		}
	}
	return text[:cut]
}
