package llm

import (
	"context"
	"fmt"

	"charm.land/fantasy"

	"github.com/guilhermegouw/socchat/internal/message"
)

// ModelSource resolves a model reference to a fantasy language model.
type ModelSource interface {
	LanguageModel(ctx context.Context, ref string) (fantasy.LanguageModel, error)
}

// FantasyGenerator implements Generator on top of fantasy language models.
type FantasyGenerator struct {
	models ModelSource
}

// NewFantasyGenerator creates a Generator backed by models.
func NewFantasyGenerator(models ModelSource) *FantasyGenerator {
	return &FantasyGenerator{models: models}
}

// Generate runs one non-streaming completion and applies stop sequences to
// the returned text.
func (g *FantasyGenerator) Generate(ctx context.Context, req Request) (string, error) {
	lm, err := g.models.LanguageModel(ctx, req.Model)
	if err != nil {
		return "", err
	}

	call := fantasy.Call{
		Prompt:      buildPrompt(req.Messages),
		Temperature: req.Options.Temperature,
		TopP:        req.Options.TopP,
	}
	if req.Options.MaxTokens > 0 {
		maxTokens := int64(req.Options.MaxTokens)
		call.MaxOutputTokens = &maxTokens
	}

	resp, err := lm.Generate(ctx, call)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", req.Model, err)
	}

	return cutAtStop(resp.Content.Text(), req.Options.Stop), nil
}

// buildPrompt converts turns to fantasy messages. Only a leading system turn
// is sent; system turns inside the history are dropped.
func buildPrompt(turns []message.Turn) fantasy.Prompt {
	prompt := make(fantasy.Prompt, 0, len(turns))
	for i, t := range turns {
		switch t.Role {
		case message.RoleSystem:
			if i == 0 {
				prompt = append(prompt, fantasy.NewSystemMessage(t.Content))
			}
		case message.RoleUser:
			prompt = append(prompt, fantasy.NewUserMessage(t.Content))
		case message.RoleAssistant:
			prompt = append(prompt, fantasy.Message{
				Role:    fantasy.MessageRoleAssistant,
				Content: []fantasy.MessagePart{fantasy.TextPart{Text: t.Content}},
			})
		}
	}
	return prompt
}
