package message

import (
	"context"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/guilhermegouw/socchat/internal/events"
	"github.com/guilhermegouw/socchat/internal/pubsub"
)

const (
	// PreviewLength is the number of characters kept in a session preview.
	PreviewLength = 50

	// EmptyPreview is the preview shown for sessions with no conversation.
	EmptyPreview = "Empty chat"

	previewEllipsis = "..."
)

// Service manages per-session turn logs with pub/sub event publishing.
type Service struct {
	store  Store
	broker pubsub.Publisher[events.SessionEvent]
}

// NewService creates a new message service. broker may be nil.
func NewService(store Store, broker pubsub.Publisher[events.SessionEvent]) *Service {
	return &Service{
		store:  store,
		broker: broker,
	}
}

// Append adds a single turn stamped with the current time.
func (s *Service) Append(ctx context.Context, sessionID string, role Role, content string) (Turn, error) {
	turn := NewTurn(role, content)
	if err := s.store.Append(ctx, sessionID, turn); err != nil {
		return Turn{}, err
	}
	s.publish(sessionID, turn)
	return turn, nil
}

// AppendExchange records a user turn and the assistant's reply together.
// Either both turns become visible or neither does.
func (s *Service) AppendExchange(ctx context.Context, sessionID, user, assistant string) error {
	userTurn := NewTurn(RoleUser, user)
	assistantTurn := NewTurn(RoleAssistant, assistant)
	if err := s.store.Append(ctx, sessionID, userTurn, assistantTurn); err != nil {
		return err
	}
	s.publish(sessionID, userTurn)
	s.publish(sessionID, assistantTurn)
	return nil
}

// List returns the session's turns in append order.
func (s *Service) List(ctx context.Context, sessionID string) ([]Turn, error) {
	return s.store.List(ctx, sessionID)
}

// Clear empties the session's log. The next append starts a fresh log.
func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if err := s.store.Clear(ctx, sessionID); err != nil {
		return err
	}
	if s.broker != nil {
		s.broker.Publish(pubsub.EventUpdated, events.NewSessionClearedEvent(sessionID))
	}
	return nil
}

// ClearAll removes every session's log.
func (s *Service) ClearAll(ctx context.Context) error {
	return s.store.ClearAll(ctx)
}

// Dump returns every turn across all sessions in append order.
func (s *Service) Dump(ctx context.Context) ([]Record, error) {
	return s.store.Dump(ctx)
}

// Preview returns the opening of the session's first conversational turn.
func (s *Service) Preview(ctx context.Context, sessionID string) (string, error) {
	turns, err := s.store.List(ctx, sessionID)
	if err != nil {
		return "", err
	}
	return Preview(turns), nil
}

// ExchangeCount returns the number of complete user/assistant pairs.
func (s *Service) ExchangeCount(ctx context.Context, sessionID string) (int, error) {
	turns, err := s.store.List(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	return ExchangeCount(turns), nil
}

func (s *Service) publish(sessionID string, t Turn) {
	if s.broker != nil {
		s.broker.Publish(pubsub.EventProgress,
			events.NewSessionMessageAddedEvent(sessionID, string(t.Role), t.Content))
	}
}

// Preview returns the first user or assistant turn truncated to
// PreviewLength characters, or EmptyPreview.
func Preview(turns []Turn) string {
	for _, t := range turns {
		if t.IsConversational() {
			return truncate(t.Content, PreviewLength)
		}
	}
	return EmptyPreview
}

// ExchangeCount counts whole exchanges; a trailing unanswered turn is ignored.
func ExchangeCount(turns []Turn) int {
	return len(turns) / 2
}

// truncate cuts s to n grapheme clusters, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if uniseg.GraphemeClusterCount(s) <= n {
		return s
	}

	var b strings.Builder
	g := uniseg.NewGraphemes(s)
	for i := 0; i < n && g.Next(); i++ {
		b.WriteString(g.Str())
	}
	b.WriteString(previewEllipsis)
	return b.String()
}
