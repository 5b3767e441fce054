package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/guilhermegouw/socchat/internal/message"
	"github.com/guilhermegouw/socchat/internal/session"
)

// Summary is a session as shown in a session list.
type Summary struct {
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ID            string
	Title         string
	Model         string
	Preview       string
	ExchangeCount int
}

// History is the visible conversation of one session. Session is nil when
// the id is not registered.
type History struct {
	Session   *session.Session
	SessionID string
	Turns     []message.Turn
	Exchanges int
}

// NewSession registers an empty session.
func (s *Service) NewSession(ctx context.Context, model, title string) (*session.Session, error) {
	sess, err := s.sessions.Create(ctx, model, title)
	if err != nil {
		return nil, storeFailed("new session", err)
	}
	return sess, nil
}

// Sessions lists every session, most recently active first.
func (s *Service) Sessions(ctx context.Context) ([]Summary, error) {
	const op = "list sessions"

	sessions, err := s.sessions.List(ctx)
	if err != nil {
		return nil, storeFailed(op, err)
	}

	summaries := make([]Summary, 0, len(sessions))
	for _, sess := range sessions {
		turns, err := s.messages.List(ctx, sess.ID)
		if err != nil {
			return nil, storeFailed(op, err)
		}
		summaries = append(summaries, Summary{
			ID:            sess.ID,
			Title:         sess.Title,
			Model:         sess.Model,
			CreatedAt:     sess.CreatedAt,
			UpdatedAt:     sess.UpdatedAt,
			Preview:       message.Preview(turns),
			ExchangeCount: message.ExchangeCount(turns),
		})
	}
	return summaries, nil
}

// History returns the user and assistant turns of a session. Unknown ids
// yield an empty history rather than an error.
func (s *Service) History(ctx context.Context, id string) (*History, error) {
	const op = "session history"

	sess, err := s.sessions.Get(ctx, id)
	if err != nil && !errors.Is(err, session.ErrNotFound) {
		return nil, storeFailed(op, err)
	}

	turns, err := s.messages.List(ctx, id)
	if err != nil {
		return nil, storeFailed(op, err)
	}

	visible := make([]message.Turn, 0, len(turns))
	for _, t := range turns {
		if t.IsConversational() {
			visible = append(visible, t)
		}
	}

	return &History{
		Session:   sess,
		SessionID: id,
		Turns:     visible,
		Exchanges: len(visible) / 2,
	}, nil
}

// Rename changes a session's title.
func (s *Service) Rename(ctx context.Context, id, title string) error {
	const op = "rename session"

	title = strings.TrimSpace(title)
	if title == "" {
		return invalid(op, ErrEmptyTitle)
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.sessions.Rename(ctx, id, title); err != nil {
		return storeFailed(op, err)
	}
	return nil
}

// Delete removes a session and its history.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.sessions.Delete(ctx, id); err != nil {
		return storeFailed("delete session", err)
	}
	return nil
}

// Clear empties a session's history and keeps its metadata.
func (s *Service) Clear(ctx context.Context, id string) error {
	unlock := s.locks.Lock(id)
	defer unlock()

	if err := s.messages.Clear(ctx, id); err != nil {
		return storeFailed("clear session", err)
	}
	return nil
}

// ClearAll removes every session and every history. It waits for in-flight
// exchanges to finish.
func (s *Service) ClearAll(ctx context.Context) error {
	unlock := s.locks.LockAll()
	defer unlock()

	if err := s.sessions.ClearAll(ctx); err != nil {
		return storeFailed("clear all sessions", err)
	}
	return nil
}

// DumpAll returns every user and assistant turn of every session in append
// order.
func (s *Service) DumpAll(ctx context.Context) ([]message.Record, error) {
	unlock := s.locks.LockAll()
	defer unlock()

	records, err := s.messages.Dump(ctx)
	if err != nil {
		return nil, storeFailed("dump messages", err)
	}

	visible := records[:0]
	for _, r := range records {
		if r.IsConversational() {
			visible = append(visible, r)
		}
	}
	return visible, nil
}
