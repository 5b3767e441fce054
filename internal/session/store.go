// Package session provides the durable catalog of conversation sessions.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session is not found.
var ErrNotFound = errors.New("session not found")

// DefaultTitle is the title given to sessions created without one.
const DefaultTitle = "New Chat"

// Session is the metadata of one conversation.
type Session struct {
	ID        string
	Title     string
	Model     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store defines the interface for session persistence.
type Store interface {
	// Create persists a new session.
	Create(ctx context.Context, s *Session) error

	// Get retrieves a session by ID. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Session, error)

	// List returns all sessions ordered by UpdatedAt descending, ties in
	// creation order.
	List(ctx context.Context) ([]*Session, error)

	// UpdateTitle sets the title of a session. Returns ErrNotFound if absent.
	UpdateTitle(ctx context.Context, id, title string) error

	// UpdateModel sets the model of a session. Returns ErrNotFound if absent.
	UpdateModel(ctx context.Context, id, model string) error

	// Touch moves UpdatedAt forward to at. It never moves it backwards and
	// ignores unknown ids.
	Touch(ctx context.Context, id string, at time.Time) error

	// Delete removes a session by ID. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// DeleteAll removes every session.
	DeleteAll(ctx context.Context) error
}

// Purger is implemented by stores that share a database with the message log
// and can remove metadata and turns in a single transaction.
type Purger interface {
	// Purge removes a session and its message log.
	Purge(ctx context.Context, id string) error

	// PurgeAll removes every session and every message log.
	PurgeAll(ctx context.Context) error
}
