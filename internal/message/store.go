package message

import (
	"context"
)

// Store defines the interface for turn log persistence.
//
// Logs are keyed by session id and created lazily on first append. Reading a
// log that does not exist yields an empty slice, never an error.
type Store interface {
	// Append adds turns to the end of the session's log. All turns in one call
	// become visible together or not at all.
	Append(ctx context.Context, sessionID string, turns ...Turn) error

	// List returns the session's turns in append order.
	List(ctx context.Context, sessionID string) ([]Turn, error)

	// Clear deletes the session's log.
	Clear(ctx context.Context, sessionID string) error

	// ClearAll deletes every session's log.
	ClearAll(ctx context.Context) error

	// Dump returns every turn of every session in global append order.
	Dump(ctx context.Context) ([]Record, error)
}

// Record is a turn tagged with the session it belongs to.
type Record struct {
	SessionID string
	Turn
}
