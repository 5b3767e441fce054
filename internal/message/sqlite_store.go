package message

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/guilhermegouw/socchat/internal/db"
)

const (
	insertTurnSQL = `INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	listTurnsSQL  = `SELECT role, content, created_at FROM messages WHERE session_id = ? ORDER BY seq ASC`
	clearLogSQL   = `DELETE FROM messages WHERE session_id = ?`
	clearAllSQL   = `DELETE FROM messages`
	dumpSQL       = `SELECT session_id, role, content, created_at FROM messages ORDER BY seq ASC`
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed message store.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: conn}
}

// Append adds turns to the session's log inside a single transaction.
func (s *SQLiteStore) Append(ctx context.Context, sessionID string, turns ...Turn) error {
	if len(turns) == 0 {
		return nil
	}

	err := db.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertTurnSQL)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, t := range turns {
			if !t.Role.Valid() {
				return fmt.Errorf("unknown role %q", t.Role)
			}
			if _, err := stmt.ExecContext(ctx, sessionID, string(t.Role), t.Content, t.Timestamp.UnixMilli()); err != nil {
				return fmt.Errorf("inserting turn: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("appending turns: %w", err)
	}

	return nil
}

// List returns the session's turns in append order.
func (s *SQLiteStore) List(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.conn.QueryContext(ctx, listTurnsSQL, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing turns: %w", err)
	}
	defer rows.Close()

	turns := []Turn{}
	for rows.Next() {
		var (
			role      string
			content   string
			createdAt int64
		)
		if err := rows.Scan(&role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		r, err := ParseRole(role)
		if err != nil {
			return nil, err
		}
		turns = append(turns, Turn{
			Role:      r,
			Content:   content,
			Timestamp: time.UnixMilli(createdAt),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return turns, nil
}

// Clear deletes the session's log.
func (s *SQLiteStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.conn.ExecContext(ctx, clearLogSQL, sessionID); err != nil {
		return fmt.Errorf("clearing session messages: %w", err)
	}
	return nil
}

// ClearAll deletes every session's log.
func (s *SQLiteStore) ClearAll(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, clearAllSQL); err != nil {
		return fmt.Errorf("clearing all messages: %w", err)
	}
	return nil
}

// Dump returns every turn of every session in global append order.
func (s *SQLiteStore) Dump(ctx context.Context) ([]Record, error) {
	rows, err := s.conn.QueryContext(ctx, dumpSQL)
	if err != nil {
		return nil, fmt.Errorf("dumping turns: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			rec       Record
			role      string
			createdAt int64
		)
		if err := rows.Scan(&rec.SessionID, &role, &rec.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if rec.Role, err = ParseRole(role); err != nil {
			return nil, err
		}
		rec.Timestamp = time.UnixMilli(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating turns: %w", err)
	}

	return records, nil
}
