package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/guilhermegouw/socchat/internal/db"
)

const (
	createSessionSQL = `INSERT INTO sessions (id, title, model, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	getSessionSQL    = `SELECT id, title, model, created_at, updated_at FROM sessions WHERE id = ?`
	listSessionsSQL  = `SELECT id, title, model, created_at, updated_at FROM sessions ORDER BY updated_at DESC, rowid ASC`
	updateTitleSQL   = `UPDATE sessions SET title = ? WHERE id = ?`
	updateModelSQL   = `UPDATE sessions SET model = ? WHERE id = ?`
	touchSessionSQL  = `UPDATE sessions SET updated_at = MAX(updated_at, ?) WHERE id = ?`
	deleteSessionSQL = `DELETE FROM sessions WHERE id = ?`
	deleteAllSQL     = `DELETE FROM sessions`
	purgeLogSQL      = `DELETE FROM messages WHERE session_id = ?`
	purgeLogsSQL     = `DELETE FROM messages`
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed session store.
func NewSQLiteStore(conn *sql.DB) *SQLiteStore {
	return &SQLiteStore{conn: conn}
}

// Create persists a new session.
func (s *SQLiteStore) Create(ctx context.Context, sess *Session) error {
	_, err := s.conn.ExecContext(ctx, createSessionSQL,
		sess.ID, sess.Title, sess.Model, sess.CreatedAt.UnixMilli(), sess.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Session, error) {
	sess, err := scanSession(s.conn.QueryRowContext(ctx, getSessionSQL, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return sess, nil
}

// List returns all sessions, most recently active first.
func (s *SQLiteStore) List(ctx context.Context) ([]*Session, error) {
	rows, err := s.conn.QueryContext(ctx, listSessionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	sessions := []*Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// UpdateTitle sets the title of a session.
func (s *SQLiteStore) UpdateTitle(ctx context.Context, id, title string) error {
	if err := s.updateOne(ctx, updateTitleSQL, title, id); err != nil {
		return fmt.Errorf("updating session title: %w", err)
	}
	return nil
}

// UpdateModel sets the model of a session.
func (s *SQLiteStore) UpdateModel(ctx context.Context, id, model string) error {
	if err := s.updateOne(ctx, updateModelSQL, model, id); err != nil {
		return fmt.Errorf("updating session model: %w", err)
	}
	return nil
}

// Touch moves UpdatedAt forward.
func (s *SQLiteStore) Touch(ctx context.Context, id string, at time.Time) error {
	if _, err := s.conn.ExecContext(ctx, touchSessionSQL, at.UnixMilli(), id); err != nil {
		return fmt.Errorf("touching session: %w", err)
	}
	return nil
}

// Delete removes a session by ID.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.conn.ExecContext(ctx, deleteSessionSQL, id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteAll removes every session.
func (s *SQLiteStore) DeleteAll(ctx context.Context) error {
	if _, err := s.conn.ExecContext(ctx, deleteAllSQL); err != nil {
		return fmt.Errorf("deleting all sessions: %w", err)
	}
	return nil
}

// Purge removes a session and its message log in one transaction.
func (s *SQLiteStore) Purge(ctx context.Context, id string) error {
	err := db.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteSessionSQL, id); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, purgeLogSQL, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("purging session: %w", err)
	}
	return nil
}

// PurgeAll removes every session and every message log in one transaction.
func (s *SQLiteStore) PurgeAll(ctx context.Context) error {
	err := db.WithTx(ctx, s.conn, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteAllSQL); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, purgeLogsSQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("purging all sessions: %w", err)
	}
	return nil
}

// updateOne runs an update that must hit exactly one row.
func (s *SQLiteStore) updateOne(ctx context.Context, query string, args ...any) error {
	res, err := s.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	var (
		sess      Session
		createdAt int64
		updatedAt int64
	)
	if err := row.Scan(&sess.ID, &sess.Title, &sess.Model, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	sess.CreatedAt = time.UnixMilli(createdAt)
	sess.UpdatedAt = time.UnixMilli(updatedAt)
	return &sess, nil
}
