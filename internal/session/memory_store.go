package session

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map.
type MemoryStore struct {
	sessions map[string]*memorySession
	seq      int64
	mu       sync.RWMutex
}

type memorySession struct {
	Session
	seq int64
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*memorySession),
	}
}

// Create persists a new session.
func (s *MemoryStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	s.sessions[sess.ID] = &memorySession{Session: *sess, seq: s.seq}
	return nil
}

// Get retrieves a session by ID.
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ms, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess := ms.Session
	return &sess, nil
}

// List returns all sessions, most recently active first.
func (s *MemoryStore) List(_ context.Context) ([]*Session, error) {
	s.mu.RLock()
	all := make([]*memorySession, 0, len(s.sessions))
	for _, ms := range s.sessions {
		copied := *ms
		all = append(all, &copied)
	}
	s.mu.RUnlock()

	slices.SortFunc(all, func(a, b *memorySession) int {
		if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.seq, b.seq)
	})

	sessions := make([]*Session, len(all))
	for i, ms := range all {
		sessions[i] = &ms.Session
	}
	return sessions, nil
}

// UpdateTitle sets the title of a session.
func (s *MemoryStore) UpdateTitle(_ context.Context, id, title string) error {
	return s.update(id, func(sess *Session) { sess.Title = title })
}

// UpdateModel sets the model of a session.
func (s *MemoryStore) UpdateModel(_ context.Context, id, model string) error {
	return s.update(id, func(sess *Session) { sess.Model = model })
}

// Touch moves UpdatedAt forward.
func (s *MemoryStore) Touch(_ context.Context, id string, at time.Time) error {
	err := s.update(id, func(sess *Session) {
		if at.After(sess.UpdatedAt) {
			sess.UpdatedAt = at
		}
	})
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Delete removes a session by ID.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// DeleteAll removes every session.
func (s *MemoryStore) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]*memorySession)
	return nil
}

func (s *MemoryStore) update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ms, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	fn(&ms.Session)
	return nil
}
