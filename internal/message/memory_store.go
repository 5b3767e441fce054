package message

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
)

// MemoryStore implements Store with an in-process map. It is used by tests
// and by `serve --memory`.
type MemoryStore struct {
	logs map[string][]memoryTurn
	seq  int64
	mu   sync.RWMutex
}

type memoryTurn struct {
	seq int64
	Turn
}

// NewMemoryStore creates an empty in-memory message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		logs: make(map[string][]memoryTurn),
	}
}

// Append adds turns to the session's log.
func (s *MemoryStore) Append(_ context.Context, sessionID string, turns ...Turn) error {
	for _, t := range turns {
		if !t.Role.Valid() {
			return fmt.Errorf("appending turns: unknown role %q", t.Role)
		}
	}
	if len(turns) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range turns {
		s.seq++
		s.logs[sessionID] = append(s.logs[sessionID], memoryTurn{seq: s.seq, Turn: t})
	}
	return nil
}

// List returns a copy of the session's turns in append order.
func (s *MemoryStore) List(_ context.Context, sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.logs[sessionID]
	turns := make([]Turn, len(log))
	for i, mt := range log {
		turns[i] = mt.Turn
	}
	return turns, nil
}

// Clear deletes the session's log.
func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sessionID)
	return nil
}

// ClearAll deletes every session's log.
func (s *MemoryStore) ClearAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = make(map[string][]memoryTurn)
	return nil
}

// Dump returns every turn of every session in global append order.
func (s *MemoryStore) Dump(_ context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type seqRecord struct {
		seq int64
		Record
	}
	var all []seqRecord
	for id, log := range s.logs {
		for _, mt := range log {
			all = append(all, seqRecord{seq: mt.seq, Record: Record{SessionID: id, Turn: mt.Turn}})
		}
	}
	slices.SortFunc(all, func(a, b seqRecord) int { return cmp.Compare(a.seq, b.seq) })

	records := make([]Record, len(all))
	for i, r := range all {
		records[i] = r.Record
	}
	return records, nil
}
