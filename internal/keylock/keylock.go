// Package keylock serializes work per key while letting distinct keys run in
// parallel.
package keylock

import "sync"

// Locker hands out one mutex per key. Entries are reference counted and
// removed when no goroutine holds or waits on them.
type Locker struct {
	global sync.RWMutex
	mu     sync.Mutex
	keys   map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New creates an empty Locker.
func New() *Locker {
	return &Locker{keys: make(map[string]*entry)}
}

// Lock acquires the lock for key and returns its release function. Holders of
// different keys never block each other, but all of them block LockAll.
func (l *Locker) Lock(key string) (unlock func()) {
	l.global.RLock()

	l.mu.Lock()
	e, ok := l.keys[key]
	if !ok {
		e = &entry{}
		l.keys[key] = e
	}
	e.refs++
	l.mu.Unlock()

	e.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Unlock()

			l.mu.Lock()
			e.refs--
			if e.refs == 0 {
				delete(l.keys, key)
			}
			l.mu.Unlock()

			l.global.RUnlock()
		})
	}
}

// LockAll waits for every per-key holder to finish and blocks new ones until
// the returned function is called.
func (l *Locker) LockAll() (unlock func()) {
	l.global.Lock()

	var once sync.Once
	return func() {
		once.Do(l.global.Unlock)
	}
}

// Len returns the number of keys currently held or awaited.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.keys)
}
