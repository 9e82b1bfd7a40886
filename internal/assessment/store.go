package assessment

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store holds live sessions. Implementations hand out copies: a caller
// mutates its copy and writes it back with Put.
type Store interface {
	// Get returns ErrSessionNotFound for an unknown or expired id.
	Get(ctx context.Context, id string) (*Session, error)
	// Put writes s only if the stored copy still has s.Version, then bumps
	// s.Version. A stale copy gets ErrVersionConflict.
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	Close() error
}

type memoryEntry struct {
	session  *Session
	lastSeen time.Time
}

// MemoryStore keeps sessions in process and evicts them after idleTimeout
// without activity.
type MemoryStore struct {
	mu          sync.RWMutex
	sessions    map[string]memoryEntry
	idleTimeout time.Duration
	now         func() time.Time
}

func NewMemoryStore(idleTimeout time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions:    make(map[string]memoryEntry),
		idleTimeout: idleTimeout,
		now:         time.Now,
	}
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[id]
	if !ok || m.expired(e) {
		return nil, ErrSessionNotFound
	}
	e.lastSeen = m.now()
	m.sessions[id] = e
	return e.session.Clone(), nil
}

func (m *MemoryStore) Put(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.sessions[s.ID]; ok && !m.expired(e) && e.session.Version != s.Version {
		return fmt.Errorf("put session %s: %w", s.ID, ErrVersionConflict)
	}
	s.Version++
	m.sessions[s.ID] = memoryEntry{session: s.Clone(), lastSeen: m.now()}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// Sweep drops idle sessions and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, e := range m.sessions {
		if m.expired(e) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}

// Len is the number of sessions held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) expired(e memoryEntry) bool {
	return m.idleTimeout > 0 && m.now().Sub(e.lastSeen) > m.idleTimeout
}
