package session

import (
	"context"
	"sync"
	"time"

	"github.com/Digital-Creators-Team/velvet-slots/engine"
)

// MemoryStore keeps session state in process memory. It backs tests
// and single-node development runs; production uses RedisStore.
type MemoryStore struct {
	mu     sync.Mutex
	states map[string]*State
	leases map[string]time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		states: make(map[string]*State),
		leases: make(map[string]time.Time),
	}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st, ok := m.states[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *st
	cp.Bonus.Sticky = append([]engine.StickyFrame(nil), st.Bonus.Sticky...)
	return &cp, nil
}

func (m *MemoryStore) Put(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cp := *state
	cp.UpdatedAt = time.Now().UTC()
	m.states[state.SessionID] = &cp
	return nil
}

func (m *MemoryStore) Update(_ context.Context, state *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.states[state.SessionID]
	if !ok {
		return ErrNotFound
	}
	if cur.Revision != state.Revision {
		return ErrRevisionConflict
	}
	cp := *state
	cp.Revision++
	cp.UpdatedAt = time.Now().UTC()
	m.states[state.SessionID] = &cp
	state.Revision = cp.Revision
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, sessionID)
	return nil
}

func (m *MemoryStore) Acquire(_ context.Context, sessionID string, ttl time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if until, held := m.leases[sessionID]; held && time.Now().Before(until) {
		return nil, ErrLocked
	}
	m.leases[sessionID] = time.Now().Add(ttl)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.leases, sessionID)
	}, nil
}
