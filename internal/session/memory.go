package session

import (
	"context"
	"sync"
)

// MemoryStore keeps sessions in process memory. It backs single-node
// deployments without Redis and the tests.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (m *MemoryStore) Put(_ context.Context, id string, sess Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[id] = sess
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (Session, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok, nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
