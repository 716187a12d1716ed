package authclient

import (
	"context"
	"sync"
)

var _ SessionStore = (*MemorySessionStore)(nil)

// MemorySessionStore keeps the session in process memory. It backs tests and
// hosts that manage their own persistence.
type MemorySessionStore struct {
	mu      sync.RWMutex
	session *Session
}

// NewMemorySessionStore returns an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

// Load returns a copy of the stored session, or (nil, nil) when empty.
func (s *MemorySessionStore) Load(_ context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, nil
	}
	copied := *s.session
	return &copied, nil
}

// Save overwrites the stored session.
func (s *MemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := session
	s.session = &copied
	return nil
}

// Clear removes the stored session. Clearing an empty store is a no-op.
func (s *MemorySessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
