package session

import (
	"context"
	"sync"
	"time"
)

type memoryRecord struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore is a process-local Store for tests and single-process
// development. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]memoryRecord
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memoryRecord)}
}

func (s *MemoryStore) Create(_ context.Context, key string, userID uint, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[key] = memoryRecord{userID: userID, expiresAt: expiresAt}
	return nil
}

func (s *MemoryStore) Lookup(_ context.Context, key string) (uint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.sessions[key]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !time.Now().Before(rec.expiresAt) {
		delete(s.sessions, key)
		return 0, ErrSessionNotFound
	}
	return rec.userID, nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
	return nil
}

// Len reports the number of records held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
