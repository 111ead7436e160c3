package store

import (
	"context"
	"sync"
	"time"

	"cardtrack/internal/auth/models"
	"cardtrack/pkg/platform/sentinel"
)

// MemorySessionStore keeps sessions in memory. Expired sessions are treated
// as absent on read; there is no background sweeper.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]models.Session)}
}

func (s *MemorySessionStore) Save(_ context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *MemorySessionStore) Find(_ context.Context, id string) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok || time.Now().After(session.ExpiresAt) {
		return models.Session{}, sentinel.ErrNotFound
	}
	return session, nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

// Exists implements middleware.SessionChecker.
func (s *MemorySessionStore) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Find(ctx, id)
	if err != nil {
		return false, nil
	}
	return true, nil
}
