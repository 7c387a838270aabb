package session

import (
	"context"
	"sync"

	"vcc/internal/auth/models"
	"vcc/pkg/platform/sentinel"
)

// InMemorySessionStore keeps sessions keyed by token hash.
type InMemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

func New() *InMemorySessionStore {
	return &InMemorySessionStore{sessions: make(map[string]*models.Session)}
}

func (s *InMemorySessionStore) Create(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.TokenHash]; ok {
		return sentinel.ErrConflict
	}
	stored := *session
	s.sessions[session.TokenHash] = &stored
	return nil
}

func (s *InMemorySessionStore) FindByTokenHash(_ context.Context, hash string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[hash]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := *session
	return &out, nil
}

func (s *InMemorySessionStore) DeleteByTokenHash(_ context.Context, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[hash]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, hash)
	return nil
}
