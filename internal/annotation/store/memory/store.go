package memory

import (
	"context"
	"sort"
	"sync"

	"vcc/internal/annotation/models"
	"vcc/pkg/domain"
)

// Store keeps comments per application in insertion order.
type Store struct {
	mu        sync.RWMutex
	byProfile map[domain.ProfileID][]models.Comment
}

func New() *Store {
	return &Store{byProfile: make(map[domain.ProfileID][]models.Comment)}
}

func (s *Store) Append(_ context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byProfile[c.ProfileID] = append(s.byProfile[c.ProfileID], *c)
	return nil
}

// ListByProfile returns copies ordered by creation time, then id.
func (s *Store) ListByProfile(_ context.Context, id domain.ProfileID) ([]*models.Comment, error) {
	s.mu.RLock()
	stored := s.byProfile[id]
	out := make([]*models.Comment, 0, len(stored))
	for i := range stored {
		c := stored[i]
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
