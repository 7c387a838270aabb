package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"vcc/internal/profile/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/sentinel"
)

// Store keeps profiles in process memory. Execute holds the write lock across
// validate and mutate, so concurrent transitions are serialized and the loser
// sees the winner's status.
type Store struct {
	mu      sync.RWMutex
	byID    map[domain.ProfileID]*models.Profile
	byEmail map[string]domain.ProfileID
}

func New() *Store {
	return &Store{
		byID:    make(map[domain.ProfileID]*models.Profile),
		byEmail: make(map[string]domain.ProfileID),
	}
}

// Create inserts p, failing with sentinel.ErrConflict when the email is taken.
func (s *Store) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byEmail[p.Email]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[p.ID]; exists {
		return sentinel.ErrConflict
	}
	s.byID[p.ID] = p.Clone()
	s.byEmail[p.Email] = p.ID
	return nil
}

func (s *Store) FindByID(_ context.Context, id domain.ProfileID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[email]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return s.byID[id].Clone(), nil
}

func (s *Store) FindByVerificationTokenHash(_ context.Context, hash string) (*models.Profile, error) {
	if hash == "" {
		return nil, sentinel.ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.byID {
		if p.VerificationTokenHash == hash {
			return p.Clone(), nil
		}
	}
	return nil, sentinel.ErrNotFound
}

// Execute loads the profile, runs validate then mutate on a copy, and
// commits the copy with a bumped version. A validate error aborts without
// writing and is returned unchanged.
func (s *Store) Execute(_ context.Context, id domain.ProfileID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	next := current.Clone()
	if err := validate(next); err != nil {
		return nil, err
	}
	mutate(next)
	next.Version = current.Version + 1
	s.byID[id] = next
	return next.Clone(), nil
}

// EmailsByRole lists the addresses of principals holding role, sorted.
func (s *Store) EmailsByRole(_ context.Context, role domain.Role) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []string
	for _, p := range s.byID {
		if p.Roles.Has(role) {
			out = append(out, p.Email)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ListByStatus returns applications in status, oldest submission first.
func (s *Store) ListByStatus(_ context.Context, status models.Status, limit int) ([]*models.Profile, error) {
	s.mu.RLock()
	matched := s.collect(func(p *models.Profile) bool { return p.Status == status })
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := submittedAt(matched[i]), submittedAt(matched[j])
		if ti.Equal(tj) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return ti.Before(tj)
	})
	return truncate(matched, limit), nil
}

// ListApproved returns approved profiles newest first, strictly after cursor when given.
func (s *Store) ListApproved(_ context.Context, limit int, after *models.Cursor) ([]*models.Profile, error) {
	s.mu.RLock()
	matched := s.collect(func(p *models.Profile) bool {
		if p.Status != models.StatusApproved {
			return false
		}
		if after == nil {
			return true
		}
		return before(p, after)
	})
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := submittedAt(matched[i]), submittedAt(matched[j])
		if ti.Equal(tj) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return ti.After(tj)
	})
	return truncate(matched, limit), nil
}

// ListFeatured returns approved profiles by most recent review first.
func (s *Store) ListFeatured(_ context.Context, limit int) ([]*models.Profile, error) {
	s.mu.RLock()
	matched := s.collect(func(p *models.Profile) bool { return p.Status == models.StatusApproved })
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		ri, rj := matched[i].ReviewedAt, matched[j].ReviewedAt
		switch {
		case ri == nil || rj == nil:
			if ri == nil && rj == nil {
				return matched[i].ID.String() > matched[j].ID.String()
			}
			return rj == nil
		case ri.Equal(*rj):
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return ri.After(*rj)
	})
	return truncate(matched, limit), nil
}

func (s *Store) collect(keep func(*models.Profile) bool) []*models.Profile {
	var out []*models.Profile
	for _, p := range s.byID {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

// before reports whether p sorts after the cursor in descending order.
func before(p *models.Profile, c *models.Cursor) bool {
	t := submittedAt(p)
	if t.Equal(c.SubmittedAt) {
		return p.ID.String() < c.ID.String()
	}
	return t.Before(c.SubmittedAt)
}

func submittedAt(p *models.Profile) time.Time {
	if p.SubmittedAt != nil {
		return *p.SubmittedAt
	}
	return p.CreatedAt
}

func truncate(ps []*models.Profile, limit int) []*models.Profile {
	if limit > 0 && len(ps) > limit {
		return ps[:limit]
	}
	return ps
}
