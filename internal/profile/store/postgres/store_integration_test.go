//go:build integration

package postgres

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *Store
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = New(s.pg.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.pg.TruncateTables(context.Background(), "profiles"))
	s.now = time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) seed(email string, status models.Status, at time.Time) *models.Profile {
	p, err := models.NewProfile(domain.NewProfileID(), email, "hash", "Name", at)
	s.Require().NoError(err)
	if status != models.StatusNone {
		p.ApplySubmission(models.Application{
			SubmissionRole: "Developer",
			Skills:         []string{"go", "sql"},
			References:     []models.Reference{{Name: "Grace", Relationship: "mentor"}},
		}, "", at)
		if status != models.StatusPending {
			p.ApplyTransition(status, "", at)
		}
	}
	s.Require().NoError(s.store.Create(context.Background(), p))
	return p
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	created := s.seed("ada@example.com", models.StatusPending, s.now)

	got, err := s.store.FindByID(ctx, created.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", got.Email)
	s.Equal(models.StatusPending, got.Status)
	s.Equal([]string{"go", "sql"}, got.Skills)
	s.Require().Len(got.References, 1)
	s.Equal("mentor", got.References[0].Relationship)
	s.True(got.Roles.Has(domain.RoleMember))
	s.Require().NotNil(got.SubmittedAt)
	s.True(s.now.Equal(*got.SubmittedAt))

	err = s.store.Create(ctx, created)
	s.ErrorIs(err, sentinel.ErrConflict)

	_, err = s.store.FindByEmail(ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestExecuteRejectsStaleWriter() {
	ctx := context.Background()
	p := s.seed("ada@example.com", models.StatusPending, s.now)

	const writers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for range writers {
		wg.Go(func() {
			_, err := s.store.Execute(ctx, p.ID,
				func(cur *models.Profile) error { return cur.CanTransition(models.StatusPending, models.StatusReady) },
				func(cur *models.Profile) { cur.ApplyTransition(models.StatusReady, "", s.now.Add(time.Minute)) },
			)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, sentinel.ErrConflict), dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts++
			default:
				s.T().Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	s.Equal(1, wins)
	s.Equal(writers-1, conflicts)

	stored, err := s.store.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusReady, stored.Status)
	s.Equal(p.Version+1, stored.Version)
}

func (s *PostgresStoreSuite) TestListings() {
	ctx := context.Background()
	old := s.seed("old@example.com", models.StatusApproved, s.now.Add(-2*time.Hour))
	mid := s.seed("mid@example.com", models.StatusApproved, s.now.Add(-time.Hour))
	newest := s.seed("new@example.com", models.StatusApproved, s.now)
	pending := s.seed("pending@example.com", models.StatusPending, s.now)
	s.seed("account@example.com", models.StatusNone, s.now)

	page, err := s.store.ListApproved(ctx, 2, nil)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal(newest.ID, page[0].ID)
	s.Equal(mid.ID, page[1].ID)

	next, err := s.store.ListApproved(ctx, 2, &models.Cursor{SubmittedAt: *page[1].SubmittedAt, ID: page[1].ID})
	s.Require().NoError(err)
	s.Require().Len(next, 1)
	s.Equal(old.ID, next[0].ID)

	queue, err := s.store.ListByStatus(ctx, models.StatusPending, 10)
	s.Require().NoError(err)
	s.Require().Len(queue, 1)
	s.Equal(pending.ID, queue[0].ID)

	_, err = s.store.Execute(ctx, old.ID,
		func(*models.Profile) error { return nil },
		func(p *models.Profile) { p.ApplyTransition(models.StatusApproved, "", s.now.Add(time.Hour)) })
	s.Require().NoError(err)

	featured, err := s.store.ListFeatured(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(featured, 2)
	s.Equal(old.ID, featured[0].ID)
	s.Equal(newest.ID, featured[1].ID)
}

func (s *PostgresStoreSuite) TestEmailsByRole() {
	ctx := context.Background()
	p := s.seed("reviewer@example.com", models.StatusNone, s.now)
	s.seed("member@example.com", models.StatusNone, s.now)

	_, err := s.store.Execute(ctx, p.ID,
		func(*models.Profile) error { return nil },
		func(cur *models.Profile) { cur.ApplyRoles(cur.Roles.With(domain.RoleReviewer), s.now) })
	s.Require().NoError(err)

	emails, err := s.store.EmailsByRole(ctx, domain.RoleReviewer)
	s.Require().NoError(err)
	s.Equal([]string{"reviewer@example.com"}, emails)
}
