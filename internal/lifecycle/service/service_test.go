package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vcc/internal/auth/password"
	authservice "vcc/internal/auth/service"
	"vcc/internal/auth/store/session"
	"vcc/internal/lifecycle/metrics"
	"vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	profilestore "vcc/internal/profile/store/memory"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	auditmemory "vcc/pkg/platform/audit/store/memory"
	"vcc/pkg/requestcontext"
	"vcc/pkg/testutil"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.TransitionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.TransitionEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) all() []models.TransitionEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]models.TransitionEvent(nil), p.events...)
}

type LifecycleSuite struct {
	suite.Suite
	profiles  *profilestore.Store
	accounts  *authservice.Service
	auditor   *auditmemory.InMemoryStore
	published *recordingPublisher
	service   *Service
	ctx       context.Context
	now       time.Time

	reviewer *domain.Principal
	approver *domain.Principal
	admin    *domain.Principal
	member   *domain.Principal
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleSuite))
}

func (s *LifecycleSuite) SetupTest() {
	s.profiles = profilestore.New()
	s.auditor = auditmemory.NewInMemoryStore()
	s.published = &recordingPublisher{}
	s.now = time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(requestcontext.WithClientMetadata(context.Background(), "198.51.100.4", "test"), s.now)

	accounts, err := authservice.New(s.profiles, session.New(), password.NewHasher(4))
	s.Require().NoError(err)
	s.accounts = accounts

	svc, err := New(s.profiles, accounts,
		WithPublisher(s.published),
		WithAuditor(s.auditor),
		WithMetrics(metrics.New(prometheus.NewRegistry())),
	)
	s.Require().NoError(err)
	s.service = svc

	s.reviewer = testutil.PrincipalWith(domain.RoleReviewer)
	s.approver = testutil.PrincipalWith(domain.RoleApprover)
	s.admin = testutil.PrincipalWith(domain.RoleAdmin)
	s.member = testutil.PrincipalWith()
}

func submission(addr string) *models.SubmitApplicationRequest {
	return &models.SubmitApplicationRequest{
		DisplayName:     "Ada Lovelace",
		SubmissionRole:  "Developer",
		Email:           addr,
		Password:        "correct horse",
		ConfirmPassword: "correct horse",
		SkillsCSV:       "go, sql",
		References:      []models.ReferenceInput{{Name: ""}, {Name: "Grace", Relationship: "mentor"}},
	}
}

func (s *LifecycleSuite) submit(addr string) domain.ProfileID {
	res, err := s.service.Submit(s.ctx, nil, submission(addr))
	s.Require().NoError(err)
	return res.ProfileID
}

func (s *LifecycleSuite) TestSubmitCreatesPendingPrincipal() {
	res, err := s.service.Submit(s.ctx, nil, submission("Ada@Example.com"))
	s.Require().NoError(err)
	s.True(res.Created)
	s.Equal(profile.StatusPending, res.Status)

	stored, err := s.profiles.FindByID(s.ctx, res.ProfileID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", stored.Email)
	s.Equal([]domain.Role{domain.RoleMember}, stored.Roles.Roles())
	s.Nil(stored.ReviewedAt)
	s.Equal(s.now, *stored.SubmittedAt)
	s.Equal([]string{"go", "sql"}, stored.Skills)
	s.Require().Len(stored.References, 1)
	s.Equal("Grace", stored.References[0].Name)
	s.NotEmpty(stored.VerificationTokenHash)

	events := s.published.all()
	s.Require().Len(events, 1)
	s.Equal(profile.StatusNone, events[0].PreviousStatus)
	s.Equal(profile.StatusPending, events[0].NewStatus)
	s.Equal("Developer", events[0].ApplicantRole)
}

func (s *LifecycleSuite) TestHoneypotStoresNothing() {
	req := submission("bot@example.com")
	req.Company = "Spam Inc"

	res, err := s.service.Submit(s.ctx, nil, req)
	s.Require().NoError(err)
	s.True(res.Discarded)
	s.False(res.ProfileID.IsNil())
	s.Equal(profile.StatusPending, res.Status)

	_, err = s.profiles.FindByEmail(s.ctx, "bot@example.com")
	s.Error(err)
	_, err = s.profiles.FindByID(s.ctx, res.ProfileID)
	s.Error(err)
	s.Empty(s.published.all())
	s.Len(s.auditor.All(), 1)
	s.Equal(string(audit.EventHoneypotTriggered), s.auditor.All()[0].Action)
}

func (s *LifecycleSuite) TestSubmitValidation() {
	req := submission("ada@example.com")
	req.ConfirmPassword = "something else"
	req.DisplayName = ""

	_, err := s.service.Submit(s.ctx, nil, req)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	s.Len(dErrors.FieldErrors(err), 2)
}

func (s *LifecycleSuite) TestUpgradeInPlace() {
	registered, _, err := s.accounts.PrepareAccount(s.ctx, "ada@example.com", "correct horse", "Ada")
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Create(s.ctx, registered))

	s.Run("wrong password is refused", func() {
		req := submission("ada@example.com")
		req.Password, req.ConfirmPassword = "wrong horse", "wrong horse"
		_, err := s.service.Submit(s.ctx, nil, req)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	s.Run("matching password upgrades the account", func() {
		res, err := s.service.Submit(s.ctx, nil, submission("ada@example.com"))
		s.Require().NoError(err)
		s.False(res.Created)
		s.Equal(registered.ID, res.ProfileID)

		stored, err := s.profiles.FindByID(s.ctx, registered.ID)
		s.Require().NoError(err)
		s.Equal(profile.StatusPending, stored.Status)
		s.Equal("Ada Lovelace", stored.DisplayName)
		s.Equal(registered.PasswordHash, stored.PasswordHash)
	})

	s.Run("second submission is a duplicate", func() {
		_, err := s.service.Submit(s.ctx, nil, submission("ada@example.com"))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *LifecycleSuite) TestSubmitWithSession() {
	account, _, err := s.accounts.PrepareAccount(s.ctx, "grace@example.com", "correct horse", "Grace")
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Create(s.ctx, account))

	req := &models.SubmitApplicationRequest{DisplayName: "Grace Hopper", SubmissionRole: "Auditor"}
	res, err := s.service.Submit(s.ctx, account.Principal(), req)
	s.Require().NoError(err)
	s.Equal(account.ID, res.ProfileID)

	other := &models.SubmitApplicationRequest{DisplayName: "Grace", SubmissionRole: "Auditor", Email: "someone@example.com"}
	_, err = s.service.Submit(s.ctx, account.Principal(), other)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *LifecycleSuite) TestSubmitReadyApproveScenario() {
	id := s.submit("ada@example.com")

	ready, err := s.service.MarkReadyForApproval(s.ctx, s.reviewer, id, "  strong references ")
	s.Require().NoError(err)
	s.Equal(profile.StatusReady, ready.Status)
	s.Equal("strong references", ready.ReviewerNote)
	s.Require().NotNil(ready.ReviewedAt)

	approved, err := s.service.Approve(s.ctx, s.approver, id, "")
	s.Require().NoError(err)
	s.Equal(profile.StatusApproved, approved.Status)
	s.NotNil(approved.ReviewedAt)
	s.Empty(approved.ReviewerNote)

	events := s.published.all()
	s.Require().Len(events, 3)
	s.Equal(profile.StatusPending, events[1].PreviousStatus)
	s.Equal(profile.StatusReady, events[1].NewStatus)
	s.Equal(s.reviewer.ID.String(), events[1].ActorID)
	s.Equal(profile.StatusApproved, events[2].NewStatus)

	var actions []string
	for _, e := range s.auditor.All() {
		actions = append(actions, e.Action)
	}
	s.Contains(actions, string(audit.EventApplicationReady))
	s.Contains(actions, string(audit.EventApplicationApproved))
}

func (s *LifecycleSuite) TestNoBackwardTransitions() {
	id := s.submit("ada@example.com")

	_, err := s.service.Approve(s.ctx, s.approver, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "PENDING cannot jump to APPROVED")

	_, err = s.service.MarkReadyForApproval(s.ctx, s.reviewer, id, "")
	s.Require().NoError(err)
	_, err = s.service.MarkReadyForApproval(s.ctx, s.reviewer, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))

	_, err = s.service.Approve(s.ctx, s.approver, id, "")
	s.Require().NoError(err)
	_, err = s.service.Reject(s.ctx, s.admin, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict), "APPROVED is terminal")
	_, err = s.service.RejectAfterReview(s.ctx, s.approver, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *LifecycleSuite) TestCapabilities() {
	id := s.submit("ada@example.com")

	_, err := s.service.MarkReadyForApproval(s.ctx, s.member, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
	_, err = s.service.MarkReadyForApproval(s.ctx, nil, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	_, err = s.service.MarkReadyForApproval(s.ctx, s.reviewer, id, "")
	s.Require().NoError(err)

	_, err = s.service.RejectAfterReview(s.ctx, s.reviewer, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized), "READY needs approve")

	rejected, err := s.service.RejectAfterReview(s.ctx, s.approver, id, "weak portfolio")
	s.Require().NoError(err)
	s.Equal(profile.StatusRejected, rejected.Status)
	s.NotNil(rejected.ReviewedAt)
}

func (s *LifecycleSuite) TestAdminRejectOverride() {
	id := s.submit("ada@example.com")

	_, err := s.service.Reject(s.ctx, s.approver, id, "")
	s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))

	rejected, err := s.service.Reject(s.ctx, s.admin, id, "spam")
	s.Require().NoError(err)
	s.Equal(profile.StatusRejected, rejected.Status)
	s.Equal("spam", rejected.ReviewerNote)
}

func (s *LifecycleSuite) TestTransitionErrors() {
	_, err := s.service.MarkReadyForApproval(s.ctx, s.reviewer, domain.NewProfileID(), "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	account, _, err := s.accounts.PrepareAccount(s.ctx, "plain@example.com", "correct horse", "")
	s.Require().NoError(err)
	s.Require().NoError(s.profiles.Create(s.ctx, account))
	_, err = s.service.MarkReadyForApproval(s.ctx, s.reviewer, account.ID, "")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "account-only principals have no application")
}

func (s *LifecycleSuite) TestLongNoteIsTruncated() {
	id := s.submit("ada@example.com")
	long := strings.Repeat("ñ", models.MaxNoteRunes+20)

	ready, err := s.service.MarkReadyForApproval(s.ctx, s.reviewer, id, "  "+long)
	s.Require().NoError(err)
	s.Equal(profile.StatusReady, ready.Status)
	s.Equal(strings.Repeat("ñ", models.MaxNoteRunes), ready.ReviewerNote)

	stored, err := s.profiles.FindByID(s.ctx, id)
	s.Require().NoError(err)
	s.Len([]rune(stored.ReviewerNote), models.MaxNoteRunes)
}

func TestConcurrentApproveHasOneWinner(t *testing.T) {
	profiles := profilestore.New()
	accounts, err := authservice.New(profiles, session.New(), password.NewHasher(4))
	require.NoError(t, err)
	published := &recordingPublisher{}
	svc, err := New(profiles, accounts, WithPublisher(published))
	require.NoError(t, err)

	ctx := context.Background()
	res, err := svc.Submit(ctx, nil, submission("ada@example.com"))
	require.NoError(t, err)
	_, err = svc.MarkReadyForApproval(ctx, testutil.PrincipalWith(domain.RoleReviewer), res.ProfileID, "")
	require.NoError(t, err)

	const approvers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		wins      int
		conflicts int
	)
	for range approvers {
		wg.Go(func() {
			_, err := svc.Approve(ctx, testutil.PrincipalWith(domain.RoleApprover), res.ProfileID, "")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case dErrors.HasCode(err, dErrors.CodeConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, approvers-1, conflicts)

	var approvals int
	for _, e := range published.all() {
		if e.NewStatus == profile.StatusApproved {
			approvals++
		}
	}
	require.Equal(t, 1, approvals)
}
