package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
)

type ProfileSuite struct {
	suite.Suite
	now time.Time
}

func TestProfileSuite(t *testing.T) {
	suite.Run(t, new(ProfileSuite))
}

func (s *ProfileSuite) SetupTest() {
	s.now = time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
}

func (s *ProfileSuite) newProfile() *Profile {
	p, err := NewProfile(domain.NewProfileID(), "ada@example.com", "$2a$hash", "Ada", s.now)
	s.Require().NoError(err)
	return p
}

// reviewedAtConsistent is the invariant every reachable state must satisfy.
func reviewedAtConsistent(p *Profile) bool {
	return p.Status.IsReviewed() == (p.ReviewedAt != nil)
}

func (s *ProfileSuite) TestNewProfile() {
	s.Run("starts account-only with member role", func() {
		p := s.newProfile()
		s.Equal(StatusNone, p.Status)
		s.False(p.HasApplication())
		s.Equal([]string{"MEMBER"}, p.Roles.Strings())
		s.True(reviewedAtConsistent(p))
	})

	s.Run("rejects missing fields", func() {
		_, err := NewProfile(domain.NewProfileID(), "", "h", "n", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		_, err = NewProfile(domain.ProfileID{}, "a@b.co", "h", "n", s.now)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *ProfileSuite) TestSubmission() {
	p := s.newProfile()
	s.Require().NoError(p.CanSubmit())
	p.ApplySubmission(Application{SubmissionRole: "Developer", Skills: []string{"go"}}, "Ada L.", s.now)

	s.Equal(StatusPending, p.Status)
	s.Equal("Ada L.", p.DisplayName)
	s.Nil(p.ReviewedAt)
	s.Require().NotNil(p.SubmittedAt)
	s.True(reviewedAtConsistent(p))

	err := p.CanSubmit()
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
}

func (s *ProfileSuite) TestTransitions() {
	s.Run("happy path stamps reviewedAt", func() {
		p := s.newProfile()
		p.ApplySubmission(Application{}, "", s.now)

		s.Require().NoError(p.CanTransition(StatusPending, StatusReady))
		p.ApplyTransition(StatusReady, "looks good", s.now.Add(time.Hour))
		s.True(reviewedAtConsistent(p))
		s.Equal("looks good", p.ReviewerNote)

		s.Require().NoError(p.CanTransition(StatusReady, StatusApproved))
		p.ApplyTransition(StatusApproved, "", s.now.Add(2*time.Hour))
		s.True(reviewedAtConsistent(p))
		s.Equal(s.now.Add(2*time.Hour), *p.ReviewedAt)
	})

	s.Run("stale expected status is a conflict", func() {
		p := s.newProfile()
		p.ApplySubmission(Application{}, "", s.now)
		p.ApplyTransition(StatusReady, "", s.now)

		err := p.CanTransition(StatusPending, StatusReady)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestStatus_NoBackwardTransitions(t *testing.T) {
	order := map[Status]int{StatusNone: 0, StatusPending: 1, StatusReady: 2, StatusApproved: 3, StatusRejected: 3}
	all := []Status{StatusNone, StatusPending, StatusReady, StatusApproved, StatusRejected}
	for _, from := range all {
		for _, to := range all {
			if from.CanTransitionTo(to) {
				assert.Greater(t, order[to], order[from], "%s -> %s moves backward", from, to)
			}
		}
	}
	for _, terminal := range []Status{StatusApproved, StatusRejected} {
		for _, to := range all {
			assert.False(t, terminal.CanTransitionTo(to), "%s is terminal", terminal)
		}
	}
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus("READY_FOR_APPROVAL")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, st)

	_, err = ParseStatus("")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	_, err = ParseStatus("ARCHIVED")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestVerification(t *testing.T) {
	now := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	p, err := NewProfile(domain.NewProfileID(), "a@b.co", "h", "A", now)
	require.NoError(t, err)

	assert.True(t, dErrors.HasCode(p.CanVerifyEmail(now), dErrors.CodeNotFound))

	p.SetVerificationToken("hash", now.Add(24*time.Hour), now)
	require.NoError(t, p.CanVerifyEmail(now.Add(23*time.Hour)))
	assert.True(t, dErrors.HasCode(p.CanVerifyEmail(now.Add(24*time.Hour)), dErrors.CodeValidation))

	p.ApplyEmailVerified(now)
	assert.True(t, p.EmailVerified)
	assert.Empty(t, p.VerificationTokenHash)
}

func TestClone_IsDeep(t *testing.T) {
	now := time.Now()
	p := &Profile{Application: Application{Skills: []string{"go"}, SubmittedAt: &now}}
	c := p.Clone()
	c.Skills[0] = "rust"
	*c.SubmittedAt = now.Add(time.Hour)
	assert.Equal(t, "go", p.Skills[0])
	assert.Equal(t, now, *p.SubmittedAt)
}
