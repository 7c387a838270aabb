package models

import (
	"time"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
)

// Status is the application lifecycle state. The empty value means the
// principal holds an account but has never submitted an application.
type Status string

const (
	StatusNone     Status = ""
	StatusPending  Status = "PENDING"
	StatusReady    Status = "READY_FOR_APPROVAL"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var transitions = map[Status][]Status{
	StatusNone:    {StatusPending},
	StatusPending: {StatusReady, StatusRejected},
	StatusReady:   {StatusApproved, StatusRejected},
}

// CanTransitionTo reports whether to is a legal next state. Status only moves forward.
func (s Status) CanTransitionTo(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports APPROVED and REJECTED.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// IsReviewed reports states that carry a review timestamp.
func (s Status) IsReviewed() bool {
	return s == StatusReady || s == StatusApproved || s == StatusRejected
}

func (s Status) IsValid() bool {
	switch s {
	case StatusNone, StatusPending, StatusReady, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// ParseStatus accepts a non-empty lifecycle state name.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if st == StatusNone || !st.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown status %q", s)
	}
	return st, nil
}

// Reference vouches for an applicant. Name is required; entries without one
// are dropped at submission.
type Reference struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship,omitempty"`
	Contact      string `json:"contact,omitempty"`
	Link         string `json:"link,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// Application is the submitted profile embedded in a principal.
type Application struct {
	Status         Status
	SubmissionRole string
	Handle         string
	Location       string
	Bio            string
	Skills         []string
	Tags           []string
	Telegram       string
	XHandle        string
	Website        string
	GitHub         string
	LinkedIn       string
	Chain          string
	Wallet         string
	References     []Reference
	ReviewerNote   string
	ReviewedAt     *time.Time
	SubmittedAt    *time.Time
}

// Profile is the principal aggregate: account credentials, roles and the
// embedded application.
//
// Invariants:
//   - Email is unique, trimmed and lower-cased
//   - Roles always contains MEMBER (enforced by domain.RoleSet)
//   - ReviewedAt is set iff Status is READY_FOR_APPROVAL, APPROVED or REJECTED
//   - Status only moves forward along the transition table
//   - Version increments on every persisted change
type Profile struct {
	ID                    domain.ProfileID
	Email                 string
	PasswordHash          string
	DisplayName           string
	Roles                 domain.RoleSet
	EmailVerified         bool
	VerificationTokenHash string
	VerificationExpiresAt *time.Time
	Application
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewProfile creates an account-only principal with the baseline role.
func NewProfile(id domain.ProfileID, email, passwordHash, displayName string, now time.Time) (*Profile, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile id cannot be nil")
	}
	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "email cannot be empty")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "password hash cannot be empty")
	}
	if displayName == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "display name cannot be empty")
	}
	return &Profile{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		Roles:        domain.NewRoleSet(),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasApplication reports whether anything was ever submitted.
func (p *Profile) HasApplication() bool {
	return p.Status != StatusNone
}

// Principal projects the authenticated identity.
func (p *Profile) Principal() *domain.Principal {
	return &domain.Principal{
		ID:          p.ID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		Roles:       p.Roles,
	}
}

// Clone returns a deep copy so stores never hand out shared slices.
func (p *Profile) Clone() *Profile {
	c := *p
	c.Skills = append([]string(nil), p.Skills...)
	c.Tags = append([]string(nil), p.Tags...)
	c.References = append([]Reference(nil), p.References...)
	if p.ReviewedAt != nil {
		t := *p.ReviewedAt
		c.ReviewedAt = &t
	}
	if p.SubmittedAt != nil {
		t := *p.SubmittedAt
		c.SubmittedAt = &t
	}
	if p.VerificationExpiresAt != nil {
		t := *p.VerificationExpiresAt
		c.VerificationExpiresAt = &t
	}
	return &c
}

// CanSubmit checks that no application exists yet.
// Use with ApplySubmission in Execute callbacks.
func (p *Profile) CanSubmit() error {
	if p.Status != StatusNone {
		return dErrors.New(dErrors.CodeConflict, "an application has already been submitted for this account")
	}
	return nil
}

// ApplySubmission upgrades an account-only principal to PENDING in place.
// Account fields (ID, credentials, roles) are preserved.
func (p *Profile) ApplySubmission(app Application, displayName string, now time.Time) {
	submitted := now
	p.Application = app
	p.Status = StatusPending
	p.ReviewerNote = ""
	p.ReviewedAt = nil
	p.SubmittedAt = &submitted
	if displayName != "" {
		p.DisplayName = displayName
	}
	p.UpdatedAt = now
}

// CanTransition checks that the application is currently in from and may move to to.
// A mismatch means another reviewer acted first.
func (p *Profile) CanTransition(from, to Status) error {
	if p.Status != from {
		return dErrors.Newf(dErrors.CodeConflict, "application is %s, expected %s", statusLabel(p.Status), statusLabel(from))
	}
	if !from.CanTransitionTo(to) {
		return dErrors.Newf(dErrors.CodeConflict, "cannot move application from %s to %s", statusLabel(from), statusLabel(to))
	}
	return nil
}

// ApplyTransition moves to the reviewed state to, stamping ReviewedAt and the note.
// Call CanTransition first.
func (p *Profile) ApplyTransition(to Status, note string, now time.Time) {
	reviewed := now
	p.Status = to
	p.ReviewerNote = note
	p.ReviewedAt = &reviewed
	p.UpdatedAt = now
}

// SetVerificationToken replaces any outstanding verification token.
func (p *Profile) SetVerificationToken(hash string, expiresAt, now time.Time) {
	p.VerificationTokenHash = hash
	p.VerificationExpiresAt = &expiresAt
	p.UpdatedAt = now
}

// CanVerifyEmail rejects expired tokens.
func (p *Profile) CanVerifyEmail(now time.Time) error {
	if p.VerificationTokenHash == "" || p.VerificationExpiresAt == nil {
		return dErrors.New(dErrors.CodeNotFound, "verification link is invalid or already used")
	}
	if !now.Before(*p.VerificationExpiresAt) {
		return dErrors.New(dErrors.CodeValidation, "verification link has expired")
	}
	return nil
}

// ApplyEmailVerified consumes the token.
func (p *Profile) ApplyEmailVerified(now time.Time) {
	p.EmailVerified = true
	p.VerificationTokenHash = ""
	p.VerificationExpiresAt = nil
	p.UpdatedAt = now
}

// ApplyRoles replaces the role set.
func (p *Profile) ApplyRoles(roles domain.RoleSet, now time.Time) {
	p.Roles = roles
	p.UpdatedAt = now
}

func statusLabel(s Status) string {
	if s == StatusNone {
		return "NONE"
	}
	return string(s)
}

// Cursor positions directory pagination on (SubmittedAt, ID) descending.
type Cursor struct {
	SubmittedAt time.Time
	ID          domain.ProfileID
}
