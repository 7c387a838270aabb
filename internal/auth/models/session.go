package models

import (
	"time"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
)

const (
	// SessionLifetime is absolute; sessions are not extended on use.
	SessionLifetime = 30 * 24 * time.Hour
	// VerificationLifetime bounds how long an email verification link works.
	VerificationLifetime = 24 * time.Hour
)

// Session binds the hash of an opaque cookie token to a principal.
// The raw token is never stored.
type Session struct {
	ID        domain.SessionID
	TokenHash string
	ProfileID domain.ProfileID
	UserAgent string
	Device    string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// NewSession creates a session with domain invariant validation.
func NewSession(id domain.SessionID, tokenHash string, profileID domain.ProfileID, userAgent, device string, now time.Time) (*Session, error) {
	if id.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "session ID cannot be nil")
	}
	if tokenHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "token hash cannot be empty")
	}
	if profileID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "profile ID cannot be nil")
	}
	return &Session{
		ID:        id,
		TokenHash: tokenHash,
		ProfileID: profileID,
		UserAgent: userAgent,
		Device:    device,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionLifetime),
	}, nil
}

// IsExpired reports whether the session is past its absolute expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
