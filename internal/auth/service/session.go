package service

import (
	"context"
	"errors"

	"vcc/internal/auth/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// ResolveSession maps a cookie token to its principal. Unknown and expired
// tokens resolve to nil; expired sessions are deleted on the way.
func (s *Service) ResolveSession(ctx context.Context, token string) (*domain.Principal, error) {
	if token == "" {
		return nil, nil
	}
	hash := models.HashToken(token)
	session, err := s.sessions.FindByTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	if session.IsExpired(requestcontext.Now(ctx)) {
		if err := s.sessions.DeleteByTokenHash(ctx, hash); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to purge expired session",
				"session_id", session.ID.String(), "error", err)
		}
		return nil, nil
	}

	p, err := s.profiles.FindByID(ctx, session.ProfileID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session principal")
	}
	principal := p.Principal()
	principal.SessionID = session.ID
	return principal, nil
}

// Logout deletes the session behind token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.sessions.DeleteByTokenHash(ctx, models.HashToken(token))
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil
	}
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	if s.metrics != nil {
		s.metrics.DecrementActiveSessions()
	}

	event := audit.Event{Action: string(audit.EventSessionRevoked)}
	if p := requestcontext.Principal(ctx); p != nil {
		event.ProfileID = p.ID
		event.ActorID = p.ID.String()
	}
	s.recordBestEffort(ctx, event)
	return nil
}
