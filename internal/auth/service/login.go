package service

import (
	"context"
	"errors"

	"vcc/internal/auth/models"
	rlmodels "vcc/internal/ratelimit/models"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/privacy"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// Login checks credentials and opens a session. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.enforce(ctx, rlmodels.ActionLogin,
		rlmodels.IP(requestcontext.ClientIP(ctx)),
		rlmodels.Email(req.Email),
	); err != nil {
		return nil, err
	}

	p, err := s.profiles.FindByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
		}
		s.hasher.CompareDummy(req.Password)
		s.authFailure(ctx, "unknown_email", "email", privacy.MaskEmail(req.Email))
		return nil, errInvalidCredentials()
	}
	if err := s.hasher.Compare(p.PasswordHash, req.Password); err != nil {
		s.authFailure(ctx, "wrong_password", "profile_id", p.ID.String())
		return nil, errInvalidCredentials()
	}

	result, err := s.IssueSession(ctx, p.Principal())
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveLogin("success")
	}
	s.logger.InfoContext(ctx, "user logged in",
		"profile_id", p.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return result, nil
}
