package service

import (
	"context"
	"errors"

	"vcc/internal/auth/device"
	"vcc/internal/auth/models"
	profile "vcc/internal/profile/models"
	rlmodels "vcc/internal/ratelimit/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/email"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// Register creates an account-only principal with the baseline role and
// queues the verification email.
func (s *Service) Register(ctx context.Context, req *models.RegisterRequest) (*domain.Principal, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := s.enforce(ctx, rlmodels.ActionRegister,
		rlmodels.IP(requestcontext.ClientIP(ctx)),
		rlmodels.Email(req.Email),
	); err != nil {
		return nil, err
	}

	if _, err := s.profiles.FindByEmail(ctx, req.Email); err == nil {
		return nil, errEmailTaken()
	} else if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	p, token, err := s.PrepareAccount(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.profiles.Create(ctx, p); err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(audit.EventAccountRegistered),
			ProfileID: p.ID,
			Subject:   p.Email,
			Email:     p.Email,
			ActorID:   p.ID.String(),
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, errEmailTaken()
		}
		return nil, translate(err, "account not found", "create account")
	}
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}

	s.QueueVerification(ctx, p, token)
	return p.Principal(), nil
}

// PrepareAccount builds a new principal with a hashed password and a fresh
// verification token. Nothing is persisted.
func (s *Service) PrepareAccount(ctx context.Context, addr, plainPassword, displayName string) (*profile.Profile, string, error) {
	digest, err := s.hasher.Hash(plainPassword)
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}
	if displayName == "" {
		displayName = email.DeriveNameFromEmail(addr)
	}
	now := requestcontext.Now(ctx)
	p, err := profile.NewProfile(domain.NewProfileID(), addr, digest, displayName, now)
	if err != nil {
		return nil, "", err
	}
	token, hash, err := models.NewOpaqueToken()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification token")
	}
	p.SetVerificationToken(hash, now.Add(models.VerificationLifetime), now)
	return p, token, nil
}

// CheckPassword verifies plain against p's digest.
func (s *Service) CheckPassword(_ context.Context, p *profile.Profile, plain string) error {
	if err := s.hasher.Compare(p.PasswordHash, plain); err != nil {
		return errInvalidCredentials()
	}
	return nil
}

// QueueVerification hands the verification email to the mailer.
func (s *Service) QueueVerification(ctx context.Context, p *profile.Profile, token string) {
	if s.mailer == nil || token == "" {
		return
	}
	s.mailer.SendVerification(ctx, p.Email, p.DisplayName, token)
}

// IssueSession creates a session for principal and returns the raw token
// for the cookie.
func (s *Service) IssueSession(ctx context.Context, principal *domain.Principal) (*models.LoginResult, error) {
	token, hash, err := models.NewOpaqueToken()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue session token")
	}
	now := requestcontext.Now(ctx)
	ua := requestcontext.UserAgent(ctx)
	session, err := models.NewSession(domain.NewSessionID(), hash, principal.ID, ua, device.ParseUserAgent(ua), now)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create session")
	}
	if s.metrics != nil {
		s.metrics.IncrementActiveSessions()
	}
	s.recordBestEffort(ctx, audit.Event{
		Action:    string(audit.EventSessionCreated),
		ProfileID: principal.ID,
		ActorID:   principal.ID.String(),
		Subject:   session.Device,
	})

	issued := *principal
	issued.SessionID = session.ID
	return &models.LoginResult{
		Principal: &issued,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
