package service

import (
	"context"
	"errors"

	"vcc/internal/auth/models"
	profile "vcc/internal/profile/models"
	rlmodels "vcc/internal/ratelimit/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// VerifyEmail consumes a single-use verification token.
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	if token == "" {
		return errVerificationInvalid()
	}
	hash := models.HashToken(token)
	p, err := s.profiles.FindByVerificationTokenHash(ctx, hash)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return errVerificationInvalid()
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up verification token")
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		_, err := s.profiles.Execute(ctx, p.ID,
			func(current *profile.Profile) error {
				// Consumed or rotated since the lookup.
				if current.VerificationTokenHash != hash {
					return errVerificationInvalid()
				}
				return current.CanVerifyEmail(now)
			},
			func(current *profile.Profile) {
				current.ApplyEmailVerified(now)
			},
		)
		if err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(audit.EventEmailVerified),
			ProfileID: p.ID,
			Subject:   p.Email,
			Email:     p.Email,
			ActorID:   p.ID.String(),
		})
	})
	if errors.Is(err, sentinel.ErrConflict) || errors.Is(err, sentinel.ErrNotFound) {
		return errVerificationInvalid()
	}
	return translate(err, "account not found", "verify email")
}

// ResendVerification rotates the verification token and queues a new email.
func (s *Service) ResendVerification(ctx context.Context, principal *domain.Principal) error {
	if principal == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "unauthorized")
	}
	if err := s.enforce(ctx, rlmodels.ActionResendVerification, rlmodels.Principal(principal.ID.String())); err != nil {
		return err
	}

	token, hash, err := models.NewOpaqueToken()
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue verification token")
	}
	now := requestcontext.Now(ctx)
	updated, err := s.profiles.Execute(ctx, principal.ID,
		func(current *profile.Profile) error {
			if current.EmailVerified {
				return dErrors.New(dErrors.CodeValidation, "email address is already verified")
			}
			return nil
		},
		func(current *profile.Profile) {
			current.SetVerificationToken(hash, now.Add(models.VerificationLifetime), now)
		},
	)
	if err != nil {
		return translate(err, "account not found", "rotate verification token")
	}

	s.recordBestEffort(ctx, audit.Event{
		Action:    string(audit.EventVerificationResent),
		ProfileID: updated.ID,
		ActorID:   updated.ID.String(),
		Email:     updated.Email,
	})
	s.QueueVerification(ctx, updated, token)
	return nil
}
