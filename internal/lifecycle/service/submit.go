package service

import (
	"context"
	"errors"

	"vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	rlmodels "vcc/internal/ratelimit/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/privacy"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// Submit files an application. An account-only principal is upgraded in
// place; an unknown email gets a new principal and a verification email.
// A filled honeypot reports success and stores nothing.
func (s *Service) Submit(ctx context.Context, principal *domain.Principal, req *models.SubmitApplicationRequest) (*models.SubmitResult, error) {
	if req == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	req.Normalize()
	if principal != nil && req.Email == "" {
		req.Email = principal.Email
	}

	if err := s.enforce(ctx, rlmodels.ActionSubmit,
		rlmodels.IP(requestcontext.ClientIP(ctx)),
		rlmodels.Email(req.Email),
	); err != nil {
		return nil, err
	}

	if req.IsSpam() {
		s.logger.WarnContext(ctx, "honeypot triggered",
			"ip", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
			"request_id", requestcontext.RequestID(ctx),
		)
		if err := s.record(ctx, audit.Event{
			Action:   string(audit.EventHoneypotTriggered),
			Decision: "discarded",
			Email:    privacy.MaskEmail(req.Email),
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to record honeypot event", "error", err)
		}
		if s.metrics != nil {
			s.metrics.IncrementHoneypot()
		}
		return &models.SubmitResult{
			ProfileID: domain.NewProfileID(),
			Status:    profile.StatusPending,
			Created:   true,
			Discarded: true,
		}, nil
	}

	if err := req.Validate(principal == nil); err != nil {
		return nil, err
	}
	if principal != nil && req.Email != principal.Email {
		return nil, dErrors.New(dErrors.CodeValidation, "email: must match the signed-in account")
	}

	app := req.Application()
	var (
		result *models.SubmitResult
		err    error
	)
	if principal != nil {
		result, err = s.upgrade(ctx, principal.ID, app, req.DisplayName)
	} else {
		result, err = s.submitAnonymous(ctx, req, app)
	}
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		kind := "upgrade"
		if result.Created {
			kind = "new_account"
		}
		s.metrics.ObserveSubmission(kind)
	}
	return result, nil
}

func (s *Service) submitAnonymous(ctx context.Context, req *models.SubmitApplicationRequest, app profile.Application) (*models.SubmitResult, error) {
	existing, err := s.profiles.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		if err := existing.CanSubmit(); err != nil {
			return nil, err
		}
		if err := s.accounts.CheckPassword(ctx, existing, req.Password); err != nil {
			return nil, err
		}
		return s.upgrade(ctx, existing.ID, app, req.DisplayName)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	p, token, err := s.accounts.PrepareAccount(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p.ApplySubmission(app, req.DisplayName, now)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.profiles.Create(ctx, p); err != nil {
			return err
		}
		return s.record(ctx, submittedEvent(p))
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, duplicateApplication()
		}
		return nil, translate(err, "submit application")
	}

	s.accounts.QueueVerification(ctx, p, token)
	s.publish(ctx, models.NewTransitionEvent(p, profile.StatusNone, nil, now))
	return &models.SubmitResult{ProfileID: p.ID, Status: p.Status, Created: true}, nil
}

// upgrade attaches app to an existing account-only principal.
func (s *Service) upgrade(ctx context.Context, id domain.ProfileID, app profile.Application, displayName string) (*models.SubmitResult, error) {
	now := requestcontext.Now(ctx)
	var updated *profile.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.profiles.Execute(ctx, id,
			func(current *profile.Profile) error { return current.CanSubmit() },
			func(current *profile.Profile) { current.ApplySubmission(app, displayName, now) },
		)
		if err != nil {
			return err
		}
		return s.record(ctx, submittedEvent(updated))
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, duplicateApplication()
		}
		return nil, translate(err, "submit application")
	}

	s.publish(ctx, models.NewTransitionEvent(updated, profile.StatusNone, nil, now))
	return &models.SubmitResult{ProfileID: updated.ID, Status: updated.Status}, nil
}

func submittedEvent(p *profile.Profile) audit.Event {
	return audit.Event{
		Action:    string(audit.EventApplicationSubmitted),
		ProfileID: p.ID,
		ActorID:   p.ID.String(),
		Email:     p.Email,
		Subject:   p.SubmissionRole,
	}
}

func duplicateApplication() error {
	return dErrors.New(dErrors.CodeConflict, "an application has already been submitted for this account")
}

// translate passes domain errors through and maps store sentinels.
func translate(err error, action string) error {
	if err == nil {
		return nil
	}
	if _, ok := dErrors.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "application not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "the application was changed by someone else")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to "+action)
}
