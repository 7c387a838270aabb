package service

import (
	"context"
	"errors"

	"vcc/internal/auth/models"
	"vcc/internal/authz"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/platform/sentinel"
	"vcc/pkg/requestcontext"
)

// UpdateUserRoles replaces the role set of profileID. MEMBER is always kept
// and an admin cannot remove their own ADMIN role.
func (s *Service) UpdateUserRoles(ctx context.Context, actor *domain.Principal, profileID domain.ProfileID, names []string) (domain.RoleSet, error) {
	if err := s.guard.Require(ctx, actor, authz.CapAdminister); err != nil {
		return domain.RoleSet{}, err
	}
	req := &models.UpdateRolesRequest{Roles: names}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return domain.RoleSet{}, err
	}
	roles, err := domain.ParseRoleSet(req.Roles)
	if err != nil {
		return domain.RoleSet{}, err
	}
	if actor.ID == profileID && !roles.Has(domain.RoleAdmin) {
		return domain.RoleSet{}, dErrors.New(dErrors.CodeValidation, "admins cannot remove their own ADMIN role")
	}

	now := requestcontext.Now(ctx)
	var updated *profile.Profile
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.profiles.Execute(ctx, profileID,
			func(*profile.Profile) error { return nil },
			func(p *profile.Profile) { p.ApplyRoles(roles, now) },
		)
		if err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(audit.EventRolesUpdated),
			ProfileID: profileID,
			ActorID:   actor.ID.String(),
			Subject:   roles.String(),
		})
	})
	if err != nil {
		return domain.RoleSet{}, translate(err, "profile not found", "update roles")
	}
	s.logger.InfoContext(ctx, "roles updated",
		"profile_id", profileID.String(),
		"actor_id", actor.ID.String(),
		"roles", updated.Roles.String(),
	)
	return updated.Roles, nil
}

// Me returns the dashboard view of the caller's own account.
func (s *Service) Me(ctx context.Context, principal *domain.Principal) (*models.MeResponse, error) {
	if principal == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "unauthorized")
	}
	p, err := s.profiles.FindByID(ctx, principal.ID)
	if err != nil {
		return nil, translate(err, "account not found", "load account")
	}
	resp := &models.MeResponse{
		PrincipalResponse: *models.FromPrincipal(p.Principal()),
		EmailVerified:     p.EmailVerified,
	}
	if p.HasApplication() {
		resp.Application = &models.ApplicationSummary{
			Status:         string(p.Status),
			SubmissionRole: p.SubmissionRole,
			ReviewerNote:   p.ReviewerNote,
			SubmittedAt:    p.SubmittedAt,
			ReviewedAt:     p.ReviewedAt,
		}
	}
	return resp, nil
}

// BootstrapAdmin grants ADMIN to addr, creating a verified account when none
// exists. Running it again is harmless.
func (s *Service) BootstrapAdmin(ctx context.Context, addr, password string) (*domain.Principal, error) {
	req := &models.BootstrapAdminRequest{Email: addr, Password: password}
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.profiles.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return s.promoteAdmin(ctx, existing)
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up account")
	}

	p, _, err := s.PrepareAccount(ctx, req.Email, req.Password, "")
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	p.ApplyEmailVerified(now)
	p.ApplyRoles(p.Roles.With(domain.RoleAdmin), now)

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.profiles.Create(ctx, p); err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(audit.EventAdminBootstrapped),
			ProfileID: p.ID,
			Email:     p.Email,
			Subject:   "created",
		})
	})
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, errEmailTaken()
		}
		return nil, translate(err, "account not found", "bootstrap admin")
	}
	if s.metrics != nil {
		s.metrics.IncrementUsersCreated()
	}
	return p.Principal(), nil
}

func (s *Service) promoteAdmin(ctx context.Context, existing *profile.Profile) (*domain.Principal, error) {
	if existing.Roles.Has(domain.RoleAdmin) {
		return existing.Principal(), nil
	}
	now := requestcontext.Now(ctx)
	var updated *profile.Profile
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.profiles.Execute(ctx, existing.ID,
			func(*profile.Profile) error { return nil },
			func(p *profile.Profile) { p.ApplyRoles(p.Roles.With(domain.RoleAdmin), now) },
		)
		if err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(audit.EventAdminBootstrapped),
			ProfileID: existing.ID,
			Email:     existing.Email,
			Subject:   "promoted",
		})
	})
	if err != nil {
		return nil, translate(err, "account not found", "promote admin")
	}
	return updated.Principal(), nil
}
