package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"vcc/internal/authz"
	"vcc/internal/lifecycle/models"
	profile "vcc/internal/profile/models"
	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
	"vcc/pkg/requestcontext"
)

// MarkReadyForApproval clears a PENDING application for the approvers.
func (s *Service) MarkReadyForApproval(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error) {
	return s.transition(ctx, principal, id, profile.StatusReady, note, func(from profile.Status) (authz.Capability, error) {
		if from != profile.StatusPending {
			return "", statusMismatch(from, profile.StatusPending)
		}
		return authz.CapReview, nil
	}, authz.CapReview)
}

// RejectAfterReview rejects a PENDING application (review) or a
// READY_FOR_APPROVAL one (approve).
func (s *Service) RejectAfterReview(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error) {
	return s.transition(ctx, principal, id, profile.StatusRejected, note, func(from profile.Status) (authz.Capability, error) {
		switch from {
		case profile.StatusPending:
			return authz.CapReview, nil
		case profile.StatusReady:
			return authz.CapApprove, nil
		}
		return "", statusMismatch(from, profile.StatusPending)
	}, authz.CapReview, authz.CapApprove)
}

// Approve publishes a READY_FOR_APPROVAL application to the directory.
func (s *Service) Approve(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error) {
	return s.transition(ctx, principal, id, profile.StatusApproved, note, func(from profile.Status) (authz.Capability, error) {
		if from != profile.StatusReady {
			return "", statusMismatch(from, profile.StatusReady)
		}
		return authz.CapApprove, nil
	}, authz.CapApprove)
}

// Reject is the administrative override: any non-terminal application
// becomes REJECTED.
func (s *Service) Reject(ctx context.Context, principal *domain.Principal, id domain.ProfileID, note string) (*profile.Profile, error) {
	return s.transition(ctx, principal, id, profile.StatusRejected, note, func(from profile.Status) (authz.Capability, error) {
		if from == profile.StatusNone || from.IsTerminal() {
			return "", dErrors.Newf(dErrors.CodeConflict, "application is already %s", statusName(from))
		}
		return authz.CapAdminister, nil
	}, authz.CapAdminister)
}

// transition is the shared compare-and-set path. capFor picks the
// capability for the observed status; entry lists the capabilities of which
// the caller must hold at least one before anything is read.
func (s *Service) transition(
	ctx context.Context,
	principal *domain.Principal,
	id domain.ProfileID,
	to profile.Status,
	rawNote string,
	capFor func(from profile.Status) (authz.Capability, error),
	entry ...authz.Capability,
) (*profile.Profile, error) {
	ctx, span := s.tracer.Start(ctx, "lifecycle.transition")
	defer span.End()
	span.SetAttributes(
		attribute.String("profile.id", id.String()),
		attribute.String("status.to", string(to)),
	)
	started := time.Now()

	updated, from, err := s.applyTransition(ctx, principal, id, to, rawNote, capFor, entry)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		if dErrors.HasCode(err, dErrors.CodeConflict) && s.metrics != nil {
			s.metrics.IncrementConflicts()
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("status.from", string(from)))

	if s.metrics != nil {
		s.metrics.ObserveTransition(string(to), time.Since(started))
	}
	s.logger.InfoContext(ctx, "application status changed",
		"profile_id", id.String(),
		"from", statusName(from),
		"to", string(to),
		"actor_id", principal.ID.String(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.publish(ctx, models.NewTransitionEvent(updated, from, principal, requestcontext.Now(ctx)))
	return updated, nil
}

func (s *Service) applyTransition(
	ctx context.Context,
	principal *domain.Principal,
	id domain.ProfileID,
	to profile.Status,
	rawNote string,
	capFor func(from profile.Status) (authz.Capability, error),
	entry []authz.Capability,
) (*profile.Profile, profile.Status, error) {
	if !allowsAny(principal, entry) {
		return nil, "", s.guard.Require(ctx, principal, entry[0])
	}
	note := models.NormalizeNote(rawNote)

	current, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, "", translate(err, "load application")
	}
	if !current.HasApplication() {
		return nil, "", dErrors.New(dErrors.CodeNotFound, "application not found")
	}
	from := current.Status
	capability, err := capFor(from)
	if err != nil {
		return nil, "", err
	}
	if err := s.guard.Require(ctx, principal, capability); err != nil {
		return nil, "", err
	}

	now := requestcontext.Now(ctx)
	var updated *profile.Profile
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		updated, err = s.profiles.Execute(ctx, id,
			func(p *profile.Profile) error { return p.CanTransition(from, to) },
			func(p *profile.Profile) { p.ApplyTransition(to, note, now) },
		)
		if err != nil {
			return err
		}
		return s.record(ctx, audit.Event{
			Action:    string(transitionEvent(to)),
			ProfileID: id,
			ActorID:   principal.ID.String(),
			Email:     updated.Email,
			Decision:  string(to),
			Reason:    note,
			Subject:   statusName(from),
		})
	})
	if err != nil {
		return nil, "", translate(err, "update application")
	}
	return updated, from, nil
}

func allowsAny(principal *domain.Principal, caps []authz.Capability) bool {
	for _, c := range caps {
		if authz.Allows(principal, c) {
			return true
		}
	}
	return false
}

func transitionEvent(to profile.Status) audit.AuditEvent {
	switch to {
	case profile.StatusReady:
		return audit.EventApplicationReady
	case profile.StatusApproved:
		return audit.EventApplicationApproved
	default:
		return audit.EventApplicationRejected
	}
}

func statusMismatch(from, expected profile.Status) error {
	return dErrors.Newf(dErrors.CodeConflict, "application is %s, expected %s", statusName(from), statusName(expected))
}

func statusName(s profile.Status) string {
	if s == profile.StatusNone {
		return "NONE"
	}
	return string(s)
}
