// Package authz maps capabilities to the roles that grant them. Every denial
// looks the same to the caller; the reason only reaches logs and the audit
// trail.
package authz

import (
	"context"
	"log/slog"

	"vcc/pkg/domain"
	dErrors "vcc/pkg/domain-errors"
	"vcc/pkg/platform/audit"
)

// Capability is a gated action.
type Capability string

const (
	CapReview     Capability = "review"
	CapApprove    Capability = "approve"
	CapAdminister Capability = "administer"
	CapComment    Capability = "comment"
	CapPreview    Capability = "preview"
)

var grants = map[Capability][]domain.Role{
	CapReview:     {domain.RoleReviewer, domain.RoleApprover, domain.RoleAdmin},
	CapApprove:    {domain.RoleApprover, domain.RoleAdmin},
	CapAdminister: {domain.RoleAdmin},
	CapComment:    {domain.RoleReviewer, domain.RoleApprover, domain.RoleAdmin},
	CapPreview:    {domain.RoleReviewer, domain.RoleApprover, domain.RoleAdmin},
}

// Allows reports whether principal holds any role granting c.
func Allows(principal *domain.Principal, c Capability) bool {
	roles, ok := grants[c]
	if !ok {
		return false
	}
	return principal.HasAnyRole(roles...)
}

// ErrUnauthorized is the single denial returned for every reason.
func ErrUnauthorized() error {
	return dErrors.New(dErrors.CodeUnauthorized, "unauthorized")
}

// Guard enforces capabilities and records denials.
type Guard struct {
	auditor audit.Appender
	logger  *slog.Logger
}

type Option func(*Guard)

func WithAuditor(a audit.Appender) Option {
	return func(g *Guard) {
		g.auditor = a
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(g *Guard) {
		g.logger = logger
	}
}

func NewGuard(opts ...Option) *Guard {
	g := &Guard{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Require returns nil when principal may perform c.
func (g *Guard) Require(ctx context.Context, principal *domain.Principal, c Capability) error {
	if Allows(principal, c) {
		return nil
	}

	reason := "no session"
	event := audit.Event{
		Action:   string(audit.EventAccessDenied),
		Decision: "denied",
		Subject:  string(c),
	}
	if principal != nil {
		reason = "missing capability " + string(c) + " for roles " + principal.Roles.String()
		event.ProfileID = principal.ID
		event.ActorID = principal.ID.String()
		event.Email = principal.Email
	}
	event.Reason = reason
	if err := audit.Record(ctx, g.logger, g.auditor, event); err != nil {
		g.logger.WarnContext(ctx, "failed to record access denial", "error", err)
	}
	return ErrUnauthorized()
}
