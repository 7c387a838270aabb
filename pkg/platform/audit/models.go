package audit

import (
	"context"
	"log/slog"
	"time"

	"vcc/pkg/domain"
	"vcc/pkg/requestcontext"
)

// EventCategory classifies audit events by their primary purpose.
type EventCategory string

const (
	// CategoryCompliance covers review decisions and account changes that
	// must be reconstructable later.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	ProfileID domain.ProfileID
	Subject   string
	Action    string
	Decision  string
	Reason    string
	Email     string
	RequestID string
	// ActorID tracks who performed the action when different from ProfileID,
	// e.g. the reviewer approving an application.
	ActorID string
}

type AuditEvent string

const (
	// Account events
	EventAccountRegistered  AuditEvent = "account_registered"
	EventEmailVerified      AuditEvent = "email_verified"
	EventRolesUpdated       AuditEvent = "roles_updated"
	EventAdminBootstrapped  AuditEvent = "admin_bootstrapped"
	EventSessionCreated     AuditEvent = "session_created"
	EventSessionRevoked     AuditEvent = "session_revoked"
	EventAuthFailed         AuditEvent = "auth_failed"
	EventVerificationResent AuditEvent = "verification_resent"

	// Application events
	EventApplicationSubmitted AuditEvent = "application_submitted"
	EventApplicationReady     AuditEvent = "application_ready_for_approval"
	EventApplicationApproved  AuditEvent = "application_approved"
	EventApplicationRejected  AuditEvent = "application_rejected"
	EventHoneypotTriggered    AuditEvent = "honeypot_triggered"
	EventCommentAdded         AuditEvent = "comment_added"

	// Rate limit and authorization events
	EventRateLimitExceeded AuditEvent = "rate_limit_exceeded"
	EventAccessDenied      AuditEvent = "access_denied"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAccountRegistered:    CategoryCompliance,
	EventRolesUpdated:         CategoryCompliance,
	EventAdminBootstrapped:    CategoryCompliance,
	EventApplicationSubmitted: CategoryCompliance,
	EventApplicationReady:     CategoryCompliance,
	EventApplicationApproved:  CategoryCompliance,
	EventApplicationRejected:  CategoryCompliance,

	EventAuthFailed:        CategorySecurity,
	EventSessionRevoked:    CategorySecurity,
	EventRateLimitExceeded: CategorySecurity,
	EventAccessDenied:      CategorySecurity,
	EventHoneypotTriggered: CategorySecurity,

	EventSessionCreated:     CategoryOperations,
	EventEmailVerified:      CategoryOperations,
	EventVerificationResent: CategoryOperations,
	EventCommentAdded:       CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Appender persists audit events. Postgres appends join the caller's
// transaction when one is present in ctx.
type Appender interface {
	Append(ctx context.Context, event Event) error
}

// Record logs event as an audit line and appends it when a store is present.
// Timestamp, category and request ID are filled from ctx when unset.
func Record(ctx context.Context, logger *slog.Logger, store Appender, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = AuditEvent(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if logger != nil {
		args := []any{
			"event", event.Action,
			"log_type", "audit",
			"category", string(event.Category),
		}
		if !event.ProfileID.IsNil() {
			args = append(args, "profile_id", event.ProfileID.String())
		}
		if event.ActorID != "" {
			args = append(args, "actor_id", event.ActorID)
		}
		if event.Decision != "" {
			args = append(args, "decision", event.Decision)
		}
		if event.RequestID != "" {
			args = append(args, "request_id", event.RequestID)
		}
		logger.InfoContext(ctx, event.Action, args...)
	}
	if store == nil {
		return nil
	}
	return store.Append(ctx, event)
}
