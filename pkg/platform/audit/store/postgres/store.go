package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vcc/pkg/domain"
	audit "vcc/pkg/platform/audit"
	txcontext "vcc/pkg/platform/tx"
)

// Store appends audit rows in the caller's transaction when one is present,
// so a state change and its audit trail commit or roll back together.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := event.Category
	if category == "" {
		category = audit.AuditEvent(event.Action).Category()
	}

	var profileID *uuid.UUID
	if !event.ProfileID.IsNil() {
		pid := uuid.UUID(event.ProfileID)
		profileID = &pid
	}

	query := `
		INSERT INTO audit_events (
			id, category, occurred_at, profile_id, subject, action,
			decision, reason, email, request_id, actor_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		profileID,
		event.Subject,
		event.Action,
		event.Decision,
		event.Reason,
		event.Email,
		event.RequestID,
		event.ActorID,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByProfile returns a profile's events, newest first.
func (s *Store) ListByProfile(ctx context.Context, profileID domain.ProfileID) ([]audit.Event, error) {
	query := `
		SELECT category, occurred_at, profile_id, subject, action,
			   decision, reason, email, request_id, actor_id
		FROM audit_events
		WHERE profile_id = $1
		ORDER BY occurred_at DESC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(profileID))
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			category string
			pid      uuid.NullUUID
			event    audit.Event
		)
		if err := rows.Scan(
			&category,
			&event.Timestamp,
			&pid,
			&event.Subject,
			&event.Action,
			&event.Decision,
			&event.Reason,
			&event.Email,
			&event.RequestID,
			&event.ActorID,
		); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		event.Category = audit.EventCategory(category)
		if pid.Valid {
			event.ProfileID = domain.ProfileID(pid.UUID)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
