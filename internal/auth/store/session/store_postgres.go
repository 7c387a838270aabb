package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vcc/internal/auth/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/sentinel"
	txcontext "vcc/pkg/platform/tx"
)

// PostgresStore persists sessions in the sessions table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, token_hash, profile_id, user_agent, device, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(session.ID), session.TokenHash, uuid.UUID(session.ProfileID),
		session.UserAgent, session.Device, session.CreatedAt, session.ExpiresAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByTokenHash(ctx context.Context, hash string) (*models.Session, error) {
	query := `
		SELECT id, token_hash, profile_id, user_agent, device, created_at, expires_at
		FROM sessions
		WHERE token_hash = $1
	`
	var (
		id, profileID uuid.UUID
		session       models.Session
	)
	err := s.execer(ctx).QueryRowContext(ctx, query, hash).Scan(
		&id, &session.TokenHash, &profileID, &session.UserAgent, &session.Device,
		&session.CreatedAt, &session.ExpiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	session.ID = domain.SessionID(id)
	session.ProfileID = domain.ProfileID(profileID)
	return &session, nil
}

func (s *PostgresStore) DeleteByTokenHash(ctx context.Context, hash string) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM sessions WHERE token_hash = $1`, hash)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
