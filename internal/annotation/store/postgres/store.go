package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"vcc/internal/annotation/models"
	"vcc/pkg/domain"
	txcontext "vcc/pkg/platform/tx"
)

// Store persists comments in the comments table.
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

func (s *Store) Append(ctx context.Context, c *models.Comment) error {
	query := `
		INSERT INTO comments (id, profile_id, author_id, author_name, content, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID), uuid.UUID(c.ProfileID), uuid.UUID(c.AuthorID),
		c.AuthorName, c.Content, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (s *Store) ListByProfile(ctx context.Context, id domain.ProfileID) ([]*models.Comment, error) {
	query := `
		SELECT id, profile_id, author_id, author_name, content, created_at
		FROM comments
		WHERE profile_id = $1
		ORDER BY created_at ASC, id ASC
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(id))
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var (
			c                            models.Comment
			commentID, profileID, author uuid.UUID
		)
		if err := rows.Scan(&commentID, &profileID, &author, &c.AuthorName, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		c.ID = domain.CommentID(commentID)
		c.ProfileID = domain.ProfileID(profileID)
		c.AuthorID = domain.ProfileID(author)
		out = append(out, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}
	return out, nil
}
