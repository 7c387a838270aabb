package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"vcc/internal/profile/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/sentinel"
	txcontext "vcc/pkg/platform/tx"
)

const uniqueViolation = "23505"

// Store persists profiles in PostgreSQL. Writes are optimistic: Execute
// re-checks the version and status it read, so a concurrent writer turns the
// losing update into sentinel.ErrConflict.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const selectColumns = `
	id, email, password_hash, display_name, roles, email_verified,
	verification_token_hash, verification_expires_at,
	status, submission_role, handle, location, bio, skills, tags,
	telegram, x_handle, website, github, linkedin, chain, wallet,
	references_json, reviewer_note, reviewed_at, submitted_at,
	version, created_at, updated_at`

func (s *Store) Create(ctx context.Context, p *models.Profile) error {
	refs, err := json.Marshal(referencesOrEmpty(p.References))
	if err != nil {
		return fmt.Errorf("marshal references: %w", err)
	}
	query := `
		INSERT INTO profiles (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
	`
	_, err = s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(p.ID), p.Email, p.PasswordHash, p.DisplayName, pq.Array(p.Roles.Strings()), p.EmailVerified,
		nullString(p.VerificationTokenHash), nullTime(p.VerificationExpiresAt),
		nullString(string(p.Status)), p.SubmissionRole, p.Handle, p.Location, p.Bio,
		pq.Array(stringsOrEmpty(p.Skills)), pq.Array(stringsOrEmpty(p.Tags)),
		p.Telegram, p.XHandle, p.Website, p.GitHub, p.LinkedIn, p.Chain, p.Wallet,
		refs, nullString(p.ReviewerNote), nullTime(p.ReviewedAt), nullTime(p.SubmittedAt),
		p.Version, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id domain.ProfileID) (*models.Profile, error) {
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM profiles WHERE id = $1`, uuid.UUID(id))
}

func (s *Store) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM profiles WHERE email = $1`, email)
}

func (s *Store) FindByVerificationTokenHash(ctx context.Context, hash string) (*models.Profile, error) {
	if hash == "" {
		return nil, sentinel.ErrNotFound
	}
	return s.findOne(ctx, `SELECT `+selectColumns+` FROM profiles WHERE verification_token_hash = $1`, hash)
}

func (s *Store) findOne(ctx context.Context, query string, args ...any) (*models.Profile, error) {
	p, err := scanProfile(s.execer(ctx).QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// Execute reads the row, runs validate then mutate on it, and writes it back
// only if version and status are still what was read.
func (s *Store) Execute(ctx context.Context, id domain.ProfileID, validate func(*models.Profile) error, mutate func(*models.Profile)) (*models.Profile, error) {
	current, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	expectedVersion := current.Version
	expectedStatus := current.Status

	if err := validate(current); err != nil {
		return nil, err
	}
	mutate(current)
	current.Version = expectedVersion + 1

	refs, err := json.Marshal(referencesOrEmpty(current.References))
	if err != nil {
		return nil, fmt.Errorf("marshal references: %w", err)
	}
	query := `
		UPDATE profiles SET
			display_name = $3, roles = $4, email_verified = $5,
			verification_token_hash = $6, verification_expires_at = $7,
			status = $8, submission_role = $9, handle = $10, location = $11, bio = $12,
			skills = $13, tags = $14, telegram = $15, x_handle = $16, website = $17,
			github = $18, linkedin = $19, chain = $20, wallet = $21, references_json = $22,
			reviewer_note = $23, reviewed_at = $24, submitted_at = $25,
			version = $26, updated_at = $27
		WHERE id = $1 AND version = $2 AND status IS NOT DISTINCT FROM $28
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(current.ID), expectedVersion,
		current.DisplayName, pq.Array(current.Roles.Strings()), current.EmailVerified,
		nullString(current.VerificationTokenHash), nullTime(current.VerificationExpiresAt),
		nullString(string(current.Status)), current.SubmissionRole, current.Handle, current.Location, current.Bio,
		pq.Array(stringsOrEmpty(current.Skills)), pq.Array(stringsOrEmpty(current.Tags)),
		current.Telegram, current.XHandle, current.Website,
		current.GitHub, current.LinkedIn, current.Chain, current.Wallet, refs,
		nullString(current.ReviewerNote), nullTime(current.ReviewedAt), nullTime(current.SubmittedAt),
		current.Version, current.UpdatedAt,
		nullString(string(expectedStatus)),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}
	if rows == 0 {
		return nil, sentinel.ErrConflict
	}
	return current, nil
}

func (s *Store) EmailsByRole(ctx context.Context, role domain.Role) ([]string, error) {
	rows, err := s.execer(ctx).QueryContext(ctx,
		`SELECT email FROM profiles WHERE $1 = ANY (roles) ORDER BY email`, string(role))
	if err != nil {
		return nil, fmt.Errorf("list emails by role: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan email: %w", err)
		}
		out = append(out, email)
	}
	return out, rows.Err()
}

func (s *Store) ListByStatus(ctx context.Context, status models.Status, limit int) ([]*models.Profile, error) {
	query := `SELECT ` + selectColumns + ` FROM profiles
		WHERE status = $1
		ORDER BY submitted_at ASC, id ASC
		LIMIT $2`
	return s.list(ctx, query, string(status), limit)
}

// ListApproved pages approved profiles by (submitted_at, id) descending.
func (s *Store) ListApproved(ctx context.Context, limit int, after *models.Cursor) ([]*models.Profile, error) {
	if after == nil {
		query := `SELECT ` + selectColumns + ` FROM profiles
			WHERE status = 'APPROVED'
			ORDER BY submitted_at DESC, id DESC
			LIMIT $1`
		return s.list(ctx, query, limit)
	}
	query := `SELECT ` + selectColumns + ` FROM profiles
		WHERE status = 'APPROVED' AND (submitted_at, id) < ($1, $2)
		ORDER BY submitted_at DESC, id DESC
		LIMIT $3`
	return s.list(ctx, query, after.SubmittedAt, uuid.UUID(after.ID), limit)
}

// ListFeatured returns approved profiles by most recent review first.
func (s *Store) ListFeatured(ctx context.Context, limit int) ([]*models.Profile, error) {
	query := `SELECT ` + selectColumns + ` FROM profiles
		WHERE status = 'APPROVED'
		ORDER BY reviewed_at DESC NULLS LAST, id DESC
		LIMIT $1`
	return s.list(ctx, query, limit)
}

func (s *Store) list(ctx context.Context, query string, args ...any) ([]*models.Profile, error) {
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []*models.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*models.Profile, error) {
	var (
		p                   models.Profile
		id                  uuid.UUID
		roles               []string
		tokenHash           sql.NullString
		tokenExpires        sql.NullTime
		status              sql.NullString
		skills, tags        []string
		refs                []byte
		reviewerNote        sql.NullString
		reviewed, submitted sql.NullTime
	)
	err := row.Scan(
		&id, &p.Email, &p.PasswordHash, &p.DisplayName, pq.Array(&roles), &p.EmailVerified,
		&tokenHash, &tokenExpires,
		&status, &p.SubmissionRole, &p.Handle, &p.Location, &p.Bio, pq.Array(&skills), pq.Array(&tags),
		&p.Telegram, &p.XHandle, &p.Website, &p.GitHub, &p.LinkedIn, &p.Chain, &p.Wallet,
		&refs, &reviewerNote, &reviewed, &submitted,
		&p.Version, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	roleSet, err := domain.ParseRoleSet(roles)
	if err != nil {
		return nil, fmt.Errorf("decode roles: %w", err)
	}
	if len(refs) > 0 {
		if err := json.Unmarshal(refs, &p.References); err != nil {
			return nil, fmt.Errorf("decode references: %w", err)
		}
	}
	p.ID = domain.ProfileID(id)
	p.Roles = roleSet
	p.VerificationTokenHash = tokenHash.String
	p.VerificationExpiresAt = timePtr(tokenExpires)
	p.Status = models.Status(status.String)
	p.Skills = skills
	p.Tags = tags
	p.ReviewerNote = reviewerNote.String
	p.ReviewedAt = timePtr(reviewed)
	p.SubmittedAt = timePtr(submitted)
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringsOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func referencesOrEmpty(r []models.Reference) []models.Reference {
	if r == nil {
		return []models.Reference{}
	}
	return r
}
