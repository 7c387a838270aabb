package session

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"vcc/internal/auth/models"
	"vcc/pkg/domain"
	"vcc/pkg/platform/sentinel"
)

type PostgresStoreSuite struct {
	suite.Suite
	db    *sql.DB
	mock  sqlmock.Sqlmock
	store *PostgresStore
	now   time.Time
}

func TestPostgresStoreSuite(t *testing.T) {
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupTest() {
	db, mock, err := sqlmock.New()
	s.Require().NoError(err)
	s.db, s.mock, s.store = db, mock, NewPostgres(db)
	s.now = time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)
}

func (s *PostgresStoreSuite) TearDownTest() {
	s.Require().NoError(s.mock.ExpectationsWereMet())
	_ = s.db.Close()
}

func (s *PostgresStoreSuite) TestCreate() {
	session, err := models.NewSession(domain.NewSessionID(), "hash", domain.NewProfileID(), "ua", "Chrome on Linux", s.now)
	s.Require().NoError(err)

	s.Run("inserts the session", func() {
		s.mock.ExpectExec("INSERT INTO sessions").
			WithArgs(uuid.UUID(session.ID), "hash", uuid.UUID(session.ProfileID), "ua", "Chrome on Linux", s.now, session.ExpiresAt).
			WillReturnResult(sqlmock.NewResult(0, 1))
		s.Require().NoError(s.store.Create(context.Background(), session))
	})

	s.Run("duplicate token hash is a conflict", func() {
		s.mock.ExpectExec("INSERT INTO sessions").WillReturnError(&pq.Error{Code: "23505"})
		s.ErrorIs(s.store.Create(context.Background(), session), sentinel.ErrConflict)
	})
}

func (s *PostgresStoreSuite) TestFindByTokenHash() {
	id, profileID := uuid.New(), uuid.New()
	cols := []string{"id", "token_hash", "profile_id", "user_agent", "device", "created_at", "expires_at"}

	s.Run("maps the row", func() {
		s.mock.ExpectQuery("SELECT (.+) FROM sessions").WithArgs("hash").
			WillReturnRows(sqlmock.NewRows(cols).AddRow(
				id.String(), "hash", profileID.String(), "ua", "Chrome on Linux", s.now, s.now.Add(models.SessionLifetime),
			))
		found, err := s.store.FindByTokenHash(context.Background(), "hash")
		s.Require().NoError(err)
		s.Equal(domain.SessionID(id), found.ID)
		s.Equal(domain.ProfileID(profileID), found.ProfileID)
		s.Equal("Chrome on Linux", found.Device)
		s.Equal(s.now.Add(models.SessionLifetime), found.ExpiresAt)
	})

	s.Run("no rows is not found", func() {
		s.mock.ExpectQuery("SELECT (.+) FROM sessions").WithArgs("missing").WillReturnError(sql.ErrNoRows)
		_, err := s.store.FindByTokenHash(context.Background(), "missing")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("driver errors are wrapped", func() {
		boom := errors.New("connection reset")
		s.mock.ExpectQuery("SELECT (.+) FROM sessions").WillReturnError(boom)
		_, err := s.store.FindByTokenHash(context.Background(), "hash")
		s.ErrorIs(err, boom)
	})
}

func (s *PostgresStoreSuite) TestDeleteByTokenHash() {
	s.mock.ExpectExec("DELETE FROM sessions").WithArgs("hash").WillReturnResult(sqlmock.NewResult(0, 1))
	s.Require().NoError(s.store.DeleteByTokenHash(context.Background(), "hash"))

	s.mock.ExpectExec("DELETE FROM sessions").WithArgs("hash").WillReturnResult(sqlmock.NewResult(0, 0))
	s.ErrorIs(s.store.DeleteByTokenHash(context.Background(), "hash"), sentinel.ErrNotFound)
}
