package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSessionRepositoryLatest(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)
	rows := sqlmock.NewRows([]string{"id", "start_date", "end_date"}).
		AddRow("sess-1", start, end)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, start_date, end_date FROM academic_sessions")).
		WillReturnRows(rows)

	session, err := repo.Latest(context.Background())
	require.NoError(t, err)
	require.Equal(t, "sess-1", session.ID)
	require.True(t, session.StartDate.Equal(start))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateIfNoOverlapRejectsOverlap(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_sessions")).
		WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateIfNoOverlap(context.Background(), &models.AcademicSession{StartDate: start, EndDate: end})
	require.ErrorIs(t, err, ErrSessionOverlap)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryCreateIfNoOverlapInserts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSessionRepository(db)

	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(1, 0, 0)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM academic_sessions")).
		WithArgs(start, end).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO academic_sessions")).
		WithArgs(sqlmock.AnyArg(), start, end).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	session := &models.AcademicSession{StartDate: start, EndDate: end}
	require.NoError(t, repo.CreateIfNoOverlap(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
