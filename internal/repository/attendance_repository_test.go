package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func TestAttendanceRepositoryMarkClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	records := []models.Attendance{
		{StudentID: "stu-1", Present: true},
		{StudentID: "stu-2", Present: false},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_marked")).
		WithArgs(sqlmock.AnyArg(), "class-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("guard-1"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendances")).
		WithArgs(sqlmock.AnyArg(), "stu-1", date, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendances")).
		WithArgs(sqlmock.AnyArg(), "stu-2", date, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MarkClass(context.Background(), "class-1", date, records, false)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkClassAlreadyMarked(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_marked")).
		WithArgs(sqlmock.AnyArg(), "class-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	err := repo.MarkClass(context.Background(), "class-1", date, []models.Attendance{{StudentID: "stu-1", Present: true}}, false)
	require.ErrorIs(t, err, ErrAttendanceMarked)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryMarkClassUpdating(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	date := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO attendance_marked")).
		WithArgs(sqlmock.AnyArg(), "class-1", date).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO attendances")).
		WithArgs(sqlmock.AnyArg(), "stu-1", date, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.MarkClass(context.Background(), "class-1", date, []models.Attendance{{StudentID: "stu-1", Present: true}}, true)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
