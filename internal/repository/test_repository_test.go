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

func TestTestRepositoryUpsertMarks(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTestRepository(db)

	marks := []models.Marks{
		{StudentID: "stu-1", TestID: "test-1", Marks: 42},
		{StudentID: "stu-2", TestID: "test-1", Absent: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO marks")).
		WithArgs(sqlmock.AnyArg(), "stu-1", "test-1", 42, false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO marks")).
		WithArgs(sqlmock.AnyArg(), "stu-2", "test-1", 0, true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.UpsertMarks(context.Background(), marks))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryUpsertMarksEmptyBatch(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTestRepository(db)

	require.NoError(t, repo.UpsertMarks(context.Background(), nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTestRepositoryMarksForStudent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTestRepository(db)

	date := time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "grade", "subject_name", "total", "type", "date",
		"marks_id", "student_id", "test_id", "marks", "absent"}).
		AddRow("test-1", string(models.GradeNinth), "Physics", 50, string(models.TestTypePeriodic), date, "m-1", "stu-1", "test-1", 42, false)
	mock.ExpectQuery(regexp.QuoteMeta("FROM marks")).
		WithArgs("stu-1").
		WillReturnRows(rows)

	result, err := repo.MarksForStudent(context.Background(), "stu-1")
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.Equal(t, "Physics", result[0].SubjectName)
	require.Len(t, result[0].Marks, 1)
	require.Equal(t, 42, result[0].Marks[0].Marks.Marks)
	require.NoError(t, mock.ExpectationsWereMet())
}
