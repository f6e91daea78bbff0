package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func TestNoticeRepositoryCreateManyFansOut(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notices")).
		WithArgs(sqlmock.AnyArg(), "Sports day", "Ground at 9am", "class-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO notices")).
		WithArgs(sqlmock.AnyArg(), "Sports day", "Ground at 9am", "class-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateMany(context.Background(), "Sports day", "Ground at 9am", []string{"class-1", "class-2"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNoticeRepositoryPageByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewNoticeRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "title", "content", "class_id", "created_at"}).
		AddRow("n-11", "Eleventh", "body", "class-1", now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, class_id, created_at FROM notices")).
		WithArgs("class-1", NoticePageSize, NoticePageSize).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM notices WHERE class_id = $1")).
		WithArgs("class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	notices, total, err := repo.PageByClass(context.Background(), "class-1", 1)
	require.NoError(t, err)
	require.Len(t, notices, 1)
	require.Equal(t, 11, total)
	require.NoError(t, mock.ExpectationsWereMet())
}
