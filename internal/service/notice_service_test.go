package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockNoticeRepo struct {
	notices  map[string][]models.Notice
	fanCalls int
}

func newMockNoticeRepo() *mockNoticeRepo {
	return &mockNoticeRepo{notices: make(map[string][]models.Notice)}
}

func (m *mockNoticeRepo) CreateMany(_ context.Context, title, content string, classIDs []string) error {
	m.fanCalls++
	for _, classID := range classIDs {
		m.notices[classID] = append(m.notices[classID], models.Notice{Title: title, Content: content, ClassID: classID})
	}
	return nil
}

func (m *mockNoticeRepo) ListByClass(_ context.Context, classID string) ([]models.Notice, error) {
	return m.notices[classID], nil
}

func (m *mockNoticeRepo) ListBySession(_ context.Context, _ string) ([]models.Notice, error) {
	var out []models.Notice
	for _, list := range m.notices {
		out = append(out, list...)
	}
	return out, nil
}

func (m *mockNoticeRepo) PageByClass(_ context.Context, classID string, page int) ([]models.Notice, int, error) {
	list := m.notices[classID]
	total := len(list)
	start := page * repository.NoticePageSize
	if start > total {
		start = total
	}
	end := start + repository.NoticePageSize
	if end > total {
		end = total
	}
	return list[start:end], total, nil
}

type stubEnrollments struct {
	students map[string]*models.Student
}

func (s *stubEnrollments) FindStudent(_ context.Context, id string) (*models.Student, error) {
	student, ok := s.students[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return student, nil
}

func TestNoticeServiceAddFansOut(t *testing.T) {
	repo := newMockNoticeRepo()
	svc := NewNoticeService(repo, &stubEnrollments{}, &stubTermProvider{}, nil, zap.NewNop())

	err := svc.Add(context.Background(), AddNoticeRequest{Title: "PTM", Content: "Saturday 10am", ClassIDs: []string{"class-1", "class-2"}})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.fanCalls)
	assert.Len(t, repo.notices["class-1"], 1)
	assert.Len(t, repo.notices["class-2"], 1)
}

func TestNoticeServiceAddRequiresClasses(t *testing.T) {
	svc := NewNoticeService(newMockNoticeRepo(), &stubEnrollments{}, &stubTermProvider{}, nil, zap.NewNop())

	err := svc.Add(context.Background(), AddNoticeRequest{Title: "PTM", Content: "Saturday"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestNoticeServicePageForStudent(t *testing.T) {
	repo := newMockNoticeRepo()
	for i := 0; i < 25; i++ {
		repo.notices["class-1"] = append(repo.notices["class-1"], models.Notice{ClassID: "class-1"})
	}
	students := &stubEnrollments{students: map[string]*models.Student{
		"stu-1": {ID: "stu-1", ClassID: "class-1"},
	}}
	svc := NewNoticeService(repo, students, &stubTermProvider{}, nil, zap.NewNop())

	page, err := svc.PageForStudent(context.Background(), "stu-1", 2)
	require.NoError(t, err)
	assert.Len(t, page.Notices, 5)
	assert.Equal(t, 3, page.PageCount)
}

func TestNoticeServicePageForUnknownStudent(t *testing.T) {
	svc := NewNoticeService(newMockNoticeRepo(), &stubEnrollments{students: map[string]*models.Student{}}, &stubTermProvider{}, nil, zap.NewNop())

	_, err := svc.PageForStudent(context.Background(), "stu-404", 0)
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}
