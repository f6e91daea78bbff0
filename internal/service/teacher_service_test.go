package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockTeacherRepo struct {
	teachers map[string]*models.Teacher
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{teachers: make(map[string]*models.Teacher)}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	stored := *teacher
	m.teachers[teacher.ID] = &stored
	return nil
}

func (m *mockTeacherRepo) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	teacher, ok := m.teachers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return teacher, nil
}

func (m *mockTeacherRepo) FindByUserAndSession(_ context.Context, userID, sessionID string) (*models.Teacher, error) {
	for _, teacher := range m.teachers {
		if teacher.UserID == userID && teacher.SessionID == sessionID {
			return teacher, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ListBySession(_ context.Context, sessionID string) ([]models.TeacherDetail, error) {
	var out []models.TeacherDetail
	for _, teacher := range m.teachers {
		if teacher.SessionID == sessionID {
			out = append(out, models.TeacherDetail{Teacher: *teacher})
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) ListUnassigned(_ context.Context, sessionID string) ([]models.TeacherDetail, error) {
	return m.ListBySession(context.Background(), sessionID)
}

type mockClassSubjects struct {
	classes     map[string]*models.Class
	assignments map[string]*models.ClassSubject
}

func newMockClassSubjects() *mockClassSubjects {
	return &mockClassSubjects{classes: make(map[string]*models.Class), assignments: make(map[string]*models.ClassSubject)}
}

func (m *mockClassSubjects) FindByID(_ context.Context, id string) (*models.Class, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (m *mockClassSubjects) CreateClassSubject(_ context.Context, cs *models.ClassSubject) error {
	for _, existing := range m.assignments {
		if existing.ClassID == cs.ClassID && existing.SubjectName == cs.SubjectName {
			return repository.ErrDuplicateClassSubject
		}
	}
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	stored := *cs
	m.assignments[cs.ID] = &stored
	return nil
}

func (m *mockClassSubjects) FindClassSubject(_ context.Context, id string) (*models.ClassSubject, error) {
	cs, ok := m.assignments[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cs, nil
}

func (m *mockClassSubjects) UpdateClassSubjectTeacher(_ context.Context, id, teacherID string) error {
	cs, ok := m.assignments[id]
	if !ok {
		return sql.ErrNoRows
	}
	cs.TeacherID = teacherID
	return nil
}

func (m *mockClassSubjects) DeleteClassSubject(_ context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.assignments, id)
	return nil
}

func (m *mockClassSubjects) ListClassSubjectsByTeacher(_ context.Context, teacherID string) ([]models.ClassSubjectDetail, error) {
	var out []models.ClassSubjectDetail
	for _, cs := range m.assignments {
		if cs.TeacherID == teacherID {
			out = append(out, models.ClassSubjectDetail{ClassSubject: *cs})
		}
	}
	return out, nil
}

func (m *mockClassSubjects) TeachersOfSubject(_ context.Context, _, _ string) ([]models.TeacherDetail, error) {
	return nil, nil
}

type stubSubjects struct {
	names map[string]bool
}

func (s *stubSubjects) SubjectExists(_ context.Context, name string) (bool, error) {
	return s.names[name], nil
}

func newTeacherFixture() (*TeacherService, *mockTeacherRepo, *mockContactUsers, *mockClassSubjects) {
	repo := newMockTeacherRepo()
	users := newMockContactUsers()
	classes := newMockClassSubjects()
	classes.classes["class-9a"] = &models.Class{ID: "class-9a", Grade: models.GradeNinth, Section: "A", SessionID: "sess-1"}
	subjects := &stubSubjects{names: map[string]bool{"Physics": true}}
	terms := &stubTermProvider{session: &models.AcademicSession{ID: "sess-1"}}
	svc := NewTeacherService(repo, users, classes, subjects, terms, nil, zap.NewNop())
	return svc, repo, users, classes
}

func TestTeacherServiceAddTeachers(t *testing.T) {
	svc, repo, users, _ := newTeacherFixture()

	created, err := svc.AddTeachers(context.Background(), []TeacherInput{
		{Name: "Asha", Email: "Asha@Example.com"},
		{Name: "Vikram", Email: "vikram@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)
	assert.Len(t, repo.teachers, 2)
	assert.Equal(t, 2, users.created)

	// Re-adding the same teacher is a no-op for the session.
	created, err = svc.AddTeachers(context.Background(), []TeacherInput{
		{Name: "Asha", Email: "asha@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, created)
	assert.Len(t, repo.teachers, 2)
}

func TestTeacherServiceAssignSubject(t *testing.T) {
	svc, repo, _, classes := newTeacherFixture()
	teacher := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	require.NoError(t, repo.Create(context.Background(), teacher))

	cs, err := svc.AssignSubject(context.Background(), AssignSubjectRequest{ClassID: "class-9a", Subject: "Physics", TeacherID: teacher.ID})
	require.NoError(t, err)
	require.NotEmpty(t, cs.ID)
	assert.Len(t, classes.assignments, 1)

	// The (class, subject) pair is unique.
	_, err = svc.AssignSubject(context.Background(), AssignSubjectRequest{ClassID: "class-9a", Subject: "Physics", TeacherID: teacher.ID})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
}

func TestTeacherServiceAssignUnknownSubject(t *testing.T) {
	svc, repo, _, _ := newTeacherFixture()
	teacher := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	require.NoError(t, repo.Create(context.Background(), teacher))

	_, err := svc.AssignSubject(context.Background(), AssignSubjectRequest{ClassID: "class-9a", Subject: "Alchemy", TeacherID: teacher.ID})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Contains(t, appErr.Message, "Alchemy")
}

func TestTeacherServiceUpdateAssignment(t *testing.T) {
	svc, repo, _, classes := newTeacherFixture()
	first := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	second := &models.Teacher{UserID: "user-2", SessionID: "sess-1"}
	require.NoError(t, repo.Create(context.Background(), first))
	require.NoError(t, repo.Create(context.Background(), second))

	cs, err := svc.AssignSubject(context.Background(), AssignSubjectRequest{ClassID: "class-9a", Subject: "Physics", TeacherID: first.ID})
	require.NoError(t, err)

	updated, err := svc.UpdateAssignment(context.Background(), cs.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.TeacherID)
	assert.Equal(t, second.ID, classes.assignments[cs.ID].TeacherID)
}
