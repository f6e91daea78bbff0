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

type mockClassRepo struct {
	classes  map[string]*models.Class
	subjects map[string]*models.ClassSubject
}

func newMockClassRepo() *mockClassRepo {
	return &mockClassRepo{classes: make(map[string]*models.Class), subjects: make(map[string]*models.ClassSubject)}
}

func (m *mockClassRepo) FindByID(_ context.Context, id string) (*models.Class, error) {
	class, ok := m.classes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (m *mockClassRepo) FindByGradeSection(_ context.Context, sessionID string, grade models.Grade, section string) (*models.Class, error) {
	for _, class := range m.classes {
		if class.SessionID == sessionID && class.Grade == grade && class.Section == section {
			return class, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) ListBySession(_ context.Context, sessionID string) ([]models.Class, error) {
	var out []models.Class
	for _, class := range m.classes {
		if class.SessionID == sessionID {
			out = append(out, *class)
		}
	}
	return out, nil
}

func (m *mockClassRepo) ListByGrade(_ context.Context, sessionID string, grade models.Grade) ([]models.Class, error) {
	var out []models.Class
	for _, class := range m.classes {
		if class.SessionID == sessionID && class.Grade == grade {
			out = append(out, *class)
		}
	}
	return out, nil
}

func (m *mockClassRepo) ListByIDs(_ context.Context, ids []string) ([]models.ClassRef, error) {
	var out []models.ClassRef
	for _, id := range ids {
		if class, ok := m.classes[id]; ok {
			out = append(out, models.ClassRef{ID: class.ID, Grade: class.Grade, Section: class.Section})
		}
	}
	return out, nil
}

func (m *mockClassRepo) Create(_ context.Context, class *models.Class) error {
	for _, existing := range m.classes {
		if existing.SessionID == class.SessionID && existing.Grade == class.Grade && existing.Section == class.Section {
			return repository.ErrDuplicateClass
		}
		if existing.SessionID == class.SessionID && existing.TeacherID == class.TeacherID {
			return repository.ErrTeacherAssigned
		}
	}
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	stored := *class
	m.classes[class.ID] = &stored
	return nil
}

func (m *mockClassRepo) UpdateTeacher(_ context.Context, classID, teacherID, sessionID string) error {
	class, ok := m.classes[classID]
	if !ok {
		return sql.ErrNoRows
	}
	for _, existing := range m.classes {
		if existing.ID != classID && existing.SessionID == sessionID && existing.TeacherID == teacherID {
			return repository.ErrTeacherAssigned
		}
	}
	class.TeacherID = teacherID
	return nil
}

func (m *mockClassRepo) ListClassSubjectsByClass(_ context.Context, classID string) ([]models.ClassSubject, error) {
	var out []models.ClassSubject
	for _, cs := range m.subjects {
		if cs.ClassID == classID {
			out = append(out, *cs)
		}
	}
	return out, nil
}

func (m *mockClassRepo) CreateClassSubject(_ context.Context, cs *models.ClassSubject) error {
	for _, existing := range m.subjects {
		if existing.ClassID == cs.ClassID && existing.SubjectName == cs.SubjectName {
			return repository.ErrDuplicateClassSubject
		}
	}
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	stored := *cs
	m.subjects[cs.ID] = &stored
	return nil
}

type mockClassRoster struct {
	rosters map[string][]models.StudentDetail
	batches [][]models.Student
}

func (m *mockClassRoster) ListByClass(_ context.Context, classID string) ([]models.StudentDetail, error) {
	return m.rosters[classID], nil
}

func (m *mockClassRoster) BatchCreate(_ context.Context, students []models.Student) error {
	m.batches = append(m.batches, students)
	return nil
}

type stubTerms struct {
	sessions map[string]*models.AcademicSession
	latest   string
}

func (s *stubTerms) Latest(_ context.Context) (*models.AcademicSession, error) {
	session, ok := s.sessions[s.latest]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic session exists")
	}
	return session, nil
}

func (s *stubTerms) Find(_ context.Context, id string) (*models.AcademicSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
	}
	return session, nil
}

func newClassFixture() (*ClassService, *mockClassRepo, *mockTeacherRepo, *mockClassRoster) {
	repo := newMockClassRepo()
	teachers := newMockTeacherRepo()
	roster := &mockClassRoster{rosters: make(map[string][]models.StudentDetail)}
	terms := &stubTerms{latest: "sess-2", sessions: map[string]*models.AcademicSession{
		"sess-1": {ID: "sess-1"},
		"sess-2": {ID: "sess-2"},
	}}
	svc := NewClassService(repo, teachers, roster, terms, nil, zap.NewNop())
	return svc, repo, teachers, roster
}

func TestClassServiceCreate(t *testing.T) {
	svc, _, teachers, _ := newClassFixture()
	teacher := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	require.NoError(t, teachers.Create(context.Background(), teacher))

	class, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: teacher.ID, SessionID: "sess-1"})
	require.NoError(t, err)
	assert.Equal(t, models.GradeNinth, class.Grade)
	require.NotEmpty(t, class.ID)

	// The (grade, section) pair is unique within a session.
	_, err = svc.Create(context.Background(), CreateClassRequest{Grade: "NINTH", Section: "A", TeacherID: teacher.ID, SessionID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)

	// One homeroom per teacher per session.
	_, err = svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "B", TeacherID: teacher.ID, SessionID: "sess-1"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "teacher already assigned to a class", appErr.Message)
}

func TestClassServiceCreateUnknownTeacher(t *testing.T) {
	svc, _, _, _ := newClassFixture()

	_, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: "ghost", SessionID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestClassServiceCreateBadGrade(t *testing.T) {
	svc, _, teachers, _ := newClassFixture()
	teacher := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	require.NoError(t, teachers.Create(context.Background(), teacher))

	_, err := svc.Create(context.Background(), CreateClassRequest{Grade: "THIRTEENTH", Section: "A", TeacherID: teacher.ID, SessionID: "sess-1"})
	require.Error(t, err)
	assert.Equal(t, 400, appErrors.FromError(err).Status)
}

func TestClassServiceChangeTeacher(t *testing.T) {
	svc, repo, teachers, _ := newClassFixture()
	first := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	second := &models.Teacher{UserID: "user-2", SessionID: "sess-1"}
	require.NoError(t, teachers.Create(context.Background(), first))
	require.NoError(t, teachers.Create(context.Background(), second))

	class, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: first.ID, SessionID: "sess-1"})
	require.NoError(t, err)

	updated, err := svc.ChangeTeacher(context.Background(), class.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, updated.TeacherID)
	assert.Equal(t, second.ID, repo.classes[class.ID].TeacherID)
}

func TestClassServiceClone(t *testing.T) {
	svc, repo, teachers, roster := newClassFixture()
	first := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	second := &models.Teacher{UserID: "user-2", SessionID: "sess-2"}
	require.NoError(t, teachers.Create(context.Background(), first))
	require.NoError(t, teachers.Create(context.Background(), second))

	source, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: first.ID, SessionID: "sess-1"})
	require.NoError(t, err)
	require.NoError(t, repo.CreateClassSubject(context.Background(), &models.ClassSubject{ClassID: source.ID, SubjectName: "Physics", TeacherID: first.ID}))
	roster.rosters[source.ID] = []models.StudentDetail{
		{Student: models.Student{ID: "stu-1", ProfileID: "prof-1", ClassID: source.ID, RollNo: "1", GroupID: "group-sci"}},
		{Student: models.Student{ID: "stu-2", ProfileID: "prof-2", ClassID: source.ID, RollNo: "2", GroupID: "group-sci"}},
	}

	clone, err := svc.Clone(context.Background(), CloneClassRequest{ClassID: source.ID, TargetSessionID: "sess-2", TeacherID: second.ID})
	require.NoError(t, err)
	assert.NotEqual(t, source.ID, clone.ID)
	assert.Equal(t, source.Grade, clone.Grade)
	assert.Equal(t, "sess-2", clone.SessionID)

	// The roster carries over with roll numbers and groups, re-keyed to
	// the new class.
	require.Len(t, roster.batches, 1)
	copied := roster.batches[0]
	require.Len(t, copied, 2)
	assert.Equal(t, clone.ID, copied[0].ClassID)
	assert.Equal(t, "prof-1", copied[0].ProfileID)
	assert.Equal(t, "1", copied[0].RollNo)
	assert.Equal(t, "group-sci", copied[0].GroupID)

	subjects, err := repo.ListClassSubjectsByClass(context.Background(), clone.ID)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	assert.Equal(t, "Physics", subjects[0].SubjectName)
}

func TestClassServiceCloneUnknownSource(t *testing.T) {
	svc, _, teachers, _ := newClassFixture()
	teacher := &models.Teacher{UserID: "user-1", SessionID: "sess-2"}
	require.NoError(t, teachers.Create(context.Background(), teacher))

	_, err := svc.Clone(context.Background(), CloneClassRequest{ClassID: "ghost", TargetSessionID: "sess-2", TeacherID: teacher.ID})
	require.Error(t, err)
	assert.Equal(t, 404, appErrors.FromError(err).Status)
}

func TestClassServiceCurrentClasses(t *testing.T) {
	svc, _, teachers, _ := newClassFixture()
	first := &models.Teacher{UserID: "user-1", SessionID: "sess-1"}
	second := &models.Teacher{UserID: "user-2", SessionID: "sess-2"}
	require.NoError(t, teachers.Create(context.Background(), first))
	require.NoError(t, teachers.Create(context.Background(), second))

	_, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: first.ID, SessionID: "sess-1"})
	require.NoError(t, err)
	current, err := svc.Create(context.Background(), CreateClassRequest{Grade: "9", Section: "A", TeacherID: second.ID, SessionID: "sess-2"})
	require.NoError(t, err)

	classes, err := svc.CurrentClasses(context.Background())
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, current.ID, classes[0].ID)
}
