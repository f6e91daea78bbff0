package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type mockStudentRepo struct {
	profiles        map[string]models.StudentProfile
	enrolledSr      map[string]bool
	takenRolls      map[string]map[string]bool
	students        []models.Student
	links           map[string][]string
	profileUsers    map[string][]models.UserContact
	sessionStudents map[string][]models.StudentDetail
	batchCalls      int
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		profiles:        make(map[string]models.StudentProfile),
		enrolledSr:      make(map[string]bool),
		takenRolls:      make(map[string]map[string]bool),
		links:           make(map[string][]string),
		profileUsers:    make(map[string][]models.UserContact),
		sessionStudents: make(map[string][]models.StudentDetail),
	}
}

func (m *mockStudentRepo) CreateProfiles(_ context.Context, profiles []models.StudentProfile) error {
	for i := range profiles {
		if profiles[i].ID == "" {
			profiles[i].ID = uuid.NewString()
		}
		m.profiles[profiles[i].SrNo] = profiles[i]
	}
	return nil
}

func (m *mockStudentRepo) FindProfileByID(_ context.Context, id string) (*models.StudentProfile, error) {
	for _, profile := range m.profiles {
		if profile.ID == id {
			return &profile, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ListProfiles(_ context.Context) ([]models.StudentProfile, error) {
	var out []models.StudentProfile
	for _, profile := range m.profiles {
		out = append(out, profile)
	}
	return out, nil
}

func (m *mockStudentRepo) FindProfilesBySrNos(_ context.Context, srNos []string) ([]models.StudentProfile, error) {
	var out []models.StudentProfile
	for _, srNo := range srNos {
		if profile, ok := m.profiles[srNo]; ok {
			out = append(out, profile)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) ExistingSrNos(_ context.Context, srNos []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, srNo := range srNos {
		if _, ok := m.profiles[srNo]; ok {
			out[srNo] = true
		}
	}
	return out, nil
}

func (m *mockStudentRepo) UpdateProfile(_ context.Context, profile *models.StudentProfile) error {
	m.profiles[profile.SrNo] = *profile
	return nil
}

func (m *mockStudentRepo) LinkUser(_ context.Context, profileID, userID string) error {
	m.links[profileID] = append(m.links[profileID], userID)
	return nil
}

func (m *mockStudentRepo) ListProfileUsers(_ context.Context, profileID string) ([]models.UserContact, error) {
	return m.profileUsers[profileID], nil
}

func (m *mockStudentRepo) StudentsByProfile(_ context.Context, profileID string) ([]models.Student, error) {
	var out []models.Student
	for _, student := range m.students {
		if student.ProfileID == profileID {
			out = append(out, student)
		}
	}
	return out, nil
}

func (m *mockStudentRepo) ListBySession(_ context.Context, sessionID string) ([]models.StudentDetail, error) {
	return m.sessionStudents[sessionID], nil
}

func (m *mockStudentRepo) BatchCreate(_ context.Context, students []models.Student) error {
	m.batchCalls++
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
	}
	m.students = append(m.students, students...)
	return nil
}

func (m *mockStudentRepo) FindStudent(_ context.Context, id string) (*models.Student, error) {
	for i := range m.students {
		if m.students[i].ID == id {
			return &m.students[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) EnrolledSrNos(_ context.Context, _ string, srNos []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, srNo := range srNos {
		if m.enrolledSr[srNo] {
			out[srNo] = true
		}
	}
	return out, nil
}

func (m *mockStudentRepo) RollNosByClass(_ context.Context, classID string) (map[string]bool, error) {
	if taken, ok := m.takenRolls[classID]; ok {
		return taken, nil
	}
	return map[string]bool{}, nil
}

func (m *mockStudentRepo) UpdateStudent(_ context.Context, student *models.Student) error {
	for i := range m.students {
		if m.students[i].ID == student.ID {
			m.students[i] = *student
			return nil
		}
	}
	return sql.ErrNoRows
}

type mockContactUsers struct {
	byEmail map[string]*models.User
	byPhone map[string]*models.User
	created int
}

func newMockContactUsers() *mockContactUsers {
	return &mockContactUsers{byEmail: make(map[string]*models.User), byPhone: make(map[string]*models.User)}
}

func (m *mockContactUsers) FindByEmailOrPhone(_ context.Context, email, phone string) (*models.User, error) {
	if user, ok := m.byEmail[email]; ok {
		return user, nil
	}
	if user, ok := m.byPhone[phone]; ok {
		return user, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockContactUsers) UpsertByEmail(_ context.Context, user *models.User) (*models.User, error) {
	if existing, ok := m.byEmail[*user.Email]; ok {
		return existing, nil
	}
	user.ID = uuid.NewString()
	m.byEmail[*user.Email] = user
	m.created++
	return user, nil
}

func (m *mockContactUsers) Create(_ context.Context, user *models.User) error {
	user.ID = uuid.NewString()
	if user.Phone != nil {
		m.byPhone[*user.Phone] = user
	}
	m.created++
	return nil
}

type mockGradeSections struct {
	classes map[string]*models.Class
}

func (m *mockGradeSections) FindByGradeSection(_ context.Context, _ string, grade models.Grade, section string) (*models.Class, error) {
	class, ok := m.classes[string(grade)+"/"+section]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return class, nil
}

func (m *mockGradeSections) ListByIDs(_ context.Context, ids []string) ([]models.ClassRef, error) {
	var refs []models.ClassRef
	for _, id := range ids {
		for _, class := range m.classes {
			if class.ID == id {
				refs = append(refs, models.ClassRef{ID: id, Grade: class.Grade, Section: class.Section})
			}
		}
	}
	return refs, nil
}

type mockGroups struct {
	ids map[string]bool
}

func (m *mockGroups) ExistingGroupIDs(_ context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, id := range ids {
		if m.ids[id] {
			out[id] = true
		}
	}
	return out, nil
}

type stubStudentMarks struct {
	byStudent map[string][]models.TestMarks
}

func (s *stubStudentMarks) MarksForStudent(_ context.Context, studentID string) ([]models.TestMarks, error) {
	return s.byStudent[studentID], nil
}

type stubTermProvider struct {
	session *models.AcademicSession
}

func (s *stubTermProvider) Latest(_ context.Context) (*models.AcademicSession, error) {
	if s.session == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic session exists")
	}
	return s.session, nil
}

func (s *stubTermProvider) Find(_ context.Context, id string) (*models.AcademicSession, error) {
	if s.session != nil && s.session.ID == id {
		return s.session, nil
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

func newEnrollFixture() (*StudentService, *mockStudentRepo) {
	repo := newMockStudentRepo()
	repo.profiles["SR-1"] = models.StudentProfile{ID: "prof-1", SrNo: "SR-1", Name: "Asha"}
	repo.profiles["SR-2"] = models.StudentProfile{ID: "prof-2", SrNo: "SR-2", Name: "Vikram"}
	classes := &mockGradeSections{classes: map[string]*models.Class{
		"NINTH/A": {ID: "class-9a", Grade: models.GradeNinth, Section: "A", SessionID: "sess-1"},
	}}
	groups := &mockGroups{ids: map[string]bool{"group-sci": true}}
	terms := &stubTermProvider{session: &models.AcademicSession{ID: "sess-1"}}
	svc := NewStudentService(repo, newMockContactUsers(), classes, groups, terms, &stubStudentMarks{}, nil, zap.NewNop())
	return svc, repo
}

func TestStudentServiceEnroll(t *testing.T) {
	svc, repo := newEnrollFixture()

	count, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "1", Grade: "9", Section: "A"},
		{SrNo: "SR-2", RollNo: "2", Grade: "9", Section: "A", GroupID: "group-sci"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, 1, repo.batchCalls)
	require.Len(t, repo.students, 2)
	assert.Equal(t, "class-9a", repo.students[0].ClassID)
}

func TestStudentServiceEnrollUnknownSrNo(t *testing.T) {
	svc, repo := newEnrollFixture()

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-404", RollNo: "1", Grade: "9", Section: "A"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Contains(t, appErr.Message, "SR-404")
	assert.Empty(t, repo.students)
}

func TestStudentServiceEnrollAlreadyEnrolled(t *testing.T) {
	svc, repo := newEnrollFixture()
	repo.enrolledSr["SR-2"] = true
	repo.enrolledSr["SR-1"] = true

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-2", RollNo: "2", Grade: "9", Section: "A"},
		{SrNo: "SR-1", RollNo: "1", Grade: "9", Section: "A"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Equal(t, "already enrolled: SR-1, SR-2", appErr.Message)
	assert.Equal(t, 0, repo.batchCalls)
}

func TestStudentServiceEnrollDuplicateRollInBatch(t *testing.T) {
	svc, repo := newEnrollFixture()

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "1", Grade: "9", Section: "A"},
		{SrNo: "SR-2", RollNo: "1", Grade: "9", Section: "A"},
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Equal(t, 0, repo.batchCalls)
}

func TestStudentServiceEnrollDuplicateRollAcrossGradeSpellings(t *testing.T) {
	svc, repo := newEnrollFixture()

	// "9" and "NINTH" resolve to the same class, so the rolls collide.
	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "5", Grade: "9", Section: "A"},
		{SrNo: "SR-2", RollNo: "5", Grade: "NINTH", Section: "A"},
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Equal(t, 0, repo.batchCalls)
	assert.Empty(t, repo.students)
}

func TestStudentServiceEnrollRepeatedSrNo(t *testing.T) {
	svc, repo := newEnrollFixture()

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "5", Grade: "9", Section: "A"},
		{SrNo: "SR-1", RollNo: "6", Grade: "9", Section: "A"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 409, appErr.Status)
	assert.Contains(t, appErr.Message, "SR-1")
	assert.Equal(t, 0, repo.batchCalls)
	assert.Empty(t, repo.students)
}

func TestStudentServiceEnrollRollTakenInClass(t *testing.T) {
	svc, repo := newEnrollFixture()
	repo.takenRolls["class-9a"] = map[string]bool{"1": true}

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "1", Grade: "9", Section: "A"},
	})
	require.Error(t, err)
	assert.Equal(t, 409, appErrors.FromError(err).Status)
	assert.Equal(t, 0, repo.batchCalls)
}

func TestStudentServiceEnrollUnknownGroup(t *testing.T) {
	svc, repo := newEnrollFixture()

	_, err := svc.Enroll(context.Background(), []EnrollEntry{
		{SrNo: "SR-1", RollNo: "1", Grade: "9", Section: "A", GroupID: "group-404"},
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Contains(t, appErr.Message, "group-404")
	assert.Equal(t, 0, repo.batchCalls)
}

func TestStudentServiceCurrentStudents(t *testing.T) {
	svc, repo := newEnrollFixture()
	repo.sessionStudents["sess-1"] = []models.StudentDetail{
		{Student: models.Student{ID: "stu-1", ProfileID: "prof-1", ClassID: "class-9a", RollNo: "1"}, ProfileName: "Asha", SrNo: "SR-1", Grade: models.GradeNinth, Section: "A"},
		{Student: models.Student{ID: "stu-2", ProfileID: "prof-2", ClassID: "class-9a", RollNo: "2"}, ProfileName: "Vikram", SrNo: "SR-2", Grade: models.GradeNinth, Section: "A"},
	}

	students, err := svc.CurrentStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "SR-1", students[0].SrNo)
}

func TestStudentServiceStudentBySrNo(t *testing.T) {
	repo := newMockStudentRepo()
	repo.profiles["SR-1"] = models.StudentProfile{ID: "prof-1", SrNo: "SR-1", Name: "Asha"}
	repo.students = []models.Student{{ID: "stu-1", ProfileID: "prof-1", ClassID: "class-9a", RollNo: "1"}}
	classes := &mockGradeSections{classes: map[string]*models.Class{
		"NINTH/A": {ID: "class-9a", Grade: models.GradeNinth, Section: "A", SessionID: "sess-1"},
	}}
	marks := &stubStudentMarks{byStudent: map[string][]models.TestMarks{
		"stu-1": {{Test: models.Test{ID: "test-1", SubjectName: "Physics"}}},
	}}
	terms := &stubTermProvider{session: &models.AcademicSession{ID: "sess-1"}}
	svc := NewStudentService(repo, newMockContactUsers(), classes, &mockGroups{}, terms, marks, nil, zap.NewNop())

	record, err := svc.StudentBySrNo(context.Background(), "SR-1")
	require.NoError(t, err)
	assert.Equal(t, "SR-1", record.SrNo)
	require.Len(t, record.Marks, 1)
	assert.Equal(t, "Physics", record.Marks[0].SubjectName)
	require.Len(t, record.Enrollments, 1)
	assert.Equal(t, "class-9a", record.Enrollments[0].ID)
}

func TestStudentServiceStudentBySrNoUnknown(t *testing.T) {
	svc, _ := newEnrollFixture()

	_, err := svc.StudentBySrNo(context.Background(), "SR-404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, 404, appErr.Status)
	assert.Contains(t, appErr.Message, "SR-404")
}

func TestStudentServiceAddProfilesSkipsExisting(t *testing.T) {
	repo := newMockStudentRepo()
	repo.profiles["SR-1"] = models.StudentProfile{ID: "prof-1", SrNo: "SR-1", Name: "Asha"}
	users := newMockContactUsers()
	svc := NewStudentService(repo, users, &mockGradeSections{}, &mockGroups{}, &stubTermProvider{}, &stubStudentMarks{}, nil, zap.NewNop())

	dob := time.Date(2012, 6, 1, 0, 0, 0, 0, time.UTC)
	count, err := svc.AddProfiles(context.Background(), []ProfileInput{
		{SrNo: "SR-1", Name: "Asha", DOB: dob, Gender: "FEMALE"},
		{SrNo: "SR-3", Name: "Meera", DOB: dob, Gender: "FEMALE", Emails: []string{"meera@example.com"}, FatherPhone: "9999999999"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, repo.profiles, 2)

	// One user per contact point, both linked to the new profile.
	profileID := repo.profiles["SR-3"].ID
	assert.Equal(t, 2, users.created)
	assert.Len(t, repo.links[profileID], 2)
}
