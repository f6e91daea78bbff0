package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type teacherRepository interface {
	Create(ctx context.Context, teacher *models.Teacher) error
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	FindByUserAndSession(ctx context.Context, userID, sessionID string) (*models.Teacher, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.TeacherDetail, error)
	ListUnassigned(ctx context.Context, sessionID string) ([]models.TeacherDetail, error)
}

type classSubjectRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	CreateClassSubject(ctx context.Context, cs *models.ClassSubject) error
	FindClassSubject(ctx context.Context, id string) (*models.ClassSubject, error)
	UpdateClassSubjectTeacher(ctx context.Context, id, teacherID string) error
	DeleteClassSubject(ctx context.Context, id string) error
	ListClassSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSubjectDetail, error)
	TeachersOfSubject(ctx context.Context, sessionID, subjectName string) ([]models.TeacherDetail, error)
}

type subjectChecker interface {
	SubjectExists(ctx context.Context, name string) (bool, error)
}

// TeacherInput describes one teacher in an add-teachers batch.
type TeacherInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}

// AssignSubjectRequest assigns a teacher to a subject in a class.
type AssignSubjectRequest struct {
	ClassID   string `json:"class_id" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
}

// TeacherService manages teacher records and subject assignments.
type TeacherService struct {
	repo      teacherRepository
	users     contactUserRepository
	classes   classSubjectRepository
	subjects  subjectChecker
	terms     latestTermProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs TeacherService.
func NewTeacherService(repo teacherRepository, users contactUserRepository, classes classSubjectRepository, subjects subjectChecker, terms latestTermProvider, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{repo: repo, users: users, classes: classes, subjects: subjects, terms: terms, validator: validate, logger: logger}
}

// AddTeachers creates or reuses a directory user per entry and gives
// each a teacher record in the latest session. Users who already hold
// a record this session are skipped.
func (s *TeacherService) AddTeachers(ctx context.Context, inputs []TeacherInput) (int, error) {
	if len(inputs) == 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "no teachers supplied")
	}
	for i := range inputs {
		if err := s.validator.Struct(inputs[i]); err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid teacher %s", inputs[i].Email))
		}
	}
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, input := range inputs {
		email := strings.ToLower(strings.TrimSpace(input.Email))
		user, err := s.users.UpsertByEmail(ctx, &models.User{Name: input.Name, Email: &email, Role: models.RoleTeacher})
		if err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher user")
		}
		if _, err := s.repo.FindByUserAndSession(ctx, user.ID, term.ID); err == nil {
			continue
		} else if err != sql.ErrNoRows {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check teacher")
		}
		teacher := &models.Teacher{UserID: user.ID, SessionID: term.ID}
		if err := s.repo.Create(ctx, teacher); err != nil {
			return created, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
		}
		created++
	}
	s.logger.Info("teachers added", zap.Int("created", created), zap.String("session_id", term.ID))
	return created, nil
}

// Teachers lists the latest session's teachers.
func (s *TeacherService) Teachers(ctx context.Context) ([]models.TeacherDetail, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.repo.ListBySession(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// UnassignedTeachers lists teachers without a homeroom this session.
func (s *TeacherService) UnassignedTeachers(ctx context.Context) ([]models.TeacherDetail, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.repo.ListUnassigned(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list unassigned teachers")
	}
	return teachers, nil
}

// AssignSubject assigns a teacher to teach a subject in a class.
func (s *TeacherService) AssignSubject(ctx context.Context, req AssignSubjectRequest) (*models.ClassSubject, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}
	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if _, err := s.repo.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	exists, err := s.subjects.SubjectExists(ctx, req.Subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown subject: "+req.Subject)
	}
	cs := &models.ClassSubject{ClassID: req.ClassID, SubjectName: req.Subject, TeacherID: req.TeacherID}
	if err := s.classes.CreateClassSubject(ctx, cs); err != nil {
		if errors.Is(err, repository.ErrDuplicateClassSubject) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "subject already assigned in this class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to assign subject")
	}
	return cs, nil
}

// UpdateAssignment swaps the teacher on a class-subject assignment.
func (s *TeacherService) UpdateAssignment(ctx context.Context, assignmentID, teacherID string) (*models.ClassSubject, error) {
	cs, err := s.classes.FindClassSubject(ctx, assignmentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if _, err := s.repo.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.classes.UpdateClassSubjectTeacher(ctx, assignmentID, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	cs.TeacherID = teacherID
	return cs, nil
}

// RemoveAssignment deletes a class-subject assignment.
func (s *TeacherService) RemoveAssignment(ctx context.Context, assignmentID string) error {
	if err := s.classes.DeleteClassSubject(ctx, assignmentID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}

// Assignments returns a teacher's class-subject assignments.
func (s *TeacherService) Assignments(ctx context.Context, teacherID string) ([]models.ClassSubjectDetail, error) {
	assignments, err := s.classes.ListClassSubjectsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// TeachersOfSubject lists the latest session's teachers of a subject.
func (s *TeacherService) TeachersOfSubject(ctx context.Context, subject string) ([]models.TeacherDetail, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	teachers, err := s.classes.TeachersOfSubject(ctx, term.ID, subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subject teachers")
	}
	return teachers, nil
}
