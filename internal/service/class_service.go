package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type classRepository interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
	FindByGradeSection(ctx context.Context, sessionID string, grade models.Grade, section string) (*models.Class, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Class, error)
	ListByGrade(ctx context.Context, sessionID string, grade models.Grade) ([]models.Class, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.ClassRef, error)
	Create(ctx context.Context, class *models.Class) error
	UpdateTeacher(ctx context.Context, classID, teacherID, sessionID string) error
	ListClassSubjectsByClass(ctx context.Context, classID string) ([]models.ClassSubject, error)
	CreateClassSubject(ctx context.Context, cs *models.ClassSubject) error
}

type teacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type rosterRepository interface {
	ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error)
	BatchCreate(ctx context.Context, students []models.Student) error
}

type latestTermProvider interface {
	Latest(ctx context.Context) (*models.AcademicSession, error)
	Find(ctx context.Context, id string) (*models.AcademicSession, error)
}

// CreateClassRequest describes a new class payload.
type CreateClassRequest struct {
	Grade     string `json:"grade" validate:"required"`
	Section   string `json:"section" validate:"required"`
	TeacherID string `json:"teacher_id" validate:"required"`
	SessionID string `json:"session_id" validate:"required"`
}

// CloneClassRequest duplicates a class's roster into another session.
type CloneClassRequest struct {
	ClassID         string `json:"class_id" validate:"required"`
	TargetSessionID string `json:"target_session_id" validate:"required"`
	TeacherID       string `json:"teacher_id" validate:"required"`
}

// ClassService manages classes within academic sessions.
type ClassService struct {
	repo      classRepository
	teachers  teacherReader
	roster    rosterRepository
	terms     latestTermProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, teachers teacherReader, roster rosterRepository, terms latestTermProvider, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, teachers: teachers, roster: roster, terms: terms, validator: validate, logger: logger}
}

// Create registers a class. The grade+section and teacher uniqueness
// rules are enforced transactionally in the repository.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	grade, err := models.ParseGrade(req.Grade)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if _, err := s.terms.Find(ctx, req.SessionID); err != nil {
		return nil, err
	}
	class := &models.Class{Grade: grade, Section: req.Section, TeacherID: req.TeacherID, SessionID: req.SessionID}
	if err := s.repo.Create(ctx, class); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateClass):
			return nil, appErrors.Clone(appErrors.ErrConflict, "class already exists for this session")
		case errors.Is(err, repository.ErrTeacherAssigned):
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to a class")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("grade", string(class.Grade)), zap.String("section", class.Section))
	return class, nil
}

// ChangeTeacher reassigns a class's homeroom teacher.
func (s *ClassService) ChangeTeacher(ctx context.Context, classID, teacherID string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, classID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.repo.UpdateTeacher(ctx, classID, teacherID, class.SessionID); err != nil {
		if errors.Is(err, repository.ErrTeacherAssigned) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already assigned to a class")
		}
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to change teacher")
	}
	class.TeacherID = teacherID
	return class, nil
}

// Clone duplicates a class into another session, carrying the roster
// (roll numbers and groups) and the subject list over.
func (s *ClassService) Clone(ctx context.Context, req CloneClassRequest) (*models.Class, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clone payload")
	}
	source, err := s.repo.FindByID(ctx, req.ClassID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	clone, err := s.Create(ctx, CreateClassRequest{
		Grade:     string(source.Grade),
		Section:   source.Section,
		TeacherID: req.TeacherID,
		SessionID: req.TargetSessionID,
	})
	if err != nil {
		return nil, err
	}
	roster, err := s.roster.ListByClass(ctx, source.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	students := make([]models.Student, 0, len(roster))
	for _, entry := range roster {
		students = append(students, models.Student{
			ProfileID: entry.ProfileID,
			ClassID:   clone.ID,
			RollNo:    entry.RollNo,
			GroupID:   entry.GroupID,
		})
	}
	if err := s.roster.BatchCreate(ctx, students); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy roster")
	}
	subjects, err := s.repo.ListClassSubjectsByClass(ctx, source.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class subjects")
	}
	for _, subject := range subjects {
		cs := &models.ClassSubject{ClassID: clone.ID, SubjectName: subject.SubjectName, TeacherID: subject.TeacherID}
		if err := s.repo.CreateClassSubject(ctx, cs); err != nil && !errors.Is(err, repository.ErrDuplicateClassSubject) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to copy class subjects")
		}
	}
	s.logger.Info("class cloned", zap.String("source_id", source.ID), zap.String("clone_id", clone.ID))
	return clone, nil
}

// SessionClasses lists the classes of one academic session.
func (s *ClassService) SessionClasses(ctx context.Context, sessionID string) ([]models.Class, error) {
	classes, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, nil
}

// CurrentClasses lists the classes of the latest academic session.
func (s *ClassService) CurrentClasses(ctx context.Context) ([]models.Class, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return s.SessionClasses(ctx, term.ID)
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.Class, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return class, nil
}

// GradeSections resolves class references for a set of class IDs.
func (s *ClassService) GradeSections(ctx context.Context, ids []string) ([]models.ClassRef, error) {
	refs, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve classes")
	}
	return refs, nil
}

// Students returns the roster of one class.
func (s *ClassService) Students(ctx context.Context, classID string) ([]models.StudentDetail, error) {
	if _, err := s.Get(ctx, classID); err != nil {
		return nil, err
	}
	students, err := s.roster.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}
