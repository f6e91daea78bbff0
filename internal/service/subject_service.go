package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type subjectRepository interface {
	CreateSubjects(ctx context.Context, names []string) error
	ListSubjects(ctx context.Context) ([]string, error)
	SubjectExists(ctx context.Context, name string) (bool, error)
	CreateGroup(ctx context.Context, group *models.Group, subjects []string) error
	FindGroup(ctx context.Context, id string) (*models.GroupDetail, error)
	ListGroups(ctx context.Context) ([]models.GroupDetail, error)
}

// CreateGroupRequest bundles subjects under a named group.
type CreateGroupRequest struct {
	Name     string   `json:"name" validate:"required"`
	Subjects []string `json:"subjects" validate:"required,min=1"`
}

// SubjectService manages subjects and subject groups.
type SubjectService struct {
	repo      subjectRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService constructs SubjectService.
func NewSubjectService(repo subjectRepository, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, validator: validate, logger: logger}
}

// AddSubjects registers subject names, ignoring ones that exist.
func (s *SubjectService) AddSubjects(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "no subjects supplied")
	}
	if err := s.repo.CreateSubjects(ctx, names); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subjects")
	}
	s.logger.Info("subjects added", zap.Int("count", len(names)))
	return nil
}

// Subjects lists every subject name.
func (s *SubjectService) Subjects(ctx context.Context) ([]string, error) {
	names, err := s.repo.ListSubjects(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}
	return names, nil
}

// CreateGroup creates a group after checking every member subject is
// registered.
func (s *SubjectService) CreateGroup(ctx context.Context, req CreateGroupRequest) (*models.GroupDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid group payload")
	}
	for _, subject := range req.Subjects {
		exists, err := s.repo.SubjectExists(ctx, subject)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
		}
		if !exists {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown subject: "+subject)
		}
	}
	group := &models.Group{Name: req.Name}
	if err := s.repo.CreateGroup(ctx, group, req.Subjects); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create group")
	}
	s.logger.Info("group created", zap.String("group_id", group.ID), zap.String("name", group.Name))
	return &models.GroupDetail{Group: *group, Subjects: req.Subjects}, nil
}

// Group returns one group with its subjects.
func (s *SubjectService) Group(ctx context.Context, id string) (*models.GroupDetail, error) {
	group, err := s.repo.FindGroup(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group")
	}
	return group, nil
}

// Groups lists every group with its subjects.
func (s *SubjectService) Groups(ctx context.Context) ([]models.GroupDetail, error) {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list groups")
	}
	return groups, nil
}
