package service

import (
	"context"
	"database/sql"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type noticeRepository interface {
	CreateMany(ctx context.Context, title, content string, classIDs []string) error
	ListByClass(ctx context.Context, classID string) ([]models.Notice, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Notice, error)
	PageByClass(ctx context.Context, classID string, page int) ([]models.Notice, int, error)
}

type enrollmentReader interface {
	FindStudent(ctx context.Context, id string) (*models.Student, error)
}

// AddNoticeRequest fans one announcement out to a set of classes.
type AddNoticeRequest struct {
	Title    string   `json:"title" validate:"required"`
	Content  string   `json:"content" validate:"required"`
	ClassIDs []string `json:"class_ids" validate:"required,min=1"`
}

// NoticeService manages class notices.
type NoticeService struct {
	repo      noticeRepository
	students  enrollmentReader
	terms     latestTermProvider
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs NoticeService.
func NewNoticeService(repo noticeRepository, students enrollmentReader, terms latestTermProvider, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoticeService{repo: repo, students: students, terms: terms, validator: validate, logger: logger}
}

// Add creates one notice row per target class.
func (s *NoticeService) Add(ctx context.Context, req AddNoticeRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if err := s.repo.CreateMany(ctx, req.Title, req.Content, req.ClassIDs); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notices")
	}
	s.logger.Info("notice added", zap.String("title", req.Title), zap.Int("classes", len(req.ClassIDs)))
	return nil
}

// ByClass lists one class's notices, newest first.
func (s *NoticeService) ByClass(ctx context.Context, classID string) ([]models.Notice, error) {
	notices, err := s.repo.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// All lists the latest session's notices, newest first.
func (s *NoticeService) All(ctx context.Context) ([]models.Notice, error) {
	term, err := s.terms.Latest(ctx)
	if err != nil {
		return nil, err
	}
	notices, err := s.repo.ListBySession(ctx, term.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// PageForClass returns one zero-based page of a class's notices with
// the total page count.
func (s *NoticeService) PageForClass(ctx context.Context, classID string, page int) (*models.NoticePage, error) {
	notices, total, err := s.repo.PageByClass(ctx, classID, page)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to page notices")
	}
	pageCount := (total + repository.NoticePageSize - 1) / repository.NoticePageSize
	return &models.NoticePage{Notices: notices, PageCount: pageCount}, nil
}

// PageForStudent pages the notice feed of the class a student is
// enrolled in.
func (s *NoticeService) PageForStudent(ctx context.Context, studentID string, page int) (*models.NoticePage, error) {
	student, err := s.students.FindStudent(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return s.PageForClass(ctx, student.ClassID, page)
}
