package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

const latestSessionCacheKey = "academic_session:latest"

type sessionRepository interface {
	Latest(ctx context.Context) (*models.AcademicSession, error)
	FindByID(ctx context.Context, id string) (*models.AcademicSession, error)
	List(ctx context.Context) ([]models.AcademicSession, error)
	CreateIfNoOverlap(ctx context.Context, session *models.AcademicSession) error
}

type sessionCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// CreateSessionRequest describes a new academic session payload.
type CreateSessionRequest struct {
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required"`
}

// SessionService manages academic sessions. The latest-session lookup
// backs almost every request, so it is cached briefly in Redis.
type SessionService struct {
	repo      sessionRepository
	cache     sessionCache
	cacheTTL  time.Duration
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSessionService constructs SessionService.
func NewSessionService(repo sessionRepository, cache sessionCache, cacheTTL time.Duration, validate *validator.Validate, logger *zap.Logger) *SessionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{repo: repo, cache: cache, cacheTTL: cacheTTL, validator: validate, logger: logger}
}

// Latest returns the academic session with the greatest start date.
func (s *SessionService) Latest(ctx context.Context) (*models.AcademicSession, error) {
	if s.cache != nil {
		var cached models.AcademicSession
		if err := s.cache.Get(ctx, latestSessionCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}
	session, err := s.repo.Latest(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no academic session exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest session")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, latestSessionCacheKey, session, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache latest session", zap.Error(err))
		}
	}
	return session, nil
}

// Create inserts a new session after the overlap check. The check and
// insert run in one transaction; concurrent creations cannot both pass.
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.AcademicSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}
	if !req.Start.Before(req.End) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session start must precede end")
	}
	session := &models.AcademicSession{StartDate: req.Start.UTC(), EndDate: req.End.UTC()}
	if err := s.repo.CreateIfNoOverlap(ctx, session); err != nil {
		if errors.Is(err, repository.ErrSessionOverlap) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "session overlaps an existing session")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, latestSessionCacheKey); err != nil {
			s.logger.Warn("failed to invalidate latest session cache", zap.Error(err))
		}
	}
	s.logger.Info("academic session created", zap.String("session_id", session.ID))
	return session, nil
}

// List returns every academic session, newest first.
func (s *SessionService) List(ctx context.Context) ([]models.AcademicSession, error) {
	sessions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	return sessions, nil
}

// Find returns one academic session.
func (s *SessionService) Find(ctx context.Context, id string) (*models.AcademicSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}
