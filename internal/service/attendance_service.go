package service

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/repository"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

type attendanceRepository interface {
	MarkClass(ctx context.Context, classID string, date time.Time, records []models.Attendance, updating bool) error
	ListForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error)
	ListForStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error)
}

type classRosterReader interface {
	ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error)
}

// MarkAttendanceRequest records a class's attendance for today.
type MarkAttendanceRequest struct {
	ClassID   string   `json:"class_id" validate:"required"`
	Absentees []string `json:"absentees"`
	Updating  bool     `json:"updating"`
}

// AttendanceService records and reads attendance.
type AttendanceService struct {
	repo      attendanceRepository
	roster    classRosterReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService.
func NewAttendanceService(repo attendanceRepository, roster classRosterReader, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, roster: roster, validator: validate, logger: logger}
}

// Mark writes one attendance row per enrolled student with present set
// for everyone not listed as absent. A class can be marked once per
// day unless the request is an update.
func (s *AttendanceService) Mark(ctx context.Context, req MarkAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	students, err := s.roster.ListByClass(ctx, req.ClassID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if len(students) == 0 {
		return appErrors.Clone(appErrors.ErrValidation, "class has no students")
	}
	absent := make(map[string]bool, len(req.Absentees))
	for _, id := range req.Absentees {
		absent[id] = true
	}
	records := make([]models.Attendance, 0, len(students))
	for _, student := range students {
		records = append(records, models.Attendance{
			StudentID: student.ID,
			Present:   !absent[student.ID],
		})
	}
	today := truncateToDay(time.Now().UTC())
	if err := s.repo.MarkClass(ctx, req.ClassID, today, records, req.Updating); err != nil {
		if errors.Is(err, repository.ErrAttendanceMarked) {
			return appErrors.Clone(appErrors.ErrConflict, "attendance already marked for today")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to mark attendance")
	}
	s.logger.Info("attendance marked", zap.String("class_id", req.ClassID), zap.Int("students", len(records)), zap.Bool("updating", req.Updating))
	return nil
}

// ForClassDate returns a class's attendance rows for one date.
func (s *AttendanceService) ForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error) {
	records, err := s.repo.ListForClassDate(ctx, classID, truncateToDay(date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// ForStudent returns a student's attendance within a month.
func (s *AttendanceService) ForStudent(ctx context.Context, studentID string, year int, month time.Month) ([]models.Attendance, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	records, err := s.repo.ListForStudent(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student attendance")
	}
	return records, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
