package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/export"
)

type testRepository interface {
	Create(ctx context.Context, test *models.Test) error
	FindByID(ctx context.Context, id string) (*models.Test, error)
	ListByGradeWindow(ctx context.Context, grade models.Grade, from, to time.Time) ([]models.Test, error)
	ListByGradeSubjectWindow(ctx context.Context, grade models.Grade, subject string, from, to time.Time) ([]models.Test, error)
	UpsertMarks(ctx context.Context, marks []models.Marks) error
	MarksForClassTest(ctx context.Context, classID, testID string) ([]models.MarksDetail, error)
	MarksForStudent(ctx context.Context, studentID string) ([]models.TestMarks, error)
}

type teacherAssignmentReader interface {
	ListClassSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSubjectDetail, error)
}

// CreateTestRequest describes a new test.
type CreateTestRequest struct {
	Grade   string    `json:"grade" validate:"required"`
	Subject string    `json:"subject" validate:"required"`
	Total   int       `json:"total" validate:"required,gt=0"`
	Type    string    `json:"type" validate:"required,oneof=PERIODIC EXAM"`
	Date    time.Time `json:"date" validate:"required"`
}

// MarksEntry is one student's score in a record-marks batch.
type MarksEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Marks     int    `json:"marks" validate:"gte=0"`
	Absent    bool   `json:"absent"`
}

// RecordMarksRequest records a batch of marks for one test.
type RecordMarksRequest struct {
	TestID  string       `json:"test_id" validate:"required"`
	Entries []MarksEntry `json:"entries" validate:"required,dive"`
}

// TestService manages tests and marks.
type TestService struct {
	repo        testRepository
	assignments teacherAssignmentReader
	subjects    subjectChecker
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTestService constructs TestService.
func NewTestService(repo testRepository, assignments teacherAssignmentReader, subjects subjectChecker, validate *validator.Validate, logger *zap.Logger) *TestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TestService{
		repo:        repo,
		assignments: assignments,
		subjects:    subjects,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		validator:   validate,
		logger:      logger,
	}
}

// Create registers a test for a grade.
func (s *TestService) Create(ctx context.Context, req CreateTestRequest) (*models.Test, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid test payload")
	}
	grade, err := models.ParseGrade(req.Grade)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	exists, err := s.subjects.SubjectExists(ctx, req.Subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "unknown subject: "+req.Subject)
	}
	test := &models.Test{Grade: grade, SubjectName: req.Subject, Total: req.Total, Type: models.TestType(req.Type), Date: req.Date.UTC()}
	if err := s.repo.Create(ctx, test); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create test")
	}
	s.logger.Info("test created", zap.String("test_id", test.ID), zap.String("grade", string(test.Grade)), zap.String("subject", test.SubjectName))
	return test, nil
}

// TestsForMonth lists a grade's tests within one calendar month.
func (s *TestService) TestsForMonth(ctx context.Context, rawGrade string, year int, month time.Month) ([]models.Test, error) {
	grade, err := models.ParseGrade(rawGrade)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	tests, err := s.repo.ListByGradeWindow(ctx, grade, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tests")
	}
	return tests, nil
}

// RecordMarks upserts a batch of marks; re-recording a (student, test)
// pair overwrites the earlier score.
func (s *TestService) RecordMarks(ctx context.Context, req RecordMarksRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}
	test, err := s.repo.FindByID(ctx, req.TestID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "test not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test")
	}
	marks := make([]models.Marks, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if !entry.Absent && entry.Marks > test.Total {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("marks %d exceed test total %d", entry.Marks, test.Total))
		}
		score := entry.Marks
		if entry.Absent {
			score = 0
		}
		marks = append(marks, models.Marks{StudentID: entry.StudentID, TestID: req.TestID, Marks: score, Absent: entry.Absent})
	}
	if err := s.repo.UpsertMarks(ctx, marks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record marks")
	}
	s.logger.Info("marks recorded", zap.String("test_id", req.TestID), zap.Int("entries", len(marks)))
	return nil
}

// ClassMarks returns one class's marks on one test.
func (s *TestService) ClassMarks(ctx context.Context, classID, testID string) (*models.TestMarks, error) {
	test, err := s.repo.FindByID(ctx, testID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "test not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load test")
	}
	marks, err := s.repo.MarksForClassTest(ctx, classID, testID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list marks")
	}
	return &models.TestMarks{Test: *test, Marks: marks}, nil
}

// TestsByTeacher lists the month's tests for the subjects and grades a
// teacher teaches.
func (s *TestService) TestsByTeacher(ctx context.Context, teacherID string, year int, month time.Month) ([]models.Test, error) {
	assignments, err := s.assignments.ListClassSubjectsByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	seen := make(map[string]bool)
	var tests []models.Test
	for _, assignment := range assignments {
		key := string(assignment.Grade) + "/" + assignment.SubjectName
		if seen[key] {
			continue
		}
		seen[key] = true
		batch, err := s.repo.ListByGradeSubjectWindow(ctx, assignment.Grade, assignment.SubjectName, from, to)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tests")
		}
		tests = append(tests, batch...)
	}
	return tests, nil
}

// StudentMarks returns every test result of one student.
func (s *TestService) StudentMarks(ctx context.Context, studentID string) ([]models.TestMarks, error) {
	marks, err := s.repo.MarksForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student marks")
	}
	return marks, nil
}

// MarksSheet renders a class's marks for one test as CSV or PDF.
func (s *TestService) MarksSheet(ctx context.Context, classID, testID, format string) ([]byte, string, error) {
	result, err := s.ClassMarks(ctx, classID, testID)
	if err != nil {
		return nil, "", err
	}
	dataset := export.Dataset{Headers: []string{"Roll No", "Name", "Marks", "Absent"}}
	for _, row := range result.Marks {
		score := strconv.Itoa(row.Marks.Marks)
		absent := "no"
		if row.Absent {
			score = "-"
			absent = "yes"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll No": row.RollNo,
			"Name":    row.StudentName,
			"Marks":   score,
			"Absent":  absent,
		})
	}
	title := fmt.Sprintf("%s %s (%s)", result.SubjectName, result.Date.Format("2006-01-02"), result.Type)
	switch format {
	case "pdf":
		payload, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	}
}
