package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// TestRepository handles persistence of tests and marks.
type TestRepository struct {
	db *sqlx.DB
}

// NewTestRepository constructs the repository.
func NewTestRepository(db *sqlx.DB) *TestRepository {
	return &TestRepository{db: db}
}

// Create persists a new test.
func (r *TestRepository) Create(ctx context.Context, test *models.Test) error {
	if test.ID == "" {
		test.ID = uuid.NewString()
	}
	const query = `INSERT INTO tests (id, grade, subject_name, total, type, date)
        VALUES (:id, :grade, :subject_name, :total, :type, :date)`
	if _, err := r.db.NamedExecContext(ctx, query, test); err != nil {
		return fmt.Errorf("create test: %w", err)
	}
	return nil
}

// FindByID returns a test by its ID.
func (r *TestRepository) FindByID(ctx context.Context, id string) (*models.Test, error) {
	const query = `SELECT id, grade, subject_name, total, type, date FROM tests WHERE id = $1`
	var test models.Test
	if err := r.db.GetContext(ctx, &test, query, id); err != nil {
		return nil, err
	}
	return &test, nil
}

// ListByGradeWindow returns a grade's tests dated within [from, to),
// newest first.
func (r *TestRepository) ListByGradeWindow(ctx context.Context, grade models.Grade, from, to time.Time) ([]models.Test, error) {
	const query = `SELECT id, grade, subject_name, total, type, date FROM tests
        WHERE grade = $1 AND date >= $2 AND date < $3
        ORDER BY date DESC`
	var tests []models.Test
	if err := r.db.SelectContext(ctx, &tests, query, grade, from, to); err != nil {
		return nil, fmt.Errorf("list tests: %w", err)
	}
	return tests, nil
}

// ListByGradeSubjectWindow narrows the window to one subject.
func (r *TestRepository) ListByGradeSubjectWindow(ctx context.Context, grade models.Grade, subject string, from, to time.Time) ([]models.Test, error) {
	const query = `SELECT id, grade, subject_name, total, type, date FROM tests
        WHERE grade = $1 AND subject_name = $2 AND date >= $3 AND date < $4
        ORDER BY date DESC`
	var tests []models.Test
	if err := r.db.SelectContext(ctx, &tests, query, grade, subject, from, to); err != nil {
		return nil, fmt.Errorf("list subject tests: %w", err)
	}
	return tests, nil
}

// UpsertMarks records a batch of marks in one transaction, overwriting
// any earlier entry for the same (student, test) pair.
func (r *TestRepository) UpsertMarks(ctx context.Context, marks []models.Marks) error {
	if len(marks) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record marks: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const query = `INSERT INTO marks (id, student_id, test_id, marks, absent)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (student_id, test_id)
        DO UPDATE SET marks = EXCLUDED.marks, absent = EXCLUDED.absent`
	for i := range marks {
		if marks[i].ID == "" {
			marks[i].ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, marks[i].ID, marks[i].StudentID, marks[i].TestID, marks[i].Marks, marks[i].Absent); err != nil {
			return fmt.Errorf("record marks for %s: %w", marks[i].StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record marks: %w", err)
	}
	commit = true
	return nil
}

// MarksForClassTest returns the marks of one class on one test, joined
// with student identity and ordered by roll number.
func (r *TestRepository) MarksForClassTest(ctx context.Context, classID, testID string) ([]models.MarksDetail, error) {
	const query = `SELECT m.id, m.student_id, m.test_id, m.marks, m.absent,
        s.roll_no, p.name AS student_name
        FROM marks m
        JOIN students s ON s.id = m.student_id
        JOIN student_profiles p ON p.id = s.profile_id
        WHERE s.class_id = $1 AND m.test_id = $2
        ORDER BY s.roll_no`
	var details []models.MarksDetail
	if err := r.db.SelectContext(ctx, &details, query, classID, testID); err != nil {
		return nil, fmt.Errorf("list class marks: %w", err)
	}
	return details, nil
}

// MarksForStudent returns every marks row of one student with the test
// attached, newest test first.
func (r *TestRepository) MarksForStudent(ctx context.Context, studentID string) ([]models.TestMarks, error) {
	const query = `SELECT t.id, t.grade, t.subject_name, t.total, t.type, t.date,
        m.id AS marks_id, m.student_id, m.test_id, m.marks, m.absent
        FROM marks m
        JOIN tests t ON t.id = m.test_id
        WHERE m.student_id = $1
        ORDER BY t.date DESC`
	rows, err := r.db.QueryxContext(ctx, query, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student marks: %w", err)
	}
	defer rows.Close()
	var result []models.TestMarks
	for rows.Next() {
		var tm models.TestMarks
		var md models.MarksDetail
		if err := rows.Scan(&tm.ID, &tm.Grade, &tm.SubjectName, &tm.Total, &tm.Type, &tm.Date,
			&md.Marks.ID, &md.StudentID, &md.TestID, &md.Marks.Marks, &md.Absent); err != nil {
			return nil, fmt.Errorf("scan student marks: %w", err)
		}
		tm.Marks = []models.MarksDetail{md}
		result = append(result, tm)
	}
	return result, nil
}
