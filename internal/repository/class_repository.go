package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

var (
	// ErrDuplicateClass is returned when a grade+section already exists
	// in the target academic session.
	ErrDuplicateClass = errors.New("class already exists for this session")
	// ErrTeacherAssigned is returned when the chosen teacher already has
	// a homeroom in the target academic session.
	ErrTeacherAssigned = errors.New("teacher already assigned to a class")
)

// ClassRepository handles persistence of classes and their subject
// assignments.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs the repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// FindByID returns a class by its ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, grade, section, teacher_id, session_id, created_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByGradeSection returns the class for a grade+section in a session.
func (r *ClassRepository) FindByGradeSection(ctx context.Context, sessionID string, grade models.Grade, section string) (*models.Class, error) {
	const query = `SELECT id, grade, section, teacher_id, session_id, created_at FROM classes
        WHERE session_id = $1 AND grade = $2 AND section = $3`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, sessionID, grade, section); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByTeacher returns the homeroom class of a teacher, if any.
func (r *ClassRepository) FindByTeacher(ctx context.Context, teacherID string) (*models.Class, error) {
	const query = `SELECT id, grade, section, teacher_id, session_id, created_at FROM classes
        WHERE teacher_id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, teacherID); err != nil {
		return nil, err
	}
	return &class, nil
}

// ListBySession returns every class of an academic session.
func (r *ClassRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Class, error) {
	const query = `SELECT id, grade, section, teacher_id, session_id, created_at FROM classes
        WHERE session_id = $1 ORDER BY grade, section`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, sessionID); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// ListByGrade returns the classes of one grade in a session.
func (r *ClassRepository) ListByGrade(ctx context.Context, sessionID string, grade models.Grade) ([]models.Class, error) {
	const query = `SELECT id, grade, section, teacher_id, session_id, created_at FROM classes
        WHERE session_id = $1 AND grade = $2 ORDER BY section`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, sessionID, grade); err != nil {
		return nil, fmt.Errorf("list grade classes: %w", err)
	}
	return classes, nil
}

// ListByIDs resolves class references for a set of IDs.
func (r *ClassRepository) ListByIDs(ctx context.Context, ids []string) ([]models.ClassRef, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id, grade, section FROM classes WHERE id IN (%s)`, strings.Join(placeholders, ","))
	var refs []models.ClassRef
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("resolve classes: %w", err)
	}
	return refs, nil
}

// Create checks both uniqueness rules and inserts in one transaction:
// the grade+section must be free and the teacher must not already hold
// a homeroom in the session.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create class: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	var exists int
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM classes WHERE session_id = $1 AND grade = $2 AND section = $3 LIMIT 1`,
		class.SessionID, class.Grade, class.Section)
	if err == nil {
		return ErrDuplicateClass
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check class exists: %w", err)
	}
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM classes WHERE session_id = $1 AND teacher_id = $2 LIMIT 1`,
		class.SessionID, class.TeacherID)
	if err == nil {
		return ErrTeacherAssigned
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check teacher homeroom: %w", err)
	}
	const insertQuery = `INSERT INTO classes (id, grade, section, teacher_id, session_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err := tx.ExecContext(ctx, insertQuery, class.ID, class.Grade, class.Section, class.TeacherID, class.SessionID, class.CreatedAt); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create class: %w", err)
	}
	commit = true
	return nil
}

// UpdateTeacher reassigns the homeroom teacher, enforcing the one
// homeroom per teacher rule inside the transaction.
func (r *ClassRepository) UpdateTeacher(ctx context.Context, classID, teacherID, sessionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update teacher: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	var exists int
	err = tx.GetContext(ctx, &exists,
		`SELECT 1 FROM classes WHERE session_id = $1 AND teacher_id = $2 AND id <> $3 LIMIT 1`,
		sessionID, teacherID, classID)
	if err == nil {
		return ErrTeacherAssigned
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check teacher homeroom: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE classes SET teacher_id = $2 WHERE id = $1`, classID, teacherID)
	if err != nil {
		return fmt.Errorf("update class teacher: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update class teacher: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update teacher: %w", err)
	}
	commit = true
	return nil
}

// CreateClassSubject assigns a teacher to a subject in a class. The
// (class, subject) pair is unique.
func (r *ClassRepository) CreateClassSubject(ctx context.Context, cs *models.ClassSubject) error {
	if cs.ID == "" {
		cs.ID = uuid.NewString()
	}
	const query = `INSERT INTO class_subjects (id, class_id, subject_name, teacher_id)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (class_id, subject_name) DO NOTHING RETURNING id`
	var insertedID string
	if err := r.db.QueryRowxContext(ctx, query, cs.ID, cs.ClassID, cs.SubjectName, cs.TeacherID).Scan(&insertedID); err != nil {
		if err == sql.ErrNoRows {
			return ErrDuplicateClassSubject
		}
		return fmt.Errorf("create class subject: %w", err)
	}
	return nil
}

// ErrDuplicateClassSubject is returned when the subject is already
// assigned in the class.
var ErrDuplicateClassSubject = errors.New("subject already assigned in this class")

// FindClassSubject returns one assignment row.
func (r *ClassRepository) FindClassSubject(ctx context.Context, id string) (*models.ClassSubject, error) {
	const query = `SELECT id, class_id, subject_name, teacher_id FROM class_subjects WHERE id = $1`
	var cs models.ClassSubject
	if err := r.db.GetContext(ctx, &cs, query, id); err != nil {
		return nil, err
	}
	return &cs, nil
}

// UpdateClassSubjectTeacher swaps the teacher on an assignment.
func (r *ClassRepository) UpdateClassSubjectTeacher(ctx context.Context, id, teacherID string) error {
	const query = `UPDATE class_subjects SET teacher_id = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id, teacherID)
	if err != nil {
		return fmt.Errorf("update class subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update class subject: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteClassSubject removes an assignment.
func (r *ClassRepository) DeleteClassSubject(ctx context.Context, id string) error {
	const query = `DELETE FROM class_subjects WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete class subject: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete class subject: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ListClassSubjectsByTeacher returns a teacher's assignments with
// class context.
func (r *ClassRepository) ListClassSubjectsByTeacher(ctx context.Context, teacherID string) ([]models.ClassSubjectDetail, error) {
	const query = `SELECT cs.id, cs.class_id, cs.subject_name, cs.teacher_id, c.grade, c.section
        FROM class_subjects cs
        JOIN classes c ON c.id = cs.class_id
        WHERE cs.teacher_id = $1
        ORDER BY c.grade, c.section, cs.subject_name`
	var details []models.ClassSubjectDetail
	if err := r.db.SelectContext(ctx, &details, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	return details, nil
}

// ListClassSubjectsByClass returns the assignments of one class.
func (r *ClassRepository) ListClassSubjectsByClass(ctx context.Context, classID string) ([]models.ClassSubject, error) {
	const query = `SELECT id, class_id, subject_name, teacher_id FROM class_subjects
        WHERE class_id = $1 ORDER BY subject_name`
	var subjects []models.ClassSubject
	if err := r.db.SelectContext(ctx, &subjects, query, classID); err != nil {
		return nil, fmt.Errorf("list class subjects: %w", err)
	}
	return subjects, nil
}

// TeachersOfSubject lists the teachers assigned to a subject across a
// session's classes.
func (r *ClassRepository) TeachersOfSubject(ctx context.Context, sessionID, subjectName string) ([]models.TeacherDetail, error) {
	const query = `SELECT DISTINCT t.id, t.user_id, t.session_id, u.name AS user_name, u.email
        FROM class_subjects cs
        JOIN classes c ON c.id = cs.class_id
        JOIN teachers t ON t.id = cs.teacher_id
        JOIN users u ON u.id = t.user_id
        WHERE c.session_id = $1 AND cs.subject_name = $2
        ORDER BY u.name`
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, sessionID, subjectName); err != nil {
		return nil, fmt.Errorf("list subject teachers: %w", err)
	}
	return teachers, nil
}
