package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// TeacherRepository handles persistence of per-session teacher records.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs the repository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Create persists a teacher record for a session.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.ID == "" {
		teacher.ID = uuid.NewString()
	}
	const query = `INSERT INTO teachers (id, user_id, session_id)
        VALUES (:id, :user_id, :session_id)`
	if _, err := r.db.NamedExecContext(ctx, query, teacher); err != nil {
		return fmt.Errorf("create teacher: %w", err)
	}
	return nil
}

// FindByID returns a teacher by its ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, session_id FROM teachers WHERE id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, id); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// FindByUserAndSession returns the teacher record a user holds in one
// academic session, or sql.ErrNoRows.
func (r *TeacherRepository) FindByUserAndSession(ctx context.Context, userID, sessionID string) (*models.Teacher, error) {
	const query = `SELECT id, user_id, session_id FROM teachers WHERE user_id = $1 AND session_id = $2`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, userID, sessionID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ListBySession returns every teacher of a session with directory info.
func (r *TeacherRepository) ListBySession(ctx context.Context, sessionID string) ([]models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.session_id, u.name AS user_name, u.email
        FROM teachers t
        JOIN users u ON u.id = t.user_id
        WHERE t.session_id = $1
        ORDER BY u.name`
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, sessionID); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}

// ListUnassigned returns the session's teachers without a homeroom.
func (r *TeacherRepository) ListUnassigned(ctx context.Context, sessionID string) ([]models.TeacherDetail, error) {
	const query = `SELECT t.id, t.user_id, t.session_id, u.name AS user_name, u.email
        FROM teachers t
        JOIN users u ON u.id = t.user_id
        WHERE t.session_id = $1
          AND NOT EXISTS (SELECT 1 FROM classes c WHERE c.teacher_id = t.id)
        ORDER BY u.name`
	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, sessionID); err != nil {
		return nil, fmt.Errorf("list unassigned teachers: %w", err)
	}
	return teachers, nil
}
