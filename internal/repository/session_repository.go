package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// ErrSessionOverlap is returned when a new academic session's date range
// intersects an existing one.
var ErrSessionOverlap = errors.New("academic session overlaps an existing session")

// SessionRepository handles persistence of academic sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Latest returns the most recently starting academic session.
func (r *SessionRepository) Latest(ctx context.Context) (*models.AcademicSession, error) {
	const query = `SELECT id, start_date, end_date FROM academic_sessions
        ORDER BY start_date DESC LIMIT 1`
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, query); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByID returns an academic session by its ID.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.AcademicSession, error) {
	const query = `SELECT id, start_date, end_date FROM academic_sessions WHERE id = $1`
	var session models.AcademicSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// List returns every academic session, newest first.
func (r *SessionRepository) List(ctx context.Context) ([]models.AcademicSession, error) {
	const query = `SELECT id, start_date, end_date FROM academic_sessions ORDER BY start_date DESC`
	var sessions []models.AcademicSession
	if err := r.db.SelectContext(ctx, &sessions, query); err != nil {
		return nil, fmt.Errorf("list academic sessions: %w", err)
	}
	return sessions, nil
}

// CreateIfNoOverlap checks for date-range overlap and inserts in a
// single transaction. Ranges are half-open, so back-to-back sessions
// sharing a boundary date are allowed.
func (r *SessionRepository) CreateIfNoOverlap(ctx context.Context, session *models.AcademicSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create session: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const overlapQuery = `SELECT 1 FROM academic_sessions
        WHERE start_date < $2 AND end_date > $1 LIMIT 1`
	var exists int
	err = tx.GetContext(ctx, &exists, overlapQuery, session.StartDate, session.EndDate)
	if err == nil {
		return ErrSessionOverlap
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("check session overlap: %w", err)
	}
	const insertQuery = `INSERT INTO academic_sessions (id, start_date, end_date)
        VALUES ($1, $2, $3)`
	if _, err := tx.ExecContext(ctx, insertQuery, session.ID, session.StartDate, session.EndDate); err != nil {
		return fmt.Errorf("create academic session: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create session: %w", err)
	}
	commit = true
	return nil
}
