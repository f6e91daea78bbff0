package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// AuthSessionRepository handles persistence of login sessions.
type AuthSessionRepository struct {
	db *sqlx.DB
}

// NewAuthSessionRepository constructs the repository.
func NewAuthSessionRepository(db *sqlx.DB) *AuthSessionRepository {
	return &AuthSessionRepository{db: db}
}

// Create persists a new session record.
func (r *AuthSessionRepository) Create(ctx context.Context, session *models.AuthSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO auth_sessions (id, user_id, user_agent, created_at)
        VALUES (:id, :user_id, :user_agent, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create auth session: %w", err)
	}
	return nil
}

// FindByID returns a session by its ID, or sql.ErrNoRows.
func (r *AuthSessionRepository) FindByID(ctx context.Context, id string) (*models.AuthSession, error) {
	const query = `SELECT id, user_id, user_agent, created_at FROM auth_sessions WHERE id = $1`
	var session models.AuthSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// ListByUser returns every live session for a user, oldest first.
func (r *AuthSessionRepository) ListByUser(ctx context.Context, userID string) ([]models.AuthSession, error) {
	const query = `SELECT id, user_id, user_agent, created_at FROM auth_sessions
        WHERE user_id = $1 ORDER BY created_at ASC`
	var sessions []models.AuthSession
	if err := r.db.SelectContext(ctx, &sessions, query, userID); err != nil {
		return nil, fmt.Errorf("list auth sessions: %w", err)
	}
	return sessions, nil
}

// Delete removes one session.
func (r *AuthSessionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM auth_sessions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete auth session: %w", err)
	}
	return nil
}

// DeleteByUser removes every session belonging to a user.
func (r *AuthSessionRepository) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM auth_sessions WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("delete user sessions: %w", err)
	}
	return nil
}

// DeleteOlderThan drops sessions created before the cutoff and reports
// how many were removed.
func (r *AuthSessionRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM auth_sessions WHERE created_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("sweep auth sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sweep auth sessions: %w", err)
	}
	return affected, nil
}
