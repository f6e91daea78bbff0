package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// NoticePageSize is the fixed page length of the student notice feed.
const NoticePageSize = 10

// NoticeRepository handles persistence of class notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// CreateMany fans one announcement out to several classes in one
// transaction, one row per class.
func (r *NoticeRepository) CreateMany(ctx context.Context, title, content string, classIDs []string) error {
	if len(classIDs) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create notices: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	now := time.Now().UTC()
	const query = `INSERT INTO notices (id, title, content, class_id, created_at)
        VALUES ($1, $2, $3, $4, $5)`
	for _, classID := range classIDs {
		if _, err := tx.ExecContext(ctx, query, uuid.NewString(), title, content, classID, now); err != nil {
			return fmt.Errorf("create notice for class %s: %w", classID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create notices: %w", err)
	}
	commit = true
	return nil
}

// ListByClass returns every notice of one class, newest first.
func (r *NoticeRepository) ListByClass(ctx context.Context, classID string) ([]models.Notice, error) {
	const query = `SELECT id, title, content, class_id, created_at FROM notices
        WHERE class_id = $1 ORDER BY created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, classID); err != nil {
		return nil, fmt.Errorf("list class notices: %w", err)
	}
	return notices, nil
}

// ListBySession returns every notice of a session's classes, newest
// first.
func (r *NoticeRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Notice, error) {
	const query = `SELECT n.id, n.title, n.content, n.class_id, n.created_at
        FROM notices n
        JOIN classes c ON c.id = n.class_id
        WHERE c.session_id = $1
        ORDER BY n.created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, sessionID); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// PageByClass returns one zero-based page of a class's notices, newest
// first, along with the total row count.
func (r *NoticeRepository) PageByClass(ctx context.Context, classID string, page int) ([]models.Notice, int, error) {
	if page < 0 {
		page = 0
	}
	const query = `SELECT id, title, content, class_id, created_at FROM notices
        WHERE class_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, classID, NoticePageSize, page*NoticePageSize); err != nil {
		return nil, 0, fmt.Errorf("page notices: %w", err)
	}
	const countQuery = `SELECT COUNT(*) FROM notices WHERE class_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, classID); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}
	return notices, total, nil
}
