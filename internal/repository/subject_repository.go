package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// SubjectRepository handles persistence of subjects and subject groups.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// CreateSubjects inserts subject names, skipping ones that exist.
func (r *SubjectRepository) CreateSubjects(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	const query = `INSERT INTO subjects (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`
	for _, name := range names {
		if _, err := r.db.ExecContext(ctx, query, name); err != nil {
			return fmt.Errorf("create subject %s: %w", name, err)
		}
	}
	return nil
}

// ListSubjects returns every subject name.
func (r *SubjectRepository) ListSubjects(ctx context.Context) ([]string, error) {
	const query = `SELECT name FROM subjects ORDER BY name`
	var names []string
	if err := r.db.SelectContext(ctx, &names, query); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return names, nil
}

// SubjectExists reports whether the subject is registered.
func (r *SubjectRepository) SubjectExists(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM subjects WHERE name = $1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check subject: %w", err)
	}
	return true, nil
}

// CreateGroup inserts a group with its member subjects in one
// transaction.
func (r *SubjectRepository) CreateGroup(ctx context.Context, group *models.Group, subjects []string) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create group: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO groups (id, name) VALUES ($1, $2)`, group.ID, group.Name); err != nil {
		return fmt.Errorf("create group: %w", err)
	}
	for _, subject := range subjects {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO group_subjects (group_id, subject_name) VALUES ($1, $2)`,
			group.ID, subject); err != nil {
			return fmt.Errorf("add group subject %s: %w", subject, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create group: %w", err)
	}
	commit = true
	return nil
}

// FindGroup returns a group with its subjects.
func (r *SubjectRepository) FindGroup(ctx context.Context, id string) (*models.GroupDetail, error) {
	const query = `SELECT id, name FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	subjects, err := r.groupSubjects(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.GroupDetail{Group: group, Subjects: subjects}, nil
}

// ListGroups returns every group with its subjects.
func (r *SubjectRepository) ListGroups(ctx context.Context) ([]models.GroupDetail, error) {
	const query = `SELECT id, name FROM groups ORDER BY name`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	details := make([]models.GroupDetail, 0, len(groups))
	for _, group := range groups {
		subjects, err := r.groupSubjects(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		details = append(details, models.GroupDetail{Group: group, Subjects: subjects})
	}
	return details, nil
}

// ExistingGroupIDs reports which of the given group IDs exist.
func (r *SubjectRepository) ExistingGroupIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	if len(ids) == 0 {
		return map[string]bool{}, nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT id FROM groups WHERE id IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check groups: %w", err)
	}
	defer rows.Close()
	existing := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan group id: %w", err)
		}
		existing[id] = true
	}
	return existing, nil
}

func (r *SubjectRepository) groupSubjects(ctx context.Context, groupID string) ([]string, error) {
	const query = `SELECT subject_name FROM group_subjects WHERE group_id = $1 ORDER BY subject_name`
	var subjects []string
	if err := r.db.SelectContext(ctx, &subjects, query, groupID); err != nil {
		return nil, fmt.Errorf("list group subjects: %w", err)
	}
	return subjects, nil
}
