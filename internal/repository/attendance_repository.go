package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// ErrAttendanceMarked is returned when a class has already taken
// attendance on the date.
var ErrAttendanceMarked = errors.New("attendance already marked for this class today")

// AttendanceRepository handles persistence of attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// MarkClass records a full class's attendance for one date in a single
// transaction. The once-per-day guard row is claimed first; unless
// updating, a second attempt for the same (class, date) fails with
// ErrAttendanceMarked and writes nothing. With updating set, existing
// rows are overwritten instead.
func (r *AttendanceRepository) MarkClass(ctx context.Context, classID string, date time.Time, records []models.Attendance, updating bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark attendance: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const guardQuery = `INSERT INTO attendance_marked (id, class_id, date)
        VALUES ($1, $2, $3)
        ON CONFLICT (class_id, date) DO NOTHING RETURNING id`
	var guardID string
	if err := tx.QueryRowxContext(ctx, guardQuery, uuid.NewString(), classID, date).Scan(&guardID); err != nil {
		if err == sql.ErrNoRows {
			if !updating {
				return ErrAttendanceMarked
			}
		} else {
			return fmt.Errorf("claim attendance guard: %w", err)
		}
	}
	const query = `INSERT INTO attendances (id, student_id, date, present)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (student_id, date)
        DO UPDATE SET present = EXCLUDED.present`
	for i := range records {
		if records[i].ID == "" {
			records[i].ID = uuid.NewString()
		}
		if _, err := tx.ExecContext(ctx, query, records[i].ID, records[i].StudentID, date, records[i].Present); err != nil {
			return fmt.Errorf("mark attendance for %s: %w", records[i].StudentID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark attendance: %w", err)
	}
	commit = true
	return nil
}

// ListForClassDate returns a class's attendance rows for one date.
func (r *AttendanceRepository) ListForClassDate(ctx context.Context, classID string, date time.Time) ([]models.Attendance, error) {
	const query = `SELECT a.id, a.student_id, a.date, a.present
        FROM attendances a
        JOIN students s ON s.id = a.student_id
        WHERE s.class_id = $1 AND a.date = $2`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, classID, date); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}

// ListForStudent returns a student's attendance within [from, to).
func (r *AttendanceRepository) ListForStudent(ctx context.Context, studentID string, from, to time.Time) ([]models.Attendance, error) {
	const query = `SELECT id, student_id, date, present FROM attendances
        WHERE student_id = $1 AND date >= $2 AND date < $3
        ORDER BY date`
	var records []models.Attendance
	if err := r.db.SelectContext(ctx, &records, query, studentID, from, to); err != nil {
		return nil, fmt.Errorf("list student attendance: %w", err)
	}
	return records, nil
}
