package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-admin-api/internal/models"
)

// StudentRepository handles persistence of student profiles and their
// per-session enrollments.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// CreateProfiles inserts a batch of profiles in one transaction.
func (r *StudentRepository) CreateProfiles(ctx context.Context, profiles []models.StudentProfile) error {
	if len(profiles) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create profiles: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const query = `INSERT INTO student_profiles
        (id, sr_no, name, dob, address, phone1, phone2, father_name, mother_name, father_occ, mother_occ, gender)
        VALUES (:id, :sr_no, :name, :dob, :address, :phone1, :phone2, :father_name, :mother_name, :father_occ, :mother_occ, :gender)`
	for i := range profiles {
		if profiles[i].ID == "" {
			profiles[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, profiles[i]); err != nil {
			return fmt.Errorf("create profile %s: %w", profiles[i].SrNo, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create profiles: %w", err)
	}
	commit = true
	return nil
}

// FindProfileByID returns one profile.
func (r *StudentRepository) FindProfileByID(ctx context.Context, id string) (*models.StudentProfile, error) {
	const query = `SELECT id, sr_no, name, dob, address, phone1, phone2,
        father_name, mother_name, father_occ, mother_occ, gender
        FROM student_profiles WHERE id = $1`
	var profile models.StudentProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles returns all profiles ordered by serial number.
func (r *StudentRepository) ListProfiles(ctx context.Context) ([]models.StudentProfile, error) {
	const query = `SELECT id, sr_no, name, dob, address, phone1, phone2,
        father_name, mother_name, father_occ, mother_occ, gender
        FROM student_profiles ORDER BY sr_no`
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// FindProfilesBySrNos resolves profiles for a set of serial numbers.
func (r *StudentRepository) FindProfilesBySrNos(ctx context.Context, srNos []string) ([]models.StudentProfile, error) {
	if len(srNos) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(srNos))
	args := make([]interface{}, len(srNos))
	for i, srNo := range srNos {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = srNo
	}
	query := fmt.Sprintf(`SELECT id, sr_no, name, dob, address, phone1, phone2,
        father_name, mother_name, father_occ, mother_occ, gender
        FROM student_profiles WHERE sr_no IN (%s)`, strings.Join(placeholders, ","))
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query, args...); err != nil {
		return nil, fmt.Errorf("find profiles: %w", err)
	}
	return profiles, nil
}

// ExistingSrNos reports which of the given serial numbers are taken.
func (r *StudentRepository) ExistingSrNos(ctx context.Context, srNos []string) (map[string]bool, error) {
	if len(srNos) == 0 {
		return map[string]bool{}, nil
	}
	placeholders := make([]string, len(srNos))
	args := make([]interface{}, len(srNos))
	for i, srNo := range srNos {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = srNo
	}
	query := fmt.Sprintf(`SELECT sr_no FROM student_profiles WHERE sr_no IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check sr numbers: %w", err)
	}
	defer rows.Close()
	taken := make(map[string]bool, len(srNos))
	for rows.Next() {
		var srNo string
		if err := rows.Scan(&srNo); err != nil {
			return nil, fmt.Errorf("scan sr number: %w", err)
		}
		taken[srNo] = true
	}
	return taken, nil
}

// UpdateProfile rewrites the mutable fields of a profile.
func (r *StudentRepository) UpdateProfile(ctx context.Context, profile *models.StudentProfile) error {
	const query = `UPDATE student_profiles SET name = :name, dob = :dob, address = :address,
        phone1 = :phone1, phone2 = :phone2, father_name = :father_name, mother_name = :mother_name,
        father_occ = :father_occ, mother_occ = :mother_occ, gender = :gender
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, profile); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// LinkUser attaches a directory user to a profile. Re-linking the same
// pair is a no-op.
func (r *StudentRepository) LinkUser(ctx context.Context, profileID, userID string) error {
	const query = `INSERT INTO profile_users (profile_id, user_id)
        VALUES ($1, $2) ON CONFLICT (profile_id, user_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query, profileID, userID); err != nil {
		return fmt.Errorf("link profile user: %w", err)
	}
	return nil
}

// ListProfileUsers returns the directory users linked to a profile.
func (r *StudentRepository) ListProfileUsers(ctx context.Context, profileID string) ([]models.UserContact, error) {
	const query = `SELECT u.id, u.email, u.phone
        FROM profile_users pu
        JOIN users u ON u.id = pu.user_id
        WHERE pu.profile_id = $1`
	var users []models.UserContact
	if err := r.db.SelectContext(ctx, &users, query, profileID); err != nil {
		return nil, fmt.Errorf("list profile users: %w", err)
	}
	return users, nil
}

// ProfilesByUser returns the profiles a directory user is linked to,
// with their current enrollments.
func (r *StudentRepository) ProfilesByUser(ctx context.Context, userID string) ([]models.StudentProfile, error) {
	const query = `SELECT p.id, p.sr_no, p.name, p.dob, p.address, p.phone1, p.phone2,
        p.father_name, p.mother_name, p.father_occ, p.mother_occ, p.gender
        FROM profile_users pu
        JOIN student_profiles p ON p.id = pu.profile_id
        WHERE pu.user_id = $1`
	var profiles []models.StudentProfile
	if err := r.db.SelectContext(ctx, &profiles, query, userID); err != nil {
		return nil, fmt.Errorf("list user profiles: %w", err)
	}
	return profiles, nil
}

// StudentsByProfile returns every enrollment of a profile.
func (r *StudentRepository) StudentsByProfile(ctx context.Context, profileID string) ([]models.Student, error) {
	const query = `SELECT id, profile_id, class_id, roll_no, group_id FROM students WHERE profile_id = $1`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, profileID); err != nil {
		return nil, fmt.Errorf("list profile students: %w", err)
	}
	return students, nil
}

// BatchCreate inserts a set of enrollments in one transaction. Any
// failure rolls the whole batch back.
func (r *StudentRepository) BatchCreate(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll students: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	const query = `INSERT INTO students (id, profile_id, class_id, roll_no, group_id)
        VALUES (:id, :profile_id, :class_id, :roll_no, :group_id)`
	for i := range students {
		if students[i].ID == "" {
			students[i].ID = uuid.NewString()
		}
		if _, err := tx.NamedExecContext(ctx, query, students[i]); err != nil {
			return fmt.Errorf("enroll student %s: %w", students[i].ProfileID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll students: %w", err)
	}
	commit = true
	return nil
}

// FindStudent returns one enrollment row.
func (r *StudentRepository) FindStudent(ctx context.Context, id string) (*models.Student, error) {
	const query = `SELECT id, profile_id, class_id, roll_no, group_id FROM students WHERE id = $1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// ListByClass returns the roster of a class ordered by roll number.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error) {
	const query = `SELECT s.id, s.profile_id, s.class_id, s.roll_no, s.group_id,
        p.name AS profile_name, p.sr_no, c.grade, c.section, g.name AS group_name
        FROM students s
        JOIN student_profiles p ON p.id = s.profile_id
        JOIN classes c ON c.id = s.class_id
        LEFT JOIN groups g ON g.id = s.group_id
        WHERE s.class_id = $1
        ORDER BY s.roll_no`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// ListBySession returns every enrollment in an academic session with
// profile and class context, ordered by grade, section and roll number.
func (r *StudentRepository) ListBySession(ctx context.Context, sessionID string) ([]models.StudentDetail, error) {
	const query = `SELECT s.id, s.profile_id, s.class_id, s.roll_no, s.group_id,
        p.name AS profile_name, p.sr_no, c.grade, c.section, g.name AS group_name
        FROM students s
        JOIN student_profiles p ON p.id = s.profile_id
        JOIN classes c ON c.id = s.class_id
        LEFT JOIN groups g ON g.id = s.group_id
        WHERE c.session_id = $1
        ORDER BY c.grade, c.section, s.roll_no`
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session students: %w", err)
	}
	return students, nil
}

// EnrolledSrNos reports which of the given serial numbers already hold
// an enrollment in the academic session.
func (r *StudentRepository) EnrolledSrNos(ctx context.Context, sessionID string, srNos []string) (map[string]bool, error) {
	if len(srNos) == 0 {
		return map[string]bool{}, nil
	}
	placeholders := make([]string, len(srNos))
	args := []interface{}{sessionID}
	for i, srNo := range srNos {
		placeholders[i] = fmt.Sprintf("$%d", i+2)
		args = append(args, srNo)
	}
	query := fmt.Sprintf(`SELECT p.sr_no
        FROM students s
        JOIN student_profiles p ON p.id = s.profile_id
        JOIN classes c ON c.id = s.class_id
        WHERE c.session_id = $1 AND p.sr_no IN (%s)`, strings.Join(placeholders, ","))
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("check enrolled: %w", err)
	}
	defer rows.Close()
	enrolled := make(map[string]bool, len(srNos))
	for rows.Next() {
		var srNo string
		if err := rows.Scan(&srNo); err != nil {
			return nil, fmt.Errorf("scan enrolled: %w", err)
		}
		enrolled[srNo] = true
	}
	return enrolled, nil
}

// RollNosByClass returns the roll numbers already taken in a class.
func (r *StudentRepository) RollNosByClass(ctx context.Context, classID string) (map[string]bool, error) {
	const query = `SELECT roll_no FROM students WHERE class_id = $1`
	rows, err := r.db.QueryxContext(ctx, query, classID)
	if err != nil {
		return nil, fmt.Errorf("list roll numbers: %w", err)
	}
	defer rows.Close()
	taken := make(map[string]bool)
	for rows.Next() {
		var rollNo string
		if err := rows.Scan(&rollNo); err != nil {
			return nil, fmt.Errorf("scan roll number: %w", err)
		}
		taken[rollNo] = true
	}
	return taken, nil
}

// UpdateStudent rewrites the mutable enrollment fields.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET class_id = :class_id, roll_no = :roll_no, group_id = :group_id
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}
