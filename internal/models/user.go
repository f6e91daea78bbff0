package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSU      UserRole = "SU"
	RoleAdmin   UserRole = "ADMIN"
	RoleTeacher UserRole = "TEACHER"
	RoleStudent UserRole = "STUDENT"
)

// User is an identity record in the directory. Either email or phone is
// present; each is unique when set.
type User struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserDetail enriches a user with linked teacher and student records.
type UserDetail struct {
	User
	TeacherID *string      `json:"teacher_id,omitempty"`
	Profiles  []ProfileRef `json:"students,omitempty"`
}

// ProfileRef is a compact reference to a linked student profile.
type ProfileRef struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}
