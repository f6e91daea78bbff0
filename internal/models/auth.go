package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT payload: just the opaque auth-session id.
type SessionClaims struct {
	SessionID string `json:"session"`
	jwt.RegisteredClaims
}

// LoginRequest carries a federated identity assertion.
type LoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// AuthUser is the fully resolved caller attached to the request context.
// Associations are loaded per role: the teacher record is scoped to the
// latest academic session.
type AuthUser struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Email    *string       `json:"email,omitempty"`
	Role     UserRole      `json:"type"`
	Teacher  *TeacherScope `json:"teacher,omitempty"`
	Students []StudentLink `json:"students,omitempty"`
	Sessions []SessionInfo `json:"authSess,omitempty"`
}

// TeacherScope is the caller's teaching context for the current term.
type TeacherScope struct {
	TeacherID     string            `json:"id"`
	Class         *ClassRef         `json:"class,omitempty"`
	ClassSubjects []ClassSubjectRef `json:"classSubjects"`
}

// ClassIDs returns the set of class ids the teacher may act on.
func (t *TeacherScope) ClassIDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(t.ClassSubjects))
	for _, cs := range t.ClassSubjects {
		ids[cs.ClassID] = struct{}{}
	}
	return ids
}

// CanAccessClass reports whether a teacher caller may act on the
// class, via homeroom or a class-subject assignment. Non-teacher roles
// are not restricted here.
func (u *AuthUser) CanAccessClass(classID string) bool {
	if u.Role != RoleTeacher {
		return true
	}
	if u.Teacher == nil {
		return false
	}
	if u.Teacher.Class != nil && u.Teacher.Class.ID == classID {
		return true
	}
	_, ok := u.Teacher.ClassIDs()[classID]
	return ok
}

// OwnsProfile reports whether a student caller is linked to the
// profile.
func (u *AuthUser) OwnsProfile(profileID string) bool {
	for _, link := range u.Students {
		if link.ProfileID == profileID {
			return true
		}
	}
	return false
}

// OwnsStudent reports whether a student caller is linked to the
// enrollment.
func (u *AuthUser) OwnsStudent(studentID string) bool {
	for _, link := range u.Students {
		for _, id := range link.StudentIDs {
			if id == studentID {
				return true
			}
		}
	}
	return false
}

// StudentLink ties the caller to a student profile and its enrollments.
type StudentLink struct {
	ProfileID  string   `json:"id"`
	Name       string   `json:"name"`
	StudentIDs []string `json:"studentIds"`
}

// SessionInfo describes one of the caller's login sessions.
type SessionInfo struct {
	ID        string `db:"id" json:"id"`
	UserAgent string `db:"user_agent" json:"ua"`
}
