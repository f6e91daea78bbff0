package models

// Teacher is a user's teaching record for one academic session.
type Teacher struct {
	ID        string `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"user_id"`
	SessionID string `db:"session_id" json:"session_id"`
}

// TeacherDetail joins the teacher with directory and homeroom info.
type TeacherDetail struct {
	Teacher
	UserName string    `db:"user_name" json:"name"`
	Email    *string   `db:"email" json:"email,omitempty"`
	Class    *ClassRef `json:"class,omitempty"`
}

// TeacherAssignments is the full view of one teacher: homeroom plus the
// class-subject assignments.
type TeacherAssignments struct {
	TeacherDetail
	ClassSubjects []ClassSubjectDetail `json:"classSubjects"`
}

// ClassSubjectDetail includes class context for an assignment row.
type ClassSubjectDetail struct {
	ClassSubject
	Grade   Grade  `db:"grade" json:"grade"`
	Section string `db:"section" json:"section"`
}
