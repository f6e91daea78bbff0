package models

import "time"

// Attendance is one student's presence record for one calendar date.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	Date      time.Time `db:"date" json:"date"`
	Present   bool      `db:"present" json:"present"`
}

// AttendanceMarked records that a class took attendance on a date. At
// most one row exists per (class, date).
type AttendanceMarked struct {
	ID      string    `db:"id" json:"id"`
	ClassID string    `db:"class_id" json:"class_id"`
	Date    time.Time `db:"date" json:"date"`
}

// AttendanceEntry is the per-student input for marking a class.
type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
}
