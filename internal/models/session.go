package models

import "time"

// AcademicSession is a date-ranged school term. Ranges are half-open
// [start, end): two sessions may touch at a boundary but never overlap.
type AcademicSession struct {
	ID        string    `db:"id" json:"id"`
	StartDate time.Time `db:"start_date" json:"start"`
	EndDate   time.Time `db:"end_date" json:"end"`
}

// Overlaps reports whether the receiver's range intersects [start, end).
func (s AcademicSession) Overlaps(start, end time.Time) bool {
	return s.StartDate.Before(end) && s.EndDate.After(start)
}
