package models

import "time"

// TestType distinguishes periodic tests from term exams.
type TestType string

const (
	TestTypePeriodic TestType = "PERIODIC"
	TestTypeExam     TestType = "EXAM"
)

// Test is a graded assessment for one subject at one grade level. Marks
// for every section of the grade attach to the same test row.
type Test struct {
	ID          string    `db:"id" json:"id"`
	Grade       Grade     `db:"grade" json:"grade"`
	SubjectName string    `db:"subject_name" json:"subject"`
	Total       int       `db:"total" json:"total"`
	Type        TestType  `db:"type" json:"type"`
	Date        time.Time `db:"date" json:"date"`
}

// Marks is one student's score on one test. Absent rows keep marks 0.
type Marks struct {
	ID        string `db:"id" json:"id"`
	StudentID string `db:"student_id" json:"student_id"`
	TestID    string `db:"test_id" json:"test_id"`
	Marks     int    `db:"marks" json:"marks"`
	Absent    bool   `db:"absent" json:"absent"`
}

// MarksDetail joins a marks row with student identity for sheet views.
type MarksDetail struct {
	Marks
	RollNo      string `db:"roll_no" json:"rollNo"`
	StudentName string `db:"student_name" json:"name"`
}

// TestMarks bundles a test with the recorded marks of one class.
type TestMarks struct {
	Test
	Marks []MarksDetail `json:"marks"`
}
