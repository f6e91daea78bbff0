package models

import (
	"fmt"
	"time"
)

// Grade enumerates the grade levels offered by the school.
type Grade string

const (
	GradeNursery      Grade = "NURSERY"
	GradeSrNursery    Grade = "SR_NURSERY"
	GradeKindergarden Grade = "KINDERGARDEN"
	GradeFirst        Grade = "FIRST"
	GradeSecond       Grade = "SECOND"
	GradeThird        Grade = "THIRD"
	GradeFourth       Grade = "FOURTH"
	GradeFifth        Grade = "FIFTH"
	GradeSixth        Grade = "SIXTH"
	GradeSeventh      Grade = "SEVENTH"
	GradeEighth       Grade = "EIGHTH"
	GradeNinth        Grade = "NINTH"
	GradeTenth        Grade = "TENTH"
	GradeEleventh     Grade = "ELEVENTH"
	GradeTwelfth      Grade = "TWELFTH"
)

var gradeAliases = map[string]Grade{
	"NURSERY":      GradeNursery,
	"SR_NURSERY":   GradeSrNursery,
	"KINDERGARDEN": GradeKindergarden,
	"1":            GradeFirst,
	"FIRST":        GradeFirst,
	"2":            GradeSecond,
	"SECOND":       GradeSecond,
	"3":            GradeThird,
	"THIRD":        GradeThird,
	"4":            GradeFourth,
	"FOURTH":       GradeFourth,
	"5":            GradeFifth,
	"FIFTH":        GradeFifth,
	"6":            GradeSixth,
	"SIXTH":        GradeSixth,
	"7":            GradeSeventh,
	"SEVENTH":      GradeSeventh,
	"8":            GradeEighth,
	"EIGHTH":       GradeEighth,
	"9":            GradeNinth,
	"NINTH":        GradeNinth,
	"10":           GradeTenth,
	"TENTH":        GradeTenth,
	"11":           GradeEleventh,
	"ELEVENTH":     GradeEleventh,
	"12":           GradeTwelfth,
	"TWELFTH":      GradeTwelfth,
}

// ParseGrade resolves numeric ("1".."12") and named grade spellings.
func ParseGrade(raw string) (Grade, error) {
	if g, ok := gradeAliases[raw]; ok {
		return g, nil
	}
	return "", fmt.Errorf("invalid grade %s", raw)
}

// Class is one grade+section roster within an academic session, with a
// single homeroom teacher.
type Class struct {
	ID        string    `db:"id" json:"id"`
	Grade     Grade     `db:"grade" json:"grade"`
	Section   string    `db:"section" json:"section"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	SessionID string    `db:"session_id" json:"session_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ClassRef is a compact class reference used in auth context and lists.
type ClassRef struct {
	ID      string `db:"id" json:"id"`
	Grade   Grade  `db:"grade" json:"grade"`
	Section string `db:"section" json:"section"`
}

// ClassSubject assigns a teacher to teach one subject in one class,
// independent of the homeroom assignment.
type ClassSubject struct {
	ID          string `db:"id" json:"id"`
	ClassID     string `db:"class_id" json:"class_id"`
	SubjectName string `db:"subject_name" json:"subject"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
}

// ClassSubjectRef is the slim view carried on the auth context.
type ClassSubjectRef struct {
	ID      string `db:"id" json:"id"`
	ClassID string `db:"class_id" json:"class_id"`
}
