package models

import "time"

// Gender of a student profile.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// StudentProfile identifies a person across academic sessions by serial
// number, with guardian contact details.
type StudentProfile struct {
	ID         string    `db:"id" json:"id"`
	SrNo       string    `db:"sr_no" json:"srNo"`
	Name       string    `db:"name" json:"name"`
	DOB        time.Time `db:"dob" json:"dob"`
	Address    string    `db:"address" json:"address"`
	Phone1     string    `db:"phone1" json:"phone1"`
	Phone2     string    `db:"phone2" json:"phone2"`
	FatherName string    `db:"father_name" json:"fatherName"`
	MotherName string    `db:"mother_name" json:"motherName"`
	FatherOcc  string    `db:"father_occ" json:"fatherOcc"`
	MotherOcc  string    `db:"mother_occ" json:"motherOcc"`
	Gender     Gender    `db:"gender" json:"gender"`
}

// Student is the enrollment of a profile into a class for one session.
type Student struct {
	ID        string `db:"id" json:"id"`
	ProfileID string `db:"profile_id" json:"profile_id"`
	ClassID   string `db:"class_id" json:"class_id"`
	RollNo    string `db:"roll_no" json:"rollNo"`
	GroupID   string `db:"group_id" json:"group_id"`
}

// StudentDetail extends an enrollment with profile and class context.
type StudentDetail struct {
	Student
	ProfileName string  `db:"profile_name" json:"name"`
	SrNo        string  `db:"sr_no" json:"srNo"`
	Grade       Grade   `db:"grade" json:"grade"`
	Section     string  `db:"section" json:"section"`
	GroupName   *string `db:"group_name" json:"group,omitempty"`
}

// ProfileDetail joins a profile with its linked contact users and the
// current-session enrollment, if any.
type ProfileDetail struct {
	StudentProfile
	Users       []UserContact `json:"users"`
	Enrollments []ClassRef    `json:"classes"`
}

// UserContact is a linked directory entry for a profile.
type UserContact struct {
	ID    string  `db:"id" json:"id"`
	Email *string `db:"email" json:"email,omitempty"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}
