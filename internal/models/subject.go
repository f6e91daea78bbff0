package models

// Subject is identified by its unique name.
type Subject struct {
	Name string `db:"name" json:"name"`
}

// Group is a named bundle of subjects a student enrolls into.
type Group struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// GroupDetail lists the member subjects.
type GroupDetail struct {
	Group
	Subjects []string `json:"subjects"`
}
