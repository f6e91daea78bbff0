package models

import "time"

// Notice is an announcement addressed to a single class. School-wide
// notices are fanned out as one row per class at creation time.
type Notice struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Content   string    `db:"content" json:"content"`
	ClassID   string    `db:"class_id" json:"class_id"`
	CreatedAt time.Time `db:"created_at" json:"date"`
}

// NoticePage is one page of a student's notice feed, newest first.
type NoticePage struct {
	Notices   []Notice `json:"notices"`
	PageCount int      `json:"pageCount"`
}
