package models

import "time"

// AuthSession is a server-side login session. Its id is the only claim
// carried inside the signed bearer token.
type AuthSession struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	UserAgent string    `db:"user_agent" json:"ua"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
