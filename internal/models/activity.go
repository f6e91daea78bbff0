package models

import "time"

// ActivityEntry is one audit record of a mutating admin action.
type ActivityEntry struct {
	ID     string                 `json:"id"`
	UserID string                 `json:"user_id"`
	Type   string                 `json:"type"`
	Data   map[string]interface{} `json:"data,omitempty"`
	At     time.Time              `json:"at"`
}
