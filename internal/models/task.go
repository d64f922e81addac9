package models

import "time"

// TaskRecord is one row of the source worksheet. All text fields are
// untrusted and must be escaped before rendering.
type TaskRecord struct {
	Title    string
	Assignee string
	Link     string
	Status   string
	// ClosedAt is set only when the close-date cell parses; HasClosedAt
	// distinguishes "no date" from a zero time.
	ClosedAt    time.Time
	HasClosedAt bool
}
