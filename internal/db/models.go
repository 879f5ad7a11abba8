// Package db provides the in-memory SQLite store behind the dashboard's
// pending actions and captured ideas.
package db

import "time"

// Action is a row of the pending_actions table.
type Action struct {
	ID          string
	Title       string
	Description string
	DueDate     string
	Priority    string
	Completed   bool
	Position    int
	CreatedAt   time.Time
}

// Idea is a row of the ideas table.
type Idea struct {
	ID         string
	Text       string
	CapturedAt time.Time
}
