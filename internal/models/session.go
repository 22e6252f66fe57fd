package models

import "time"

// SessionStatus is the lifecycle state of a scheduled live session.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "SCHEDULED"
	SessionStatusCompleted SessionStatus = "COMPLETED"
	SessionStatusCancelled SessionStatus = "CANCELLED"
)

// LiveSession is a concrete one-off session scheduled against a recurring
// timetable. ScheduledAt is an absolute instant stored in UTC.
type LiveSession struct {
	ID              string        `db:"id" json:"id"`
	CourseID        string        `db:"course_id" json:"course_id"`
	TimetableID     *string       `db:"timetable_id" json:"timetable_id,omitempty"`
	Title           string        `db:"title" json:"title"`
	ScheduledAt     time.Time     `db:"scheduled_at" json:"scheduled_at"`
	DurationMinutes int           `db:"duration_minutes" json:"duration_minutes"`
	MeetingURL      string        `db:"meeting_url" json:"meeting_url"`
	Status          SessionStatus `db:"status" json:"status"`
	CreatedBy       string        `db:"created_by" json:"created_by"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// SessionFilter describes query params for listing live sessions.
type SessionFilter struct {
	CourseID string
	Status   SessionStatus
	From     *time.Time
	To       *time.Time
	Page     int
	PageSize int
}
