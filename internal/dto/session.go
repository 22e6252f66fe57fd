package dto

import "time"

// CreateSessionRequest captures POST /courses/:id/sessions payload.
// TimetableID is optional; when set the session is linked to a recurring
// slot and ScheduledAt is validated against its configured days.
type CreateSessionRequest struct {
	TimetableID     *string   `json:"timetable_id" validate:"omitempty,uuid4"`
	Title           string    `json:"title" validate:"required,min=3,max=200"`
	ScheduledAt     time.Time `json:"scheduled_at" validate:"required"`
	DurationMinutes int       `json:"duration_minutes" validate:"omitempty,min=5,max=480"`
	MeetingURL      string    `json:"meeting_url" validate:"omitempty,url"`
}
