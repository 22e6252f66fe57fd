package models

import "time"

// Timetable is a recurring weekly class slot for a course. DaysOfWeek is a
// comma-separated list of short day names ("MON,WED,FRI"); StartTime and
// EndTime are wall-clock strings in the instructor's Timezone, accepted in
// both 24-hour and 12-hour forms.
type Timetable struct {
	ID         string    `db:"id" json:"id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	DaysOfWeek string    `db:"days_of_week" json:"days_of_week"`
	StartTime  string    `db:"start_time" json:"start_time"`
	EndTime    string    `db:"end_time" json:"end_time"`
	Timezone   string    `db:"timezone" json:"timezone"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// TimetableFilter describes query params for listing timetables.
type TimetableFilter struct {
	CourseID  string
	IsActive  *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
