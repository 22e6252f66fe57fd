package dto

import (
	"time"

	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/pkg/classtime"
)

// LocalizedSlot is one timetable day rendered in the viewer's timezone.
type LocalizedSlot struct {
	Day            classtime.Weekday `json:"day"`
	DayName        string            `json:"dayName"`
	LocalStartTime string            `json:"localStartTime"`
	LocalEndTime   string            `json:"localEndTime"`
	IsDifferentDay bool              `json:"isDifferentDay"`
	TimeDifference string            `json:"timeDifference"`
}

// LocalizedTimetable couples a raw timetable with its viewer-local view.
type LocalizedTimetable struct {
	Timetable models.Timetable `json:"timetable"`
	Viewer    string           `json:"viewerTimezone"`
	Slots     []LocalizedSlot  `json:"slots"`
}

// NextSessionResponse is the resolved nearest upcoming occurrence across a
// set of timetables, in the viewer's timezone.
type NextSessionResponse struct {
	TimetableID    string            `json:"timetableId"`
	CourseID       string            `json:"courseId,omitempty"`
	Day            classtime.Weekday `json:"day"`
	DayName        string            `json:"dayName"`
	DaysAway       int               `json:"daysAway"`
	LocalStartTime string            `json:"localStartTime"`
	LocalEndTime   string            `json:"localEndTime"`
	IsDifferentDay bool              `json:"isDifferentDay"`
	Viewer         string            `json:"viewerTimezone"`
}

// SuggestedDatesResponse lists upcoming concrete dates for scheduling a
// one-off live session against a recurring timetable.
type SuggestedDatesResponse struct {
	TimetableID string      `json:"timetableId"`
	Dates       []time.Time `json:"dates"`
}
