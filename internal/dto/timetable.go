package dto

// CreateTimetableRequest captures POST /courses/:id/timetables payload.
// Days accepts short or full day names; times accept 24-hour and 12-hour
// forms.
type CreateTimetableRequest struct {
	Days      []string `json:"days" validate:"required,min=1,dive,required"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Timezone  string   `json:"timezone" validate:"required"`
	IsActive  *bool    `json:"is_active"`
}

// UpdateTimetableRequest captures PUT /timetables/:id payload.
type UpdateTimetableRequest struct {
	Days      []string `json:"days" validate:"required,min=1,dive,required"`
	StartTime string   `json:"start_time" validate:"required"`
	EndTime   string   `json:"end_time" validate:"required"`
	Timezone  string   `json:"timezone" validate:"required"`
	IsActive  *bool    `json:"is_active"`
}
