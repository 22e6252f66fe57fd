package dto

import "github.com/edulane/lms-api/internal/models"

// MarkAttendanceRequest records one student's attendance for a session.
type MarkAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required,uuid4"`
	Status    models.AttendanceStatus `json:"status" validate:"required,oneof=PRESENT LATE ABSENT EXCUSED"`
	Notes     *string                 `json:"notes" validate:"omitempty,max=500"`
}

// BulkMarkAttendanceRequest records attendance for many students at once.
type BulkMarkAttendanceRequest struct {
	Records []MarkAttendanceRequest `json:"records" validate:"required,min=1,dive"`
}
