package dto

import "github.com/edulane/lms-api/internal/models"

// EnrollRequest captures POST /enrollments payload.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	CourseID  string `json:"course_id" validate:"required,uuid4"`
}

// UpdateEnrollmentStatusRequest transitions an enrollment's lifecycle state.
type UpdateEnrollmentStatusRequest struct {
	Status models.EnrollmentStatus `json:"status" validate:"required,oneof=ACTIVE DROPPED COMPLETED"`
}
