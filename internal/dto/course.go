package dto

import "github.com/edulane/lms-api/internal/models"

// CreateCourseRequest captures POST /courses payload.
type CreateCourseRequest struct {
	Title        string             `json:"title" validate:"required,min=3,max=200"`
	Description  string             `json:"description" validate:"max=2000"`
	Category     string             `json:"category" validate:"required"`
	Level        models.CourseLevel `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	InstructorID string             `json:"instructor_id" validate:"required,uuid4"`
	Published    bool               `json:"published"`
}

// UpdateCourseRequest captures PUT /courses/:id payload.
type UpdateCourseRequest struct {
	Title       string             `json:"title" validate:"required,min=3,max=200"`
	Description string             `json:"description" validate:"max=2000"`
	Category    string             `json:"category" validate:"required"`
	Level       models.CourseLevel `json:"level" validate:"required,oneof=BEGINNER INTERMEDIATE ADVANCED"`
	Published   bool               `json:"published"`
}
