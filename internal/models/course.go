package models

import "time"

// CourseLevel grades the difficulty of a course.
type CourseLevel string

const (
	CourseLevelBeginner     CourseLevel = "BEGINNER"
	CourseLevelIntermediate CourseLevel = "INTERMEDIATE"
	CourseLevelAdvanced     CourseLevel = "ADVANCED"
)

// Course represents a published or draft course offering.
type Course struct {
	ID           string      `db:"id" json:"id"`
	Title        string      `db:"title" json:"title"`
	Description  string      `db:"description" json:"description"`
	Category     string      `db:"category" json:"category"`
	Level        CourseLevel `db:"level" json:"level"`
	InstructorID string      `db:"instructor_id" json:"instructor_id"`
	Published    bool        `db:"published" json:"published"`
	Archived     bool        `db:"archived" json:"archived"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// CourseDetail joins instructor metadata for list and detail views.
type CourseDetail struct {
	Course
	InstructorName string `db:"instructor_name" json:"instructor_name"`
	EnrolledCount  int    `db:"enrolled_count" json:"enrolled_count"`
}

// CourseFilter describes query params for listing courses.
type CourseFilter struct {
	Category     string
	Level        string
	InstructorID string
	Published    *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
