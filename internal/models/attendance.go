package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "PRESENT"
	AttendanceStatusLate    AttendanceStatus = "LATE"
	AttendanceStatusAbsent  AttendanceStatus = "ABSENT"
	AttendanceStatusExcused AttendanceStatus = "EXCUSED"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// Attendance is one student's attendance record for a live session.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	SessionID string           `db:"session_id" json:"session_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    AttendanceStatus `db:"status" json:"status"`
	Notes     *string          `db:"notes" json:"notes,omitempty"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends Attendance with display metadata.
type AttendanceRecord struct {
	Attendance
	StudentName  string    `db:"student_name" json:"student_name"`
	SessionTitle string    `db:"session_title" json:"session_title"`
	SessionDate  time.Time `db:"session_date" json:"session_date"`
}

// AttendanceSummary aggregates a student's attendance for one course.
type AttendanceSummary struct {
	StudentID    string `db:"student_id" json:"student_id"`
	CourseID     string `db:"course_id" json:"course_id"`
	PresentCount int    `db:"present_count" json:"present_count"`
	LateCount    int    `db:"late_count" json:"late_count"`
	AbsentCount  int    `db:"absent_count" json:"absent_count"`
	ExcusedCount int    `db:"excused_count" json:"excused_count"`
	TotalCount   int    `db:"total_count" json:"total_count"`
}

// AttendanceFilter describes query params for listing attendance records.
type AttendanceFilter struct {
	SessionID string
	StudentID string
	CourseID  string
	Status    *AttendanceStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
}
