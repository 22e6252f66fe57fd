package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/lms-api/internal/models"
)

// AttendanceRepository handles persistence of session attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListBySession returns attendance records for a live session with student
// metadata.
func (r *AttendanceRepository) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	const query = `SELECT a.id, a.session_id, a.student_id, a.status, a.notes, a.marked_by, a.created_at, a.updated_at,
COALESCE(u.full_name, '') AS student_name, COALESCE(s.title, '') AS session_title, s.scheduled_at AS session_date
FROM attendance a
LEFT JOIN users u ON u.id = a.student_id
LEFT JOIN live_sessions s ON s.id = a.session_id
WHERE a.session_id = $1
ORDER BY u.full_name`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session attendance: %w", err)
	}
	return records, nil
}

// Upsert inserts or updates one attendance record keyed on (session, student).
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	const query = `INSERT INTO attendance (id, session_id, student_id, status, notes, marked_by, created_at, updated_at)
VALUES (:id, :session_id, :student_id, :status, :notes, :marked_by, :created_at, :updated_at)
ON CONFLICT (session_id, student_id)
DO UPDATE SET status = EXCLUDED.status, notes = EXCLUDED.notes, marked_by = EXCLUDED.marked_by, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// SummaryByStudent aggregates a student's attendance over one course.
func (r *AttendanceRepository) SummaryByStudent(ctx context.Context, studentID, courseID string) (*models.AttendanceSummary, error) {
	const query = `SELECT
$1::text AS student_id,
$2::text AS course_id,
COUNT(*) FILTER (WHERE a.status = 'PRESENT') AS present_count,
COUNT(*) FILTER (WHERE a.status = 'LATE') AS late_count,
COUNT(*) FILTER (WHERE a.status = 'ABSENT') AS absent_count,
COUNT(*) FILTER (WHERE a.status = 'EXCUSED') AS excused_count,
COUNT(*) AS total_count
FROM attendance a
JOIN live_sessions s ON s.id = a.session_id
WHERE a.student_id = $1 AND s.course_id = $2`
	var summary models.AttendanceSummary
	if err := r.db.GetContext(ctx, &summary, query, studentID, courseID); err != nil {
		return nil, fmt.Errorf("attendance summary: %w", err)
	}
	return &summary, nil
}

// ListForExport returns attendance rows for a course within an optional
// window, joined with student and session metadata.
func (r *AttendanceRepository) ListForExport(ctx context.Context, courseID string, from, to *time.Time) ([]models.AttendanceRecord, error) {
	conditions := []string{"s.course_id = $1"}
	args := []interface{}{courseID}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("s.scheduled_at >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("s.scheduled_at <= $%d", len(args)+1))
		args = append(args, *to)
	}
	query := fmt.Sprintf(`SELECT a.id, a.session_id, a.student_id, a.status, a.notes, a.marked_by, a.created_at, a.updated_at,
COALESCE(u.full_name, '') AS student_name, COALESCE(s.title, '') AS session_title, s.scheduled_at AS session_date
FROM attendance a
LEFT JOIN users u ON u.id = a.student_id
JOIN live_sessions s ON s.id = a.session_id
WHERE %s
ORDER BY s.scheduled_at, u.full_name`, strings.Join(conditions, " AND "))

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance for export: %w", err)
	}
	return records, nil
}
