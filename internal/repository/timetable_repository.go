package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/edulane/lms-api/internal/models"
)

// TimetableRepository handles persistence of recurring class timetables.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

const timetableColumns = `id, course_id, days_of_week, start_time, end_time, timezone, is_active, created_at, updated_at`

// ListByCourse returns every timetable configured for a course.
func (r *TimetableRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE course_id = $1 ORDER BY created_at`, timetableColumns)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, courseID); err != nil {
		return nil, fmt.Errorf("list course timetables: %w", err)
	}
	return timetables, nil
}

// ListActiveByCourse returns only the active timetables for a course.
func (r *TimetableRepository) ListActiveByCourse(ctx context.Context, courseID string) ([]models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE course_id = $1 AND is_active = TRUE ORDER BY created_at`, timetableColumns)
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, courseID); err != nil {
		return nil, fmt.Errorf("list active course timetables: %w", err)
	}
	return timetables, nil
}

// ListActiveByStudent returns active timetables across all courses the
// student is actively enrolled in.
func (r *TimetableRepository) ListActiveByStudent(ctx context.Context, studentID string) ([]models.Timetable, error) {
	const query = `SELECT t.id, t.course_id, t.days_of_week, t.start_time, t.end_time, t.timezone, t.is_active, t.created_at, t.updated_at
FROM timetables t
JOIN enrollments e ON e.course_id = t.course_id
WHERE e.student_id = $1 AND e.status = $2 AND t.is_active = TRUE
ORDER BY t.created_at`
	var timetables []models.Timetable
	if err := r.db.SelectContext(ctx, &timetables, query, studentID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list student timetables: %w", err)
	}
	return timetables, nil
}

// FindByID loads a single timetable.
func (r *TimetableRepository) FindByID(ctx context.Context, id string) (*models.Timetable, error) {
	query := fmt.Sprintf(`SELECT %s FROM timetables WHERE id = $1`, timetableColumns)
	var timetable models.Timetable
	if err := r.db.GetContext(ctx, &timetable, query, id); err != nil {
		return nil, err
	}
	return &timetable, nil
}

// Create inserts a new timetable row.
func (r *TimetableRepository) Create(ctx context.Context, timetable *models.Timetable) error {
	if timetable.ID == "" {
		timetable.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	timetable.CreatedAt = now
	timetable.UpdatedAt = now
	const query = `INSERT INTO timetables (id, course_id, days_of_week, start_time, end_time, timezone, is_active, created_at, updated_at)
VALUES (:id, :course_id, :days_of_week, :start_time, :end_time, :timezone, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("create timetable: %w", err)
	}
	return nil
}

// Update persists changes to an existing timetable.
func (r *TimetableRepository) Update(ctx context.Context, timetable *models.Timetable) error {
	timetable.UpdatedAt = time.Now().UTC()
	const query = `UPDATE timetables SET days_of_week = :days_of_week, start_time = :start_time, end_time = :end_time,
timezone = :timezone, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, timetable); err != nil {
		return fmt.Errorf("update timetable: %w", err)
	}
	return nil
}

// Delete removes a timetable row.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetables WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable: %w", err)
	}
	return nil
}
