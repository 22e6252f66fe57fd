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

// SessionRepository handles persistence of scheduled live sessions.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository constructs the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, course_id, timetable_id, title, scheduled_at, duration_minutes, meeting_url, status, created_by, created_at, updated_at`

// List returns live sessions filtered by the provided criteria.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.LiveSession, int, error) {
	var conditions []string
	var args []interface{}

	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at >= $%d", len(args)+1))
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at <= $%d", len(args)+1))
		args = append(args, *filter.To)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s FROM live_sessions%s ORDER BY scheduled_at LIMIT %d OFFSET %d`,
		sessionColumns, clause, size, offset)

	var sessions []models.LiveSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM live_sessions%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}
	return sessions, total, nil
}

// FindByID loads a single live session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.LiveSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM live_sessions WHERE id = $1`, sessionColumns)
	var session models.LiveSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// Create inserts a new live session row.
func (r *SessionRepository) Create(ctx context.Context, session *models.LiveSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO live_sessions (id, course_id, timetable_id, title, scheduled_at, duration_minutes, meeting_url, status, created_by, created_at, updated_at)
VALUES (:id, :course_id, :timetable_id, :title, :scheduled_at, :duration_minutes, :meeting_url, :status, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateStatus transitions a session's lifecycle state.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE live_sessions SET status = $1, updated_at = NOW() WHERE id = $2`, status, id); err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	return nil
}

// ListForExport returns session rows for a course within an optional window,
// used by the report pipeline.
func (r *SessionRepository) ListForExport(ctx context.Context, courseID string, from, to *time.Time) ([]models.LiveSession, error) {
	conditions := []string{"course_id = $1"}
	args := []interface{}{courseID}
	if from != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		conditions = append(conditions, fmt.Sprintf("scheduled_at <= $%d", len(args)+1))
		args = append(args, *to)
	}
	query := fmt.Sprintf(`SELECT %s FROM live_sessions WHERE %s ORDER BY scheduled_at`,
		sessionColumns, strings.Join(conditions, " AND "))

	var sessions []models.LiveSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, fmt.Errorf("list sessions for export: %w", err)
	}
	return sessions, nil
}
