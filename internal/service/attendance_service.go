package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	appErrors "github.com/edulane/lms-api/pkg/errors"
)

type attendanceRepository interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error)
	Upsert(ctx context.Context, record *models.Attendance) error
	SummaryByStudent(ctx context.Context, studentID, courseID string) (*models.AttendanceSummary, error)
}

type attendanceSessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.LiveSession, error)
}

type attendanceEnrollmentRepository interface {
	ExistsActive(ctx context.Context, studentID, courseID string) (bool, error)
}

// AttendanceService records and reports session attendance.
type AttendanceService struct {
	repo        attendanceRepository
	sessions    attendanceSessionRepository
	enrollments attendanceEnrollmentRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, sessions attendanceSessionRepository, enrollments attendanceEnrollmentRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, sessions: sessions, enrollments: enrollments, validator: validate, logger: logger}
}

// ListBySession returns the attendance sheet for one live session.
func (s *AttendanceService) ListBySession(ctx context.Context, sessionID string) ([]models.AttendanceRecord, error) {
	if _, err := s.loadSession(ctx, sessionID); err != nil {
		return nil, err
	}
	records, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}

// Mark records one student's attendance for a session. Marking twice for
// the same student overwrites the earlier record.
func (s *AttendanceService) Mark(ctx context.Context, sessionID, markedBy string, req dto.MarkAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	session, err := s.loadSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusCancelled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cannot mark attendance for a cancelled session")
	}

	enrolled, err := s.enrollments.ExistsActive(ctx, req.StudentID, session.CourseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment")
	}
	if !enrolled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student is not actively enrolled in this course")
	}

	record := &models.Attendance{
		SessionID: sessionID,
		StudentID: req.StudentID,
		Status:    req.Status,
		Notes:     req.Notes,
		MarkedBy:  markedBy,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// BulkMark records attendance for many students in one call. Records are
// processed in order; the first failure aborts and reports the failing
// student.
func (s *AttendanceService) BulkMark(ctx context.Context, sessionID, markedBy string, req dto.BulkMarkAttendanceRequest) ([]models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	marked := make([]models.Attendance, 0, len(req.Records))
	for _, entry := range req.Records {
		record, err := s.Mark(ctx, sessionID, markedBy, entry)
		if err != nil {
			s.logger.Warn("bulk attendance aborted",
				zap.String("session_id", sessionID),
				zap.String("student_id", entry.StudentID),
				zap.Error(err))
			return marked, err
		}
		marked = append(marked, *record)
	}
	return marked, nil
}

// Summary aggregates a student's attendance counts for one course.
func (s *AttendanceService) Summary(ctx context.Context, studentID, courseID string) (*models.AttendanceSummary, error) {
	summary, err := s.repo.SummaryByStudent(ctx, studentID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &models.AttendanceSummary{StudentID: studentID, CourseID: courseID}, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build attendance summary")
	}
	return summary, nil
}

func (s *AttendanceService) loadSession(ctx context.Context, sessionID string) (*models.LiveSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	return session, nil
}
