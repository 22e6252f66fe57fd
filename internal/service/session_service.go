package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/pkg/classtime"
	appErrors "github.com/edulane/lms-api/pkg/errors"
)

type sessionRepository interface {
	List(ctx context.Context, filter models.SessionFilter) ([]models.LiveSession, int, error)
	FindByID(ctx context.Context, id string) (*models.LiveSession, error)
	Create(ctx context.Context, session *models.LiveSession) error
	UpdateStatus(ctx context.Context, id string, status models.SessionStatus) error
}

type sessionTimetableRepository interface {
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
}

type sessionCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// SessionConfig tunes live session defaults.
type SessionConfig struct {
	DefaultDurationMinutes int
}

// SessionService schedules and manages one-off live sessions.
type SessionService struct {
	repo       sessionRepository
	timetables sessionTimetableRepository
	courses    sessionCourseRepository
	validator  *validator.Validate
	logger     *zap.Logger
	config     SessionConfig
	now        func() time.Time
}

// NewSessionService constructs a SessionService instance.
func NewSessionService(repo sessionRepository, timetables sessionTimetableRepository, courses sessionCourseRepository, validate *validator.Validate, logger *zap.Logger, config SessionConfig) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultDurationMinutes <= 0 {
		config.DefaultDurationMinutes = 60
	}
	return &SessionService{
		repo:       repo,
		timetables: timetables,
		courses:    courses,
		validator:  validate,
		logger:     logger,
		config:     config,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// List returns live sessions matching the filter with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.LiveSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// GetByID loads a single live session.
func (s *SessionService) GetByID(ctx context.Context, id string) (*models.LiveSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	return session, nil
}

// Create schedules a new live session for a course. When the session is
// linked to a timetable, the scheduled date must land on one of the
// timetable's configured weekdays, evaluated in the timetable's timezone.
func (s *SessionService) Create(ctx context.Context, courseID, createdBy string, req dto.CreateSessionRequest) (*models.LiveSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	if req.ScheduledAt.Before(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduled_at must be in the future")
	}

	if req.TimetableID != nil {
		timetable, err := s.timetables.FindByID(ctx, *req.TimetableID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timetable")
		}
		if timetable.CourseID != courseID {
			return nil, appErrors.Clone(appErrors.ErrValidation, "timetable does not belong to this course")
		}
		if err := s.checkScheduledDay(timetable, req.ScheduledAt); err != nil {
			return nil, err
		}
	}

	duration := req.DurationMinutes
	if duration <= 0 {
		duration = s.config.DefaultDurationMinutes
	}

	session := &models.LiveSession{
		CourseID:        courseID,
		TimetableID:     req.TimetableID,
		Title:           req.Title,
		ScheduledAt:     req.ScheduledAt.UTC(),
		DurationMinutes: duration,
		MeetingURL:      req.MeetingURL,
		Status:          models.SessionStatusScheduled,
		CreatedBy:       createdBy,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// Cancel marks a scheduled session as cancelled.
func (s *SessionService) Cancel(ctx context.Context, id string) (*models.LiveSession, error) {
	return s.transition(ctx, id, models.SessionStatusCancelled)
}

// Complete marks a scheduled session as completed.
func (s *SessionService) Complete(ctx context.Context, id string) (*models.LiveSession, error) {
	return s.transition(ctx, id, models.SessionStatusCompleted)
}

func (s *SessionService) transition(ctx context.Context, id string, status models.SessionStatus) (*models.LiveSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch session")
	}
	if session.Status != models.SessionStatusScheduled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "session is no longer scheduled")
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session status")
	}
	session.Status = status
	return session, nil
}

// SuggestedDates returns the next five concrete calendar dates matching a
// timetable's configured weekdays, starting today in the timetable's
// timezone.
func (s *SessionService) SuggestedDates(ctx context.Context, timetableID string) (*dto.SuggestedDatesResponse, error) {
	timetable, err := s.timetables.FindByID(ctx, timetableID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timetable")
	}

	days, err := parseDaysCSV(timetable.DaysOfWeek)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "timetable has unparsable days")
	}

	loc, err := time.LoadLocation(timetable.Timezone)
	if err != nil {
		s.logger.Warn("unrecognized timetable timezone, using UTC",
			zap.String("timetable_id", timetable.ID),
			zap.String("timezone", timetable.Timezone))
		loc = time.UTC
	}

	return &dto.SuggestedDatesResponse{
		TimetableID: timetable.ID,
		Dates:       classtime.SuggestedDates(days, s.now().In(loc)),
	}, nil
}

// checkScheduledDay verifies the concrete date falls on one of the
// timetable's weekdays, evaluated in the timetable's own timezone.
func (s *SessionService) checkScheduledDay(timetable *models.Timetable, scheduledAt time.Time) error {
	days, err := parseDaysCSV(timetable.DaysOfWeek)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "timetable has unparsable days")
	}
	loc, err := time.LoadLocation(timetable.Timezone)
	if err != nil {
		loc = time.UTC
	}
	scheduled := classtime.WeekdayOf(scheduledAt.In(loc))
	for _, day := range days {
		if day == scheduled {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "scheduled_at does not fall on a timetable day")
}
