package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/pkg/classtime"
	appErrors "github.com/edulane/lms-api/pkg/errors"
)

type timetableRepository interface {
	ListByCourse(ctx context.Context, courseID string) ([]models.Timetable, error)
	ListActiveByCourse(ctx context.Context, courseID string) ([]models.Timetable, error)
	ListActiveByStudent(ctx context.Context, studentID string) ([]models.Timetable, error)
	FindByID(ctx context.Context, id string) (*models.Timetable, error)
	Create(ctx context.Context, timetable *models.Timetable) error
	Update(ctx context.Context, timetable *models.Timetable) error
	Delete(ctx context.Context, id string) error
}

type timetableCourseRepository interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

type timetableUserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TimetableConfig tunes viewer-localized schedule resolution.
type TimetableConfig struct {
	// DefaultViewerTimezone applies when neither the request nor the
	// viewer's profile names a timezone.
	DefaultViewerTimezone string
	NextSessionCacheTTL   time.Duration
}

// TimetableService manages recurring weekly timetables and renders them in
// the viewer's timezone.
type TimetableService struct {
	repo      timetableRepository
	courses   timetableCourseRepository
	users     timetableUserRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    TimetableConfig
	now       func() time.Time
}

// NewTimetableService constructs a TimetableService instance.
func NewTimetableService(repo timetableRepository, courses timetableCourseRepository, users timetableUserRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, config TimetableConfig) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if config.DefaultViewerTimezone == "" {
		config.DefaultViewerTimezone = "UTC"
	}
	return &TimetableService{
		repo:      repo,
		courses:   courses,
		users:     users,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    config,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// ListByCourse returns every timetable configured for a course, unlocalized.
func (s *TimetableService) ListByCourse(ctx context.Context, courseID string) ([]models.Timetable, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}
	timetables, err := s.repo.ListByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}
	return timetables, nil
}

// Create validates and persists a timetable for a course.
func (s *TimetableService) Create(ctx context.Context, courseID string, req dto.CreateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	normalizedDays, err := normalizeDays(req.Days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime, req.Timezone); err != nil {
		return nil, err
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	timetable := &models.Timetable{
		CourseID:   courseID,
		DaysOfWeek: normalizedDays,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Timezone:   req.Timezone,
		IsActive:   active,
	}
	if err := s.repo.Create(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable")
	}

	s.cache.Invalidate(ctx, "schedule:*")
	return timetable, nil
}

// Update modifies an existing timetable.
func (s *TimetableService) Update(ctx context.Context, id string, req dto.UpdateTimetableRequest) (*models.Timetable, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	timetable, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timetable")
	}

	normalizedDays, err := normalizeDays(req.Days)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := validateSlotTimes(req.StartTime, req.EndTime, req.Timezone); err != nil {
		return nil, err
	}

	timetable.DaysOfWeek = normalizedDays
	timetable.StartTime = req.StartTime
	timetable.EndTime = req.EndTime
	timetable.Timezone = req.Timezone
	if req.IsActive != nil {
		timetable.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, timetable); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update timetable")
	}

	s.cache.Invalidate(ctx, "schedule:*")
	return timetable, nil
}

// Delete removes a timetable.
func (s *TimetableService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch timetable")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable")
	}
	s.cache.Invalidate(ctx, "schedule:*")
	return nil
}

// ResolveViewerTimezone picks the effective viewer timezone. Precedence:
// explicit request value, then the viewer's profile, then the configured
// default. Unknown names are handled downstream by the converter's UTC
// fallback, not here.
func (s *TimetableService) ResolveViewerTimezone(ctx context.Context, requestTZ, viewerID string) string {
	if tz := strings.TrimSpace(requestTZ); tz != "" {
		return tz
	}
	if viewerID != "" {
		user, err := s.users.FindByID(ctx, viewerID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				s.logger.Warn("failed to load viewer profile for timezone",
					zap.String("user_id", viewerID), zap.Error(err))
			}
		} else if user.Timezone != "" {
			return user.Timezone
		}
	}
	return s.config.DefaultViewerTimezone
}

// LocalizedByCourse renders a course's active timetables in the viewer's
// timezone, one slot per configured day.
func (s *TimetableService) LocalizedByCourse(ctx context.Context, courseID, viewerTZ string) ([]dto.LocalizedTimetable, error) {
	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	timetables, err := s.repo.ListActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	converter := classtime.NewConverter(viewerTZ, s.logger)
	localized := make([]dto.LocalizedTimetable, 0, len(timetables))
	for _, timetable := range timetables {
		days, err := parseDaysCSV(timetable.DaysOfWeek)
		if err != nil {
			s.logger.Warn("skipping timetable with unparsable days",
				zap.String("timetable_id", timetable.ID), zap.Error(err))
			continue
		}

		slots := make([]dto.LocalizedSlot, 0, len(days))
		for _, day := range days {
			start, err := converter.Convert(timetable.StartTime, timetable.Timezone, day)
			if err != nil {
				s.logger.Warn("skipping unparsable timetable slot",
					zap.String("timetable_id", timetable.ID),
					zap.String("start_time", timetable.StartTime),
					zap.Error(err))
				continue
			}
			slot := dto.LocalizedSlot{
				Day:            start.LocalDay,
				DayName:        start.LocalDayName,
				LocalStartTime: start.LocalTime,
				IsDifferentDay: start.DifferentDay,
				TimeDifference: start.TimeDifference,
			}
			if end, err := converter.Convert(timetable.EndTime, timetable.Timezone, day); err == nil {
				slot.LocalEndTime = end.LocalTime
			}
			slots = append(slots, slot)
		}

		localized = append(localized, dto.LocalizedTimetable{
			Timetable: timetable,
			Viewer:    viewerTZ,
			Slots:     slots,
		})
	}
	return localized, nil
}

// NextSessionForCourse resolves the nearest upcoming class occurrence among
// the course's active timetables, in the viewer's timezone. Results are
// cached briefly keyed on course and viewer timezone. A nil response with
// a nil error means the course has no upcoming session.
func (s *TimetableService) NextSessionForCourse(ctx context.Context, courseID, viewerTZ string) (*dto.NextSessionResponse, error) {
	cacheKey := fmt.Sprintf("schedule:course:%s:next:%s", courseID, viewerTZ)
	var cached dto.NextSessionResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	if _, err := s.courses.FindByID(ctx, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	timetables, err := s.repo.ListActiveByCourse(ctx, courseID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetables")
	}

	response, err := s.resolveNext(timetables, viewerTZ)
	if err != nil || response == nil {
		return nil, err
	}
	response.CourseID = courseID

	if err := s.cache.Set(ctx, cacheKey, response, s.config.NextSessionCacheTTL); err != nil {
		s.logger.Warn("failed to cache next session", zap.String("course_id", courseID), zap.Error(err))
	}
	return response, nil
}

// NextSessionForStudent resolves the nearest upcoming class occurrence
// across every course the student is actively enrolled in. A nil response
// with a nil error means no enrolled course has an upcoming session.
func (s *TimetableService) NextSessionForStudent(ctx context.Context, studentID, viewerTZ string) (*dto.NextSessionResponse, error) {
	cacheKey := fmt.Sprintf("schedule:student:%s:next:%s", studentID, viewerTZ)
	var cached dto.NextSessionResponse
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	timetables, err := s.repo.ListActiveByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list student timetables")
	}

	response, err := s.resolveNext(timetables, viewerTZ)
	if err != nil || response == nil {
		return nil, err
	}
	if resolved := s.timetableCourse(timetables, response.TimetableID); resolved != "" {
		response.CourseID = resolved
	}

	if err := s.cache.Set(ctx, cacheKey, response, s.config.NextSessionCacheTTL); err != nil {
		s.logger.Warn("failed to cache next session", zap.String("student_id", studentID), zap.Error(err))
	}
	return response, nil
}

func (s *TimetableService) resolveNext(timetables []models.Timetable, viewerTZ string) (*dto.NextSessionResponse, error) {
	entries := make([]classtime.Entry, 0, len(timetables))
	for _, timetable := range timetables {
		days, err := parseDaysCSV(timetable.DaysOfWeek)
		if err != nil {
			s.logger.Warn("skipping timetable with unparsable days",
				zap.String("timetable_id", timetable.ID), zap.Error(err))
			continue
		}
		entries = append(entries, classtime.Entry{
			ID:        timetable.ID,
			Days:      days,
			StartTime: timetable.StartTime,
			EndTime:   timetable.EndTime,
			Timezone:  timetable.Timezone,
			Active:    timetable.IsActive,
		})
	}

	converter := classtime.NewConverter(viewerTZ, s.logger)
	next, ok := converter.NextSession(entries, s.now())
	s.metrics.RecordNextSessionResolution()
	if !ok {
		// No active timetable has an upcoming occurrence. A normal outcome,
		// not an error.
		return nil, nil
	}

	return &dto.NextSessionResponse{
		TimetableID:    next.EntryID,
		Day:            next.Day,
		DayName:        next.DayName,
		DaysAway:       next.DaysAway,
		LocalStartTime: next.StartTime,
		LocalEndTime:   next.EndTime,
		IsDifferentDay: next.DifferentDay,
		Viewer:         viewerTZ,
	}, nil
}

func (s *TimetableService) timetableCourse(timetables []models.Timetable, timetableID string) string {
	for _, timetable := range timetables {
		if timetable.ID == timetableID {
			return timetable.CourseID
		}
	}
	return ""
}

// normalizeDays parses and canonicalizes day names into the stored CSV form,
// preserving input order and rejecting duplicates.
func normalizeDays(days []string) (string, error) {
	seen := make(map[classtime.Weekday]bool, len(days))
	short := make([]string, 0, len(days))
	for _, raw := range days {
		day, err := classtime.ParseWeekday(raw)
		if err != nil {
			return "", err
		}
		if seen[day] {
			return "", fmt.Errorf("duplicate day %q", raw)
		}
		seen[day] = true
		short = append(short, strings.ToUpper(day.String()[:3]))
	}
	return strings.Join(short, ","), nil
}

// parseDaysCSV parses the stored comma-separated day list.
func parseDaysCSV(csv string) ([]classtime.Weekday, error) {
	parts := strings.Split(csv, ",")
	days := make([]classtime.Weekday, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			continue
		}
		day, err := classtime.ParseWeekday(part)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, nil
}

// validateSlotTimes checks that both clock strings parse, the slot has a
// positive duration within one day, and the timezone is a known IANA name.
func validateSlotTimes(startTime, endTime, timezone string) error {
	start, err := classtime.ParseTimeOfDay(startTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrMalformedTime.Code, appErrors.ErrMalformedTime.Status, "invalid start_time")
	}
	end, err := classtime.ParseTimeOfDay(endTime)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrMalformedTime.Code, appErrors.ErrMalformedTime.Status, "invalid end_time")
	}
	if end.MinutesFromMidnight() <= start.MinutesFromMidnight() {
		return appErrors.Clone(appErrors.ErrValidation, "end_time must be after start_time")
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "unrecognized IANA timezone")
	}
	return nil
}
