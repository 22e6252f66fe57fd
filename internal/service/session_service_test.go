package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	appErrors "github.com/edulane/lms-api/pkg/errors"
)

type mockSessionRepo struct {
	sessions map[string]*models.LiveSession
	created  *models.LiveSession
	statusID string
	status   models.SessionStatus
}

func (m *mockSessionRepo) List(_ context.Context, _ models.SessionFilter) ([]models.LiveSession, int, error) {
	out := make([]models.LiveSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		out = append(out, *session)
	}
	return out, len(out), nil
}

func (m *mockSessionRepo) FindByID(_ context.Context, id string) (*models.LiveSession, error) {
	if session, ok := m.sessions[id]; ok {
		return session, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionRepo) Create(_ context.Context, session *models.LiveSession) error {
	session.ID = "sess-new"
	m.created = session
	return nil
}

func (m *mockSessionRepo) UpdateStatus(_ context.Context, id string, status models.SessionStatus) error {
	m.statusID = id
	m.status = status
	return nil
}

const linkedTimetableID = "a4f2d9c1-6b3e-4c8a-9f17-2d5e8b0a4c61"

func newSessionService(repo *mockSessionRepo, timetables *mockTimetableRepo, courses *mockCourseFinder) *SessionService {
	svc := NewSessionService(repo, timetables, courses, nil, zap.NewNop(), SessionConfig{})
	svc.now = func() time.Time { return tuesdayNoonUTC }
	return svc
}

func TestCreateSessionDefaultsDuration(t *testing.T) {
	repo := &mockSessionRepo{}
	svc := newSessionService(repo, &mockTimetableRepo{}, knownCourse("c1"))

	session, err := svc.Create(context.Background(), "c1", "admin-1", dto.CreateSessionRequest{
		Title:       "Kickoff call",
		ScheduledAt: tuesdayNoonUTC.Add(24 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 60, session.DurationMinutes)
	assert.Equal(t, models.SessionStatusScheduled, session.Status)
	assert.Equal(t, "admin-1", session.CreatedBy)
	require.NotNil(t, repo.created)
}

func TestCreateSessionRejectsPast(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, &mockTimetableRepo{}, knownCourse("c1"))

	_, err := svc.Create(context.Background(), "c1", "admin-1", dto.CreateSessionRequest{
		Title:       "Late entry",
		ScheduledAt: tuesdayNoonUTC.Add(-time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateSessionUnknownCourse(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, &mockTimetableRepo{}, &mockCourseFinder{})

	_, err := svc.Create(context.Background(), "missing", "admin-1", dto.CreateSessionRequest{
		Title:       "Orphan session",
		ScheduledAt: tuesdayNoonUTC.Add(24 * time.Hour),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestCreateSessionTimetableDayMismatch(t *testing.T) {
	timetables := &mockTimetableRepo{byID: map[string]*models.Timetable{
		linkedTimetableID: {ID: linkedTimetableID, CourseID: "c1", DaysOfWeek: "WED", StartTime: "10:00", EndTime: "11:00", Timezone: "UTC", IsActive: true},
	}}
	svc := newSessionService(&mockSessionRepo{}, timetables, knownCourse("c1"))

	timetableID := linkedTimetableID
	// Thursday, not one of the timetable's days.
	_, err := svc.Create(context.Background(), "c1", "admin-1", dto.CreateSessionRequest{
		TimetableID: &timetableID,
		Title:       "Off-schedule class",
		ScheduledAt: time.Date(2024, time.January, 11, 10, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateSessionOnTimetableDay(t *testing.T) {
	timetables := &mockTimetableRepo{byID: map[string]*models.Timetable{
		linkedTimetableID: {ID: linkedTimetableID, CourseID: "c1", DaysOfWeek: "WED", StartTime: "10:00", EndTime: "11:00", Timezone: "UTC", IsActive: true},
	}}
	repo := &mockSessionRepo{}
	svc := newSessionService(repo, timetables, knownCourse("c1"))

	timetableID := linkedTimetableID
	session, err := svc.Create(context.Background(), "c1", "admin-1", dto.CreateSessionRequest{
		TimetableID: &timetableID,
		Title:       "Regular class",
		ScheduledAt: time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, session.TimetableID)
	assert.Equal(t, linkedTimetableID, *session.TimetableID)
}

func TestCreateSessionTimetableWrongCourse(t *testing.T) {
	timetables := &mockTimetableRepo{byID: map[string]*models.Timetable{
		linkedTimetableID: {ID: linkedTimetableID, CourseID: "other-course", DaysOfWeek: "WED", StartTime: "10:00", EndTime: "11:00", Timezone: "UTC", IsActive: true},
	}}
	svc := newSessionService(&mockSessionRepo{}, timetables, knownCourse("c1"))

	timetableID := linkedTimetableID
	_, err := svc.Create(context.Background(), "c1", "admin-1", dto.CreateSessionRequest{
		TimetableID: &timetableID,
		Title:       "Cross-linked class",
		ScheduledAt: time.Date(2024, time.January, 10, 10, 0, 0, 0, time.UTC),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCancelNonScheduledSession(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{
		"sess-1": {ID: "sess-1", Status: models.SessionStatusCompleted},
	}}
	svc := newSessionService(repo, &mockTimetableRepo{}, knownCourse("c1"))

	_, err := svc.Cancel(context.Background(), "sess-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestCompleteScheduledSession(t *testing.T) {
	repo := &mockSessionRepo{sessions: map[string]*models.LiveSession{
		"sess-1": {ID: "sess-1", Status: models.SessionStatusScheduled},
	}}
	svc := newSessionService(repo, &mockTimetableRepo{}, knownCourse("c1"))

	session, err := svc.Complete(context.Background(), "sess-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, session.Status)
	assert.Equal(t, "sess-1", repo.statusID)
	assert.Equal(t, models.SessionStatusCompleted, repo.status)
}

func TestSuggestedDatesWalksTimetableDays(t *testing.T) {
	timetables := &mockTimetableRepo{byID: map[string]*models.Timetable{
		"tt-1": {ID: "tt-1", CourseID: "c1", DaysOfWeek: "MON,WED", StartTime: "10:00", EndTime: "11:00", Timezone: "UTC", IsActive: true},
	}}
	svc := newSessionService(&mockSessionRepo{}, timetables, knownCourse("c1"))

	resp, err := svc.SuggestedDates(context.Background(), "tt-1")
	require.NoError(t, err)
	assert.Equal(t, "tt-1", resp.TimetableID)
	require.Len(t, resp.Dates, 5)

	// From Tuesday Jan 9: Wed 10, Mon 15, Wed 17, Mon 22, Wed 24.
	expected := []time.Time{
		time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 17, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.January, 24, 0, 0, 0, 0, time.UTC),
	}
	for i, want := range expected {
		assert.True(t, want.Equal(resp.Dates[i]), "date %d: want %s got %s", i, want, resp.Dates[i])
	}
}

func TestSuggestedDatesTimetableNotFound(t *testing.T) {
	svc := newSessionService(&mockSessionRepo{}, &mockTimetableRepo{}, knownCourse("c1"))
	_, err := svc.SuggestedDates(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
