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

type mockEnrollmentRepo struct {
	byID         map[string]*models.Enrollment
	activeExists bool
	created      *models.Enrollment
	statusID     string
	statusTo     models.EnrollmentStatus
	leftAt       *time.Time
}

func (m *mockEnrollmentRepo) List(_ context.Context, _ models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(_ context.Context, id string) (*models.Enrollment, error) {
	if enrollment, ok := m.byID[id]; ok {
		return enrollment, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) ExistsActive(_ context.Context, _, _ string) (bool, error) {
	return m.activeExists, nil
}

func (m *mockEnrollmentRepo) Create(_ context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = "enr-new"
	m.created = enrollment
	return nil
}

func (m *mockEnrollmentRepo) UpdateStatus(_ context.Context, id string, status models.EnrollmentStatus, leftAt *time.Time) error {
	m.statusID = id
	m.statusTo = status
	m.leftAt = leftAt
	return nil
}

const (
	testStudentID = "3f8a5c2e-9d14-4b67-8a3e-5c7d9e0f1a2b"
	testCourseID  = "c2e9d143-5f8a-4a21-9b3c-7d5e8f0a1b2c"
)

func newEnrollmentService(repo *mockEnrollmentRepo, courses *mockCourseFinder, users *mockUserFinder) *EnrollmentService {
	return NewEnrollmentService(repo, courses, users, NewCacheService(nil, nil, time.Minute, zap.NewNop(), false), nil, zap.NewNop())
}

func enrollableCourse() *mockCourseFinder {
	return &mockCourseFinder{courses: map[string]*models.CourseDetail{
		testCourseID: {Course: models.Course{ID: testCourseID, Title: "Algebra", Published: true}},
	}}
}

func studentUser() *mockUserFinder {
	return &mockUserFinder{users: map[string]*models.User{
		testStudentID: {ID: testStudentID, Role: models.RoleStudent},
	}}
}

func TestEnrollCreatesActiveEnrollment(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := newEnrollmentService(repo, enrollableCourse(), studentUser())

	enrollment, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentID: testStudentID, CourseID: testCourseID})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Equal(t, testStudentID, enrollment.StudentID)
	require.NotNil(t, repo.created)
}

func TestEnrollRejectsDuplicateActive(t *testing.T) {
	repo := &mockEnrollmentRepo{activeExists: true}
	svc := newEnrollmentService(repo, enrollableCourse(), studentUser())

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentID: testStudentID, CourseID: testCourseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestEnrollRejectsUnpublishedCourse(t *testing.T) {
	courses := &mockCourseFinder{courses: map[string]*models.CourseDetail{
		testCourseID: {Course: models.Course{ID: testCourseID, Published: false}},
	}}
	svc := newEnrollmentService(&mockEnrollmentRepo{}, courses, studentUser())

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentID: testStudentID, CourseID: testCourseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsArchivedCourse(t *testing.T) {
	courses := &mockCourseFinder{courses: map[string]*models.CourseDetail{
		testCourseID: {Course: models.Course{ID: testCourseID, Published: true, Archived: true}},
	}}
	svc := newEnrollmentService(&mockEnrollmentRepo{}, courses, studentUser())

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentID: testStudentID, CourseID: testCourseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollRejectsNonStudentAccount(t *testing.T) {
	users := &mockUserFinder{users: map[string]*models.User{
		testStudentID: {ID: testStudentID, Role: models.RoleInstructor},
	}}
	svc := newEnrollmentService(&mockEnrollmentRepo{}, enrollableCourse(), users)

	_, err := svc.Enroll(context.Background(), dto.EnrollRequest{StudentID: testStudentID, CourseID: testCourseID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestUpdateStatusDropStampsLeftAt(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: testStudentID, CourseID: testCourseID, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentService(repo, enrollableCourse(), studentUser())

	enrollment, err := svc.UpdateStatus(context.Background(), "enr-1", dto.UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusDropped})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusDropped, enrollment.Status)
	require.NotNil(t, enrollment.LeftAt)
	assert.Equal(t, models.EnrollmentStatusDropped, repo.statusTo)
	require.NotNil(t, repo.leftAt)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	repo := &mockEnrollmentRepo{byID: map[string]*models.Enrollment{
		"enr-1": {ID: "enr-1", StudentID: testStudentID, CourseID: testCourseID, Status: models.EnrollmentStatusActive},
	}}
	svc := newEnrollmentService(repo, enrollableCourse(), studentUser())

	enrollment, err := svc.UpdateStatus(context.Background(), "enr-1", dto.UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusActive})
	require.NoError(t, err)
	assert.Equal(t, models.EnrollmentStatusActive, enrollment.Status)
	assert.Empty(t, repo.statusID)
}

func TestUpdateStatusReactivateChecksDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{
		byID: map[string]*models.Enrollment{
			"enr-1": {ID: "enr-1", StudentID: testStudentID, CourseID: testCourseID, Status: models.EnrollmentStatusDropped},
		},
		activeExists: true,
	}
	svc := newEnrollmentService(repo, enrollableCourse(), studentUser())

	_, err := svc.UpdateStatus(context.Background(), "enr-1", dto.UpdateEnrollmentStatusRequest{Status: models.EnrollmentStatusActive})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, appErrors.FromError(err).Code)
}
