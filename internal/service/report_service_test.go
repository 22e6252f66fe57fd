package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/internal/repository"
	appErrors "github.com/edulane/lms-api/pkg/errors"
	"github.com/edulane/lms-api/pkg/jobs"
	"github.com/edulane/lms-api/pkg/storage"
)

type mockReportJobRepo struct {
	mu      sync.Mutex
	jobs    map[string]*models.ReportJob
	nextID  int
	pending []models.ReportJob
}

func newMockReportJobRepo() *mockReportJobRepo {
	return &mockReportJobRepo{jobs: make(map[string]*models.ReportJob)}
}

func (m *mockReportJobRepo) Create(_ context.Context, job *models.ReportJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	job.ID = fmt.Sprintf("job-%d", m.nextID)
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *mockReportJobRepo) FindByID(_ context.Context, id string) (*models.ReportJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if job, ok := m.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportJobRepo) Update(_ context.Context, id string, params repository.UpdateReportJobParams) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (m *mockReportJobRepo) ListPending(_ context.Context) ([]models.ReportJob, error) {
	return m.pending, nil
}

func (m *mockReportJobRepo) status(t *testing.T, id string) models.ReportStatus {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	require.True(t, ok)
	return job.Status
}

type mockSessionSource struct {
	sessions []models.LiveSession
	err      error
}

func (m *mockSessionSource) ListForExport(_ context.Context, _ string, _, _ *time.Time) ([]models.LiveSession, error) {
	return m.sessions, m.err
}

type mockAttendanceSource struct {
	records []models.AttendanceRecord
}

func (m *mockAttendanceSource) ListForExport(_ context.Context, _ string, _, _ *time.Time) ([]models.AttendanceRecord, error) {
	return m.records, nil
}

func newReportService(t *testing.T, repo *mockReportJobRepo, sessions *mockSessionSource, enabled bool) *ReportService {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-test-secret", time.Hour)
	return NewReportService(repo, sessions, &mockAttendanceSource{}, knownCourse("c1"), files, signer, nil, zap.NewNop(), ReportConfig{
		Enabled:           enabled,
		SignedURLTTL:      time.Hour,
		CleanupInterval:   time.Hour,
		WorkerConcurrency: 1,
		WorkerRetries:     2,
	})
}

func sampleSessions() *mockSessionSource {
	return &mockSessionSource{sessions: []models.LiveSession{
		{ID: "sess-1", Title: "Week 1", ScheduledAt: tuesdayNoonUTC, DurationMinutes: 60, Status: models.SessionStatusCompleted},
		{ID: "sess-2", Title: "Week 2", ScheduledAt: tuesdayNoonUTC.AddDate(0, 0, 7), DurationMinutes: 90, Status: models.SessionStatusScheduled},
	}}
}

func TestCreateJobDisabled(t *testing.T) {
	svc := newReportService(t, newMockReportJobRepo(), sampleSessions(), false)

	_, err := svc.CreateJob(context.Background(), "admin-1", dto.ReportRequest{
		Type: models.ReportTypeSessions, Format: models.ReportFormatCSV, CourseID: "c1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateJobRejectsUnsupportedType(t *testing.T) {
	svc := newReportService(t, newMockReportJobRepo(), sampleSessions(), true)

	_, err := svc.CreateJob(context.Background(), "admin-1", dto.ReportRequest{
		Type: "grades", Format: models.ReportFormatCSV, CourseID: "c1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateJobRejectsInvertedRange(t *testing.T) {
	svc := newReportService(t, newMockReportJobRepo(), sampleSessions(), true)

	from := tuesdayNoonUTC
	to := tuesdayNoonUTC.Add(-48 * time.Hour)
	_, err := svc.CreateJob(context.Background(), "admin-1", dto.ReportRequest{
		Type: models.ReportTypeSessions, Format: models.ReportFormatCSV, CourseID: "c1", From: &from, To: &to,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestCreateJobProcessesThroughQueue(t *testing.T) {
	repo := newMockReportJobRepo()
	svc := newReportService(t, repo, sampleSessions(), true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Start(ctx)
	defer svc.Stop()

	job, err := svc.CreateJob(ctx, "admin-1", dto.ReportRequest{
		Type: models.ReportTypeSessions, Format: models.ReportFormatCSV, CourseID: "c1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, job.ID)

	assert.Eventually(t, func() bool {
		return repo.status(t, job.ID) == models.ReportStatusFinished
	}, 3*time.Second, 20*time.Millisecond)
}

func TestProcessJobRendersCSVAndSignsURL(t *testing.T) {
	repo := newMockReportJobRepo()
	svc := newReportService(t, repo, sampleSessions(), true)

	stored := &models.ReportJob{
		Type:      models.ReportTypeSessions,
		Params:    models.ReportJobParams{CourseID: "c1", Format: models.ReportFormatCSV},
		Status:    models.ReportStatusQueued,
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), stored))

	require.NoError(t, svc.processJob(context.Background(), jobs.Job{ID: stored.ID}))

	finished, err := repo.FindByID(context.Background(), stored.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, finished.Status)
	require.NotNil(t, finished.ResultURL)
	require.True(t, strings.HasPrefix(*finished.ResultURL, "/reports/download?token="))

	token := strings.TrimPrefix(*finished.ResultURL, "/reports/download?token=")
	file, relPath, err := svc.ResolveDownload(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(relPath, ".csv"))

	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	content := string(payload)
	assert.Contains(t, content, "Session ID")
	assert.Contains(t, content, "Week 1")
	assert.Contains(t, content, "COMPLETED")
}

func TestProcessJobFinalAttemptMarksFailed(t *testing.T) {
	repo := newMockReportJobRepo()
	failing := &mockSessionSource{err: errors.New("export source unavailable")}
	svc := newReportService(t, repo, failing, true)

	stored := &models.ReportJob{
		Type:      models.ReportTypeSessions,
		Params:    models.ReportJobParams{CourseID: "c1", Format: models.ReportFormatCSV},
		Status:    models.ReportStatusQueued,
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), stored))

	// Attempt below the retry ceiling leaves the job retryable.
	err := svc.processJob(context.Background(), jobs.Job{ID: stored.ID, Attempt: 0})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusProcessing, repo.status(t, stored.ID))

	err = svc.processJob(context.Background(), jobs.Job{ID: stored.ID, Attempt: 2})
	require.Error(t, err)
	assert.Equal(t, models.ReportStatusFailed, repo.status(t, stored.ID))
}

func TestGetStatusForbiddenForOtherUser(t *testing.T) {
	repo := newMockReportJobRepo()
	svc := newReportService(t, repo, sampleSessions(), true)

	stored := &models.ReportJob{
		Type:      models.ReportTypeSessions,
		Params:    models.ReportJobParams{CourseID: "c1", Format: models.ReportFormatCSV},
		Status:    models.ReportStatusQueued,
		CreatedBy: "owner-1",
	}
	require.NoError(t, repo.Create(context.Background(), stored))

	_, err := svc.GetStatus(context.Background(), stored.ID, "intruder", models.RoleInstructor)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	status, err := svc.GetStatus(context.Background(), stored.ID, "someone-else", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, status.Status)
}

func TestResolveDownloadRejectsBadToken(t *testing.T) {
	svc := newReportService(t, newMockReportJobRepo(), sampleSessions(), true)

	_, _, err := svc.ResolveDownload(context.Background(), "not-a-real-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestResolveDownloadUnfinishedJob(t *testing.T) {
	repo := newMockReportJobRepo()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-test-secret", time.Hour)
	svc := NewReportService(repo, sampleSessions(), &mockAttendanceSource{}, knownCourse("c1"), files, signer, nil, zap.NewNop(), ReportConfig{Enabled: true, WorkerRetries: 1})

	stored := &models.ReportJob{
		Type:      models.ReportTypeSessions,
		Params:    models.ReportJobParams{CourseID: "c1", Format: models.ReportFormatCSV},
		Status:    models.ReportStatusProcessing,
		CreatedBy: "admin-1",
	}
	require.NoError(t, repo.Create(context.Background(), stored))

	token, _, err := signer.Generate(stored.ID, stored.ID+".csv")
	require.NoError(t, err)

	_, _, err = svc.ResolveDownload(context.Background(), token)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}
