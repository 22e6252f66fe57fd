package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/dto"
	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/internal/repository"
	appErrors "github.com/edulane/lms-api/pkg/errors"
	"github.com/edulane/lms-api/pkg/export"
	"github.com/edulane/lms-api/pkg/jobs"
	"github.com/edulane/lms-api/pkg/storage"
)

type reportJobRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	FindByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
	ListPending(ctx context.Context) ([]models.ReportJob, error)
}

type reportSessionSource interface {
	ListForExport(ctx context.Context, courseID string, from, to *time.Time) ([]models.LiveSession, error)
}

type reportAttendanceSource interface {
	ListForExport(ctx context.Context, courseID string, from, to *time.Time) ([]models.AttendanceRecord, error)
}

type reportCourseSource interface {
	FindByID(ctx context.Context, id string) (*models.CourseDetail, error)
}

// ReportConfig tunes the asynchronous report pipeline.
type ReportConfig struct {
	Enabled           bool
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
}

// ReportService generates attendance and session exports asynchronously.
// Jobs are persisted, dispatched to a worker pool, rendered to CSV or PDF
// and exposed through short-lived signed download URLs.
type ReportService struct {
	repo       reportJobRepository
	sessions   reportSessionSource
	attendance reportAttendanceSource
	courses    reportCourseSource

	files  *storage.LocalStorage
	signer *storage.SignedURLSigner
	csv    *export.CSVExporter
	pdf    *export.PDFExporter

	queue     *jobs.Queue
	validator *validator.Validate
	logger    *zap.Logger
	config    ReportConfig

	cleanupCancel context.CancelFunc
}

// NewReportService constructs a ReportService and its backing worker queue.
func NewReportService(repo reportJobRepository, sessions reportSessionSource, attendance reportAttendanceSource, courses reportCourseSource, files *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger, config ReportConfig) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	s := &ReportService{
		repo:       repo,
		sessions:   sessions,
		attendance: attendance,
		courses:    courses,
		files:      files,
		signer:     signer,
		csv:        export.NewCSVExporter(),
		pdf:        export.NewPDFExporter(),
		validator:  validate,
		logger:     logger,
		config:     config,
	}
	s.queue = jobs.NewQueue("reports", s.processJob, jobs.QueueConfig{
		Workers:    config.WorkerConcurrency,
		MaxRetries: config.WorkerRetries,
		Logger:     logger,
	})
	return s
}

// Start launches the worker pool, requeues jobs interrupted by a restart
// and begins periodic cleanup of expired report files.
func (s *ReportService) Start(ctx context.Context) {
	if !s.config.Enabled {
		return
	}
	s.queue.Start(ctx)

	if err := s.recoverPendingJobs(ctx); err != nil {
		s.logger.Warn("failed to requeue pending report jobs", zap.Error(err))
	}

	cleanupCtx, cancel := context.WithCancel(ctx)
	s.cleanupCancel = cancel
	go s.cleanupLoop(cleanupCtx)
}

// Stop drains workers and halts cleanup.
func (s *ReportService) Stop() {
	if !s.config.Enabled {
		return
	}
	if s.cleanupCancel != nil {
		s.cleanupCancel()
	}
	s.queue.Stop()
}

// CreateJob validates the request, persists a queued job and dispatches it.
func (s *ReportService) CreateJob(ctx context.Context, createdBy string, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if !s.config.Enabled {
		return nil, appErrors.Clone(appErrors.ErrValidation, "report generation is disabled")
	}
	if req.Type != models.ReportTypeAttendance && req.Type != models.ReportTypeSessions {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report type")
	}
	if req.Format != models.ReportFormatCSV && req.Format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	if req.CourseID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "courseId is required")
	}
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	if _, err := s.courses.FindByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch course")
	}

	job := &models.ReportJob{
		Type: req.Type,
		Params: models.ReportJobParams{
			CourseID: req.CourseID,
			Format:   req.Format,
			From:     req.From,
			To:       req.To,
		},
		Status:    models.ReportStatusQueued,
		CreatedBy: createdBy,
	}
	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.logger.Error("failed to enqueue report job", zap.String("job_id", job.ID), zap.Error(err))
		s.markFailed(ctx, job.ID, "dispatch failed")
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to dispatch report job")
	}

	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status}, nil
}

// GetStatus returns job progress. Only the creator or an admin may look.
func (s *ReportService) GetStatus(ctx context.Context, id, requesterID string, requesterRole models.UserRole) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report job")
	}
	if job.CreatedBy != requesterID && requesterRole != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "report belongs to another user")
	}
	return &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// ResolveDownload validates a signed token and opens the referenced file.
// Callers must close the returned handle.
func (s *ReportService) ResolveDownload(ctx context.Context, token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}

	job, err := s.repo.FindByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch report job")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "report is not ready")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file no longer available")
	}
	return file, relPath, nil
}

func (s *ReportService) recoverPendingJobs(ctx context.Context) error {
	pending, err := s.repo.ListPending(ctx)
	if err != nil {
		return err
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
			s.logger.Warn("failed to requeue report job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("requeued pending report jobs", zap.Int("count", len(pending)))
	}
	return nil
}

func (s *ReportService) cleanupLoop(ctx context.Context) {
	interval := s.config.CleanupInterval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := s.files.CleanupOlderThan(s.config.SignedURLTTL)
			if err != nil {
				s.logger.Warn("report cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				s.logger.Info("removed expired report files", zap.Int("count", len(deleted)))
			}
		}
	}
}

// processJob is the queue handler. A failure returns the error so the queue
// retries; the final attempt marks the job failed.
func (s *ReportService) processJob(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.FindByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}
	if job.Status == models.ReportStatusFinished || job.Status == models.ReportStatusFailed {
		return nil
	}

	processing := models.ReportStatusProcessing
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	table, title, err := s.buildTable(ctx, job)
	if err != nil {
		s.failOrRetry(ctx, queued, job.ID, err)
		return err
	}

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(table, title)
	default:
		payload, err = s.csv.Render(table)
	}
	if err != nil {
		s.failOrRetry(ctx, queued, job.ID, err)
		return err
	}

	filename := fmt.Sprintf("%s.%s", job.ID, job.Params.Format)
	relPath, err := s.files.Save(filename, payload)
	if err != nil {
		s.failOrRetry(ctx, queued, job.ID, err)
		return err
	}

	token, _, err := s.signer.Generate(job.ID, relPath)
	if err != nil {
		s.failOrRetry(ctx, queued, job.ID, err)
		return err
	}

	finished := models.ReportStatusFinished
	resultURL := "/reports/download?token=" + token
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{
		Status:     &finished,
		ResultURL:  &resultURL,
		FinishedAt: &now,
	}); err != nil {
		return fmt.Errorf("finalize report job: %w", err)
	}

	s.logger.Info("report job finished",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Params.Format)))
	return nil
}

// failOrRetry marks the job failed only when the queue will not retry it.
func (s *ReportService) failOrRetry(ctx context.Context, queued jobs.Job, jobID string, cause error) {
	if queued.Attempt < s.config.WorkerRetries {
		return
	}
	s.markFailed(ctx, jobID, cause.Error())
}

func (s *ReportService) markFailed(ctx context.Context, jobID, message string) {
	failed := models.ReportStatusFailed
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, jobID, repository.UpdateReportJobParams{
		Status:       &failed,
		ErrorMessage: &message,
		FinishedAt:   &now,
	}); err != nil {
		s.logger.Error("failed to mark report job failed", zap.String("job_id", jobID), zap.Error(err))
	}
}

func (s *ReportService) buildTable(ctx context.Context, job *models.ReportJob) (export.Table, string, error) {
	switch job.Type {
	case models.ReportTypeSessions:
		sessions, err := s.sessions.ListForExport(ctx, job.Params.CourseID, job.Params.From, job.Params.To)
		if err != nil {
			return export.Table{}, "", err
		}
		table := export.Table{
			Columns: []string{"Session ID", "Title", "Scheduled At (UTC)", "Duration (min)", "Status"},
			Rows:    make([][]string, 0, len(sessions)),
		}
		for _, session := range sessions {
			table.Rows = append(table.Rows, []string{
				session.ID,
				session.Title,
				session.ScheduledAt.UTC().Format(time.RFC3339),
				strconv.Itoa(session.DurationMinutes),
				string(session.Status),
			})
		}
		return table, "Session Report", nil

	case models.ReportTypeAttendance:
		records, err := s.attendance.ListForExport(ctx, job.Params.CourseID, job.Params.From, job.Params.To)
		if err != nil {
			return export.Table{}, "", err
		}
		table := export.Table{
			Columns: []string{"Session", "Date (UTC)", "Student", "Status", "Notes"},
			Rows:    make([][]string, 0, len(records)),
		}
		for _, record := range records {
			notes := ""
			if record.Notes != nil {
				notes = *record.Notes
			}
			table.Rows = append(table.Rows, []string{
				record.SessionTitle,
				record.SessionDate.UTC().Format("2006-01-02"),
				record.StudentName,
				string(record.Status),
				notes,
			})
		}
		return table, "Attendance Report", nil
	}
	return export.Table{}, "", fmt.Errorf("unsupported report type %q", job.Type)
}
