package dto

import (
	"time"

	"github.com/edulane/lms-api/internal/models"
)

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type     models.ReportType   `json:"type"`
	CourseID string              `json:"courseId"`
	Format   models.ReportFormat `json:"format"`
	From     *time.Time          `json:"from,omitempty"`
	To       *time.Time          `json:"to,omitempty"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID     string              `json:"id"`
	Status models.ReportStatus `json:"status"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
