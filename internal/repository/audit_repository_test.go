package repository

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edulane/lms-api/internal/models"
)

func TestAuditRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()

	actorID := "admin-1"
	resourceID := "tt-1"
	entry := &models.AuditEntry{
		ActorID:    &actorID,
		Action:     "update",
		Resource:   "timetable",
		ResourceID: &resourceID,
		Detail:     []byte(`{"status":200}`),
		IPAddress:  "10.0.0.1",
		UserAgent:  "lms-test-client",
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO audit_entries")).
		WithArgs(sqlmock.AnyArg(), actorID, "update", "timetable", resourceID, []byte(`{"status":200}`), "10.0.0.1", "lms-test-client", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewAuditRepository(db)
	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}
