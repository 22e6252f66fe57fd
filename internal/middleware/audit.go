package middleware

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/edulane/lms-api/internal/models"
)

// AuditRecorder persists one audit entry.
type AuditRecorder interface {
	Create(ctx context.Context, entry *models.AuditEntry) error
}

// Audit records an audit entry after a mutating request succeeds. The
// resource id is taken from the :id route param when present. Recording
// failures are logged, never surfaced to the client.
func Audit(recorder AuditRecorder, logger *zap.Logger, action, resource string) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		start := time.Now().UTC()
		c.Next()

		if c.Writer.Status() >= 400 {
			return
		}

		var actorID *string
		if value, ok := c.Get(ContextUserKey); ok {
			claims := value.(*models.JWTClaims)
			actorID = &claims.UserID
		}

		var resourceID *string
		if id := c.Param("id"); id != "" {
			resourceID = &id
		}

		detail, _ := json.Marshal(map[string]interface{}{
			"path":       c.FullPath(),
			"method":     c.Request.Method,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
		})

		entry := &models.AuditEntry{
			ActorID:    actorID,
			Action:     action,
			Resource:   resource,
			ResourceID: resourceID,
			Detail:     detail,
			IPAddress:  c.ClientIP(),
			UserAgent:  c.GetHeader("User-Agent"),
		}
		if err := recorder.Create(c.Request.Context(), entry); err != nil {
			logger.Warn("failed to record audit entry",
				zap.String("action", action),
				zap.String("resource", resource),
				zap.Error(err))
		}
	}
}
