package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edulane/lms-api/internal/middleware"
	"github.com/edulane/lms-api/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// viewerID returns the authenticated user's id or empty for anonymous
// callers on optional-auth routes.
func viewerID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}
