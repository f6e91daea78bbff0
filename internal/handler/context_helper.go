package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
)

// CurrentUser extracts the resolved caller set by the auth middleware.
func CurrentUser(c *gin.Context) *models.AuthUser {
	value, ok := c.Get(middleware.ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.AuthUser)
	if !ok {
		return nil
	}
	return user
}
