package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// RequireRoles gates a route group to the given roles. Authorization
// failures reply 401 to avoid leaking route existence.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[user.Role]; !ok {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireClassParam narrows TEACHER callers to classes they are
// assigned to, via homeroom or a class-subject. Admin roles pass
// through. The class ID is read from the named route parameter.
func RequireClassParam(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		if user.Role != models.RoleTeacher {
			c.Next()
			return
		}
		classID := c.Param(param)
		if classID == "" || !user.CanAccessClass(classID) {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) *models.AuthUser {
	value, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	user, ok := value.(*models.AuthUser)
	if !ok {
		return nil
	}
	return user
}
