package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// ContextUserKey is the gin context key storing the resolved user.
const ContextUserKey = "currentUser"

// Auth protects routes by resolving the bearer token to a user on
// every request. Resolution misses of any kind reply 401.
func Auth(authService *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		user, err := authService.ResolveUser(c.Request.Context(), token)
		if err != nil {
			response.AbortError(c, err)
			return
		}
		if user == nil {
			response.AbortError(c, appErrors.ErrUnauthorized)
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
