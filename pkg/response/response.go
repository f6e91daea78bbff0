package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

// Body is the common success contract: {"success": true, ...payload}.
type Body map[string]interface{}

// JSON sends a success response merging the payload into the envelope.
func JSON(c *gin.Context, status int, payload Body) {
	envelope := gin.H{"success": true}
	for k, v := range payload {
		envelope[k] = v
	}
	c.JSON(status, envelope)
}

// OK responds with HTTP 200.
func OK(c *gin.Context, payload Body) {
	JSON(c, http.StatusOK, payload)
}

// Error sends an error response converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message})
}

// AbortError renders the error and stops the handler chain.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
