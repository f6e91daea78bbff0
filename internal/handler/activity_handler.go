package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// ActivityHandler exposes the recent-activity log.
type ActivityHandler struct {
	service *service.ActivityService
}

// NewActivityHandler constructs an activity handler.
func NewActivityHandler(svc *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: svc}
}

// List godoc
// @Summary Return the recent-activity log, newest first
// @Tags Activity
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	entries, err := h.service.Entries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"activity": entries})
}
