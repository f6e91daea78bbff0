package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// SessionHandler exposes academic session endpoints.
type SessionHandler struct {
	service  *service.SessionService
	classes  *service.ClassService
	activity *service.ActivityService
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(svc *service.SessionService, classes *service.ClassService, activity *service.ActivityService) *SessionHandler {
	return &SessionHandler{service: svc, classes: classes, activity: activity}
}

// Create godoc
// @Summary Create an academic session
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.CreateSessionRequest true "Session dates"
// @Success 201 {object} map[string]interface{}
// @Router /create/session [post]
func (h *SessionHandler) Create(c *gin.Context) {
	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "create_session", map[string]interface{}{"session_id": session.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"session": session})
}

// List godoc
// @Summary List academic sessions, newest first
// @Tags Sessions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	sessions, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"sessions": sessions})
}

// Latest godoc
// @Summary Return the latest academic session
// @Tags Sessions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/latest-session [get]
func (h *SessionHandler) Latest(c *gin.Context) {
	session, err := h.service.Latest(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"session": session})
}

// Classes godoc
// @Summary List the classes of one academic session
// @Tags Sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/session-classes/{id} [get]
func (h *SessionHandler) Classes(c *gin.Context) {
	classes, err := h.classes.SessionClasses(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"classes": classes})
}
