package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// NoticeHandler exposes notice board endpoints.
type NoticeHandler struct {
	service *service.NoticeService
}

// NewNoticeHandler constructs a notice handler.
func NewNoticeHandler(svc *service.NoticeService) *NoticeHandler {
	return &NoticeHandler{service: svc}
}

// Add godoc
// @Summary Fan a notice out to a set of classes
// @Tags Notices
// @Accept json
// @Produce json
// @Param payload body service.AddNoticeRequest true "Notice payload"
// @Success 201 {object} map[string]interface{}
// @Router /add/notice [post]
func (h *NoticeHandler) Add(c *gin.Context) {
	var req service.AddNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if user := CurrentUser(c); user != nil && user.Role == models.RoleTeacher {
		for _, classID := range req.ClassIDs {
			if !user.CanAccessClass(classID) {
				response.Error(c, appErrors.ErrUnauthorized)
				return
			}
		}
	}
	if err := h.service.Add(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, response.Body{})
}

// ByClass godoc
// @Summary List one class's notices, newest first
// @Tags Notices
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/notices/{id} [get]
func (h *NoticeHandler) ByClass(c *gin.Context) {
	notices, err := h.service.ByClass(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"notices": notices})
}

// All godoc
// @Summary List the latest session's notices
// @Tags Notices
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/notices [get]
func (h *NoticeHandler) All(c *gin.Context) {
	notices, err := h.service.All(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"notices": notices})
}

// StudentPage godoc
// @Summary Page a student's class notice feed
// @Tags Notices
// @Produce json
// @Param id path string true "Student ID"
// @Param page path int true "Zero-based page"
// @Success 200 {object} map[string]interface{}
// @Router /get/student-notices/{id}/{page} [get]
func (h *NoticeHandler) StudentPage(c *gin.Context) {
	studentID := c.Param("id")
	if user := CurrentUser(c); user != nil && user.Role == models.RoleStudent && !user.OwnsStudent(studentID) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid page"))
		return
	}
	result, err := h.service.PageForStudent(c.Request.Context(), studentID, page)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"notices": result.Notices, "pageCount": result.PageCount})
}
