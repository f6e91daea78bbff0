package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	service  *service.ClassService
	activity *service.ActivityService
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc *service.ClassService, activity *service.ActivityService) *ClassHandler {
	return &ClassHandler{service: svc, activity: activity}
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} map[string]interface{}
// @Router /create/class [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "create_class", map[string]interface{}{"class_id": class.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"class": class})
}

type changeTeacherRequest struct {
	ClassID   string `json:"class_id" binding:"required"`
	TeacherID string `json:"teacher_id" binding:"required"`
}

// ChangeTeacher godoc
// @Summary Reassign a class's homeroom teacher
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body changeTeacherRequest true "Reassignment"
// @Success 200 {object} map[string]interface{}
// @Router /update/class-teacher [post]
func (h *ClassHandler) ChangeTeacher(c *gin.Context) {
	var req changeTeacherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.ChangeTeacher(c.Request.Context(), req.ClassID, req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "change_class_teacher", map[string]interface{}{"class_id": class.ID, "teacher_id": req.TeacherID})
	}
	response.OK(c, response.Body{"class": class})
}

// Clone godoc
// @Summary Clone a class's roster into another session
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CloneClassRequest true "Clone payload"
// @Success 201 {object} map[string]interface{}
// @Router /clone/class [post]
func (h *ClassHandler) Clone(c *gin.Context) {
	var req service.CloneClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.service.Clone(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "clone_class", map[string]interface{}{"source_id": req.ClassID, "clone_id": class.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"class": class})
}

// Current godoc
// @Summary List the latest session's classes
// @Tags Classes
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/classes [get]
func (h *ClassHandler) Current(c *gin.Context) {
	classes, err := h.service.CurrentClasses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"classes": classes})
}

// GradeSections godoc
// @Summary Resolve grade and section for a set of class IDs
// @Tags Classes
// @Produce json
// @Param ids path string true "Comma-separated class IDs"
// @Success 200 {object} map[string]interface{}
// @Router /get/grade-section/{ids} [get]
func (h *ClassHandler) GradeSections(c *gin.Context) {
	raw := strings.Split(c.Param("ids"), ",")
	ids := make([]string, 0, len(raw))
	for _, id := range raw {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	refs, err := h.service.GradeSections(c.Request.Context(), ids)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"classes": refs})
}

// Students godoc
// @Summary List one class's roster
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/students-class/{id} [get]
func (h *ClassHandler) Students(c *gin.Context) {
	students, err := h.service.Students(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"students": students})
}
