package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// TeacherHandler exposes teacher and subject-assignment endpoints.
type TeacherHandler struct {
	service  *service.TeacherService
	activity *service.ActivityService
}

// NewTeacherHandler constructs a teacher handler.
func NewTeacherHandler(svc *service.TeacherService, activity *service.ActivityService) *TeacherHandler {
	return &TeacherHandler{service: svc, activity: activity}
}

type addTeachersRequest struct {
	Teachers []service.TeacherInput `json:"teachers" binding:"required"`
}

// Add godoc
// @Summary Add teachers to the latest session
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body addTeachersRequest true "Teacher batch"
// @Success 201 {object} map[string]interface{}
// @Router /add/teachers [post]
func (h *TeacherHandler) Add(c *gin.Context) {
	var req addTeachersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.service.AddTeachers(c.Request.Context(), req.Teachers)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "add_teachers", map[string]interface{}{"created": created})
	}
	response.JSON(c, http.StatusCreated, response.Body{"created": created})
}

// List godoc
// @Summary List the latest session's teachers
// @Tags Teachers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/teachers [get]
func (h *TeacherHandler) List(c *gin.Context) {
	teachers, err := h.service.Teachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"teachers": teachers})
}

// Unassigned godoc
// @Summary List teachers without a homeroom this session
// @Tags Teachers
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/unassigned-teachers [get]
func (h *TeacherHandler) Unassigned(c *gin.Context) {
	teachers, err := h.service.UnassignedTeachers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"teachers": teachers})
}

// AssignSubject godoc
// @Summary Assign a teacher to a subject in a class
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body service.AssignSubjectRequest true "Assignment"
// @Success 201 {object} map[string]interface{}
// @Router /add/class-subject [post]
func (h *TeacherHandler) AssignSubject(c *gin.Context) {
	var req service.AssignSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cs, err := h.service.AssignSubject(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "assign_class_subject", map[string]interface{}{"class_subject_id": cs.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"classSubject": cs})
}

type updateAssignmentRequest struct {
	AssignmentID string `json:"assignment_id" binding:"required"`
	TeacherID    string `json:"teacher_id" binding:"required"`
}

// UpdateAssignment godoc
// @Summary Swap the teacher on a class-subject assignment
// @Tags Teachers
// @Accept json
// @Produce json
// @Param payload body updateAssignmentRequest true "Assignment update"
// @Success 200 {object} map[string]interface{}
// @Router /update/class-subjects [post]
func (h *TeacherHandler) UpdateAssignment(c *gin.Context) {
	var req updateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	cs, err := h.service.UpdateAssignment(c.Request.Context(), req.AssignmentID, req.TeacherID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "update_class_subject", map[string]interface{}{"class_subject_id": cs.ID})
	}
	response.OK(c, response.Body{"classSubject": cs})
}

// RemoveAssignment godoc
// @Summary Delete a class-subject assignment
// @Tags Teachers
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 200 {object} map[string]interface{}
// @Router /delete/class-subject/{id} [delete]
func (h *TeacherHandler) RemoveAssignment(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.RemoveAssignment(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "delete_class_subject", map[string]interface{}{"class_subject_id": id})
	}
	response.JSON(c, http.StatusOK, response.Body{})
}

// BySubject godoc
// @Summary List teachers of one subject this session
// @Tags Teachers
// @Produce json
// @Param subject path string true "Subject name"
// @Success 200 {object} map[string]interface{}
// @Router /get/subject-teachers/{subject} [get]
func (h *TeacherHandler) BySubject(c *gin.Context) {
	teachers, err := h.service.TeachersOfSubject(c.Request.Context(), c.Param("subject"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"teachers": teachers})
}

// Assignments godoc
// @Summary List a teacher's class-subject assignments
// @Tags Teachers
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/class-subjects/{id} [get]
func (h *TeacherHandler) Assignments(c *gin.Context) {
	assignments, err := h.service.Assignments(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"classSubjects": assignments})
}
