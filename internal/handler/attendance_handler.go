package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	service *service.AttendanceService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(svc *service.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Mark godoc
// @Summary Mark a class's attendance for today
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /add/attendance [post]
func (h *AttendanceHandler) Mark(c *gin.Context) {
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if user := CurrentUser(c); user != nil && !user.CanAccessClass(req.ClassID) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	if err := h.service.Mark(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, response.Body{})
}

// ForClassDate godoc
// @Summary Return a class's attendance for one date
// @Tags Attendance
// @Produce json
// @Param classId path string true "Class ID"
// @Param date path string true "Date (YYYY-MM-DD)"
// @Success 200 {object} map[string]interface{}
// @Router /get/attendance/{classId}/{date} [get]
func (h *AttendanceHandler) ForClassDate(c *gin.Context) {
	date, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD"))
		return
	}
	records, err := h.service.ForClassDate(c.Request.Context(), c.Param("classId"), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"attendance": records})
}

// ForStudent godoc
// @Summary Return a student's attendance for one month
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Router /get/student-attendance/{id}/{year}/{month} [get]
func (h *AttendanceHandler) ForStudent(c *gin.Context) {
	studentID := c.Param("id")
	if user := CurrentUser(c); user != nil && user.Role == models.RoleStudent && !user.OwnsStudent(studentID) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	records, err := h.service.ForStudent(c.Request.Context(), studentID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"attendance": records})
}
