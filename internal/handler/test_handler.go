package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// TestHandler exposes test and marks endpoints.
type TestHandler struct {
	service  *service.TestService
	activity *service.ActivityService
}

// NewTestHandler constructs a test handler.
func NewTestHandler(svc *service.TestService, activity *service.ActivityService) *TestHandler {
	return &TestHandler{service: svc, activity: activity}
}

// Create godoc
// @Summary Create a test for a grade
// @Tags Tests
// @Accept json
// @Produce json
// @Param payload body service.CreateTestRequest true "Test payload"
// @Success 201 {object} map[string]interface{}
// @Router /create/test [post]
func (h *TestHandler) Create(c *gin.Context) {
	var req service.CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	test, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "create_test", map[string]interface{}{"test_id": test.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"test": test})
}

// ForMonth godoc
// @Summary List a grade's tests within one month
// @Tags Tests
// @Produce json
// @Param grade path string true "Grade"
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Router /get/tests/{grade}/{year}/{month} [get]
func (h *TestHandler) ForMonth(c *gin.Context) {
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	tests, err := h.service.TestsForMonth(c.Request.Context(), c.Param("grade"), year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"tests": tests})
}

// RecordMarks godoc
// @Summary Record marks for one test
// @Tags Tests
// @Accept json
// @Produce json
// @Param payload body service.RecordMarksRequest true "Marks batch"
// @Success 200 {object} map[string]interface{}
// @Router /add/marks [post]
func (h *TestHandler) RecordMarks(c *gin.Context) {
	var req service.RecordMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.RecordMarks(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, response.Body{})
}

// ClassMarks godoc
// @Summary Return one class's marks on one test
// @Tags Tests
// @Produce json
// @Param classId path string true "Class ID"
// @Param testId path string true "Test ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/marks/{classId}/{testId} [get]
func (h *TestHandler) ClassMarks(c *gin.Context) {
	marks, err := h.service.ClassMarks(c.Request.Context(), c.Param("classId"), c.Param("testId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"test": marks})
}

// ByTeacher godoc
// @Summary List the month's tests for the caller's assignments
// @Tags Tests
// @Produce json
// @Param year path int true "Year"
// @Param month path int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Router /get/teacher-tests/{year}/{month} [get]
func (h *TestHandler) ByTeacher(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil || user.Teacher == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	year, month, ok := yearMonth(c)
	if !ok {
		return
	}
	tests, err := h.service.TestsByTeacher(c.Request.Context(), user.Teacher.TeacherID, year, month)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"tests": tests})
}

// StudentMarks godoc
// @Summary List every test result of one student
// @Tags Tests
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/student-marks/{id} [get]
func (h *TestHandler) StudentMarks(c *gin.Context) {
	studentID := c.Param("id")
	if user := CurrentUser(c); user != nil && user.Role == models.RoleStudent && !user.OwnsStudent(studentID) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	marks, err := h.service.StudentMarks(c.Request.Context(), studentID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"marks": marks})
}

// MarksSheet godoc
// @Summary Export one class's marks sheet as CSV or PDF
// @Tags Tests
// @Produce text/csv
// @Produce application/pdf
// @Param classId path string true "Class ID"
// @Param testId path string true "Test ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /export/marks/{classId}/{testId} [get]
func (h *TestHandler) MarksSheet(c *gin.Context) {
	payload, contentType, err := h.service.MarksSheet(c.Request.Context(), c.Param("classId"), c.Param("testId"), c.DefaultQuery("format", "csv"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Data(http.StatusOK, contentType, payload)
}

func yearMonth(c *gin.Context) (int, time.Month, bool) {
	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid year"))
		return 0, 0, false
	}
	monthNum, err := strconv.Atoi(c.Param("month"))
	if err != nil || monthNum < 1 || monthNum > 12 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid month"))
		return 0, 0, false
	}
	return year, time.Month(monthNum), true
}
