package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// StudentHandler exposes profile and enrollment endpoints.
type StudentHandler struct {
	service  *service.StudentService
	activity *service.ActivityService
}

// NewStudentHandler constructs a student handler.
func NewStudentHandler(svc *service.StudentService, activity *service.ActivityService) *StudentHandler {
	return &StudentHandler{service: svc, activity: activity}
}

type addProfilesRequest struct {
	Profiles []service.ProfileInput `json:"profiles" binding:"required"`
}

// AddProfiles godoc
// @Summary Create student profiles, skipping known serial numbers
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body addProfilesRequest true "Profile batch"
// @Success 201 {object} map[string]interface{}
// @Router /add/profiles [post]
func (h *StudentHandler) AddProfiles(c *gin.Context) {
	var req addProfilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.service.AddProfiles(c.Request.Context(), req.Profiles)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "add_profiles", map[string]interface{}{"created": created})
	}
	response.JSON(c, http.StatusCreated, response.Body{"created": created})
}

type enrollRequest struct {
	Entries []service.EnrollEntry `json:"entries" binding:"required"`
}

// Enroll godoc
// @Summary Enroll a batch of students into the latest session
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body enrollRequest true "Enrollment batch"
// @Success 201 {object} map[string]interface{}
// @Router /add/students [post]
func (h *StudentHandler) Enroll(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrolled, err := h.service.Enroll(c.Request.Context(), req.Entries)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "enroll_students", map[string]interface{}{"enrolled": enrolled})
	}
	response.JSON(c, http.StatusCreated, response.Body{"enrolled": enrolled})
}

// Update godoc
// @Summary Update an enrollment's class, roll number, group and contacts
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body service.UpdateStudentRequest true "Update payload"
// @Success 200 {object} map[string]interface{}
// @Router /update/student [post]
func (h *StudentHandler) Update(c *gin.Context) {
	var req service.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	student, err := h.service.UpdateStudent(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "update_student", map[string]interface{}{"student_id": student.ID})
	}
	response.OK(c, response.Body{"student": student})
}

// Profiles godoc
// @Summary List every profile with contacts and enrollments
// @Tags Students
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/profiles [get]
func (h *StudentHandler) Profiles(c *gin.Context) {
	profiles, err := h.service.Profiles(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"profiles": profiles})
}

// Current godoc
// @Summary List every enrollment in the latest session
// @Tags Students
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/curr-students [get]
func (h *StudentHandler) Current(c *gin.Context) {
	students, err := h.service.CurrentStudents(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"students": students})
}

// BySrNo godoc
// @Summary Return a profile by serial number with its recorded marks
// @Tags Students
// @Produce json
// @Param srNo path string true "Serial number"
// @Success 200 {object} map[string]interface{}
// @Router /get/student/{srNo} [get]
func (h *StudentHandler) BySrNo(c *gin.Context) {
	record, err := h.service.StudentBySrNo(c.Request.Context(), c.Param("srNo"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"student": record})
}

// Profile godoc
// @Summary Return one profile with contacts and enrollments
// @Tags Students
// @Produce json
// @Param id path string true "Profile ID"
// @Success 200 {object} map[string]interface{}
// @Router /get/profile/{id} [get]
func (h *StudentHandler) Profile(c *gin.Context) {
	profileID := c.Param("id")
	if user := CurrentUser(c); user != nil && user.Role == models.RoleStudent && !user.OwnsProfile(profileID) {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	profile, err := h.service.Profile(c.Request.Context(), profileID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"profile": profile})
}

// UpdateProfile godoc
// @Summary Rewrite a profile's fields
// @Tags Students
// @Accept json
// @Produce json
// @Param payload body models.StudentProfile true "Profile"
// @Success 200 {object} map[string]interface{}
// @Router /update/profile [post]
func (h *StudentHandler) UpdateProfile(c *gin.Context) {
	var profile models.StudentProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if profile.ID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "profile id is required"))
		return
	}
	if err := h.service.UpdateProfile(c.Request.Context(), &profile); err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "update_profile", map[string]interface{}{"profile_id": profile.ID})
	}
	response.OK(c, response.Body{"profile": profile})
}
