package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// SubjectHandler exposes subject and group endpoints.
type SubjectHandler struct {
	service  *service.SubjectService
	activity *service.ActivityService
}

// NewSubjectHandler constructs a subject handler.
func NewSubjectHandler(svc *service.SubjectService, activity *service.ActivityService) *SubjectHandler {
	return &SubjectHandler{service: svc, activity: activity}
}

type addSubjectsRequest struct {
	Subjects []string `json:"subjects" binding:"required"`
}

// Add godoc
// @Summary Register subject names
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body addSubjectsRequest true "Subject names"
// @Success 201 {object} map[string]interface{}
// @Router /add/subject [post]
func (h *SubjectHandler) Add(c *gin.Context) {
	var req addSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.AddSubjects(c.Request.Context(), req.Subjects); err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "add_subjects", map[string]interface{}{"count": len(req.Subjects)})
	}
	response.JSON(c, http.StatusCreated, response.Body{})
}

// List godoc
// @Summary List subject names
// @Tags Subjects
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	subjects, err := h.service.Subjects(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"subjects": subjects})
}

// CreateGroup godoc
// @Summary Create a subject group
// @Tags Subjects
// @Accept json
// @Produce json
// @Param payload body service.CreateGroupRequest true "Group payload"
// @Success 201 {object} map[string]interface{}
// @Router /create/group [post]
func (h *SubjectHandler) CreateGroup(c *gin.Context) {
	var req service.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	group, err := h.service.CreateGroup(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if user := CurrentUser(c); user != nil {
		h.activity.Push(user.ID, "create_group", map[string]interface{}{"group_id": group.ID})
	}
	response.JSON(c, http.StatusCreated, response.Body{"group": group})
}

// Groups godoc
// @Summary List subject groups
// @Tags Subjects
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /get/groups [get]
func (h *SubjectHandler) Groups(c *gin.Context) {
	groups, err := h.service.Groups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"groups": groups})
}
