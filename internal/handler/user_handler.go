package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// UserHandler exposes directory endpoints.
type UserHandler struct {
	service  *service.UserService
	activity *service.ActivityService
}

// NewUserHandler constructs a user handler.
func NewUserHandler(svc *service.UserService, activity *service.ActivityService) *UserHandler {
	return &UserHandler{service: svc, activity: activity}
}

// List godoc
// @Summary List directory users, optionally by role
// @Tags Users
// @Produce json
// @Param role query string false "Role filter"
// @Success 200 {object} map[string]interface{}
// @Router /get/users [get]
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.service.List(c.Request.Context(), models.UserRole(c.Query("role")))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"users": users})
}

// Update godoc
// @Summary Update a user's directory fields
// @Tags Users
// @Accept json
// @Produce json
// @Param payload body service.UpdateUserRequest true "User payload"
// @Success 200 {object} map[string]interface{}
// @Router /update/user [post]
func (h *UserHandler) Update(c *gin.Context) {
	var req service.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	user, err := h.service.Update(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if caller := CurrentUser(c); caller != nil {
		h.activity.Push(caller.ID, "update_user", map[string]interface{}{"user_id": user.ID})
	}
	response.OK(c, response.Body{"user": user})
}

// Delete godoc
// @Summary Delete a user and its sessions
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} map[string]interface{}
// @Router /delete/user/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	if caller := CurrentUser(c); caller != nil {
		h.activity.Push(caller.ID, "delete_user", map[string]interface{}{"user_id": id})
	}
	response.JSON(c, http.StatusOK, response.Body{})
}
