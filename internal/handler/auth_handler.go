package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/service"
	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/response"
)

// AuthHandler exposes login, identity and logout endpoints.
type AuthHandler struct {
	service *service.AuthService
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

type loginRequest struct {
	Token string `json:"token"`
}

// Login godoc
// @Summary Log in with a federated ID token or rotate a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body loginRequest false "Federated ID token"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	// Body is optional: a presented bearer session alone can log in.
	_ = c.ShouldBindJSON(&req)

	token, err := h.service.Login(c.Request.Context(), bearer(c), req.Token, c.Request.UserAgent())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, response.Body{"token": token})
}

// Me godoc
// @Summary Return the resolved caller with role associations
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user := CurrentUser(c)
	if user == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.OK(c, response.Body{"user": user})
}

// Logout godoc
// @Summary Delete the caller's session
// @Tags Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Idempotent: an absent or invalid session still logs out cleanly.
	h.service.Logout(c.Request.Context(), bearer(c))
	response.JSON(c, http.StatusOK, response.Body{})
}

func bearer(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
