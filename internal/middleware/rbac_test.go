package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-admin-api/internal/models"
)

func classParamRouter(user *models.AuthUser) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if user != nil {
			c.Set(ContextUserKey, user)
		}
		c.Next()
	})
	router.GET("/get/students-class/:id", RequireClassParam("id"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func getClass(router *gin.Engine, classID string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(http.MethodGet, "/get/students-class/"+classID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRequireClassParamTeacherInScope(t *testing.T) {
	router := classParamRouter(&models.AuthUser{
		ID:   "user-1",
		Role: models.RoleTeacher,
		Teacher: &models.TeacherScope{
			TeacherID:     "teach-1",
			ClassSubjects: []models.ClassSubjectRef{{ID: "cs-1", ClassID: "class-9a"}},
		},
	})

	resp := getClass(router, "class-9a")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireClassParamTeacherOutsideScope(t *testing.T) {
	router := classParamRouter(&models.AuthUser{
		ID:   "user-1",
		Role: models.RoleTeacher,
		Teacher: &models.TeacherScope{
			TeacherID:     "teach-1",
			ClassSubjects: []models.ClassSubjectRef{{ID: "cs-1", ClassID: "class-9a"}},
		},
	})

	resp := getClass(router, "class-7b")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
	require.Contains(t, resp.Body.String(), `"success":false`)
}

func TestRequireClassParamAdminPassthrough(t *testing.T) {
	router := classParamRouter(&models.AuthUser{ID: "user-2", Role: models.RoleAdmin})

	resp := getClass(router, "class-7b")
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRequireClassParamMissingUser(t *testing.T) {
	router := classParamRouter(nil)

	resp := getClass(router, "class-9a")
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}
