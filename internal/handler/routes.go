package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/internal/service"
)

// Handlers bundles every route handler for registration.
type Handlers struct {
	Auth       *AuthHandler
	User       *UserHandler
	Session    *SessionHandler
	Class      *ClassHandler
	Teacher    *TeacherHandler
	Student    *StudentHandler
	Subject    *SubjectHandler
	Test       *TestHandler
	Attendance *AttendanceHandler
	Notice     *NoticeHandler
	Activity   *ActivityHandler
}

// Register wires the API routes onto the engine. Role gates follow the
// three-tier policy: admin routes for ADMIN and SU, teacher routes for
// TEACHER and up (class-scoped paths narrowed by RequireClassParam,
// body-carried class IDs checked inside handlers), student routes for
// STUDENT with self checks.
func Register(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/login", h.Auth.Login)
	api.POST("/logout", h.Auth.Logout)
	api.GET("/me", middleware.Auth(auth), h.Auth.Me)

	admin := api.Group("", middleware.Auth(auth), middleware.RequireRoles(models.RoleAdmin, models.RoleSU))
	{
		admin.POST("/add/students", h.Student.Enroll)
		admin.POST("/add/profiles", h.Student.AddProfiles)
		admin.POST("/add/teachers", h.Teacher.Add)
		admin.POST("/add/subject", h.Subject.Add)
		admin.POST("/add/class-subject", h.Teacher.AssignSubject)
		admin.POST("/create/class", h.Class.Create)
		admin.POST("/create/session", h.Session.Create)
		admin.POST("/create/group", h.Subject.CreateGroup)
		admin.POST("/create/test", h.Test.Create)
		admin.POST("/clone/class", h.Class.Clone)
		admin.POST("/update/class-subjects", h.Teacher.UpdateAssignment)
		admin.POST("/update/class-teacher", h.Class.ChangeTeacher)
		admin.POST("/update/user", h.User.Update)
		admin.POST("/update/student", h.Student.Update)
		admin.POST("/update/profile", h.Student.UpdateProfile)
		admin.DELETE("/delete/user/:id", h.User.Delete)
		admin.DELETE("/delete/class-subject/:id", h.Teacher.RemoveAssignment)

		admin.GET("/get/users", h.User.List)
		admin.GET("/get/profiles", h.Student.Profiles)
		admin.GET("/get/profile/:id", h.Student.Profile)
		admin.GET("/get/curr-students", h.Student.Current)
		admin.GET("/get/student/:srNo", h.Student.BySrNo)
		admin.GET("/get/sessions", h.Session.List)
		admin.GET("/get/latest-session", h.Session.Latest)
		admin.GET("/get/session-classes/:id", h.Session.Classes)
		admin.GET("/get/classes", h.Class.Current)
		admin.GET("/get/teachers", h.Teacher.List)
		admin.GET("/get/unassigned-teachers", h.Teacher.Unassigned)
		admin.GET("/get/subject-teachers/:subject", h.Teacher.BySubject)
		admin.GET("/get/class-subjects/:id", h.Teacher.Assignments)
		admin.GET("/get/subjects", h.Subject.List)
		admin.GET("/get/groups", h.Subject.Groups)
		admin.GET("/get/tests/:grade/:year/:month", h.Test.ForMonth)

		admin.GET("/get/activity", middleware.RequireRoles(models.RoleSU), h.Activity.List)
	}

	teacher := api.Group("", middleware.Auth(auth), middleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSU))
	{
		teacher.POST("/add/notice", h.Notice.Add)
		teacher.POST("/add/attendance", h.Attendance.Mark)
		teacher.POST("/add/marks", h.Test.RecordMarks)
		teacher.GET("/get/attendance/:classId/:date", middleware.RequireClassParam("classId"), h.Attendance.ForClassDate)
		teacher.GET("/get/notices", h.Notice.All)
		teacher.GET("/get/notices/:id", middleware.RequireClassParam("id"), h.Notice.ByClass)
		teacher.GET("/get/grade-section/:ids", h.Class.GradeSections)
		teacher.GET("/get/students-class/:id", middleware.RequireClassParam("id"), h.Class.Students)
		teacher.GET("/get/teacher-tests/:year/:month", h.Test.ByTeacher)
		teacher.GET("/get/marks/:classId/:testId", middleware.RequireClassParam("classId"), h.Test.ClassMarks)
		teacher.GET("/export/marks/:classId/:testId", middleware.RequireClassParam("classId"), h.Test.MarksSheet)
	}

	student := api.Group("", middleware.Auth(auth), middleware.RequireRoles(models.RoleStudent))
	{
		student.GET("/get/student-notices/:id/:page", h.Notice.StudentPage)
		student.GET("/get/student-marks/:id", h.Test.StudentMarks)
		student.GET("/get/student-attendance/:id/:year/:month", h.Attendance.ForStudent)
	}
}
