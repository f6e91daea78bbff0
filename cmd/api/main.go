package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/school-admin-api/api/swagger"
	"github.com/noah-isme/school-admin-api/internal/handler"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/repository"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/cache"
	"github.com/noah-isme/school-admin-api/pkg/config"
	"github.com/noah-isme/school-admin-api/pkg/database"
	"github.com/noah-isme/school-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/requestid"
)

// @title School Admin API
// @version 1.0.0
// @description School administration backend: sessions, classes, students, attendance, tests and notices
// @BasePath /api
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, latest-session cache disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	authSessionRepo := repository.NewAuthSessionRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	classRepo := repository.NewClassRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	testRepo := repository.NewTestRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	noticeRepo := repository.NewNoticeRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, metricsService, logr)
	defer cacheRepo.Close() //nolint:errcheck

	verifier := service.NewGoogleVerifier(cfg.Auth.GoogleClientID)

	authService := service.NewAuthService(authSessionRepo, userRepo, teacherRepo, classRepo, studentRepo, sessionRepo, verifier, cfg.Auth.TokenSecret, cfg.Auth.SessionMaxAge, logr)
	sessionService := service.NewSessionService(sessionRepo, cacheRepo, cfg.Auth.LatestTermTTL, validate, logr)
	classService := service.NewClassService(classRepo, teacherRepo, studentRepo, sessionService, validate, logr)
	teacherService := service.NewTeacherService(teacherRepo, userRepo, classRepo, subjectRepo, sessionService, validate, logr)
	studentService := service.NewStudentService(studentRepo, userRepo, classRepo, subjectRepo, sessionService, testRepo, validate, logr)
	subjectService := service.NewSubjectService(subjectRepo, validate, logr)
	testService := service.NewTestService(testRepo, classRepo, subjectRepo, validate, logr)
	attendanceService := service.NewAttendanceService(attendanceRepo, studentRepo, validate, logr)
	noticeService := service.NewNoticeService(noticeRepo, studentRepo, sessionService, validate, logr)
	userService := service.NewUserService(userRepo, validate, logr)
	activityService := service.NewActivityService(cfg.Activity.Path, cfg.Activity.MaxSize, logr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	activityService.Start(ctx)
	defer activityService.Stop()

	go sweepStaleSessions(ctx, authService, cfg.Auth.SweepInterval)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsService.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Register(r, cfg.APIPrefix, authService, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		User:       handler.NewUserHandler(userService, activityService),
		Session:    handler.NewSessionHandler(sessionService, classService, activityService),
		Class:      handler.NewClassHandler(classService, activityService),
		Teacher:    handler.NewTeacherHandler(teacherService, activityService),
		Student:    handler.NewStudentHandler(studentService, activityService),
		Subject:    handler.NewSubjectHandler(subjectService, activityService),
		Test:       handler.NewTestHandler(testService, activityService),
		Attendance: handler.NewAttendanceHandler(attendanceService),
		Notice:     handler.NewNoticeHandler(noticeService),
		Activity:   handler.NewActivityHandler(activityService),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

func sweepStaleSessions(ctx context.Context, auth *service.AuthService, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			auth.SweepStaleSessions(ctx)
		}
	}
}
