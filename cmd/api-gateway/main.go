package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/edulane/lms-api/api/swagger"
	"github.com/edulane/lms-api/internal/handler"
	"github.com/edulane/lms-api/internal/middleware"
	"github.com/edulane/lms-api/internal/models"
	"github.com/edulane/lms-api/internal/repository"
	"github.com/edulane/lms-api/internal/service"
	"github.com/edulane/lms-api/pkg/cache"
	"github.com/edulane/lms-api/pkg/config"
	"github.com/edulane/lms-api/pkg/database"
	"github.com/edulane/lms-api/pkg/logger"
	corsmiddleware "github.com/edulane/lms-api/pkg/middleware/cors"
	reqidmiddleware "github.com/edulane/lms-api/pkg/middleware/requestid"
	"github.com/edulane/lms-api/pkg/storage"
)

// @title EduLane LMS API
// @version 1.0.0
// @description Learning management API with timezone-aware class schedules
// @BasePath /api/v1
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
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	validate := validator.New()
	metricsService := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		defer cacheRepo.Close() //nolint:errcheck
	}
	var cacheService *service.CacheService
	if cacheRepo != nil {
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Cache.DefaultTTL, logr, cfg.Cache.Enabled)
	} else {
		cacheService = service.NewCacheService(nil, metricsService, cfg.Cache.DefaultTTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	courseRepo := repository.NewCourseRepository(db)
	enrollmentRepo := repository.NewEnrollmentRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	reportRepo := repository.NewReportRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "edulane-lms",
	})
	courseService := service.NewCourseService(courseRepo, userRepo, cacheService, validate, logr)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, userRepo, cacheService, validate, logr)
	timetableService := service.NewTimetableService(timetableRepo, courseRepo, userRepo, cacheService, metricsService, validate, logr, service.TimetableConfig{
		DefaultViewerTimezone: cfg.Classtime.DefaultViewerTimezone,
		NextSessionCacheTTL:   cfg.Classtime.NextSessionCacheTTL,
	})
	sessionService := service.NewSessionService(sessionRepo, timetableRepo, courseRepo, validate, logr, service.SessionConfig{
		DefaultDurationMinutes: cfg.Sessions.DefaultDurationMinutes,
	})
	attendanceService := service.NewAttendanceService(attendanceRepo, sessionRepo, enrollmentRepo, validate, logr)

	reportFiles, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare report storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	reportService := service.NewReportService(reportRepo, sessionRepo, attendanceRepo, courseRepo, reportFiles, signer, validate, logr, service.ReportConfig{
		Enabled:           cfg.Reports.Enabled,
		SignedURLTTL:      cfg.Reports.SignedURLTTL,
		CleanupInterval:   cfg.Reports.CleanupInterval,
		WorkerConcurrency: cfg.Reports.WorkerConcurrency,
		WorkerRetries:     cfg.Reports.WorkerRetries,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportService.Start(rootCtx)
	defer reportService.Stop()

	authHandler := handler.NewAuthHandler(authService)
	courseHandler := handler.NewCourseHandler(courseService)
	enrollmentHandler := handler.NewEnrollmentHandler(enrollmentService)
	timetableHandler := handler.NewTimetableHandler(timetableService)
	sessionHandler := handler.NewSessionHandler(sessionService)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService)
	reportHandler := handler.NewReportHandler(reportService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Metrics)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", middleware.JWT(authService), authHandler.Logout)
	auth.POST("/change-password", middleware.JWT(authService), authHandler.ChangePassword)

	me := api.Group("/me", middleware.JWT(authService))
	me.GET("", authHandler.Me)
	me.PUT("/timezone", authHandler.UpdateTimezone)
	me.GET("/next-session", timetableHandler.MyNextSession)

	courses := api.Group("/courses")
	courses.GET("", middleware.OptionalJWT(authService), courseHandler.List)
	courses.GET("/:id", middleware.OptionalJWT(authService), courseHandler.Get)
	courses.POST("", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), middleware.Audit(auditRepo, logr, "create", "course"), courseHandler.Create)
	courses.PUT("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "update", "course"), courseHandler.Update)
	courses.DELETE("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin), middleware.Audit(auditRepo, logr, "archive", "course"), courseHandler.Archive)

	courses.GET("/:id/timetables", middleware.OptionalJWT(authService), timetableHandler.ListByCourse)
	courses.GET("/:id/timetables/localized", middleware.OptionalJWT(authService), timetableHandler.Localized)
	courses.GET("/:id/next-session", middleware.OptionalJWT(authService), timetableHandler.NextSession)
	courses.POST("/:id/timetables", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "create", "timetable"), timetableHandler.Create)
	courses.POST("/:id/sessions", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "create", "session"), sessionHandler.Create)
	courses.GET("/:id/students/:studentId/attendance-summary", middleware.JWT(authService), attendanceHandler.Summary)

	timetables := api.Group("/timetables")
	timetables.PUT("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "update", "timetable"), timetableHandler.Update)
	timetables.DELETE("/:id", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "delete", "timetable"), timetableHandler.Delete)
	timetables.GET("/:id/suggested-dates", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), sessionHandler.SuggestedDates)

	enrollments := api.Group("/enrollments", middleware.JWT(authService))
	enrollments.GET("", enrollmentHandler.List)
	enrollments.POST("", enrollmentHandler.Enroll)
	enrollments.PATCH("/:id/status", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), enrollmentHandler.UpdateStatus)

	sessions := api.Group("/sessions", middleware.JWT(authService))
	sessions.GET("", sessionHandler.List)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.POST("/:id/cancel", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "cancel", "session"), sessionHandler.Cancel)
	sessions.POST("/:id/complete", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), middleware.Audit(auditRepo, logr, "complete", "session"), sessionHandler.Complete)
	sessions.GET("/:id/attendance", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), attendanceHandler.ListBySession)
	sessions.POST("/:id/attendance", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), attendanceHandler.Mark)
	sessions.POST("/:id/attendance/bulk", middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), attendanceHandler.BulkMark)

	reports := api.Group("/reports")
	reports.POST("/generate", middleware.JWT(authService), middleware.RequireRoles(models.RoleAdmin, models.RoleInstructor), reportHandler.Generate)
	reports.GET("/:id/status", middleware.JWT(authService), reportHandler.Status)
	reports.GET("/download", reportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
