package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/academic-portal-api/api/swagger"
	"github.com/noah-isme/academic-portal-api/internal/handler"
	internalmiddleware "github.com/noah-isme/academic-portal-api/internal/middleware"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/repository"
	"github.com/noah-isme/academic-portal-api/internal/service"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	"github.com/noah-isme/academic-portal-api/pkg/cache"
	"github.com/noah-isme/academic-portal-api/pkg/config"
	"github.com/noah-isme/academic-portal-api/pkg/database"
	"github.com/noah-isme/academic-portal-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/academic-portal-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/academic-portal-api/pkg/middleware/requestid"
)

// @title Academic Portal API
// @version 1.0.0
// @description Admissions lifecycle and gated workflow engine for the postgraduate portal
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		// The portal still works without redis: caching and pub/sub degrade.
		logr.Warn("redis unavailable", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	userRepo := repository.NewUserRepository(db)
	applicantRepo := repository.NewApplicantRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	resultRepo := repository.NewResultBatchRepository(db)
	paymentRepo := repository.NewLecturerPaymentRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Applicants: applicantRepo,
		Students:   studentRepo,
		Results:    resultRepo,
		Payments:   paymentRepo,
		Cache:      cacheSvc,
		Logger:     logr,
		Config:     service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	channels := []service.NotificationChannel{service.NewAuditNotificationChannel(userRepo)}
	if redisClient != nil {
		channels = append(channels, service.NewRedisNotificationChannel(repository.NewNotificationPublisher(redisClient, cfg.Notifications.RedisChannel)))
	}
	if cfg.Notifications.EmailEnabled && cfg.Notifications.SendGridAPIKey != "" {
		sender := service.NewSendGridSender(cfg.Notifications.SendGridAPIKey, cfg.Notifications.SenderName, cfg.Notifications.SenderEmail)
		channels = append(channels, service.NewEmailNotificationChannel(sender, cfg.Notifications.AdmissionPortURL))
	}
	notifier := service.NewNotificationService(channels, cfg.Notifications.Timeout, metrics, logr)

	hooks := service.TransitionHooks{Notifier: notifier, Metrics: metrics, Dashboard: dashboardSvc}
	guard := workflow.NewGuard(workflow.DefaultDispatcher())

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            cfg.JWT.Issuer,
	})
	lifecycleSvc := service.NewLifecycleService(applicantRepo, studentRepo, hooks, validate, logr, service.LifecycleConfig{
		MatricPrefix:       cfg.Lifecycle.MatricPrefix,
		RegistrationPrefix: cfg.Lifecycle.RegistrationPrefix,
	})
	resultSvc := service.NewResultService(resultRepo, guard, hooks, validate, logr)
	paymentSvc := service.NewPaymentService(paymentRepo, guard, hooks, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, hooks, validate, logr)
	admissionSvc := service.NewAdmissionService(applicantRepo, hooks, validate, logr)

	checks := map[string]handler.ReadinessCheck{
		"postgres": db.PingContext,
	}
	if redisClient != nil {
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	authHandler := handler.NewAuthHandler(authSvc)
	metricsHandler := handler.NewMetricsHandler(metrics, checks)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	lifecycleHandler := handler.NewLifecycleHandler(lifecycleSvc)
	resultHandler := handler.NewResultHandler(resultSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, map[string][]models.UserRole{
		workflow.PaymentActionGenerate: {models.RoleDCL},
		workflow.PaymentActionApprove:  {models.RoleDCL},
		workflow.PaymentActionPay:      {models.RoleHOI, models.RoleAdmin},
	})
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	admissionHandler := handler.NewAdmissionHandler(admissionSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metrics))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))
	secured.GET("/auth/me", authHandler.Me)

	lifecycle := secured.Group("/lifecycle")
	lifecycle.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleHOP, models.RoleDCL))
	lifecycle.POST("/migrate", lifecycleHandler.Migrate)
	lifecycle.POST("/graduate", lifecycleHandler.Graduate)
	lifecycle.GET("/applicants/:id/student", lifecycleHandler.LinkedStudent)

	results := secured.Group("/results")
	results.Use(internalmiddleware.RequireRoles(models.RoleAPC, models.RoleHOP))
	results.POST("/action", resultHandler.Action)
	results.GET("/batches", resultHandler.List)

	payments := secured.Group("/payments")
	payments.Use(internalmiddleware.RequireRoles(models.RoleDCL, models.RoleHOI, models.RoleAdmin))
	payments.GET("", paymentHandler.List)
	payments.POST("/action", paymentHandler.Action)
	payments.GET("/schedule/export",
		internalmiddleware.Audit(userRepo, logr, models.AuditActionScheduleExport, "lecturer_payments"),
		paymentHandler.Export,
	)

	assignments := secured.Group("/assignments")
	assignments.Use(internalmiddleware.RequireRoles(models.RoleAPC, models.RoleHOP))
	assignments.POST("/examiner", assignmentHandler.Examiner)
	assignments.POST("/supervisor", assignmentHandler.Supervisor)

	admissions := secured.Group("/admissions")
	admissions.Use(internalmiddleware.RequireRoles(models.RoleAPC, models.RoleHOP))
	admissions.POST("/:id/invite", admissionHandler.Invite)
	admissions.POST("/:id/notify-status", admissionHandler.NotifyStatus)

	dashboard := secured.Group("/dashboard")
	dashboard.Use(internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleHOP, models.RoleDCL, models.RoleHOI, models.RoleAPC))
	dashboard.GET("/summary", dashboardHandler.Summary)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	logr.Info("server stopped")
}
