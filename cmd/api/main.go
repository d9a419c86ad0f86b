package main

import (
	"context"
	"errors"
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

	_ "github.com/sit-council/council-api/api/swagger"
	"github.com/sit-council/council-api/internal/handler"
	"github.com/sit-council/council-api/internal/middleware"
	"github.com/sit-council/council-api/internal/repository"
	"github.com/sit-council/council-api/internal/service"
	"github.com/sit-council/council-api/pkg/cache"
	"github.com/sit-council/council-api/pkg/config"
	"github.com/sit-council/council-api/pkg/database"
	"github.com/sit-council/council-api/pkg/jobs"
	"github.com/sit-council/council-api/pkg/logger"
	corsmiddleware "github.com/sit-council/council-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sit-council/council-api/pkg/middleware/requestid"
)

// @title Council API
// @version 1.0.0
// @description Student council attendance, tasks and performance aggregation
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	memberRepo := repository.NewMemberRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	performanceRepo := repository.NewPerformanceRepository(db)

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		// Caching is an optimisation; the API stays up without it.
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Leaderboard.CacheTTL, logr, cfg.Leaderboard.CacheEnabled)
	}

	validate := validator.New()

	performanceSvc := service.NewPerformanceService(performanceRepo, meetingRepo, attendanceRepo, taskRepo, memberRepo, cacheSvc, metricsSvc, logr)

	queue := jobs.NewQueue("performance-recompute", performanceSvc.HandleRecomputeJob, jobs.QueueConfig{
		Workers:    cfg.Aggregation.Workers,
		BufferSize: cfg.Aggregation.BufferSize,
		MaxRetries: cfg.Aggregation.MaxRetries,
		RetryDelay: cfg.Aggregation.RetryDelay,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	attendanceSvc := service.NewAttendanceService(attendanceRepo, meetingRepo, memberRepo, queue, validate, logr)
	meetingSvc := service.NewMeetingService(meetingRepo, validate, logr)
	taskSvc := service.NewTaskService(taskRepo, memberRepo, queue, validate, logr)
	memberSvc := service.NewMemberService(memberRepo, logr)
	leaderboardSvc := service.NewLeaderboardService(performanceRepo, taskRepo, memberRepo, cacheSvc, logr, service.LeaderboardServiceConfig{
		CacheTTL: cfg.Leaderboard.CacheTTL,
	})
	authSvc := service.NewAuthService(memberRepo, validate, logr, service.AuthConfig{
		TokenSecret: cfg.JWT.Secret,
		TokenExpiry: cfg.JWT.Expiration,
		Issuer:      "council-api",
	})

	authHandler := handler.NewAuthHandler(authSvc)
	memberHandler := handler.NewMemberHandler(memberSvc)
	meetingHandler := handler.NewMeetingHandler(meetingSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	taskHandler := handler.NewTaskHandler(taskSvc)
	performanceHandler := handler.NewPerformanceHandler(performanceSvc)
	leaderboardHandler := handler.NewLeaderboardHandler(leaderboardSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

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
	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))
	admin := middleware.RequireAdmin()

	authed.GET("/auth/me", authHandler.Me)

	authed.GET("/members", memberHandler.List)
	authed.GET("/members/:id", memberHandler.Get)

	authed.GET("/meetings", meetingHandler.List)
	authed.GET("/meetings/:id", meetingHandler.Get)
	authed.GET("/meetings/:id/qr", meetingHandler.CheckInQR)
	authed.POST("/meetings", admin, meetingHandler.Create)
	authed.PATCH("/meetings/:id/status", admin, meetingHandler.UpdateStatus)
	if cfg.Exports.Enabled {
		authed.GET("/meetings/:id/attendance-sheet", meetingHandler.AttendanceSheet)
	}

	authed.POST("/attendance", admin, attendanceHandler.Record)
	authed.GET("/attendance/:meetingId", attendanceHandler.ListByMeeting)

	authed.GET("/tasks", taskHandler.List)
	authed.POST("/tasks", admin, taskHandler.Create)
	authed.PATCH("/tasks/:id/status", taskHandler.UpdateStatus)

	authed.GET("/performance", performanceHandler.ListMonth)
	authed.GET("/performance/:memberId", performanceHandler.Get)
	authed.POST("/performance/:memberId/recompute", admin, performanceHandler.Recompute)
	authed.POST("/performance/:memberId/awards", admin, performanceHandler.GrantAwards)

	authed.GET("/leaderboard", leaderboardHandler.Get)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
