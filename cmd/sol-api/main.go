package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/nplvision/sol-engine/api/swagger"
	"github.com/nplvision/sol-engine/internal/handler"
	"github.com/nplvision/sol-engine/internal/middleware"
	"github.com/nplvision/sol-engine/internal/repository"
	"github.com/nplvision/sol-engine/internal/scheduler"
	"github.com/nplvision/sol-engine/internal/service"
	"github.com/nplvision/sol-engine/pkg/cache"
	"github.com/nplvision/sol-engine/pkg/config"
	"github.com/nplvision/sol-engine/pkg/database"
	"github.com/nplvision/sol-engine/pkg/logger"
	corsmiddleware "github.com/nplvision/sol-engine/pkg/middleware/cors"
	reqidmiddleware "github.com/nplvision/sol-engine/pkg/middleware/requestid"
)

// @title NPLVision SOL Engine API
// @version 1.0.0
// @description Statute-of-limitations calculation and monitoring for defaulted loan portfolios
// @BasePath /
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
		// The engine degrades to uncached jurisdiction reads without Redis.
		logr.Sugar().Warnw("redis unavailable, jurisdiction cache disabled", "error", err)
		redisClient = nil
	}

	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	jurisdictionRepo := repository.NewJurisdictionRepository(db)
	jurisdictionStore := repository.NewCachedJurisdictionStore(jurisdictionRepo, cacheRepo, cfg.SOL.JurisdictionCacheTTL, metricsSvc, logr)
	calcRepo := repository.NewCalculationRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	batchRepo := repository.NewBatchRunRepository(db)
	loanRepo := repository.NewLoanRepository(db)

	calcSvc := service.NewCalculationService(jurisdictionStore, cfg.SOL, metricsSvc, logr)
	eventSvc := service.NewEventService(calcSvc, loanRepo, calcRepo, auditRepo, cfg.Events, logr)
	alertSvc := service.NewAlertService(calcRepo, cfg.Alerts, metricsSvc, logr)

	// The scheduler is an explicit instance owned here; handlers receive a
	// reference for status and manual triggering.
	sched := scheduler.New(cfg.Scheduler, eventSvc, loanRepo, batchRepo, alertSvc, metricsSvc, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eventSvc.Start(ctx)
	defer eventSvc.Stop()
	sched.Start()
	defer sched.Stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	solHandler := handler.NewSOLHandler(eventSvc, calcRepo, auditRepo, alertSvc)
	jurisdictionHandler := handler.NewJurisdictionHandler(jurisdictionStore, jurisdictionRepo)
	schedulerHandler := handler.NewSchedulerHandler(sched, batchRepo)

	sol := r.Group("/sol")
	{
		sol.POST("/loans/:id/events", solHandler.HandleEvent)
		sol.POST("/loans/:id/recalculate", solHandler.Recalculate)
		sol.GET("/loans/:id/calculation", solHandler.GetCalculation)
		sol.GET("/loans/:id/audit", solHandler.GetAuditTrail)
		sol.GET("/alerts", solHandler.GetAlerts)

		sol.GET("/jurisdictions", jurisdictionHandler.List)
		sol.GET("/jurisdictions/:state", jurisdictionHandler.Get)
		sol.PUT("/jurisdictions/:state", jurisdictionHandler.Upsert)

		sol.POST("/scheduler/run", schedulerHandler.Run)
		sol.GET("/scheduler/status", schedulerHandler.Status)
		sol.GET("/scheduler/runs", schedulerHandler.ListRuns)
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")
	if err := srv.Shutdown(context.Background()); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
