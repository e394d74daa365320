package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storeOptimizer/app/echo-server/router"
	"storeOptimizer/business/association"
	"storeOptimizer/business/environment"
	"storeOptimizer/business/flow"
	"storeOptimizer/business/layout"
	"storeOptimizer/business/optimization"
	"storeOptimizer/internal/middleware"
	"storeOptimizer/internal/repository/narrative"
	psqlRepo "storeOptimizer/internal/repository/postgres"
	redisRepo "storeOptimizer/internal/repository/redis"
	"storeOptimizer/internal/rest"
	"storeOptimizer/pkg/config"
	"storeOptimizer/pkg/database"
	redisdb "storeOptimizer/pkg/database/redis"
	"storeOptimizer/pkg/logger"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(cfg.App.Environment)
	logger.Info("Starting Store Optimizer", "version", cfg.App.Version)

	db, err := database.InitPostgres(cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	logger.Info("Database connected successfully")

	// Snapshot cache is optional; without redis every request reloads weather and events.
	var (
		envCache    environment.SnapshotCache
		invalidator rest.SnapshotInvalidator
	)
	if cfg.Redis.Enabled {
		connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
		redisClient, err := redisdb.Connect(connectCtx, cfg.Redis)
		cancelConnect()
		if err != nil {
			logger.Warn("Redis unavailable, environment cache disabled", "error", err)
		} else {
			defer func() {
				if err := redisdb.Close(redisClient); err != nil {
					logger.Error("Failed to close redis", "error", err)
				}
			}()
			cache := redisRepo.NewEnvironmentCache(redisClient)
			envCache = cache
			invalidator = cache
			logger.Info("Redis connected successfully")
		}
	}

	// Narrative refiner is optional; templates are used when it is absent.
	var refiner optimization.Refiner
	if cfg.OpenAI.APIKey != "" {
		refiner = narrative.NewOpenAIRefiner(narrative.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
			Timeout: cfg.OpenAI.Timeout,
		})
		logger.Info("Narrative refiner enabled", "model", cfg.OpenAI.Model)
	}

	// Init validate
	validate := validator.New()

	// Init repo
	layoutRepo := psqlRepo.NewLayoutRepository(db)
	factsRepo := psqlRepo.NewFactsRepository(db)
	tuningRepo := psqlRepo.NewTuningRepository(db)
	resultRepo := psqlRepo.NewResultRepository(db)

	// Init service
	envLoader := environment.NewLoader(factsRepo, factsRepo, envCache)
	flowAnalyzer := flow.NewAnalyzer(layoutRepo, factsRepo)
	assocMiner := association.NewMiner(factsRepo, layoutRepo)

	optimizationService := optimization.NewService(
		layoutRepo,
		factsRepo,
		envLoader,
		flowAnalyzer,
		assocMiner,
		resultRepo,
		tuningRepo,
		refiner,
		validate,
		optimizerConfig(cfg.Optimizer),
	)
	layoutService := layout.NewService(layoutRepo)

	// Init handler
	optimizationHandler := rest.NewOptimizationHandler(optimizationService, cfg.Server.RequestTimeout)
	layoutHandler := rest.NewLayoutHandler(layoutService)
	tuningAdminHandler := rest.NewTuningAdminHandler(tuningRepo, invalidator)

	// Init echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// HTTP error handler
	e.HTTPErrorHandler = middleware.ErrorHandler

	// Global middleware
	e.Use(echomiddleware.Recover())
	e.Use(middleware.TraceMiddleware())
	e.Use(middleware.MetricsMiddleware())
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: strings.Split(cfg.Server.AllowOrigins, ","),
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderXRequestID, middleware.HeaderTraceID},
	}))

	// Setup routes
	router.SetupMetricsRoutes(e)
	api := e.Group("/api/v1")
	router.SetupOptimizationRoutes(api, optimizationHandler)
	router.SetupLayoutRoutes(api, layoutHandler)
	router.SetupAdminRoutes(api, tuningAdminHandler)

	// Goroutine server
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server starting", "address", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown server
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Info("Server stopped")
}
