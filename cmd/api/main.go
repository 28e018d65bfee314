// @title Study Byte API
// @version 1.0
// @description Turns uploaded study documents into summaries, flashcards, quizzes, scenario exams and study packs.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8090
// @BasePath /api
// @schemes http https
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"study-byte/internal/adapter"
	"study-byte/internal/adapter/llm"
	"study-byte/internal/cache"
	"study-byte/internal/config"
	"study-byte/internal/domain"
	"study-byte/internal/extract"
	"study-byte/internal/handler"
	"study-byte/internal/logger"
	"study-byte/internal/middleware"
	"study-byte/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	ctx := context.Background()

	// The extraction cache is optional; without Redis every upload is extracted.
	var extractionCache domain.Cache
	if cfg.Redis.Address != "" {
		redisClient, err := cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			appLogger.Warn("Redis unavailable, continuing without extraction cache", zap.Error(err))
		} else {
			defer redisClient.Close()
			extractionCache = adapter.NewRedisCache(redisClient)
			appLogger.Info("Extraction cache enabled", zap.String("address", cfg.Redis.Address))
		}
	}

	extractor := extract.New(extract.Options{
		MaxFileSize: cfg.Extraction.MaxFileSize,
		Cache:       extractionCache,
		CacheTTL:    cfg.ParseTTLStringOrDefault(cfg.CacheTTLs.Extraction, 24*time.Hour),
		Logger:      appLogger.Named("extract"),
	})

	// A missing key or model is fatal here, before the server accepts requests.
	gateway, err := llm.New(ctx, cfg.LLM, appLogger.Named("llm"))
	if err != nil {
		appLogger.Fatal("Failed to create model gateway", zap.Error(err))
	}

	studyService := service.NewStudyService(extractor, gateway, cfg.Defaults)
	studyHandler := handler.NewStudyHandler(studyService, extractionCache)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(recover.New())
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowMethods:  "GET,POST,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept," + middleware.RequestIDHeader,
		ExposeHeaders: middleware.RequestIDHeader,
		MaxAge:        300,
	}))

	app.Get("/health", studyHandler.Health)
	studyHandler.RegisterRoutes(app.Group("/api"))

	// Start server
	go func() {
		appLogger.Info("Starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("env", cfg.Logger.Env),
			zap.String("provider", cfg.LLM.Provider),
			zap.String("model", gateway.Model()))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
