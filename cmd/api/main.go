package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/handlers"
	"alfredoptarigan/resume-analyzer/internal/models"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx := context.Background()

	// Upload registry
	uploadRepo, err := newUploadRepository(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize upload registry: %v", err)
	}
	log.Printf("✅ Upload registry initialized (%s)\n", cfg.Database.UploadRegistry)

	// Storage
	storageService, err := newStorageService(ctx, cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	log.Printf("✅ Storage initialized (%s)\n", cfg.Storage.Backend)

	// Initialize Gemini AI
	gemini, err := services.NewGeminiGateway(ctx, services.GeminiOptions{
		APIKey:   cfg.Gemini.APIKey,
		Model:    cfg.Gemini.Model,
		Backend:  cfg.Gemini.Backend,
		Project:  cfg.Gemini.Project,
		Location: cfg.Gemini.Location,
	})
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	gateway := services.NewRetryingGateway(gemini, cfg.Gemini.MaxAttempts, cfg.Gemini.Timeout)
	log.Println("✅ Gemini AI initialized successfully")

	// Pipeline events
	events := services.NewNoopPublisher()
	if cfg.Events.RabbitMQURL != "" {
		events, err = services.NewAMQPPublisher(cfg.Events.RabbitMQURL, cfg.Events.Exchange)
		if err != nil {
			log.Fatalf("❌ Failed to connect to RabbitMQ: %v", err)
		}
		log.Println("✅ Pipeline events published to RabbitMQ")
	}

	// Cleanup worker
	cleanup := services.NewCleanupWorker(storageService, uploadRepo, services.CleanupOptions{
		Concurrency:   cfg.Cleanup.Concurrency,
		MaxAge:        cfg.Cleanup.MaxAge,
		SweepInterval: cfg.Cleanup.SweepInterval,
	})
	cleanup.Start(ctx)
	log.Println("✅ Cleanup worker started successfully")

	analyzer := services.NewResumeAnalyzer(
		storageService,
		cleanup,
		services.NewTextExtractor(),
		services.NewResumeValidator(cfg.Analysis.MinWords),
		gateway,
		services.NewResumeComposer(),
		services.NewChromedpRenderer(cfg.Renderer.ChromePath, cfg.Renderer.Timeout),
		events,
		services.AnalyzerOptions{
			Tasks:          services.TaskConfigsFrom(cfg.Generation),
			FallbackLocale: cfg.Analysis.FallbackLocale,
			GraceDelay:     cfg.Cleanup.GraceDelay,
		},
	)
	log.Println("✅ Resume analyzer initialized")

	// Initialize Handlers
	development := cfg.IsDevelopment()
	resumeHandler := handlers.NewResumeHandler(analyzer, storageService, uploadRepo, cfg.Storage.MaxFileSize, development)
	improvementHandler := handlers.NewImprovementHandler(analyzer, services.NewReportExporter(), development)
	uploadHandler := handlers.NewUploadHandler(storageService, uploadRepo, cfg.Storage.MaxFileSize, development)
	statsHandler := handlers.NewStatsHandler(storageService, uploadRepo, development)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Resume Analyzer API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
		// multipart overhead on top of the largest accepted file
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigin,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: cfg.Server.CORSOrigin != "*",
	}))

	// Routes
	api := app.Group("/api")
	api.Use(limiter.New(limiter.Config{
		Max:        cfg.Server.RateLimitMax,
		Expiration: cfg.Server.RateLimitWindow,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.APIResponse{
				Success: false,
				Message: "Too many requests from this IP, please try again later.",
			})
		},
	}))

	// Health check
	api.Get("/health", statsHandler.HandleHealth)

	handlers.RegisterResumeRoutes(api.Group("/resume"), resumeHandler, improvementHandler, uploadHandler, statsHandler)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Resume Analyzer API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/resume/upload-analyze",
				"POST /api/resume/analyze-text",
				"POST /api/resume/upload",
				"POST /api/resume/generate-improvements",
				"POST /api/resume/generate-improved-pdf",
				"POST /api/resume/export-report",
				"GET /api/resume/stats",
				"GET /api/resume/health",
				"GET /api/health",
			},
		})
	})

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(models.APIResponse{
			Success: false,
			Message: "Route not found",
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		cleanup.Stop()
		if err := events.Close(); err != nil {
			log.Printf("⚠️  Failed to close event publisher: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s (%s)\n", addr, cfg.Server.Env)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func newUploadRepository(cfg *config.Config) (repositories.UploadRepository, error) {
	switch cfg.Database.UploadRegistry {
	case "", "memory":
		return repositories.NewMemoryUploadRepository(), nil
	case "postgres":
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		return repositories.NewUploadRepository(db), nil
	default:
		return nil, fmt.Errorf("unknown upload registry %q", cfg.Database.UploadRegistry)
	}
}

func newStorageService(ctx context.Context, cfg *config.Config) (services.StorageService, error) {
	switch cfg.Storage.Backend {
	case "", "local":
		return services.NewLocalStorageService(cfg.Storage.UploadPath, cfg.Storage.AllowedFileTypes)
	case "s3":
		return services.NewS3StorageService(ctx, services.S3Options{
			Bucket:    cfg.Storage.S3Bucket,
			Region:    cfg.Storage.S3Region,
			Prefix:    cfg.Storage.S3Prefix,
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
		}, cfg.Storage.AllowedFileTypes)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	message := "Internal server error"
	if code == fiber.StatusRequestEntityTooLarge {
		message = "File too large"
	} else if code < fiber.StatusInternalServerError {
		message = err.Error()
	}

	return c.Status(code).JSON(models.APIResponse{
		Success: false,
		Message: message,
	})
}
