package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/database"
	"github.com/acceleratedhq/report-api/internal/handlers"
	"github.com/acceleratedhq/report-api/internal/logging"
	"github.com/acceleratedhq/report-api/internal/middleware"
	"github.com/acceleratedhq/report-api/internal/pipeline"
	"github.com/acceleratedhq/report-api/internal/routes"
	"github.com/acceleratedhq/report-api/internal/services"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

func main() {
	// Structured logging (JSON to stdout)
	logging.Setup()

	cfg := config.Load()

	if cfg.DBPassword == "" {
		slog.Error("DB_PASSWORD environment variable is required")
		os.Exit(1)
	}

	// Database
	if err := database.Connect(cfg); err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(database.DB)
	slog.SetDefault(slog.New(logging.NewMultiHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}),
		pgLogHandler,
	)))

	// Log cleanup (30-day retention)
	cleanupDone := make(chan struct{})
	logging.StartCleanup(database.DB, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: cfg.TracesSampleRate,
			Environment:      cfg.Environment,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		} else {
			slog.Info("sentry monitoring enabled")
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		slog.Warn("sentry monitoring disabled (set SENTRY_DSN to enable)")
	}

	// Optional enrichment and resource-lookup stages
	features := cfg.Features()

	var enricher pipeline.Enricher
	if features.Enrichment {
		geminiEnricher, err := services.NewGeminiEnricher(cfg)
		if err != nil {
			slog.Error("gemini client init failed, enrichment disabled", "error", err)
			features.Enrichment = false
		} else {
			enricher = geminiEnricher
			slog.Info("gemini enrichment enabled", "model", cfg.GeminiModel)
		}
	} else {
		slog.Warn("gemini enrichment disabled (set GEMINI_API_KEY to enable)")
	}

	var searcher pipeline.ResourceSearcher
	if features.Resources {
		searcher = services.NewYellowcakeSearcher(cfg)
		slog.Info("yellowcake resource lookup enabled")
	} else {
		slog.Warn("yellowcake resource lookup disabled (set YELLOWCAKE_API_KEY to enable)")
	}

	// Services
	reportService := services.NewReportService(database.DB)
	screenshotService := services.NewScreenshotService(cfg.ScreenshotsDir)
	tracker := services.NewSentryTracker()

	orchestrator := pipeline.New(reportService, screenshotService, enricher, searcher, tracker, features)

	// Handlers
	reportHandler := handlers.NewReportHandler(orchestrator, reportService)
	healthHandler := handlers.NewHealthHandler()

	// Fiber app
	app := newServerApp(cfg)

	// Routes
	routes.Setup(app, cfg, reportHandler, healthHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-quit
	slog.Info("shutting down server...")

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	if err := app.Shutdown(); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := database.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			slog.Error("database close error", "error", err)
		}
	}

	slog.Info("server stopped")
}

// newServerApp builds the Fiber app with the global middleware chain. Recover
// must be registered before sentryfiber: sentryfiber's deferred handler then
// runs first on a panic, captures the event, and repanics into recover, which
// turns it into a 500.
func newServerApp(cfg *config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    4 * 1024 * 1024,
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(requestid.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${ip} | ${method} | ${path}\n",
	}))
	app.Use(middleware.CORS(cfg))
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		return c.Next()
	})

	return app
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	// Only expose error details for client errors (4xx), not server errors (5xx)
	if code >= 500 {
		slog.Error("unhandled server error", "method", c.Method(), "path", c.Path(), "error", err.Error())
		message = "Internal server error"
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}
