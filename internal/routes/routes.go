package routes

import (
	"time"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/handlers"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	reportHandler *handlers.ReportHandler,
	healthHandler *handlers.HealthHandler,
) {
	app.Get("/", healthHandler.Root)
	app.Get("/health", healthHandler.Check)
	app.Get("/boom", healthHandler.Boom)

	// Submissions: 60 req/min per IP
	reports := app.Group("/reports")
	reports.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	reports.Post("/", reportHandler.Create)
	reports.Get("/", reportHandler.List)

	// Stored screenshots, served by the path written into screenshot_url.
	app.Static("/screenshots", cfg.ScreenshotsDir)
}
