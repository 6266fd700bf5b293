package handlers

import (
	"time"

	"github.com/acceleratedhq/report-api/internal/database"
	"github.com/acceleratedhq/report-api/internal/dto"
	"github.com/gofiber/fiber/v2"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"service": "Accelerated Report API",
	})
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
	})
}

// Boom intentionally panics so Sentry capture can be verified end to end.
func (h *HealthHandler) Boom(c *fiber.Ctx) error {
	panic("Boom! This is a test error for Sentry.")
}
