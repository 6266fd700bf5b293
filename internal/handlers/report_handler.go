package handlers

import (
	"context"
	"errors"

	"github.com/acceleratedhq/report-api/internal/dto"
	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/acceleratedhq/report-api/internal/pipeline"
	"github.com/gofiber/fiber/v2"
)

const listLimit = 50

// Submitter runs the report ingestion pipeline.
type Submitter interface {
	Submit(ctx context.Context, req dto.CreateReportRequest) (*pipeline.Result, error)
}

// Lister reads back stored reports.
type Lister interface {
	List(limit int) ([]models.Report, error)
}

type ReportHandler struct {
	pipeline Submitter
	reports  Lister
}

func NewReportHandler(p Submitter, reports Lister) *ReportHandler {
	return &ReportHandler{pipeline: p, reports: reports}
}

func (h *ReportHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.pipeline.Submit(c.UserContext(), req)
	if err != nil {
		var validationErr *pipeline.ValidationError
		if errors.As(err, &validationErr) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: validationErr.Reason,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to store report",
		})
	}

	resources := result.Resources
	if resources == nil {
		resources = []models.Resource{}
	}

	return c.Status(fiber.StatusCreated).JSON(dto.ReportResponse{
		ReportID:         result.Report.ID,
		Status:           result.Report.Status,
		AIEnriched:       result.AIEnriched,
		Category:         result.Report.Category,
		Severity:         result.Report.Severity,
		SimilarCount:     len(result.Similar),
		HelpfulResources: resources,
	})
}

func (h *ReportHandler) List(c *fiber.Ctx) error {
	reports, err := h.reports.List(listLimit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to retrieve reports",
		})
	}
	if reports == nil {
		reports = []models.Report{}
	}

	return c.JSON(dto.ListReportsResponse{
		Reports: reports,
		Count:   len(reports),
	})
}
