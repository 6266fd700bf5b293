package dto

import "github.com/acceleratedhq/report-api/internal/models"

type CreateReportRequest struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	Platform   string `json:"platform"`
	AppVersion string `json:"app_version"`
	Screenshot string `json:"screenshot"`
}

type ReportResponse struct {
	ReportID         string            `json:"report_id"`
	Status           string            `json:"status"`
	AIEnriched       bool              `json:"ai_enriched"`
	Category         *string           `json:"category"`
	Severity         *string           `json:"severity"`
	SimilarCount     int               `json:"similar_count"`
	HelpfulResources []models.Resource `json:"helpful_resources"`
}

type ListReportsResponse struct {
	Reports []models.Report `json:"reports"`
	Count   int             `json:"count"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}
