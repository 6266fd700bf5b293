package services

import (
	"encoding/json"
	"fmt"

	"github.com/acceleratedhq/report-api/internal/models"
	"gorm.io/gorm"
)

const similarityWindow = 10

// ReportService is the durable store for finished reports plus the local
// similarity query.
type ReportService struct {
	db *gorm.DB
}

func NewReportService(db *gorm.DB) *ReportService {
	return &ReportService{db: db}
}

// Create writes the full report row. This is the authoritative output of the
// pipeline; a failure here is fatal for the request.
func (s *ReportService) Create(report *models.Report) error {
	if err := s.db.Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// FindSimilar scans the most recent reports of the same type and collects up
// to 3 ids whose stored category matches. A cheap local approximation; real
// grouping happens in Sentry.
func (s *ReportService) FindSimilar(reportType, category, excludeID string) ([]string, error) {
	var rows []models.Report
	err := s.db.Model(&models.Report{}).
		Select("id", "category").
		Where("type = ? AND category IS NOT NULL", reportType).
		Order("created_at DESC").
		Limit(similarityWindow).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return matchSimilar(rows, category, excludeID), nil
}

func matchSimilar(rows []models.Report, category, excludeID string) []string {
	var similar []string
	for _, row := range rows {
		if row.ID == excludeID {
			continue
		}
		if row.Category != nil && *row.Category == category {
			similar = append(similar, row.ID)
		}
		if len(similar) >= 3 {
			break
		}
	}
	return similar
}

// List returns the most recent reports, newest first. A corrupted
// helpful_resources blob is surfaced as null rather than failing the listing.
func (s *ReportService) List(limit int) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.Order("created_at DESC").Limit(limit).Find(&reports).Error
	if err != nil {
		return nil, err
	}

	sanitizeResources(reports)
	return reports, nil
}

func sanitizeResources(reports []models.Report) {
	for i := range reports {
		if len(reports[i].HelpfulResources) > 0 && !json.Valid(reports[i].HelpfulResources) {
			reports[i].HelpfulResources = nil
		}
	}
}
