package services

import (
	"context"
	"errors"

	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/getsentry/sentry-go"
)

// SentryTracker sends each report to Sentry so its built-in grouping clusters
// repeated occurrences of the same underlying issue. crash/bug/slow reports
// surface as error events in the Issues view, suggestions as info messages.
// The SDK no-ops when no DSN is configured, so tracking is always attempted.
type SentryTracker struct{}

func NewSentryTracker() *SentryTracker {
	return &SentryTracker{}
}

func (t *SentryTracker) Track(ctx context.Context, report *models.Report) (string, error) {
	// Per-request hub; falls back to a clone of the global hub when the
	// request middleware did not attach one.
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	category := stringOr(report.Category, "unknown")
	severity := stringOr(report.Severity, "medium")
	description := stringOr(report.Description, report.Message)

	var eventID string
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("report_type", report.Type)
		scope.SetTag("platform", report.Platform)
		scope.SetTag("ai_category", category)
		scope.SetTag("severity", severity)

		scope.SetContext("report", map[string]interface{}{
			"original_message": report.Message,
			"ai_description":   description,
			"developer_action": stringOr(report.DeveloperAction, ""),
			"app_version":      report.AppVersion,
		})
		if report.Category != nil {
			scope.SetContext("ai_analysis", map[string]interface{}{
				"description":      description,
				"category":         category,
				"severity":         severity,
				"developer_action": stringOr(report.DeveloperAction, ""),
				"confidence":       floatOr(report.Confidence, 0.5),
			})
		}

		// Reports with the same type, category and platform group together.
		scope.SetFingerprint([]string{report.Type, category, report.Platform})

		var id *sentry.EventID
		switch report.Type {
		case models.TypeCrash:
			id = hub.CaptureException(errors.New("Application Crash: " + description))
		case models.TypeBug:
			id = hub.CaptureException(errors.New("Bug Report: " + description))
		case models.TypeSlow:
			id = hub.CaptureException(errors.New("Performance Issue: " + description))
		default:
			scope.SetLevel(sentry.LevelInfo)
			id = hub.CaptureMessage("User Suggestion: " + description)
		}
		if id != nil {
			eventID = string(*id)
		}
	})

	return eventID, nil
}

func stringOr(s *string, fallback string) string {
	if s != nil && *s != "" {
		return *s
	}
	return fallback
}

func floatOr(f *float64, fallback float64) float64 {
	if f != nil {
		return *f
	}
	return fallback
}
