package models

import (
	"time"

	"gorm.io/datatypes"
)

// Report types accepted at submission.
const (
	TypeCrash      = "crash"
	TypeSlow       = "slow"
	TypeBug        = "bug"
	TypeSuggestion = "suggestion"
)

// StatusReceived is the only lifecycle status assigned by ingestion.
const StatusReceived = "received"

// Report is one enriched feedback submission.
type Report struct {
	ID               string         `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt        time.Time      `gorm:"not null;index" json:"created_at"`
	Type             string         `gorm:"not null;size:20;index" json:"type"`
	Message          string         `gorm:"type:text;not null" json:"message"`
	Platform         string         `gorm:"size:50" json:"platform"`
	AppVersion       string         `gorm:"size:50" json:"app_version"`
	Status           string         `gorm:"not null;size:20;default:'received'" json:"status"`
	Description      *string        `gorm:"type:text" json:"description"`
	Category         *string        `gorm:"size:50;index" json:"category"`
	Severity         *string        `gorm:"size:20" json:"severity"`
	DeveloperAction  *string        `gorm:"type:text" json:"developer_action"`
	Confidence       *float64       `json:"confidence"`
	SimilarReports   *string        `gorm:"type:text" json:"similar_reports"`
	HelpfulResources datatypes.JSON `gorm:"type:jsonb" json:"helpful_resources"`
	SentryEventID    *string        `gorm:"size:64" json:"sentry_event_id"`
	ScreenshotURL    *string        `gorm:"size:255" json:"screenshot_url"`
}

// Resource is one external troubleshooting link attached to a report.
type Resource struct {
	Type    string `json:"type"`
	Title   string `json:"title"`
	URL     string `json:"url"`
	Votes   string `json:"votes,omitempty"`
	Answers string `json:"answers,omitempty"`
}
