package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/dto"
	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

// EnrichmentInput is what the analysis service sees for one report.
type EnrichmentInput struct {
	Type       string
	Message    string
	Platform   string
	Screenshot []byte
}

// Enrichment is the structured analysis result for a report. A successful
// enrichment always has every field populated (the client substitutes
// defaults for fields the service omitted).
type Enrichment struct {
	Description     string
	Category        string
	Severity        string
	DeveloperAction string
	Confidence      float64
}

// ResourceQuery scopes an external resource lookup.
type ResourceQuery struct {
	Message     string
	Platform    string
	Category    string
	Description string
}

// StoredScreenshot is a persisted screenshot: its serving path plus the
// decoded bytes, which feed the enrichment stage.
type StoredScreenshot struct {
	URL  string
	Data []byte
}

type Enricher interface {
	Enrich(ctx context.Context, in EnrichmentInput) (Enrichment, error)
}

type ResourceSearcher interface {
	FindResources(ctx context.Context, q ResourceQuery) ([]models.Resource, error)
}

type Tracker interface {
	// Track records the report with the external error tracker and returns
	// the event id, or "" when no event was recorded.
	Track(ctx context.Context, report *models.Report) (string, error)
}

type Screenshots interface {
	Save(reportID, payload string) (StoredScreenshot, error)
}

type Store interface {
	Create(report *models.Report) error
	FindSimilar(reportType, category, excludeID string) ([]string, error)
}

// Result is the terminal state of a successful submission flow.
type Result struct {
	Report     *models.Report
	AIEnriched bool
	Similar    []string
	Resources  []models.Resource
}

// Orchestrator runs the ingestion pipeline: validate, persist screenshot,
// enrich, find resources, track, find similar, persist. Only validation and
// the final write are fatal; every other stage degrades to a default.
type Orchestrator struct {
	store       Store
	screenshots Screenshots
	enricher    Enricher
	searcher    ResourceSearcher
	tracker     Tracker
	features    config.Features
}

func New(store Store, screenshots Screenshots, enricher Enricher, searcher ResourceSearcher, tracker Tracker, features config.Features) *Orchestrator {
	return &Orchestrator{
		store:       store,
		screenshots: screenshots,
		enricher:    enricher,
		searcher:    searcher,
		tracker:     tracker,
		features:    features,
	}
}

func (o *Orchestrator) Submit(ctx context.Context, req dto.CreateReportRequest) (*Result, error) {
	span := sentry.StartSpan(ctx, "validate")
	err := validate(req)
	span.Finish()
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:         uuid.NewString(),
		CreatedAt:  time.Now().UTC(),
		Type:       req.Type,
		Message:    req.Message,
		Platform:   defaultString(req.Platform, "web"),
		AppVersion: defaultString(req.AppVersion, "1.0.0"),
		Status:     models.StatusReceived,
	}

	var screenshotData []byte
	if req.Screenshot != "" && o.screenshots != nil {
		out := o.saveScreenshot(ctx, report.ID, req.Screenshot)
		if out.Degraded {
			slog.Warn("screenshot persistence degraded",
				"stage", "screenshot", "report_id", report.ID, "error", out.Reason)
		} else {
			report.ScreenshotURL = &out.Value.URL
			screenshotData = out.Value.Data
		}
	}

	enriched := false
	if o.features.Enrichment && o.enricher != nil {
		out := o.enrich(ctx, EnrichmentInput{
			Type:       report.Type,
			Message:    report.Message,
			Platform:   report.Platform,
			Screenshot: screenshotData,
		})
		if out.Degraded {
			slog.Warn("enrichment degraded",
				"stage", "enrich", "report_id", report.ID, "error", out.Reason)
		} else {
			e := out.Value
			report.Description = &e.Description
			report.Category = &e.Category
			report.Severity = &e.Severity
			report.DeveloperAction = &e.DeveloperAction
			report.Confidence = &e.Confidence
			enriched = true
		}
	}

	var resources []models.Resource
	if o.features.Resources && o.searcher != nil {
		out := o.findResources(ctx, report)
		if out.Degraded {
			slog.Warn("resource lookup degraded",
				"stage", "resources", "report_id", report.ID, "error", out.Reason)
		}
		resources = out.Value
		if len(resources) > 0 {
			if raw, err := json.Marshal(resources); err == nil {
				report.HelpfulResources = raw
			}
		}
	}

	// Tracking and the local similarity query have no data dependency on
	// each other.
	var (
		wg      sync.WaitGroup
		eventID Outcome[string]
		similar Outcome[[]string]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		eventID = o.track(ctx, report)
	}()
	go func() {
		defer wg.Done()
		similar = o.findSimilar(ctx, report)
	}()
	wg.Wait()

	if eventID.Degraded {
		slog.Warn("error tracking degraded",
			"stage", "track", "report_id", report.ID, "error", eventID.Reason)
	} else if eventID.Value != "" {
		id := eventID.Value
		report.SentryEventID = &id
	}
	if similar.Degraded {
		slog.Warn("similarity query degraded",
			"stage", "similar", "report_id", report.ID, "error", similar.Reason)
	}
	if len(similar.Value) > 0 {
		joined := strings.Join(similar.Value, ",")
		report.SimilarReports = &joined
	}

	span = sentry.StartSpan(ctx, "db.query")
	err = o.store.Create(report)
	span.Finish()
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	slog.Info("report stored",
		"report_id", report.ID, "type", report.Type,
		"ai_enriched", enriched, "similar_count", len(similar.Value),
		"resources", len(resources))

	return &Result{
		Report:     report,
		AIEnriched: enriched,
		Similar:    similar.Value,
		Resources:  resources,
	}, nil
}

func (o *Orchestrator) saveScreenshot(ctx context.Context, reportID, payload string) Outcome[StoredScreenshot] {
	span := sentry.StartSpan(ctx, "screenshot.save")
	defer span.Finish()

	shot, err := o.screenshots.Save(reportID, payload)
	if err != nil {
		return Degraded(StoredScreenshot{}, err.Error())
	}
	return Ok(shot)
}

func (o *Orchestrator) enrich(ctx context.Context, in EnrichmentInput) Outcome[Enrichment] {
	span := sentry.StartSpan(ctx, "ai.enrichment")
	defer span.Finish()

	enrichment, err := o.enricher.Enrich(ctx, in)
	if err != nil {
		return Degraded(Enrichment{}, err.Error())
	}
	return Ok(enrichment)
}

func (o *Orchestrator) findResources(ctx context.Context, report *models.Report) Outcome[[]models.Resource] {
	span := sentry.StartSpan(ctx, "resource.search")
	defer span.Finish()

	q := ResourceQuery{
		Message:     report.Message,
		Platform:    report.Platform,
		Category:    report.Type,
		Description: report.Message,
	}
	if report.Category != nil {
		q.Category = *report.Category
	}
	if report.Description != nil {
		q.Description = *report.Description
	}

	resources, err := o.searcher.FindResources(ctx, q)
	if err != nil {
		return Degraded([]models.Resource{}, err.Error())
	}
	return Ok(resources)
}

func (o *Orchestrator) track(ctx context.Context, report *models.Report) Outcome[string] {
	if o.tracker == nil {
		return Ok("")
	}
	span := sentry.StartSpan(ctx, "track.group")
	defer span.Finish()

	eventID, err := o.tracker.Track(ctx, report)
	if err != nil {
		return Degraded("", err.Error())
	}
	return Ok(eventID)
}

func (o *Orchestrator) findSimilar(ctx context.Context, report *models.Report) Outcome[[]string] {
	// Without an assigned category there is nothing to match against.
	if report.Category == nil {
		return Ok([]string(nil))
	}
	span := sentry.StartSpan(ctx, "similar.query")
	defer span.Finish()

	ids, err := o.store.FindSimilar(report.Type, *report.Category, report.ID)
	if err != nil {
		return Degraded([]string(nil), err.Error())
	}
	return Ok(ids)
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
