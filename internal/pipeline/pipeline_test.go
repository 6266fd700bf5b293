package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/dto"
	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu          sync.Mutex
	created     []*models.Report
	createErr   error
	similar     []string
	similarErr  error
	gotType     string
	gotCategory string
	gotExclude  string
}

func (s *fakeStore) Create(r *models.Report) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = append(s.created, r)
	return nil
}

func (s *fakeStore) FindSimilar(reportType, category, excludeID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gotType = reportType
	s.gotCategory = category
	s.gotExclude = excludeID
	if s.similarErr != nil {
		return nil, s.similarErr
	}
	return s.similar, nil
}

type fakeEnricher struct {
	result   Enrichment
	err      error
	gotInput EnrichmentInput
	called   bool
}

func (e *fakeEnricher) Enrich(_ context.Context, in EnrichmentInput) (Enrichment, error) {
	e.called = true
	e.gotInput = in
	return e.result, e.err
}

type fakeSearcher struct {
	resources []models.Resource
	err       error
	called    bool
}

func (s *fakeSearcher) FindResources(_ context.Context, q ResourceQuery) ([]models.Resource, error) {
	s.called = true
	return s.resources, s.err
}

type fakeTracker struct {
	mu      sync.Mutex
	eventID string
	err     error
	got     *models.Report
}

func (t *fakeTracker) Track(_ context.Context, r *models.Report) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.got = r
	return t.eventID, t.err
}

type fakeScreenshots struct {
	shot StoredScreenshot
	err  error
}

func (s *fakeScreenshots) Save(reportID, payload string) (StoredScreenshot, error) {
	return s.shot, s.err
}

func enabledFeatures() config.Features {
	return config.Features{Enrichment: true, Resources: true}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name string
		req  dto.CreateReportRequest
	}{
		{"empty message", dto.CreateReportRequest{Type: "bug", Message: ""}},
		{"short message", dto.CreateReportRequest{Type: "bug", Message: "ab"}},
		{"two multibyte runes", dto.CreateReportRequest{Type: "bug", Message: "éé"}},
		{"unknown type", dto.CreateReportRequest{Type: "complaint", Message: "something broke"}},
		{"empty type", dto.CreateReportRequest{Type: "", Message: "something broke"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			o := New(store, nil, nil, nil, nil, config.Features{})

			result, err := o.Submit(context.Background(), tt.req)

			require.Error(t, err)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Nil(t, result)
			assert.Empty(t, store.created, "no record must be stored on validation failure")
		})
	}
}

func TestSubmitStoresRecordWithDefaults(t *testing.T) {
	store := &fakeStore{}
	o := New(store, nil, nil, nil, nil, config.Features{})

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type:    "bug",
		Message: "App freezes on save",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	report := store.created[0]

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, models.StatusReceived, report.Status)
	assert.Equal(t, "bug", report.Type)
	assert.Equal(t, "App freezes on save", report.Message)
	assert.Equal(t, "web", report.Platform)
	assert.Equal(t, "1.0.0", report.AppVersion)
	assert.False(t, report.CreatedAt.IsZero())

	assert.False(t, result.AIEnriched)
	assert.Nil(t, result.Report.Category)
	assert.Empty(t, result.Similar)
}

func TestSubmitThreeMultibyteRunesAccepted(t *testing.T) {
	store := &fakeStore{}
	o := New(store, nil, nil, nil, nil, config.Features{})

	_, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "ééé",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
}

func TestSubmitUniqueIDs(t *testing.T) {
	store := &fakeStore{}
	o := New(store, nil, nil, nil, nil, config.Features{})

	seen := make(map[string]bool)
	for i := 0; i < 20; i++ {
		result, err := o.Submit(context.Background(), dto.CreateReportRequest{
			Type: "slow", Message: "spinner forever",
		})
		require.NoError(t, err)
		assert.False(t, seen[result.Report.ID], "report ids must be unique")
		seen[result.Report.ID] = true
	}
}

func TestSubmitEnrichmentApplied(t *testing.T) {
	store := &fakeStore{}
	enricher := &fakeEnricher{result: Enrichment{
		Description:     "The application hangs during save.",
		Category:        "ui_issue",
		Severity:        "high",
		DeveloperAction: "Investigate the save handler.",
		Confidence:      0.9,
	}}
	o := New(store, nil, enricher, nil, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "App freezes on save", Platform: "ios",
	})

	require.NoError(t, err)
	assert.True(t, result.AIEnriched)
	report := store.created[0]
	require.NotNil(t, report.Category)
	assert.Equal(t, "ui_issue", *report.Category)
	require.NotNil(t, report.Severity)
	assert.Equal(t, "high", *report.Severity)
	require.NotNil(t, report.Confidence)
	assert.InDelta(t, 0.9, *report.Confidence, 0.001)

	assert.Equal(t, "bug", enricher.gotInput.Type)
	assert.Equal(t, "ios", enricher.gotInput.Platform)
}

func TestSubmitEnrichmentFailureIsSoft(t *testing.T) {
	store := &fakeStore{}
	enricher := &fakeEnricher{err: errors.New("gemini timeout")}
	o := New(store, nil, enricher, nil, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "crash", Message: "boom on startup",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.False(t, result.AIEnriched)
	assert.Nil(t, store.created[0].Category)
	assert.Nil(t, store.created[0].Description)
}

func TestSubmitResourceFailureKeepsEnrichment(t *testing.T) {
	store := &fakeStore{}
	enricher := &fakeEnricher{result: Enrichment{
		Description: "d", Category: "network", Severity: "medium",
		DeveloperAction: "a", Confidence: 0.7,
	}}
	searcher := &fakeSearcher{err: errors.New("yellowcake unreachable")}
	o := New(store, nil, enricher, searcher, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "requests time out",
	})

	require.NoError(t, err)
	assert.True(t, searcher.called)
	assert.True(t, result.AIEnriched)
	assert.Empty(t, result.Resources)
	assert.Nil(t, store.created[0].HelpfulResources)
}

func TestSubmitResourcesPersisted(t *testing.T) {
	store := &fakeStore{}
	enricher := &fakeEnricher{result: Enrichment{
		Description: "d", Category: "network", Severity: "medium",
		DeveloperAction: "a", Confidence: 0.7,
	}}
	searcher := &fakeSearcher{resources: []models.Resource{
		{Type: "stackoverflow", Title: "Fix timeouts", URL: "https://stackoverflow.com/q/1"},
	}}
	o := New(store, nil, enricher, searcher, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "requests time out",
	})

	require.NoError(t, err)
	require.Len(t, result.Resources, 1)
	assert.NotEmpty(t, store.created[0].HelpfulResources)
}

func TestSubmitSimilarReports(t *testing.T) {
	store := &fakeStore{similar: []string{"a", "b", "c"}}
	enricher := &fakeEnricher{result: Enrichment{
		Description: "d", Category: "crash", Severity: "critical",
		DeveloperAction: "a", Confidence: 0.8,
	}}
	o := New(store, nil, enricher, nil, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "crash", Message: "segfault on launch",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, result.Similar)
	assert.Equal(t, "crash", store.gotType)
	assert.Equal(t, "crash", store.gotCategory)
	assert.Equal(t, result.Report.ID, store.gotExclude, "own id must be excluded from the similarity query")
	require.NotNil(t, store.created[0].SimilarReports)
	assert.Equal(t, "a,b,c", *store.created[0].SimilarReports)
}

func TestSubmitNoSimilarWithoutCategory(t *testing.T) {
	store := &fakeStore{similar: []string{"a"}}
	o := New(store, nil, nil, nil, nil, config.Features{})

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "App freezes on save", Platform: "ios",
	})

	require.NoError(t, err)
	assert.Empty(t, result.Similar)
	assert.Empty(t, store.gotType, "similarity query must not run without an assigned category")
}

func TestSubmitTrackerEventIDPersisted(t *testing.T) {
	store := &fakeStore{}
	tracker := &fakeTracker{eventID: "abc123"}
	o := New(store, nil, nil, nil, tracker, config.Features{})

	_, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "suggestion", Message: "Add dark mode",
	})

	require.NoError(t, err)
	require.NotNil(t, tracker.got)
	assert.Equal(t, "suggestion", tracker.got.Type)
	require.NotNil(t, store.created[0].SentryEventID)
	assert.Equal(t, "abc123", *store.created[0].SentryEventID)
}

func TestSubmitTrackerFailureIsSoft(t *testing.T) {
	store := &fakeStore{}
	tracker := &fakeTracker{err: errors.New("sentry unreachable")}
	o := New(store, nil, nil, nil, tracker, config.Features{})

	_, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "broken button",
	})

	require.NoError(t, err)
	require.Len(t, store.created, 1)
	assert.Nil(t, store.created[0].SentryEventID)
}

func TestSubmitScreenshotDegradedContinues(t *testing.T) {
	store := &fakeStore{}
	screens := &fakeScreenshots{err: errors.New("disk full")}
	enricher := &fakeEnricher{result: Enrichment{
		Description: "d", Category: "bug", Severity: "low",
		DeveloperAction: "a", Confidence: 0.6,
	}}
	o := New(store, screens, enricher, nil, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "save fails", Screenshot: "aGVsbG8=",
	})

	require.NoError(t, err)
	assert.Nil(t, result.Report.ScreenshotURL)
	assert.Empty(t, enricher.gotInput.Screenshot, "no image passes to enrichment when persistence fails")
	require.Len(t, store.created, 1)
}

func TestSubmitScreenshotStored(t *testing.T) {
	store := &fakeStore{}
	screens := &fakeScreenshots{shot: StoredScreenshot{
		URL: "/screenshots/x.png", Data: []byte("png-bytes"),
	}}
	enricher := &fakeEnricher{result: Enrichment{
		Description: "d", Category: "ui_issue", Severity: "low",
		DeveloperAction: "a", Confidence: 0.6,
	}}
	o := New(store, screens, enricher, nil, nil, enabledFeatures())

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "misaligned layout", Screenshot: "aGVsbG8=",
	})

	require.NoError(t, err)
	require.NotNil(t, result.Report.ScreenshotURL)
	assert.Equal(t, "/screenshots/x.png", *result.Report.ScreenshotURL)
	assert.Equal(t, []byte("png-bytes"), enricher.gotInput.Screenshot)
}

func TestSubmitPersistFailureIsFatal(t *testing.T) {
	store := &fakeStore{createErr: errors.New("connection refused")}
	o := New(store, nil, nil, nil, nil, config.Features{})

	result, err := o.Submit(context.Background(), dto.CreateReportRequest{
		Type: "bug", Message: "App freezes on save",
	})

	require.Error(t, err)
	var persistErr *PersistenceError
	require.ErrorAs(t, err, &persistErr)
	assert.Nil(t, result)
}
