package services

import (
	"context"
	"testing"

	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Without a configured DSN the SDK drops events; tracking must still complete
// without error so the pipeline never blocks on it.
func TestTrackWithoutDSN(t *testing.T) {
	tracker := NewSentryTracker()

	for _, reportType := range []string{"crash", "bug", "slow", "suggestion"} {
		report := &models.Report{
			ID:       "r-1",
			Type:     reportType,
			Message:  "something happened",
			Platform: "web",
		}
		eventID, err := tracker.Track(context.Background(), report)
		require.NoError(t, err)
		assert.Empty(t, eventID)
	}
}

func TestTrackUsesHubFromContext(t *testing.T) {
	tracker := NewSentryTracker()
	hub := sentry.CurrentHub().Clone()
	ctx := sentry.SetHubOnContext(context.Background(), hub)

	eventID, err := tracker.Track(ctx, &models.Report{
		ID: "r-1", Type: "bug", Message: "broken", Platform: "web",
	})
	require.NoError(t, err)
	assert.Empty(t, eventID)
}

func TestTrackerFallbacks(t *testing.T) {
	value := "network"
	assert.Equal(t, "network", stringOr(&value, "unknown"))
	assert.Equal(t, "unknown", stringOr(nil, "unknown"))
	empty := ""
	assert.Equal(t, "unknown", stringOr(&empty, "unknown"))

	conf := 0.9
	assert.InDelta(t, 0.9, floatOr(&conf, 0.5), 0.001)
	assert.InDelta(t, 0.5, floatOr(nil, 0.5), 0.001)
}
