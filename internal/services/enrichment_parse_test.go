package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseEnrichmentFullResponse(t *testing.T) {
	text := `DESCRIPTION: The user has encountered a network timeout in the profile view.
CATEGORY: network
SEVERITY: high
DEVELOPER_ACTION: Investigate API timeout configuration.
CONFIDENCE: 0.85`

	e := parseEnrichment(text, "profile broken")

	assert.Equal(t, "The user has encountered a network timeout in the profile view.", e.Description)
	assert.Equal(t, "network", e.Category)
	assert.Equal(t, "high", e.Severity)
	assert.Equal(t, "Investigate API timeout configuration.", e.DeveloperAction)
	assert.InDelta(t, 0.85, e.Confidence, 0.001)
}

func TestParseEnrichmentDefaults(t *testing.T) {
	e := parseEnrichment("no structured lines here", "original message")

	assert.Equal(t, "original message", e.Description)
	assert.Equal(t, "unknown", e.Category)
	assert.Equal(t, "medium", e.Severity)
	assert.Equal(t, "Investigate issue", e.DeveloperAction)
	assert.InDelta(t, 0.5, e.Confidence, 0.001)
}

func TestParseEnrichmentLaterKeyOverwrites(t *testing.T) {
	text := "CATEGORY: bug\nCATEGORY: crash"

	e := parseEnrichment(text, "msg")

	assert.Equal(t, "crash", e.Category)
}

func TestParseEnrichmentKeyNormalization(t *testing.T) {
	text := "Developer Action: Check the cache layer."

	e := parseEnrichment(text, "msg")

	assert.Equal(t, "Check the cache layer.", e.DeveloperAction)
}

func TestParseEnrichmentUnknownKeysIgnored(t *testing.T) {
	text := `CATEGORY: bug
NOTES: should be ignored
SEVERITY: low`

	e := parseEnrichment(text, "msg")

	assert.Equal(t, "bug", e.Category)
	assert.Equal(t, "low", e.Severity)
}

func TestParseEnrichmentValueWithColon(t *testing.T) {
	text := "DESCRIPTION: Error code NET::ERR_CONNECTION_TIMED_OUT appears."

	e := parseEnrichment(text, "msg")

	assert.Equal(t, "Error code NET::ERR_CONNECTION_TIMED_OUT appears.", e.Description)
}

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want float64
	}{
		{"valid", "0.7", 0.7},
		{"unparsable", "very sure", 0.5},
		{"empty", "", 0.5},
		{"above one clamps", "1.8", 1.0},
		{"negative clamps", "-0.2", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, parseConfidence(tt.raw), 0.001)
		})
	}
}
