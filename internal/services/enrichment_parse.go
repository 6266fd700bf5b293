package services

import (
	"strconv"
	"strings"

	"github.com/acceleratedhq/report-api/internal/pipeline"
)

// parseEnrichment extracts the KEY: value lines from the model's response.
// Lines without a colon are skipped, keys are lower-cased with spaces replaced
// by underscores, and a repeated key overwrites the earlier value. Missing or
// unparsable fields fall back to neutral defaults so downstream stages always
// see a complete enrichment.
func parseEnrichment(text, originalMessage string) pipeline.Enrichment {
	fields := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		key = strings.ReplaceAll(strings.ToLower(key), " ", "_")
		fields[key] = strings.TrimSpace(line[idx+1:])
	}

	return pipeline.Enrichment{
		Description:     fieldOr(fields, "description", originalMessage),
		Category:        fieldOr(fields, "category", "unknown"),
		Severity:        fieldOr(fields, "severity", "medium"),
		DeveloperAction: fieldOr(fields, "developer_action", "Investigate issue"),
		Confidence:      parseConfidence(fields["confidence"]),
	}
}

func fieldOr(fields map[string]string, key, fallback string) string {
	if v := fields[key]; v != "" {
		return v
	}
	return fallback
}

func parseConfidence(raw string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0.5
	}
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
