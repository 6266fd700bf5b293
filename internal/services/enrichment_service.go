package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/pipeline"
	"google.golang.org/genai"
)

const enrichmentPrompt = `You are a professional software quality assurance analyst providing technical analysis for engineering teams.

INPUT DATA:
- Report Type: %s
- User Message: "%s"
- Platform: %s%s

Provide a formal, standardized analysis with exactly these fields:

1. DESCRIPTION: 2-3 professional sentences summarizing the issue. If a screenshot is attached, reference specific UI elements, error states, or visual indicators.
2. CATEGORY: select ONE from: crash | performance | bug | feature_request | ui_issue | network | data_issue (exact lowercase).
3. SEVERITY: select ONE from: critical | high | medium | low.
   CRITICAL: complete failure, data loss, security issue. HIGH: major functionality unavailable, no workaround. MEDIUM: feature impaired, workaround exists. LOW: minor or cosmetic.
4. DEVELOPER_ACTION: 1-2 specific, actionable technical recommendations in imperative voice.
5. CONFIDENCE: numerical score 0.0 to 1.0.

OUTPUT FORMAT (MANDATORY):

DESCRIPTION: [technical summary]
CATEGORY: [category]
SEVERITY: [severity]
DEVELOPER_ACTION: [recommendations]
CONFIDENCE: [0.0-1.0]

Use formal, professional language. Be specific and technical.`

// GeminiEnricher analyzes a report (and optional screenshot) with the Gemini
// API and returns the structured enrichment.
type GeminiEnricher struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

func NewGeminiEnricher(cfg *config.Config) (*GeminiEnricher, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GeminiEnricher{
		client:  client,
		model:   cfg.GeminiModel,
		timeout: timeout,
	}, nil
}

func (e *GeminiEnricher) Enrich(ctx context.Context, in pipeline.EnrichmentInput) (pipeline.Enrichment, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	visualNote := ""
	if len(in.Screenshot) > 0 {
		visualNote = "\n- Visual Evidence: screenshot attached for analysis"
	}
	prompt := fmt.Sprintf(enrichmentPrompt, in.Type, in.Message, in.Platform, visualNote)

	parts := []*genai.Part{genai.NewPartFromText(prompt)}
	if len(in.Screenshot) > 0 {
		parts = append(parts, genai.NewPartFromBytes(in.Screenshot, "image/png"))
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, nil)
	if err != nil {
		return pipeline.Enrichment{}, fmt.Errorf("gemini enrichment failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return pipeline.Enrichment{}, errors.New("empty response from gemini")
	}

	return parseEnrichment(text, in.Message), nil
}
