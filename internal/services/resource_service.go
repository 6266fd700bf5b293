package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acceleratedhq/report-api/internal/config"
	"github.com/acceleratedhq/report-api/internal/models"
	"github.com/acceleratedhq/report-api/internal/pipeline"
)

const maxResourcesPerSource = 3

type scrapeRequest struct {
	URL     string                 `json:"url"`
	Extract map[string]extractSpec `json:"extract"`
}

type extractSpec struct {
	Selector string            `json:"selector"`
	Fields   map[string]string `json:"fields"`
	Limit    int               `json:"limit"`
}

type scrapeResponse struct {
	Data struct {
		Questions []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Votes   string `json:"votes"`
			Answers string `json:"answers"`
		} `json:"questions"`
	} `json:"data"`
}

// YellowcakeSearcher finds troubleshooting resources through the Yellowcake
// content-extraction API. Each lookup is bounded by its own timeout and a
// failing lookup contributes nothing.
type YellowcakeSearcher struct {
	apiURL string
	apiKey string
	client *http.Client
}

func NewYellowcakeSearcher(cfg *config.Config) *YellowcakeSearcher {
	timeout := cfg.SearchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &YellowcakeSearcher{
		apiURL: cfg.YellowcakeAPIURL,
		apiKey: cfg.YellowcakeAPIKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *YellowcakeSearcher) FindResources(ctx context.Context, q pipeline.ResourceQuery) ([]models.Resource, error) {
	query := q.Category + " " + q.Platform + " " + q.Message
	searchURL := "https://stackoverflow.com/search?q=" + strings.ReplaceAll(query, " ", "+")

	resources, err := s.scrapeStackOverflow(ctx, searchURL)
	if err != nil {
		return nil, err
	}
	return resources, nil
}

func (s *YellowcakeSearcher) scrapeStackOverflow(ctx context.Context, searchURL string) ([]models.Resource, error) {
	payload, err := json.Marshal(scrapeRequest{
		URL: searchURL,
		Extract: map[string]extractSpec{
			"questions": {
				Selector: ".question-summary",
				Fields: map[string]string{
					"title":   ".question-hyperlink",
					"url":     ".question-hyperlink@href",
					"votes":   ".vote-count-post",
					"answers": ".status strong",
				},
				Limit: maxResourcesPerSource,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("yellowcake API error: status %d", resp.StatusCode)
	}

	var parsed scrapeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse yellowcake response: %w", err)
	}

	resources := make([]models.Resource, 0, maxResourcesPerSource)
	for _, q := range parsed.Data.Questions {
		if len(resources) >= maxResourcesPerSource {
			break
		}
		title := q.Title
		if title == "" {
			title = "Stack Overflow Solution"
		}
		url := q.URL
		if url != "" && !strings.HasPrefix(url, "http") {
			url = "https://stackoverflow.com" + url
		}
		resources = append(resources, models.Resource{
			Type:    "stackoverflow",
			Title:   title,
			URL:     url,
			Votes:   q.Votes,
			Answers: q.Answers,
		})
	}
	return resources, nil
}
