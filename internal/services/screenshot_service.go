package services

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/acceleratedhq/report-api/internal/pipeline"
)

// ScreenshotService decodes inline base64 screenshots and persists them on
// disk under a name derived from the report id.
type ScreenshotService struct {
	dir string
}

func NewScreenshotService(dir string) *ScreenshotService {
	return &ScreenshotService{dir: dir}
}

func (s *ScreenshotService) Save(reportID, payload string) (pipeline.StoredScreenshot, error) {
	data, err := decodeScreenshot(payload)
	if err != nil {
		return pipeline.StoredScreenshot{}, err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return pipeline.StoredScreenshot{}, fmt.Errorf("failed to create screenshots dir: %w", err)
	}

	filename := reportID + ".png"
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return pipeline.StoredScreenshot{}, fmt.Errorf("failed to write screenshot: %w", err)
	}

	return pipeline.StoredScreenshot{
		URL:  "/screenshots/" + filename,
		Data: data,
	}, nil
}

// decodeScreenshot strips an optional data-URI header before base64 decoding,
// so payloads with and without the prefix produce the same bytes.
func decodeScreenshot(payload string) ([]byte, error) {
	if strings.HasPrefix(payload, "data:image") {
		if idx := strings.Index(payload, ","); idx >= 0 {
			payload = payload[idx+1:]
		}
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(payload))
	if err != nil {
		return nil, fmt.Errorf("invalid screenshot payload: %w", err)
	}
	return data, nil
}
