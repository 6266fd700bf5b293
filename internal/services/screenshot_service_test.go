package services

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeScreenshotPrefixIdempotence(t *testing.T) {
	raw := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(raw)

	plain, err := decodeScreenshot(encoded)
	require.NoError(t, err)

	prefixed, err := decodeScreenshot("data:image/png;base64," + encoded)
	require.NoError(t, err)

	assert.Equal(t, raw, plain)
	assert.Equal(t, plain, prefixed, "payloads with and without the data-URI prefix must decode identically")
}

func TestDecodeScreenshotInvalidPayload(t *testing.T) {
	_, err := decodeScreenshot("not!!valid__base64")
	assert.Error(t, err)
}

func TestScreenshotSave(t *testing.T) {
	dir := t.TempDir()
	svc := NewScreenshotService(dir)
	raw := []byte("fake image bytes")
	encoded := base64.StdEncoding.EncodeToString(raw)

	shot, err := svc.Save("report-123", encoded)
	require.NoError(t, err)

	assert.Equal(t, "/screenshots/report-123.png", shot.URL)
	assert.Equal(t, raw, shot.Data)

	written, err := os.ReadFile(filepath.Join(dir, "report-123.png"))
	require.NoError(t, err)
	assert.Equal(t, raw, written)
}

func TestScreenshotSaveInvalidPayload(t *testing.T) {
	svc := NewScreenshotService(t.TempDir())

	_, err := svc.Save("report-123", "%%%not-base64%%%")
	assert.Error(t, err)
}
