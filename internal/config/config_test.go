package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"escrutinio/internal/models"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Setenv("ESCRUTINIO_PAYLOAD_URL", "http://feed.test/{dispatch}.csv")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 60*time.Second, cfg.PollInterval)
	assert.Equal(t, 8, cfg.ResolveConcurrency)
	assert.Equal(t, "iso-8859-1", cfg.Encoding)
	require.Len(t, cfg.Contests, 1)

	c := cfg.Contests[0]
	assert.Equal(t, "cyl", c.ID)
	assert.Equal(t, "http://feed.test/{dispatch}.csv", c.PayloadURL)
	assert.Equal(t, models.GeoKey("avila"), c.Subdivisions["05"])
	assert.Len(t, c.Subdivisions, 9)
	assert.Equal(t, []string{"14:00", "18:00", "20:00"}, c.TurnoutLabels)
}

func TestLoadRequiresPayloadURL(t *testing.T) {
	t.Setenv("ESCRUTINIO_PAYLOAD_URL", "")

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "payload_url")
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
http_addr: ":9000"
poll_interval: 30s
encoding: windows-1252
log_level: debug
contests:
  - id: and
    name: Andalucía
    top_key: andalucia
    subdivisions:
      "04": almeria
      "11": cadiz
    payload_url: http://feed.test/and/{dispatch}
    baseline_url: http://feed.test/and/2018
    turnout_labels: ["11:00", "17:00"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.PollInterval)
	assert.Equal(t, "windows-1252", cfg.Encoding)
	require.Len(t, cfg.Contests, 1)
	assert.Equal(t, models.GeoKey("cadiz"), cfg.Contests[0].Subdivisions["11"])
	assert.Equal(t, []string{"11:00", "17:00"}, cfg.Contests[0].TurnoutLabels)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("PORT", "7000")
	t.Setenv("DATA_DIR", "/tmp/pb")
	t.Setenv("ESCRUTINIO_PAYLOAD_URL", "http://feed.test/p")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.HTTPAddr)
	assert.Equal(t, "/tmp/pb", cfg.DataDir)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad encoding", "encoding: ebcdic\ncontests: [{id: a, top_key: t, payload_url: http://x}]"},
		{"short interval", "poll_interval: 10ms\ncontests: [{id: a, top_key: t, payload_url: http://x}]"},
		{"bad level", "log_level: loud\ncontests: [{id: a, top_key: t, payload_url: http://x}]"},
		{"duplicate ids", "contests: [{id: a, top_key: t, payload_url: http://x}, {id: a, top_key: t, payload_url: http://y}]"},
		{"missing top key", "contests: [{id: a, payload_url: http://x}]"},
		{"subdivision reuses top key", "contests: [{id: a, top_key: t, payload_url: http://x, subdivisions: {'01': t}}]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{LogLevel: "warn"}
	logger, err := cfg.NewLogger(false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	logger, err = cfg.NewLogger(true)
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.DebugLevel))
}
