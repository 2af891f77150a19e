package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIKey, "")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080/v1", cfg.API.BaseURL)
	assert.Zero(t, cfg.API.Timeout)
	assert.Equal(t, 8, cfg.UI.CellWidthPx)
	assert.Equal(t, 500*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Equal(t, 5*time.Second, cfg.UI.ToastDuration)
	assert.Equal(t, 15*time.Minute, cfg.UI.RefreshInterval)
	assert.True(t, cfg.Feeds.ShouldVerify())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.False(t, strings.HasPrefix(cfg.Storage.Path, "~"), "home is expanded")
	assert.True(t, strings.HasSuffix(cfg.Storage.Path, filepath.Join("feeddash", "state.db")))
}

func TestLoadFile(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIKey, "")

	path := writeConfig(t, `
api:
  base_url: https://rss.example.com/v1
  timeout: 10s
storage:
  path: /tmp/feeddash-test/state.db
ui:
  cell_width_px: 10
  search_debounce: 250ms
  refresh_interval: -1s
feeds:
  verify_on_create: false
log:
  level: debug
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://rss.example.com/v1", cfg.API.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.API.Timeout)
	assert.Equal(t, "/tmp/feeddash-test/state.db", cfg.Storage.Path)
	assert.Equal(t, 10, cfg.UI.CellWidthPx)
	assert.Equal(t, 250*time.Millisecond, cfg.UI.SearchDebounce)
	assert.Negative(t, cfg.UI.RefreshInterval)
	assert.False(t, cfg.Feeds.ShouldVerify())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvAPIURL, "http://10.0.0.5:9000/v1")
	t.Setenv(EnvAPIKey, "from-env")

	cfg, err := Load(writeConfig(t, "api:\n  base_url: http://ignored/v1\n"))
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:9000/v1", cfg.API.BaseURL)
	assert.Equal(t, "from-env", cfg.APIKey)
}

func TestValidation(t *testing.T) {
	t.Setenv(EnvAPIURL, "")

	tests := []struct {
		name    string
		content string
	}{
		{"bad scheme", "api:\n  base_url: ftp://example.com\n"},
		{"no host", "api:\n  base_url: http://\n"},
		{"negative timeout", "api:\n  timeout: -1s\n"},
		{"negative cell width", "ui:\n  cell_width_px: -3\n"},
		{"malformed yaml", "api: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	t.Setenv(EnvAPIKey, "secret")

	cfg := Default()
	cfg.API.BaseURL = "https://rss.example.com/v1"
	cfg.APIKey = "secret"
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(cfg, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret", "api key is never written")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.API.BaseURL, loaded.API.BaseURL)
	assert.Equal(t, cfg.UI, loaded.UI)
}
