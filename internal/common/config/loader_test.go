package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, "app:\n  version: 1.0.0\n"))
	require.NoError(t, err)

	assert.Equal(t, "sas-panel", cfg.App.Name)
	assert.Equal(t, "ws://127.0.0.1:8585/", cfg.Channel.GetURL())
	assert.Equal(t, 15*time.Second, GetDuration(cfg.Channel.RequestTimeout))
	assert.Equal(t, int64(4<<20), cfg.Channel.MaxMessageBytes)
	assert.Equal(t, "sas:cache", cfg.Cache.Prefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 1.0, cfg.Tracing.SampleRatio)
	assert.Equal(t, "127.0.0.1:8585", cfg.Stub.Listen)
}

func TestLoadFromFile_URLOverridesParts(t *testing.T) {
	cfg, err := LoadFromFile(writeConfig(t, `
channel:
  host: example.org
  port: 9000
  url: wss://panel.example.org/ws
`))
	require.NoError(t, err)
	assert.Equal(t, "wss://panel.example.org/ws", cfg.Channel.GetURL())
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("SAS_CREDENTIALS_USERNAME", "ops")
	t.Setenv("SAS_CHANNEL_REQUEST_TIMEOUT", "500")

	cfg, err := LoadFromFile(writeConfig(t, "credentials:\n  username: admin\n"))
	require.NoError(t, err)
	assert.Equal(t, "ops", cfg.Credentials.Username)
	assert.Equal(t, 500, cfg.Channel.RequestTimeout)
}

func TestLoadFromFile_ExpandsPlaceholders(t *testing.T) {
	t.Setenv("PANEL_SECRET", "hunter2")

	cfg, err := LoadFromFile(writeConfig(t, "credentials:\n  password: ${PANEL_SECRET}\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", cfg.Credentials.Password)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad protocol", "channel:\n  protocol: http\n"},
		{"negative timeout", "channel:\n  request_timeout: -1\n"},
		{"cache without address", "cache:\n  enabled: true\n"},
		{"sample ratio", "tracing:\n  sample_ratio: 2\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
