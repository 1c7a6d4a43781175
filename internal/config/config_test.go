package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 50, cfg.Chat.ThreadPageSize)
	assert.Equal(t, time.Duration(0), cfg.Chat.RefreshInterval)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	content := `
backend:
  base_url: https://api.example.com
  timeout: 5s
chat:
  thread_page_size: 20
  refresh_interval: 15s
gateway:
  port: 4000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("GATEWAY_PORT", "4100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 20, cfg.Chat.ThreadPageSize)
	assert.Equal(t, 15*time.Second, cfg.Chat.RefreshInterval)
	assert.Equal(t, 4100, cfg.Gateway.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadDotEnv_DoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("BACKEND_URL=http://from-file\nCHAT_TEST_ONLY=file\n"), 0o600))
	t.Setenv("BACKEND_URL", "http://from-env")
	t.Setenv("CHAT_TEST_ONLY", "")
	os.Unsetenv("CHAT_TEST_ONLY")

	loaded := LoadDotEnv(dir)

	assert.Len(t, loaded, 1)
	assert.Equal(t, "http://from-env", os.Getenv("BACKEND_URL"))
	assert.Equal(t, "file", os.Getenv("CHAT_TEST_ONLY"))
}

func TestLoad_ExpandsHomeInPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("SESSION_DB_PATH", "~/.freelancer-chat/test.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".freelancer-chat", "test.db"), cfg.Session.DBPath)
	assert.Equal(t, 120, cfg.Gateway.RateLimitPerMinute)
}
