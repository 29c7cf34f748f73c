package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.Equal(t, "router.db", cfg.Database.DSN)
	assert.Equal(t, "sim", cfg.Transport.Mode)
	assert.False(t, cfg.Auth.Enabled)
	assert.EqualValues(t, 1, cfg.Sim.Seed)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("AUTH_ENABLED", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.True(t, cfg.Auth.Enabled)
}

func TestLoadConfig_FileViaEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
server:
  port: "7070"
transport:
  mode: openai
providers:
  - id: p1
    vendor: testvendor
    enabled: true
    quality_score: 0.8
    models:
      - id: p1-small
        tier: 1
    limits:
      requests_per_minute: 10
      tokens_per_minute: 1000
      max_concurrent: 2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Server.Port)
	assert.Equal(t, "openai", cfg.Transport.Mode)
	require.Len(t, cfg.Providers, 1)
	assert.Equal(t, "p1", cfg.Providers[0].ID)
	assert.Equal(t, 2, cfg.Providers[0].Limits.MaxConcurrent)
	assert.InDelta(t, 0.8, cfg.Providers[0].QualityScore, 0.001)
}

func TestLoadConfig_ResolvesEnvAPIKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	content := []byte(`
transport:
  mode: openai
  endpoints:
    openai-main:
      base_url: "https://api.openai.com/v1"
      api_key: "ENV:TEST_UPSTREAM_KEY"
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("TEST_UPSTREAM_KEY", "sk-resolved")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "sk-resolved", cfg.Transport.Endpoints["openai-main"].APIKey)
}
