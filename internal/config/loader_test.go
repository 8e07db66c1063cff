package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoadFrom_DefaultsWithoutFiles(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("ANTHROPIC_MODEL", "")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "bedtime-story-api", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.HTTP.Port)
	assert.Equal(t, 120*time.Second, cfg.Server.HTTP.WriteTimeout)
	assert.Equal(t, DefaultAnthropicModel, cfg.LLM.Anthropic.Model)
	assert.Equal(t, 650, cfg.LLM.Anthropic.MaxTokens)
	assert.InDelta(t, 0.7, cfg.LLM.Anthropic.Temperature, 1e-9)
	assert.Equal(t, 60*time.Second, cfg.LLM.Anthropic.Timeout)
	assert.Empty(t, cfg.LLM.Anthropic.APIKey)
	assert.False(t, cfg.Cache.Redis.Enabled)
	assert.False(t, cfg.Messaging.RedisStream.Enabled)
	assert.Equal(t, 100000, cfg.Messaging.RedisStream.MaxLen)
}

func TestLoadFrom_AnthropicEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("ANTHROPIC_MODEL", "claude-custom")

	cfg, err := LoadFrom(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.LLM.Anthropic.APIKey)
	assert.Equal(t, "claude-custom", cfg.LLM.Anthropic.Model)
}

func TestLoadFrom_EnvFileMergesOverBase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "config.yaml", `
app:
  name: story-base
server:
  http:
    port: ${TEST_HTTP_PORT:9090}
observability:
  logging:
    level: info
`)
	writeFile(t, dir, "config.staging.yaml", `
observability:
  logging:
    level: debug
`)
	t.Setenv("APP_ENV", "staging")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "story-base", cfg.App.Name)
	assert.Equal(t, 9090, cfg.Server.HTTP.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")

	assert.Equal(t, "a=value", expandEnv("a=${EXPAND_SET}"))
	assert.Equal(t, "a=value", expandEnv("a=${EXPAND_SET:fallback}"))
	assert.Equal(t, "a=fallback", expandEnv("a=${EXPAND_UNSET_FOR_TEST:fallback}"))
	assert.Equal(t, "a=", expandEnv("a=${EXPAND_UNSET_FOR_TEST}"))
}
