package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CODEGENESIS_CONFIG_PATH", "")
	t.Setenv("API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
	require.Equal(t, 1, cfg.Lifecycle.SummarizeEvery)
	require.Equal(t, "sqlite", cfg.Storage.Backend)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: 9090
storage:
  backend: redis
redis:
  addr: redis:6379
generation:
  chat_model: file-model
  timeout: 30s
  language: Chinese
lifecycle:
  summarize_every: 3
`), 0o600))

	t.Setenv("CODEGENESIS_CONFIG_PATH", path)
	t.Setenv("CODEGENESIS_GENERATION_CHAT_MODEL", "env-model")
	t.Setenv("CODEGENESIS_GENERATION_CODE_TIMEOUT", "10m")
	t.Setenv("API_KEY", "fallback-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "redis", cfg.Storage.Backend)
	require.Equal(t, "redis:6379", cfg.Redis.Addr)
	require.Equal(t, "env-model", cfg.Generation.ChatModel)
	require.Equal(t, 30*time.Second, cfg.Generation.Timeout)
	require.Equal(t, 10*time.Minute, cfg.Generation.CodeTimeout)
	require.Equal(t, "Chinese", cfg.Generation.Language)
	require.Equal(t, "fallback-key", cfg.Generation.APIKey)
	require.Equal(t, 3, cfg.Lifecycle.SummarizeEvery)
}

func TestLoad_APIKeyPrecedence(t *testing.T) {
	t.Setenv("CODEGENESIS_CONFIG_PATH", "")
	t.Setenv("API_KEY", "fallback-key")
	t.Setenv("CODEGENESIS_GENERATION_API_KEY", "primary-key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "primary-key", cfg.Generation.APIKey)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("CODEGENESIS_CONFIG_PATH", "")

	t.Run("port", func(t *testing.T) {
		t.Setenv("CODEGENESIS_SERVER_PORT", "eighty")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("transport", func(t *testing.T) {
		t.Setenv("CODEGENESIS_TRANSPORT", "carrier-pigeon")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("auth without token", func(t *testing.T) {
		t.Setenv("CODEGENESIS_AUTH_ENABLED", "true")
		_, err := Load()
		require.Error(t, err)
	})
	t.Run("duration", func(t *testing.T) {
		t.Setenv("CODEGENESIS_GENERATION_TIMEOUT", "soon")
		_, err := Load()
		require.Error(t, err)
	})
}
