package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/waypoint/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, config.Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default().Store, cfg.Store)
	assert.Equal(t, 2, cfg.ClarifyTolerance)
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
mode: smart
store:
  backend: redis
  redis:
    addr: redis:6379
    ttl: 24h
activities:
  backend: memory
`), 0o644))

	t.Setenv("WAYPOINT_LOG_LEVEL", "debug")
	t.Setenv("WAYPOINT_STORE__REDIS__DB", "3")
	t.Setenv("WAYPOINT_CLARIFY_TOLERANCE", "4")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "smart", cfg.Mode)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 3, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "waypoint:conversation:", cfg.Store.Redis.Prefix, "unset keys keep defaults")
	assert.Equal(t, 4, cfg.ClarifyTolerance)
	assert.Equal(t, "memory", cfg.Activities.Backend)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "waypoint.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: [unclosed"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad mode", func(c *config.Config) { c.Mode = "fast" }},
		{"bad level", func(c *config.Config) { c.LogLevel = "loud" }},
		{"zero tolerance", func(c *config.Config) { c.ClarifyTolerance = 0 }},
		{"bad store", func(c *config.Config) { c.Store.Backend = "s3" }},
		{"redis without addr", func(c *config.Config) { c.Store.Backend = "redis"; c.Store.Redis.Addr = "" }},
		{"bad activities", func(c *config.Config) { c.Activities.Backend = "mongo" }},
		{"postgres without dsn", func(c *config.Config) { c.Activities.Backend = "postgres"; c.Activities.DSN = "" }},
		{"bad port", func(c *config.Config) { c.HTTP.Port = 70000 }},
		{"openai without key", func(c *config.Config) { c.OpenAI.Enabled = true; c.OpenAI.APIKey = "" }},
		{"negative input size", func(c *config.Config) { c.Input.MaxSize = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
