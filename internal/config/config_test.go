package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	// Explicit missing file is an error; empty path falls back to defaults.
	assert.Error(t, err)

	cfg, err = Load("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "reelhouse.db", cfg.Database.DSN)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 15*time.Minute, cfg.Playback.DefaultTTL)
	assert.Equal(t, time.Hour, cfg.Playback.MaxTTL)
	assert.Equal(t, 30*time.Second, cfg.Playback.HeartbeatInterval)
	assert.True(t, cfg.Guard.Enabled)
	assert.Equal(t, "memory", cfg.Guard.Store)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
playback:
  default_ttl: 5m
  max_ttl: 30m
guard:
  store: redis
  redis_addr: localhost:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Minute, cfg.Playback.DefaultTTL)
	assert.Equal(t, 30*time.Minute, cfg.Playback.MaxTTL)
	assert.Equal(t, "redis", cfg.Guard.Store)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("REELHOUSE_SERVER_PORT", "9999")
	t.Setenv("REELHOUSE_LOGGING_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		require.NoError(t, v.Unmarshal(&cfg))
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"bad driver", func(c *Config) { c.Database.Driver = "oracle" }, "database.driver"},
		{"empty dsn", func(c *Config) { c.Database.DSN = "" }, "database.dsn"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"zero ttl", func(c *Config) { c.Playback.DefaultTTL = 0 }, "playback.default_ttl"},
		{"max below default", func(c *Config) { c.Playback.MaxTTL = time.Second }, "playback.max_ttl"},
		{"zero heartbeat", func(c *Config) { c.Playback.HeartbeatInterval = 0 }, "playback.heartbeat_interval"},
		{"empty media base", func(c *Config) { c.Playback.MediaBaseURL = "" }, "playback.media_base_url"},
		{"zero grant retention", func(c *Config) { c.Playback.GrantRetention = 0 }, "playback.grant_retention"},
		{"bad guard store", func(c *Config) { c.Guard.Store = "etcd" }, "guard.store"},
		{"redis without addr", func(c *Config) { c.Guard.Store = "redis" }, "guard.redis_addr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
