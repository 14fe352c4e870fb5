// Package config provides configuration management for reelhouse using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultServerPort        = 8080
	defaultServerTimeout     = 30 * time.Second
	defaultShutdownTimeout   = 10 * time.Second
	defaultMaxOpenConns      = 25
	defaultMaxIdleConns      = 10
	defaultConnMaxIdleTime   = 30 * time.Minute
	defaultGrantTTL          = 15 * time.Minute
	defaultMaxGrantTTL       = time.Hour
	defaultHeartbeatInterval = 30 * time.Second
	defaultSweepInterval     = time.Minute
	defaultSinkBufferSize    = 1024
	defaultSinkWriteTimeout  = 5 * time.Second
	defaultTrackRateLimit    = 120
	defaultTrackRatePeriod   = time.Minute
	defaultGrantRetention    = 30 * 24 * time.Hour
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Playback PlaybackConfig `mapstructure:"playback"`
	Tracking TrackingConfig `mapstructure:"tracking"`
	Guard    GuardConfig    `mapstructure:"guard"`
	Auth     AuthConfig     `mapstructure:"auth"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigins     []string      `mapstructure:"cors_origins"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// PlaybackConfig holds play-grant issuance configuration.
type PlaybackConfig struct {
	// DefaultTTL is the grant lifetime used when the client does not ask for one.
	DefaultTTL time.Duration `mapstructure:"default_ttl"`
	// MaxTTL bounds client-requested grant lifetimes.
	MaxTTL time.Duration `mapstructure:"max_ttl"`
	// HeartbeatInterval is the advisory client ping interval carried in grants.
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	// SigningKey is the HMAC key used to mint expiring media URLs.
	SigningKey string `mapstructure:"signing_key"`
	// MediaBaseURL is the public base URL signed media paths are rooted at.
	MediaBaseURL string `mapstructure:"media_base_url"`
	// GrantRetention is how long expired grant rows are kept before the
	// scheduler purges them.
	GrantRetention time.Duration `mapstructure:"grant_retention"`
}

// TrackingConfig holds lifecycle-event ingestion configuration.
type TrackingConfig struct {
	// SinkBufferSize is the capacity of the async dispatch queue.
	SinkBufferSize int `mapstructure:"sink_buffer_size"`
	// SinkWriteTimeout bounds a single durable-sink write.
	SinkWriteTimeout time.Duration `mapstructure:"sink_write_timeout"`
	// RateLimit is the per-client request budget for /v1/track.
	RateLimit int `mapstructure:"rate_limit"`
	// RatePeriod is the window the rate limit applies over.
	RatePeriod time.Duration `mapstructure:"rate_period"`
	// GeoIPDatabase is the path to a MaxMind mmdb file. Empty disables geo enrichment.
	GeoIPDatabase string `mapstructure:"geoip_database"`
	// SweepInterval is how often open sessions are swept for abandonment.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// GuardConfig holds replay/rate guard configuration.
type GuardConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Store   string `mapstructure:"store"` // memory, redis
	// RedisAddr is required when store is "redis".
	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`
}

// AuthConfig holds the static permission grants used by admin endpoints.
// Keys are user IDs, values are granted permission codes.
type AuthConfig struct {
	Grants map[string][]string `mapstructure:"grants"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with REELHOUSE_ and use underscores for nesting.
// Example: REELHOUSE_SERVER_PORT=8080.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/reelhouse")
		v.AddConfigPath("$HOME/.reelhouse")
	}

	v.SetEnvPrefix("REELHOUSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Config file not found is OK - we'll use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file to ensure defaults are in place.
func SetDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", defaultServerPort)
	v.SetDefault("server.read_timeout", defaultServerTimeout)
	v.SetDefault("server.write_timeout", defaultServerTimeout)
	v.SetDefault("server.shutdown_timeout", defaultShutdownTimeout)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "reelhouse.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Playback defaults
	v.SetDefault("playback.default_ttl", defaultGrantTTL)
	v.SetDefault("playback.max_ttl", defaultMaxGrantTTL)
	v.SetDefault("playback.heartbeat_interval", defaultHeartbeatInterval)
	v.SetDefault("playback.signing_key", "")
	v.SetDefault("playback.media_base_url", "http://localhost:8080/media")
	v.SetDefault("playback.grant_retention", defaultGrantRetention)

	// Tracking defaults
	v.SetDefault("tracking.sink_buffer_size", defaultSinkBufferSize)
	v.SetDefault("tracking.sink_write_timeout", defaultSinkWriteTimeout)
	v.SetDefault("tracking.rate_limit", defaultTrackRateLimit)
	v.SetDefault("tracking.rate_period", defaultTrackRatePeriod)
	v.SetDefault("tracking.geoip_database", "")
	v.SetDefault("tracking.sweep_interval", defaultSweepInterval)

	// Guard defaults
	v.SetDefault("guard.enabled", true)
	v.SetDefault("guard.store", "memory")
	v.SetDefault("guard.redis_addr", "")
	v.SetDefault("guard.redis_password", "")
	v.SetDefault("guard.redis_db", 0)
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	const maxPort = 65535
	if c.Server.Port < 1 || c.Server.Port > maxPort {
		return fmt.Errorf("server.port must be between 1 and %d", maxPort)
	}

	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Playback.DefaultTTL <= 0 {
		return fmt.Errorf("playback.default_ttl must be positive")
	}
	if c.Playback.MaxTTL < c.Playback.DefaultTTL {
		return fmt.Errorf("playback.max_ttl must be at least playback.default_ttl")
	}
	if c.Playback.HeartbeatInterval <= 0 {
		return fmt.Errorf("playback.heartbeat_interval must be positive")
	}
	if c.Playback.MediaBaseURL == "" {
		return fmt.Errorf("playback.media_base_url is required")
	}
	if c.Playback.GrantRetention <= 0 {
		return fmt.Errorf("playback.grant_retention must be positive")
	}

	if c.Tracking.SinkBufferSize < 1 {
		return fmt.Errorf("tracking.sink_buffer_size must be at least 1")
	}
	if c.Tracking.RateLimit < 1 {
		return fmt.Errorf("tracking.rate_limit must be at least 1")
	}

	validStores := map[string]bool{"memory": true, "redis": true}
	if !validStores[c.Guard.Store] {
		return fmt.Errorf("guard.store must be one of: memory, redis")
	}
	if c.Guard.Store == "redis" && c.Guard.RedisAddr == "" {
		return fmt.Errorf("guard.redis_addr is required when guard.store is redis")
	}

	return nil
}
