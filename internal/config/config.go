package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `ignored:"true"`
	GinMode         string        `envconfig:"GIN_MODE" default:"release"`

	// AssetsDir holds the city photos served under /assets.
	AssetsDir string `envconfig:"ASSETS_DIR" default:"./assets"`
	// DatasetPath is the CSV the cities page filters; empty disables it.
	DatasetPath    string `envconfig:"DATASET_PATH"`
	MaxUploadBytes int64  `envconfig:"MAX_UPLOAD_BYTES" default:"33554432"`
	MaxRows        int    `envconfig:"MAX_ROWS" default:"200000"`

	// Boundary document fetching.
	BoundaryFetchTimeout time.Duration `envconfig:"BOUNDARY_FETCH_TIMEOUT" default:"10s"`
	BoundaryMaxBytes     int64         `envconfig:"BOUNDARY_MAX_BYTES" default:"20971520"`
	BoundaryRetries      int           `envconfig:"BOUNDARY_FETCH_RETRIES" default:"2"`
	BoundaryRetryBackoff time.Duration `envconfig:"BOUNDARY_RETRY_BACKOFF" default:"250ms"`
	// BoundaryAllowPrivate lets boundary URLs reach loopback and private networks.
	BoundaryAllowPrivate    bool          `envconfig:"BOUNDARY_ALLOW_PRIVATE" default:"false"`
	BoundaryCacheSize       int           `envconfig:"BOUNDARY_CACHE_SIZE" default:"32"`
	BoundaryCacheTTL        time.Duration `envconfig:"BOUNDARY_CACHE_TTL" default:"15m"`
	BoundaryBreakerFailures uint32        `envconfig:"BOUNDARY_BREAKER_FAILURES" default:"3"`
	BoundaryBreakerTimeout  time.Duration `envconfig:"BOUNDARY_BREAKER_TIMEOUT" default:"30s"`
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("HTTP_ADDR is required")
	}
	if !oneOf(c.LogLevel, "debug", "info", "warn", "error") {
		return fmt.Errorf("invalid LOG_LEVEL %q", c.LogLevel)
	}
	if !oneOf(c.LogFormat, "json", "text") {
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	if !oneOf(c.GinMode, "debug", "release", "test") {
		return fmt.Errorf("invalid GIN_MODE %q", c.GinMode)
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("invalid MAX_UPLOAD_BYTES: must be positive")
	}
	if c.MaxRows < 0 {
		return errors.New("invalid MAX_ROWS: must not be negative")
	}
	if c.BoundaryFetchTimeout <= 0 {
		return errors.New("invalid BOUNDARY_FETCH_TIMEOUT: must be positive")
	}
	if c.BoundaryMaxBytes <= 0 {
		return errors.New("invalid BOUNDARY_MAX_BYTES: must be positive")
	}
	if c.BoundaryRetries < 0 {
		return errors.New("invalid BOUNDARY_FETCH_RETRIES: must not be negative")
	}
	if c.BoundaryRetryBackoff <= 0 {
		return errors.New("invalid BOUNDARY_RETRY_BACKOFF: must be positive")
	}
	if c.BoundaryCacheSize <= 0 {
		return errors.New("invalid BOUNDARY_CACHE_SIZE: must be positive")
	}
	if c.BoundaryCacheTTL <= 0 {
		return errors.New("invalid BOUNDARY_CACHE_TTL: must be positive")
	}
	if c.BoundaryBreakerFailures == 0 {
		return errors.New("invalid BOUNDARY_BREAKER_FAILURES: must be positive")
	}
	return nil
}

func oneOf(v string, allowed ...string) bool {
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return true
		}
	}
	return false
}
