// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers a YAML file and DOJO_* environment variables over them.
// - Errors returned from this package wrap ErrLoadConfig or ErrInvalidConfig.
package config

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/okian/dojo/internal/domain/rank"
)

// DefaultMetricsBuckets are latency histogram bounds in milliseconds.
var DefaultMetricsBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000}

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Store selects the repository backend: memory or postgres.
	Store string `koanf:"store"`

	// PostgresDSN is required when Store is postgres.
	PostgresDSN string `koanf:"postgres_dsn"`

	// DedupeSize bounds the in-flight result submission guard.
	DedupeSize int `koanf:"dedupe_size"`

	// CORSAllowedOrigins lists browser origins allowed to call the API.
	// Empty allows any origin.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// RankThresholds maps a rank to the points needed to reach it. Entries
	// override the defaults one rank at a time.
	RankThresholds map[string]int `koanf:"rank_thresholds"`

	// BoutDayStartHour and BoutIntervalMinutes place confirmed bouts on the
	// event day.
	BoutDayStartHour    int `koanf:"bout_day_start_hour"`
	BoutIntervalMinutes int `koanf:"bout_interval_minutes"`

	// PublishEvents turns on the in-process domain event bus.
	PublishEvents bool `koanf:"publish_events"`

	// SeedFile is an optional YAML roster loaded into the store at startup.
	SeedFile string `koanf:"seed_file"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MetricsBuckets are the latency histogram bounds in milliseconds,
	// strictly increasing. Empty uses DefaultMetricsBuckets.
	MetricsBuckets []float64 `koanf:"metrics_buckets"`

	// MetricsRefreshInterval is how often system gauges are sampled.
	MetricsRefreshInterval time.Duration `koanf:"metrics_refresh_interval"`

	// MetricsLabels are constant labels added to every metric.
	MetricsLabels map[string]string `koanf:"metrics_labels"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention.
func New(_ context.Context) *Config {
	defaults := rank.DefaultThresholds()
	thresholds := make(map[string]int, len(defaults))
	for r, p := range defaults {
		thresholds[r.String()] = p
	}
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		Store:               StoreMemory,
		DedupeSize:          10_000,
		RankThresholds:      thresholds,
		BoutDayStartHour:    9,
		BoutIntervalMinutes: 30,
		PublishEvents:       true,
		ShutdownTimeout:     10 * time.Second,

		MetricsRefreshInterval: 10 * time.Second,
		MetricsLabels:          map[string]string{},
	}
}

// Thresholds parses RankThresholds into a validated table.
func (c *Config) Thresholds() (rank.Thresholds, error) {
	out := make(rank.Thresholds, len(c.RankThresholds))
	for name, points := range c.RankThresholds {
		r, err := rank.Parse(name)
		if err != nil {
			return nil, fmt.Errorf("%w: rank_thresholds: %w", ErrInvalidConfig, err)
		}
		out[r] = points
	}
	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("%w: rank_thresholds: %w", ErrInvalidConfig, err)
	}
	return out, nil
}

// HistogramBuckets returns MetricsBuckets, or the defaults when none are set.
func (c *Config) HistogramBuckets() []float64 {
	if len(c.MetricsBuckets) == 0 {
		return DefaultMetricsBuckets
	}
	return c.MetricsBuckets
}

// BoutInterval returns the gap between consecutive confirmed bouts.
func (c *Config) BoutInterval() time.Duration {
	return time.Duration(c.BoutIntervalMinutes) * time.Minute
}

// Validate checks the configuration for values the service cannot run with.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%w: postgres_dsn is required for the postgres store", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store %q", ErrInvalidConfig, c.Store)
	}
	if c.DedupeSize <= 0 {
		return fmt.Errorf("%w: dedupe_size must be positive", ErrInvalidConfig)
	}
	if c.BoutDayStartHour < 0 || c.BoutDayStartHour > 23 {
		return fmt.Errorf("%w: bout_day_start_hour must be within 0..23", ErrInvalidConfig)
	}
	if c.BoutIntervalMinutes <= 0 {
		return fmt.Errorf("%w: bout_interval_minutes must be positive", ErrInvalidConfig)
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("%w: shutdown_timeout must be positive", ErrInvalidConfig)
	}
	if err := c.validateMetrics(); err != nil {
		return err
	}
	_, err := c.Thresholds()
	return err
}

var labelName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func (c *Config) validateMetrics() error {
	for i, b := range c.MetricsBuckets {
		if i > 0 && b <= c.MetricsBuckets[i-1] {
			return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
		}
	}
	if c.MetricsRefreshInterval <= 0 {
		return fmt.Errorf("%w: metrics_refresh_interval must be positive", ErrInvalidConfig)
	}
	for name := range c.MetricsLabels {
		if !labelName.MatchString(name) || strings.HasPrefix(name, "__") {
			return fmt.Errorf("%w: metrics_labels: invalid label name %q", ErrInvalidConfig, name)
		}
	}
	return nil
}
