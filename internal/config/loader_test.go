package config_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/okian/dojo/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()
		convey.Reset(clearConfigEnvVars)

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.Store, convey.ShouldEqual, config.StoreMemory)
				convey.So(cfg.BoutIntervalMinutes, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DOJO_ADDR", ":8080")
			_ = os.Setenv("DOJO_DEDUPE_SIZE", "250")
			_ = os.Setenv("DOJO_BOUT_INTERVAL_MINUTES", "45")
			_ = os.Setenv("DOJO_PUBLISH_EVENTS", "false")
			_ = os.Setenv("DOJO_CORS_ALLOWED_ORIGINS", "https://club.example, https://admin.example")

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DedupeSize, convey.ShouldEqual, 250)
				convey.So(cfg.BoutInterval(), convey.ShouldEqual, 45*time.Minute)
				convey.So(cfg.PublishEvents, convey.ShouldBeFalse)
				convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://club.example", "https://admin.example"})
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			tmpFile := createTempConfigFile(`
# club settings
addr: ":9090"
store: postgres
postgres_dsn: "postgres://dojo@localhost/dojo"
bout_day_start_hour: 10
shutdown_timeout: 3s
rank_thresholds:
  yellow: 50
seed_file: roster.yaml
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DOJO_CONFIG", tmpFile)

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should merge the file over defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Store, convey.ShouldEqual, config.StorePostgres)
				convey.So(cfg.BoutDayStartHour, convey.ShouldEqual, 10)
				convey.So(cfg.ShutdownTimeout, convey.ShouldEqual, 3*time.Second)
				convey.So(cfg.SeedFile, convey.ShouldEqual, "roster.yaml")
				convey.So(cfg.RankThresholds["yellow"], convey.ShouldEqual, 50)
				convey.So(cfg.RankThresholds["black"], convey.ShouldEqual, 1400)
			})

			convey.Convey("And env vars win over the file", func() {
				_ = os.Setenv("DOJO_ADDR", ":7070")
				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.BoutDayStartHour, convey.ShouldEqual, 10)
			})
		})

		convey.Convey("When rank thresholds are set per rank from the environment", func() {
			tmpFile := createTempConfigFile("rank_thresholds:\n  yellow: 50\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DOJO_CONFIG", tmpFile)
			_ = os.Setenv("DOJO_RANK_THRESHOLDS_GREEN", "260")

			cfg, err := config.Load(ctx)

			convey.Convey("Then only that rank changes and file entries survive", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.RankThresholds["green"], convey.ShouldEqual, 260)
				convey.So(cfg.RankThresholds["yellow"], convey.ShouldEqual, 50)
				convey.So(cfg.RankThresholds["black"], convey.ShouldEqual, 1400)

				th, err := cfg.Thresholds()
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(th), convey.ShouldEqual, len(cfg.RankThresholds))
			})
		})

		convey.Convey("When an env threshold breaks the ladder order", func() {
			_ = os.Setenv("DOJO_RANK_THRESHOLDS_BLACK", "10")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When metrics settings come from the environment", func() {
			_ = os.Setenv("DOJO_METRICS_BUCKETS", "2, 20, 200")
			_ = os.Setenv("DOJO_METRICS_REFRESH_INTERVAL", "30s")
			_ = os.Setenv("DOJO_METRICS_LABELS_CLUB", "north")

			cfg, err := config.Load(ctx)

			convey.Convey("Then buckets, interval and labels are applied", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.HistogramBuckets(), convey.ShouldResemble, []float64{2, 20, 200})
				convey.So(cfg.MetricsRefreshInterval, convey.ShouldEqual, 30*time.Second)
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"club": "north"})
			})
		})

		convey.Convey("When metrics buckets are out of order", func() {
			_ = os.Setenv("DOJO_METRICS_BUCKETS", "20,2")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the config file does not exist", func() {
			_ = os.Setenv("DOJO_CONFIG", "/nonexistent/dojo.yaml")

			cfg, err := config.Load(ctx)

			convey.So(cfg, convey.ShouldBeNil)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When the config file is not valid YAML", func() {
			tmpFile := createTempConfigFile("addr: [unclosed")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DOJO_CONFIG", tmpFile)

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a numeric env var does not parse", func() {
			_ = os.Setenv("DOJO_DEDUPE_SIZE", "lots")

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the postgres store has no DSN", func() {
			_ = os.Setenv("DOJO_STORE", "postgres")

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})

		convey.Convey("When a file breaks threshold ordering", func() {
			tmpFile := createTempConfigFile("rank_thresholds:\n  orange: 50\n")
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("DOJO_CONFIG", tmpFile)

			_, err := config.Load(ctx)
			convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DOJO_CONFIG",
		"DOJO_ADDR",
		"DOJO_STORE",
		"DOJO_DEDUPE_SIZE",
		"DOJO_BOUT_INTERVAL_MINUTES",
		"DOJO_PUBLISH_EVENTS",
		"DOJO_CORS_ALLOWED_ORIGINS",
		"DOJO_RANK_THRESHOLDS_GREEN",
		"DOJO_RANK_THRESHOLDS_BLACK",
		"DOJO_METRICS_BUCKETS",
		"DOJO_METRICS_REFRESH_INTERVAL",
		"DOJO_METRICS_LABELS_CLUB",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dojo-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
