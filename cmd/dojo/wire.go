package main

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/okian/dojo/internal/adapters/http/api"
	"github.com/okian/dojo/internal/adapters/http/site"
	"github.com/okian/dojo/internal/adapters/http/swagger"
	"github.com/okian/dojo/internal/adapters/notify"
	"github.com/okian/dojo/internal/adapters/repository"
	"github.com/okian/dojo/internal/adapters/repository/memstore"
	"github.com/okian/dojo/internal/adapters/repository/pgstore"
	"github.com/okian/dojo/internal/adapters/repository/seed"
	service "github.com/okian/dojo/internal/app"
	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/internal/domain/matchmaking"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
)

// busBuffer is the per-subscriber buffer of the event bus.
const busBuffer = 256

// configureMetrics rebuilds the metrics registry from the configured buckets,
// refresh interval and constant labels.
func configureMetrics(c *config.Config) {
	metrics.Configure(
		metrics.WithHistogramBuckets(c.HistogramBuckets()),
		metrics.WithRefreshInterval(c.MetricsRefreshInterval),
		metrics.WithCustomLabels(c.MetricsLabels),
	)
}

// openStore builds the configured backend, installs the rank thresholds and
// loads the seed roster when one is configured.
func openStore(ctx context.Context, c *config.Config) (repository.Store, error) {
	thresholds, err := c.Thresholds()
	if err != nil {
		return nil, err
	}

	var (
		store  repository.Store
		target seed.Target
	)
	switch c.Store {
	case config.StorePostgres:
		pg := pgstore.Open(c.PostgresDSN)
		if err := pg.Ping(ctx); err != nil {
			_ = pg.Close()
			return nil, err
		}
		if err := pg.SeedThresholds(ctx, thresholds); err != nil {
			_ = pg.Close()
			return nil, eris.Wrap(err, "install rank thresholds")
		}
		store, target = pg, pg
	default:
		mem := memstore.New(thresholds)
		store, target = mem, mem
	}

	if c.SeedFile == "" {
		return store, nil
	}
	fixture, err := seed.Load(c.SeedFile)
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	if err := seed.Apply(ctx, target, fixture); err != nil {
		_ = store.Close()
		return nil, err
	}
	logger.Get().Info(ctx, "roster seeded",
		logger.String("file", c.SeedFile),
		logger.Int("competitors", len(fixture.Competitors)),
		logger.Int("officials", len(fixture.Officials)),
	)
	return store, nil
}

// newService wires the orchestration service. The bus is nil when events
// are not published.
func newService(c *config.Config, store repository.Store) (*service.Service, *notify.Bus) {
	opts := []service.Option{
		service.WithLogger(logger.Named("service")),
		service.WithDedupeSize(c.DedupeSize),
		service.WithSchedule(matchmaking.Schedule{
			StartHour: c.BoutDayStartHour,
			Interval:  c.BoutInterval(),
		}),
	}
	var bus *notify.Bus
	if c.PublishEvents {
		bus = notify.NewBus(logger.Slog(), busBuffer)
		opts = append(opts, service.WithNotifier(bus))
	}
	return service.New(store, opts...), bus
}

// newRouter mounts the API, the docs and the landing route. API middleware
// is registered first so it wraps every route.
func newRouter(ctx context.Context, c *config.Config, svc api.Dependencies) http.Handler {
	r := chi.NewRouter()
	api.NewServer(svc, api.WithAllowedOrigins(c.CORSAllowedOrigins)).Register(ctx, r)
	swagger.Register(ctx, r)
	site.Register(ctx, r)
	return r
}
