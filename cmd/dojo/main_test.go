package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dojo/internal/config"
	"github.com/okian/dojo/pkg/logger"
	"github.com/okian/dojo/pkg/metrics"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

const roster = `
events:
  - id: 1
    name: Autumn Cup
    date: "2026-11-01"
competitors:
  - id: 10
    name: Aiko
    rank: yellow
    weight_kg: 60.5
    date_of_birth: "2010-04-02"
  - id: 11
    name: Ben
    rank: yellow
    weight_kg: 62
    date_of_birth: "2011-01-15"
registrations:
  - id: 100
    event_id: 1
    competitor_id: 10
  - id: 101
    event_id: 1
    competitor_id: 11
officials:
  - id: 7
    name: Sensei Kato
    certification: national
`

func writeRoster(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.yaml")
	if err := os.WriteFile(path, []byte(roster), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCommandTree(t *testing.T) {
	convey.Convey("Given the root command", t, func() {
		names := map[string]bool{}
		for _, c := range rootCmd.Commands() {
			names[c.Name()] = true
		}

		convey.Convey("Then serve and migrate are registered", func() {
			convey.So(names["serve"], convey.ShouldBeTrue)
			convey.So(names["migrate"], convey.ShouldBeTrue)
			convey.So(rootCmd.Use, convey.ShouldEqual, "dojo")
		})

		convey.Convey("And migrate has up and down", func() {
			sub := map[string]bool{}
			for _, c := range migrateCmd.Commands() {
				sub[c.Name()] = true
			}
			convey.So(sub["up"], convey.ShouldBeTrue)
			convey.So(sub["down"], convey.ShouldBeTrue)
		})

		convey.Convey("And serve takes an --addr override", func() {
			flag := serveCmd.Flags().Lookup("addr")
			convey.So(flag, convey.ShouldNotBeNil)
			convey.So(flag.DefValue, convey.ShouldEqual, "")
		})
	})
}

func TestOpenStore(t *testing.T) {
	convey.Convey("Given a memory store config with a seed roster", t, func() {
		ctx := context.Background()
		c := config.New(ctx)
		c.SeedFile = writeRoster(t)

		convey.Convey("When the store is opened", func() {
			store, err := openStore(ctx, c)
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = store.Close() }()

			convey.Convey("Then the seeded entrants can be paired", func() {
				svc, bus := newService(c, store)
				defer func() { _ = svc.Close() }()
				convey.So(bus, convey.ShouldNotBeNil)

				pairs, err := svc.ProposeMatches(ctx, 1)
				convey.So(err, convey.ShouldBeNil)
				convey.So(pairs, convey.ShouldHaveLength, 1)
				ids := []int64{pairs[0].A.ID, pairs[0].B.ID}
				convey.So(ids, convey.ShouldContain, int64(10))
				convey.So(ids, convey.ShouldContain, int64(11))
			})
		})
	})

	convey.Convey("Given a missing seed file", t, func() {
		ctx := context.Background()
		c := config.New(ctx)
		c.SeedFile = filepath.Join(t.TempDir(), "missing.yaml")

		convey.Convey("Then opening the store fails", func() {
			_, err := openStore(ctx, c)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given events are not published", t, func() {
		ctx := context.Background()
		c := config.New(ctx)
		c.PublishEvents = false
		store, err := openStore(ctx, c)
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then no bus is created", func() {
			svc, bus := newService(c, store)
			convey.So(bus, convey.ShouldBeNil)
			convey.So(svc.Close(), convey.ShouldBeNil)
		})
	})
}

func TestRouter(t *testing.T) {
	convey.Convey("Given the assembled router", t, func() {
		ctx := context.Background()
		c := config.New(ctx)
		c.PublishEvents = false
		store, err := openStore(ctx, c)
		convey.So(err, convey.ShouldBeNil)
		svc, _ := newService(c, store)
		h := newRouter(ctx, c, svc)

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
			return w
		}

		convey.Convey("Then the API, docs and landing routes are served", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusFound)
		})

		convey.Convey("And CORS preflight is answered", func() {
			req := httptest.NewRequest(http.MethodOptions, "/leaderboards/all_time", http.NoBody)
			req.Header.Set("Origin", "https://club.example")
			req.Header.Set("Access-Control-Request-Method", http.MethodGet)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "*")
		})
	})
}

func TestConfigureMetrics(t *testing.T) {
	convey.Convey("Given metrics settings in the config", t, func() {
		c := config.New(context.Background())
		c.MetricsRefreshInterval = 7 * time.Second
		c.MetricsLabels = map[string]string{"club": "north"}

		configureMetrics(c)
		convey.Reset(func() { configureMetrics(config.New(context.Background())) })

		convey.Convey("Then the collector interval follows the config", func() {
			convey.So(metrics.RefreshInterval(), convey.ShouldEqual, 7*time.Second)
		})

		convey.Convey("Then served metrics carry the constant labels", func() {
			metrics.RecordBoutsConfirmed(1)
			families, err := metrics.GetRegistry().Gather()
			convey.So(err, convey.ShouldBeNil)
			convey.So(families, convey.ShouldNotBeEmpty)

			labelled := false
			for _, f := range families {
				for _, m := range f.GetMetric() {
					for _, l := range m.GetLabel() {
						if l.GetName() == "club" && l.GetValue() == "north" {
							labelled = true
						}
					}
				}
			}
			convey.So(labelled, convey.ShouldBeTrue)
		})
	})
}

func TestRunMigration(t *testing.T) {
	convey.Convey("Given a memory store config", t, func() {
		cfg = config.New(context.Background())

		convey.Convey("Then migrations are refused", func() {
			err := runMigration(context.Background(), "up", nil)
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(err.Error(), convey.ShouldContainSubstring, "postgres")
		})
	})
}
