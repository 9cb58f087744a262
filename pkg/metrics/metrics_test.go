package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			So(manager, ShouldNotBeNil)
			So(manager.namespace, ShouldEqual, "dojo")
			So(manager.subsystem, ShouldEqual, "pairing")
			So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			So(manager.namespace, ShouldEqual, "test_namespace")
			So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
			So(manager.refreshInterval, ShouldEqual, 5*time.Second)

			manager.boutsConfirmed.Inc()
			families, err := registry.Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
			So(families[0].GetName(), ShouldStartWith, "test_namespace_test_subsystem_")
		})

		Convey("When options carry zero values", func() {
			manager := NewManager(
				WithNamespace(""),
				WithHistogramBuckets(nil),
				WithRefreshInterval(0),
				WithPrometheusRegistry(prometheus.NewRegistry()),
			)

			So(manager.namespace, ShouldEqual, "dojo")
			So(manager.histogramBuckets, ShouldResemble, prometheus.DefBuckets)
			So(manager.refreshInterval, ShouldEqual, defaultRefreshInterval)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When matchmaking runs", func() {
			before := testutil.ToFloat64(current().pairsProposed)
			RecordMatchProposal(3)
			So(testutil.ToFloat64(current().pairsProposed)-before, ShouldEqual, 3.0)
		})

		Convey("When results are recorded and rejected", func() {
			rejected := current().resultsRejected.WithLabelValues("locked")
			before := testutil.ToFloat64(rejected)
			RecordResultRejected("locked")
			So(testutil.ToFloat64(rejected)-before, ShouldEqual, 1.0)

			So(func() {
				RecordResultRecorded()
				RecordDuplicateSubmission()
				RecordPromotion("automatic")
				RecordBoutsConfirmed(2)
				RecordOfficiatingAssigned(3)
				RecordOfficiatingRejection("conflict")
			}, ShouldNotPanic)
		})

		Convey("When a leaderboard is rebuilt", func() {
			rebuilds := current().leaderboardRebuilds.WithLabelValues("monthly")
			before := testutil.ToFloat64(rebuilds)
			RecordLeaderboardRebuild("monthly", 1.5)
			So(testutil.ToFloat64(rebuilds)-before, ShouldEqual, 1.0)
		})

		Convey("When recording transport and store metrics", func() {
			So(func() {
				RecordHTTPRequest("/v1/events/{eventID}/proposals", "GET", "200")
				RecordHTTPRequestDuration("/v1/events/{eventID}/proposals", "GET", "200", 12)
				RecordRepositoryQueryLatency(0.4)
				RecordRepositoryUpdateLatency(1.2)
				RecordErrorByComponent("service", "conflict")
				RecordErrorByEndpoint("/v1/bouts/{boutID}/result", "POST", "conflict")
				RecordErrorLatency("service", "conflict", 2)
			}, ShouldNotPanic)
		})
	})
}

func TestSystemCollector(t *testing.T) {
	Convey("Given the system collector", t, func() {
		Convey("CollectSystem sets the goroutine gauge", func() {
			CollectSystem()
			So(testutil.ToFloat64(current().systemGoroutineCount), ShouldBeGreaterThan, 0)
		})

		Convey("RunSystemCollector stops with its context", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- RunSystemCollector(ctx) }()
			cancel()

			select {
			case err := <-done:
				So(err, ShouldBeNil)
			case <-time.After(2 * time.Second):
				So("collector did not stop", ShouldBeEmpty)
			}
		})
	})

	Convey("The custom registry is exposed", t, func() {
		So(GetRegistry(), ShouldEqual, active.Load().registry)
	})
}

func TestConfigure(t *testing.T) {
	Convey("Given the global manager is reconfigured", t, func() {
		previous := active.Load()
		Reset(func() { active.Store(previous) })

		m := Configure(
			WithHistogramBuckets([]float64{1, 10, 100}),
			WithRefreshInterval(3*time.Second),
			WithCustomLabels(map[string]string{"club": "north"}),
		)

		Convey("Then the record functions and refresh interval follow it", func() {
			So(current(), ShouldEqual, m)
			So(RefreshInterval(), ShouldEqual, 3*time.Second)

			RecordLeaderboardRebuild("all_time", 5)
			So(testutil.ToFloat64(m.leaderboardRebuilds.WithLabelValues("all_time")), ShouldEqual, 1.0)
		})

		Convey("Then the exposed registry carries the labels and buckets", func() {
			So(GetRegistry(), ShouldNotEqual, previous.registry)

			RecordLeaderboardRebuild("yearly", 5)
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)

			var latency *dto.MetricFamily
			for _, f := range families {
				if f.GetName() == "dojo_pairing_leaderboard_rebuild_latency_milliseconds" {
					latency = f
				}
			}
			So(latency, ShouldNotBeNil)
			metric := latency.GetMetric()[0]
			So(metric.GetLabel()[0].GetName(), ShouldEqual, "club")
			So(metric.GetLabel()[0].GetValue(), ShouldEqual, "north")
			So(metric.GetHistogram().GetBucket(), ShouldHaveLength, 3)
		})
	})
}
