// Package metrics provides Prometheus metrics for the dojo pairing service.
package metrics

import (
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the dojo service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Matchmaking
	proposalsGenerated prometheus.Counter
	pairsProposed      prometheus.Counter
	boutsConfirmed     prometheus.Counter

	// Officiating
	officiatingAssigned   prometheus.Counter
	officiatingRejections *prometheus.CounterVec

	// Results and ranking
	resultsRecorded      prometheus.Counter
	resultsRejected      *prometheus.CounterVec
	duplicateSubmissions prometheus.Counter
	promotions           *prometheus.CounterVec

	// Leaderboards
	leaderboardRebuilds       *prometheus.CounterVec
	leaderboardRebuildLatency prometheus.Histogram

	// Repository
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

type global struct {
	manager  *Manager
	registry *prometheus.Registry
}

// Active manager and the registry it registers on. A custom registry keeps
// the default Go collectors out.
var active atomic.Pointer[global] //nolint:gochecknoglobals // intentional global for singleton metrics manager

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	Configure()
}

// Configure replaces the global manager with one built from opts on a fresh
// registry. Call it at startup, before the metrics handler is mounted.
func Configure(opts ...Option) *Manager {
	registry := prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, WithPrometheusRegistry(registry))

	m := NewManager(all...)
	active.Store(&global{manager: m, registry: registry})
	return m
}

func current() *Manager { return active.Load().manager }

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "dojo",
		subsystem:        "pairing",
		histogramBuckets: prometheus.DefBuckets,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.proposalsGenerated = auto.NewCounter(m.counterOpts(
		"match_proposals_total", "Total number of matchmaking proposal runs"))
	m.pairsProposed = auto.NewCounter(m.counterOpts(
		"proposed_pairs_total", "Total number of pairs returned by matchmaking"))
	m.boutsConfirmed = auto.NewCounter(m.counterOpts(
		"bouts_confirmed_total", "Total number of bouts created from confirmed proposals"))

	m.officiatingAssigned = auto.NewCounter(m.counterOpts(
		"officiating_assignments_total", "Total number of officiating assignments written"))
	m.officiatingRejections = auto.NewCounterVec(m.counterOpts(
		"officiating_rejections_total", "Officiating panels rejected, by reason"),
		[]string{"reason"})

	m.resultsRecorded = auto.NewCounter(m.counterOpts(
		"results_recorded_total", "Total number of bout results accepted"))
	m.resultsRejected = auto.NewCounterVec(m.counterOpts(
		"results_rejected_total", "Bout results rejected, by reason"),
		[]string{"reason"})
	m.duplicateSubmissions = auto.NewCounter(m.counterOpts(
		"duplicate_submissions_total", "Result submissions refused because one was already in flight"))
	m.promotions = auto.NewCounterVec(m.counterOpts(
		"promotions_total", "Rank changes, by trigger"),
		[]string{"trigger"})

	m.leaderboardRebuilds = auto.NewCounterVec(m.counterOpts(
		"leaderboard_rebuilds_total", "Leaderboard rebuilds, by timeframe"),
		[]string{"timeframe"})
	m.leaderboardRebuildLatency = auto.NewHistogram(m.histogramOpts(
		"leaderboard_rebuild_latency_milliseconds", "Leaderboard rebuild latency in milliseconds", m.histogramBuckets))

	m.repositoryUpdateLatency = auto.NewHistogram(m.histogramOpts(
		"repository_update_latency_milliseconds", "Repository update transaction latency in milliseconds", m.histogramBuckets))
	m.repositoryQueryLatency = auto.NewHistogram(m.histogramOpts(
		"repository_query_latency_milliseconds", "Repository read transaction latency in milliseconds", m.histogramBuckets))

	m.httpRequests = auto.NewCounterVec(m.counterOpts(
		"http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts(
		"http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts(
		"errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts(
		"errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts(
		"error_latency_milliseconds", "Latency of operations that resulted in errors", m.histogramBuckets),
		[]string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts(
		"system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts(
		"system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// RecordMatchProposal records one proposal run and how many pairs it returned.
func RecordMatchProposal(pairs int) {
	current().proposalsGenerated.Inc()
	current().pairsProposed.Add(float64(pairs))
}

// RecordBoutsConfirmed adds n created bouts.
func RecordBoutsConfirmed(n int) {
	current().boutsConfirmed.Add(float64(n))
}

// RecordOfficiatingAssigned adds n written assignments.
func RecordOfficiatingAssigned(n int) {
	current().officiatingAssigned.Add(float64(n))
}

// RecordOfficiatingRejection counts a rejected panel.
func RecordOfficiatingRejection(reason string) {
	current().officiatingRejections.WithLabelValues(reason).Inc()
}

// RecordResultRecorded counts an accepted result.
func RecordResultRecorded() {
	current().resultsRecorded.Inc()
}

// RecordResultRejected counts a refused result.
func RecordResultRejected(reason string) {
	current().resultsRejected.WithLabelValues(reason).Inc()
}

// RecordDuplicateSubmission counts a submission refused while another was in flight.
func RecordDuplicateSubmission() {
	current().duplicateSubmissions.Inc()
}

// RecordPromotion counts a rank change.
func RecordPromotion(trigger string) {
	current().promotions.WithLabelValues(trigger).Inc()
}

// RecordLeaderboardRebuild counts a rebuild of one board and its latency.
func RecordLeaderboardRebuild(timeframe string, latencyMs float64) {
	current().leaderboardRebuilds.WithLabelValues(timeframe).Inc()
	current().leaderboardRebuildLatency.Observe(latencyMs)
}

// RecordRepositoryUpdateLatency records repository update transaction latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	current().repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository read transaction latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	current().repositoryQueryLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	current().httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	current().httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	current().errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	current().errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	current().errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	current().systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	current().systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	current().systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often gauges sampled by a collector loop refresh.
func RefreshInterval() time.Duration {
	return current().refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return active.Load().registry
}
