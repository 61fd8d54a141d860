// Package metrics holds the Prometheus instruments for tracker runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Namespace is the namespace for all tracker metrics.
	Namespace = "yad2_tracker"
)

// Run results used as the "result" label.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	registry *prometheus.Registry

	RunsTotal           *prometheus.CounterVec
	RunDurationSeconds  prometheus.Histogram
	StageDuration       *prometheus.HistogramVec
	ListingsTotal       *prometheus.CounterVec
	EndpointFetchTotal  *prometheus.CounterVec
	NotificationsTotal  *prometheus.CounterVec
	LastSuccessUnixTime prometheus.Gauge
	RunInFlight         prometheus.Gauge
}

// New creates a registry with the Go and process collectors plus every
// tracker metric.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	m := &Metrics{registry: reg}

	m.RunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "runs_total",
			Help:      "Total number of tracker runs by result",
		},
		[]string{"result"},
	)
	m.RunDurationSeconds = factory.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a full tracker run in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4min
		},
	)
	m.StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of each pipeline stage in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	m.ListingsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "listings_total",
			Help:      "Listings observed per pipeline stage",
		},
		[]string{"stage"},
	)
	m.EndpointFetchTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "endpoint_fetch_total",
			Help:      "Endpoint fetches by result",
		},
		[]string{"result"},
	)
	m.NotificationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "notifications_total",
			Help:      "Notification attempts by outcome",
		},
		[]string{"outcome"},
	)
	m.LastSuccessUnixTime = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run",
		},
	)
	m.RunInFlight = factory.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "run_in_flight",
			Help:      "1 while a run is executing",
		},
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveStage records the time spent in stage since start.
func (m *Metrics) ObserveStage(stage string, start time.Time) {
	m.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(result string, duration time.Duration, finishedAt time.Time) {
	m.RunsTotal.WithLabelValues(result).Inc()
	m.RunDurationSeconds.Observe(duration.Seconds())
	if result == ResultSuccess {
		m.LastSuccessUnixTime.Set(float64(finishedAt.Unix()))
	}
}
