// Package metrics holds the Prometheus collectors shared by the bigyear
// services. A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry and every collector registered on it.
type Metrics struct {
	registry *prometheus.Registry

	bootstrapRuns       *prometheus.CounterVec
	bootstrapDuration   prometheus.Histogram
	classReplacements   *prometheus.CounterVec
	assetFetches        *prometheus.CounterVec
	weekStatCache       *prometheus.CounterVec
	syncAttempts        *prometheus.CounterVec
	backendSyncRequests *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.bootstrapRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_bootstrap_runs_total",
			Help: "Reference data bootstrap runs",
		},
		[]string{"status"},
	)
	m.bootstrapDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bigyear_bootstrap_duration_seconds",
		Help:    "Time taken by a bootstrap run",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	m.classReplacements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_species_class_replacements_total",
			Help: "Species classes replaced because the stored count differed from the source",
		},
		[]string{"class"},
	)
	m.assetFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_asset_fetches_total",
			Help: "Reference asset fetches",
		},
		[]string{"kind", "status"},
	)
	m.weekStatCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_week_stat_cache_total",
			Help: "Weekly statistics cache lookups",
		},
		[]string{"result"},
	)
	m.syncAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_sync_attempts_total",
			Help: "Backend reconciliation attempts by outcome",
		},
		[]string{"outcome"},
	)
	m.backendSyncRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bigyear_backend_sync_requests_total",
			Help: "Requests served by the sync backend",
		},
		[]string{"method", "status"},
	)

	collectors := []prometheus.Collector{
		m.bootstrapRuns,
		m.bootstrapDuration,
		m.classReplacements,
		m.assetFetches,
		m.weekStatCache,
		m.syncAttempts,
		m.backendSyncRequests,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register collector: %w", err)
		}
	}
	return m, nil
}

// Registry exposes the registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}

// ObserveBootstrap records one bootstrap run.
func (m *Metrics) ObserveBootstrap(start time.Time, err error) {
	if m == nil {
		return
	}
	m.bootstrapRuns.WithLabelValues(status(err)).Inc()
	m.bootstrapDuration.Observe(time.Since(start).Seconds())
}

// ClassReplaced counts a species class replacement.
func (m *Metrics) ClassReplaced(class string) {
	if m == nil {
		return
	}
	m.classReplacements.WithLabelValues(class).Inc()
}

// AssetFetched counts one asset fetch of kind (species, dimensions,
// week_stat, trend).
func (m *Metrics) AssetFetched(kind string, err error) {
	if m == nil {
		return
	}
	m.assetFetches.WithLabelValues(kind, status(err)).Inc()
}

// WeekStatCache counts a week-stat cache hit or miss.
func (m *Metrics) WeekStatCache(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.weekStatCache.WithLabelValues(result).Inc()
}

// SyncAttempt counts a reconciliation attempt by outcome.
func (m *Metrics) SyncAttempt(outcome string) {
	if m == nil {
		return
	}
	m.syncAttempts.WithLabelValues(outcome).Inc()
}

// BackendRequest counts a request served by the sync backend.
func (m *Metrics) BackendRequest(method string, code int) {
	if m == nil {
		return
	}
	m.backendSyncRequests.WithLabelValues(method, fmt.Sprintf("%d", code)).Inc()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
