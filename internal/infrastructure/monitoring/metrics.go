package monitoring

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics of the daemon. A nil *Metrics is
// valid and records nothing, which keeps domain code free of nil checks.
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Registry metrics
	Packages      prometheus.Gauge
	Installs      *prometheus.CounterVec
	Removals      prometheus.Counter
	RestoreLoaded *prometheus.CounterVec

	// Descriptor cache metrics
	CacheLoads *prometheus.CounterVec
	CacheSaves *prometheus.CounterVec

	// Signature store metrics
	SignatureLoads *prometheus.CounterVec

	// View metrics
	Views        *prometheus.CounterVec
	ViewDuration *prometheus.HistogramVec

	startTime time.Time
	snapshot  MetricsSnapshot
	mu        sync.RWMutex
}

// MetricsSnapshot holds current values for the JSON stats endpoint.
type MetricsSnapshot struct {
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	Packages      int64   `json:"packages"`
	Views         int64   `json:"views"`
	CacheRebuilds int64   `json:"cache_rebuilds"`
	TotalDuration float64 `json:"-"`
	RequestCount  int64   `json:"-"`
	AvgLatencyMS  float64 `json:"avg_latency_ms"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// NewMetrics registers every collector with reg. Passing a fresh
// prometheus.NewRegistry() keeps tests independent of the global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{startTime: time.Now()}

	m.RequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	m.RequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vpm_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.ResponseSize = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vpm_http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: []float64{100, 1000, 10000, 100000, 1000000},
		},
		[]string{"method", "path"},
	)

	m.Packages = factory.NewGauge(prometheus.GaugeOpts{
		Name: "vpm_registry_packages",
		Help: "Number of installed package snapshots",
	})
	m.Installs = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_registry_installs_total",
			Help: "Package installs by result",
		},
		[]string{"result"},
	)
	m.Removals = factory.NewCounter(prometheus.CounterOpts{
		Name: "vpm_registry_removals_total",
		Help: "Packages removed",
	})
	m.RestoreLoaded = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_registry_restore_total",
			Help: "Packages restored at startup by source",
		},
		[]string{"source"},
	)

	m.CacheLoads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_cache_loads_total",
			Help: "Descriptor cache loads by result",
		},
		[]string{"result"},
	)
	m.CacheSaves = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_cache_saves_total",
			Help: "Descriptor cache saves by result",
		},
		[]string{"result"},
	)
	m.SignatureLoads = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_signature_loads_total",
			Help: "Lazy signature loads by result",
		},
		[]string{"result"},
	)

	m.Views = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vpm_views_total",
			Help: "Generated views by kind and result",
		},
		[]string{"kind", "result"},
	)
	m.ViewDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vpm_view_duration_seconds",
			Help:    "View generation duration in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		},
		[]string{"kind"},
	)

	factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "vpm_uptime_seconds",
			Help: "Daemon uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.TotalDuration += duration.Seconds()
	m.snapshot.RequestCount++
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SetPackages sets the number of installed packages
func (m *Metrics) SetPackages(count int) {
	if m == nil {
		return
	}
	m.Packages.Set(float64(count))
	m.mu.Lock()
	m.snapshot.Packages = int64(count)
	m.mu.Unlock()
}

// RecordInstall records an install attempt
func (m *Metrics) RecordInstall(result string) {
	if m == nil {
		return
	}
	m.Installs.WithLabelValues(result).Inc()
}

// IncRemovals counts a removed package
func (m *Metrics) IncRemovals() {
	if m == nil {
		return
	}
	m.Removals.Inc()
}

// RecordRestore counts a package restored from source "cache" or "manifest".
func (m *Metrics) RecordRestore(source string) {
	if m == nil {
		return
	}
	m.RestoreLoaded.WithLabelValues(source).Inc()
	if source == "manifest" {
		m.mu.Lock()
		m.snapshot.CacheRebuilds++
		m.mu.Unlock()
	}
}

// RecordCacheLoad records a descriptor cache load
func (m *Metrics) RecordCacheLoad(result string) {
	if m == nil {
		return
	}
	m.CacheLoads.WithLabelValues(result).Inc()
}

// RecordCacheSave records a descriptor cache save
func (m *Metrics) RecordCacheSave(result string) {
	if m == nil {
		return
	}
	m.CacheSaves.WithLabelValues(result).Inc()
}

// RecordSignatureLoad records a lazy signature load
func (m *Metrics) RecordSignatureLoad(result string) {
	if m == nil {
		return
	}
	m.SignatureLoads.WithLabelValues(result).Inc()
}

// RecordView records a generated view
func (m *Metrics) RecordView(kind, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.Views.WithLabelValues(kind, result).Inc()
	m.ViewDuration.WithLabelValues(kind).Observe(duration.Seconds())
	m.mu.Lock()
	m.snapshot.Views++
	m.mu.Unlock()
}

// Snapshot returns the current JSON-friendly values.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.RequestCount > 0 {
		s.AvgLatencyMS = s.TotalDuration / float64(s.RequestCount) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
