// Package metrics exposes the service's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the serving path. A nil *Metrics
// is a no-op, which keeps tests away from the global registry.
type Metrics struct {
	fileRequests    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	cacheEntries    prometheus.Gauge
	cacheBytes      prometheus.Gauge
	sceneMatches    *prometheus.CounterVec
	storeOps        *prometheus.HistogramVec
	streamedBytes   prometheus.Counter
}

// NewMetrics creates and registers all serving metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		fileRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panorama_file_requests_total",
				Help: "File requests by cache tier outcome",
			},
			[]string{"source"},
		),
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panorama_request_duration_seconds",
				Help:    "Request handling latency by endpoint",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		cacheEntries: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "panorama_cache_entries",
				Help: "Current number of file cache entries",
			},
		),
		cacheBytes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "panorama_cache_bytes",
				Help: "Bytes of payload held in the file cache",
			},
		),
		sceneMatches: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "panorama_scene_matches_total",
				Help: "Scene match attempts by outcome",
			},
			[]string{"outcome"},
		),
		storeOps: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "panorama_object_store_duration_seconds",
				Help:    "Object store call latency by operation",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		streamedBytes: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "panorama_streamed_bytes_total",
				Help: "Bytes read from the object store on the serving path",
			},
		),
	}
}

// RecordFileRequest counts one file request by its X-Cache outcome.
func (m *Metrics) RecordFileRequest(source string) {
	if m == nil {
		return
	}
	m.fileRequests.WithLabelValues(source).Inc()
}

// ObserveRequestDuration records handler latency in seconds.
func (m *Metrics) ObserveRequestDuration(endpoint string, seconds float64) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(endpoint).Observe(seconds)
}

// SetCacheStats publishes the current cache size counters.
func (m *Metrics) SetCacheStats(entries int, bytes int64) {
	if m == nil {
		return
	}
	m.cacheEntries.Set(float64(entries))
	m.cacheBytes.Set(float64(bytes))
}

// RecordSceneMatch counts a scene match attempt ("hit" or "miss").
func (m *Metrics) RecordSceneMatch(outcome string) {
	if m == nil {
		return
	}
	m.sceneMatches.WithLabelValues(outcome).Inc()
}

// ObserveStoreOperation records one object store call's latency in seconds.
func (m *Metrics) ObserveStoreOperation(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.storeOps.WithLabelValues(operation).Observe(seconds)
}

// AddStreamedBytes counts bytes read back from the object store.
func (m *Metrics) AddStreamedBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.streamedBytes.Add(float64(n))
}
