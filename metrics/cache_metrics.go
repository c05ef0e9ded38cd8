package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type CacheMetricsCollector struct {
	Hits          *prometheus.CounterVec
	Misses        *prometheus.CounterVec
	Requests      *prometheus.CounterVec
	Degraded      *prometheus.CounterVec
	Invalidations *prometheus.CounterVec
	Latency       *prometheus.HistogramVec
	HitRatio      *prometheus.GaugeVec
}

var (
	globalCollector *CacheMetricsCollector
	collectorOnce   sync.Once
)

func getCollector() *CacheMetricsCollector {
	collectorOnce.Do(func() {
		globalCollector = &CacheMetricsCollector{
			Hits: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "marketplace_cache_hits_total",
					Help: "The total number of cache hits",
				},
				[]string{"view"},
			),
			Misses: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "marketplace_cache_misses_total",
					Help: "The total number of cache misses",
				},
				[]string{"view"},
			),
			Requests: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "marketplace_cache_requests_total",
					Help: "The total number of cache requests",
				},
				[]string{"view"},
			),
			Degraded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "marketplace_cache_degraded_total",
					Help: "Reads served directly from the primary store because the cache was unreachable",
				},
				[]string{"view"},
			),
			Invalidations: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "marketplace_cache_invalidations_total",
					Help: "Batch deletes issued per mutation kind",
				},
				[]string{"mutation"},
			),
			Latency: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "marketplace_cache_duration_seconds",
					Help:    "Cache operation duration in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"view", "operation"},
			),
			HitRatio: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "marketplace_cache_hit_ratio",
					Help: "Cache hit ratio (hits/total requests)",
				},
				[]string{"view"},
			),
		}
	})
	return globalCollector
}

type CacheMetrics struct {
	view      string
	hits      int64
	misses    int64
	total     int64
	collector *CacheMetricsCollector
	mu        sync.RWMutex
}

func NewCacheMetrics(view string) *CacheMetrics {
	return &CacheMetrics{
		view:      view,
		collector: getCollector(),
	}
}

func (m *CacheMetrics) RecordHit() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hits++
	m.total++
	m.collector.Hits.WithLabelValues(m.view).Inc()
	m.collector.Requests.WithLabelValues(m.view).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.misses++
	m.total++
	m.collector.Misses.WithLabelValues(m.view).Inc()
	m.collector.Requests.WithLabelValues(m.view).Inc()
	m.updateHitRatio()
}

func (m *CacheMetrics) RecordDegraded() {
	m.collector.Degraded.WithLabelValues(m.view).Inc()
}

func (m *CacheMetrics) RecordInvalidation(mutation string) {
	m.collector.Invalidations.WithLabelValues(mutation).Inc()
}

func (m *CacheMetrics) RecordLatency(operation string, duration float64) {
	m.collector.Latency.WithLabelValues(m.view, operation).Observe(duration)
}

// updateHitRatio updates the Prometheus hit ratio gauge.
// Must be called while holding the mutex.
func (m *CacheMetrics) updateHitRatio() {
	if m.total > 0 {
		ratio := float64(m.hits) / float64(m.total)
		m.collector.HitRatio.WithLabelValues(m.view).Set(ratio)
	}
}

func (m *CacheMetrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var hitRatio float64
	if m.total > 0 {
		hitRatio = float64(m.hits) / float64(m.total)
	}

	return map[string]interface{}{
		"view":      m.view,
		"hits":      m.hits,
		"misses":    m.misses,
		"total":     m.total,
		"hit_ratio": hitRatio,
	}
}
