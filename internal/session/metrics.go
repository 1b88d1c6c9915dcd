package session

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the session store.
type Metrics struct {
	HitsTotal      prometheus.Counter
	MissesTotal    prometheus.Counter
	EvictionsTotal prometheus.Counter
	Size           prometheus.Gauge
}

// NewMetrics registers session metrics with the default registry once and
// returns the shared instance.
//
// Metrics:
//   - upiexplain_session_hits_total - last-search lookups that found an entry
//   - upiexplain_session_misses_total - lookups with an unknown or expired token
//   - upiexplain_session_evictions_total - entries dropped by capacity or TTL
//   - upiexplain_session_entries - current number of stored sessions
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			HitsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "upiexplain_session_hits_total",
				Help: "Total number of last-search lookups that found an entry",
			}),
			MissesTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "upiexplain_session_misses_total",
				Help: "Total number of last-search lookups with an unknown or expired token",
			}),
			EvictionsTotal: promauto.NewCounter(prometheus.CounterOpts{
				Name: "upiexplain_session_evictions_total",
				Help: "Total number of sessions dropped by capacity or TTL",
			}),
			Size: promauto.NewGauge(prometheus.GaugeOpts{
				Name: "upiexplain_session_entries",
				Help: "Current number of stored sessions",
			}),
		}
	})
	return globalMetrics
}
