package dashboard

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// engineMetrics holds Prometheus metrics for the refresh pipeline.
type engineMetrics struct {
	refreshes     prometheus.Counter
	staleDiscards prometheus.Counter
	rollbacks     *prometheus.CounterVec
	fetchLatency  prometheus.Histogram
}

var (
	metricsInstance *engineMetrics
	metricsOnce     sync.Once
	defaultRegistry = prometheus.DefaultRegisterer
)

func newMetrics() *engineMetrics {
	metricsOnce.Do(func() {
		metricsInstance = &engineMetrics{
			refreshes: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "dashboard_refreshes_total",
				Help: "Total number of completed refresh-and-recompute cycles",
			}),
			staleDiscards: promauto.With(defaultRegistry).NewCounter(prometheus.CounterOpts{
				Name: "dashboard_stale_refreshes_total",
				Help: "Refreshes discarded because the selected period changed mid-flight",
			}),
			rollbacks: promauto.With(defaultRegistry).NewCounterVec(prometheus.CounterOpts{
				Name: "dashboard_rollbacks_total",
				Help: "Optimistic mutations rolled back after a failed API call",
			}, []string{"action"}),
			fetchLatency: promauto.With(defaultRegistry).NewHistogram(prometheus.HistogramOpts{
				Name:    "dashboard_fetch_duration_seconds",
				Help:    "Time taken for the fan-out fetch of all collections",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			}),
		}
	})
	return metricsInstance
}

// resetMetricsForTesting swaps in a fresh registry so tests can re-register.
func resetMetricsForTesting() {
	defaultRegistry = prometheus.NewRegistry()
	metricsInstance = nil
	metricsOnce = sync.Once{}
}
