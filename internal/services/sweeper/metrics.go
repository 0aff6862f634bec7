package sweeper

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type sweepMetrics struct {
	runs      prometheus.Counter
	durations prometheus.Observer
	queued    prometheus.Counter
	expired   prometheus.Counter
	panics    prometheus.Counter
	sessions  prometheus.Gauge
}

var (
	sweepMetricsOnce sync.Once
	sweepMetricsInst *sweepMetrics
)

func globalSweepMetrics() *sweepMetrics {
	sweepMetricsOnce.Do(func() {
		sweepMetricsInst = newSweepMetrics()
	})
	return sweepMetricsInst
}

func newSweepMetrics() *sweepMetrics {
	return &sweepMetrics{
		runs: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "runs_total",
			Help:      "Total idle sweep executions",
		}),
		durations: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "duration_seconds",
			Help:      "Duration of idle sweep executions",
			Buckets:   prometheus.DefBuckets,
		}),
		queued: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "messages_queued_total",
			Help:      "Proactive messages queued for idle clients",
		}),
		expired: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "sessions_expired_total",
			Help:      "Sessions deactivated for exceeding the maximum duration",
		}),
		panics: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "entry_panics_total",
			Help:      "Per-session sweep failures that were isolated",
		}),
		sessions: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: "biasbot",
			Subsystem: "sweeper",
			Name:      "tracked_sessions",
			Help:      "Sessions observed during the latest sweep",
		}),
	}
}
