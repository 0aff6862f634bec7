package api

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type apiMetrics struct {
	requests  *prometheus.CounterVec
	durations *prometheus.HistogramVec
}

var (
	apiMetricsOnce sync.Once
	apiMetricsInst *apiMetrics
)

func globalAPIMetrics() *apiMetrics {
	apiMetricsOnce.Do(func() {
		apiMetricsInst = &apiMetrics{
			requests: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "biasbot",
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "HTTP requests, labeled by method, route, and status",
			}, []string{"method", "route", "status"}),
			durations: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: "biasbot",
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration, labeled by route",
				Buckets:   prometheus.DefBuckets,
			}, []string{"route"}),
		}
	})
	return apiMetricsInst
}

// metricsMiddleware records a counter and duration sample per request.
func metricsMiddleware() gin.HandlerFunc {
	m := globalAPIMetrics()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.durations.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
