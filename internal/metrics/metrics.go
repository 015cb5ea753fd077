package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for the business counters.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)

	sessionJoins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_session_joins_total",
			Help: "Session join attempts by outcome",
		},
		[]string{"result"},
	)
	checkIns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gym_checkins_total",
			Help: "QR check-in attempts by outcome",
		},
		[]string{"result"},
	)
	creditsSpent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gym_credits_spent_total",
			Help: "Credits debited by joins and check-ins",
		},
	)
)

// PrometheusMiddleware records count and latency per route template.
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		httpRequestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the default registry for scraping.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveSessionJoin(result string, credits int) {
	sessionJoins.WithLabelValues(result).Inc()
	if result == ResultSuccess && credits > 0 {
		creditsSpent.Add(float64(credits))
	}
}

func ObserveCheckIn(result string) {
	checkIns.WithLabelValues(result).Inc()
	if result == ResultSuccess {
		creditsSpent.Inc()
	}
}
