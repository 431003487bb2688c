package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	RealtimeOnlineUsers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_online_users",
			Help: "Currently connected WebSocket users",
		},
	)

	RealtimeEventCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Realtime events by type and direction",
		},
		[]string{"type", "direction"},
	)

	FlagSubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ctf_flag_submissions_total",
			Help: "Flag submissions by outcome",
		},
		[]string{"outcome"},
	)

	ChatProxyCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_chat_requests_total",
			Help: "AI chat proxy requests by provider and outcome",
		},
		[]string{"provider", "outcome"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(RealtimeOnlineUsers)
	prometheus.MustRegister(RealtimeEventCounter)
	prometheus.MustRegister(FlagSubmissionCounter)
	prometheus.MustRegister(ChatProxyCounter)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
