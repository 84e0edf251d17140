package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "agent_trainer"

// HTTP metrics (incremented by middleware).
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests processed.",
	}, []string{"method", "path_pattern", "status_code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path_pattern"})
)

// Voice analysis metrics (incremented directly by the pipeline).
var (
	VoiceAnalysesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "voice_analyses_total",
		Help:      "Voice analyses by outcome.",
	}, []string{"outcome"})

	VoiceAnalysisDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "voice_analysis_duration_seconds",
		Help:      "End-to-end voice analysis duration in seconds.",
		Buckets:   []float64{1, 2.5, 5, 10, 20, 30, 60, 120, 300},
	})

	ToneFallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tone_fallbacks_total",
		Help:      "Tone scoring calls that degraded to neutral scores.",
	}, []string{"reason"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "provider_request_duration_seconds",
		Help:      "External provider call duration in seconds.",
		Buckets:   []float64{0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"provider", "operation"})
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		VoiceAnalysesTotal,
		VoiceAnalysisDuration,
		ToneFallbacksTotal,
		ProviderRequestDuration,
	)
}

// ObserveProvider records the duration of one external provider call
func ObserveProvider(provider, operation string, start time.Time) {
	ProviderRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// Middleware records HTTP request metrics.
// It uses echo's route pattern as the path label to avoid cardinality explosion.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}

			pattern := c.Path()
			if pattern == "" {
				pattern = "unknown"
			}
			method := c.Request().Method

			HTTPRequestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
			HTTPRequestDuration.WithLabelValues(method, pattern).Observe(time.Since(start).Seconds())
			return err
		}
	}
}
