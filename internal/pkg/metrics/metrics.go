package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geomeasure",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geomeasure",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Measurement metrics
	MeasurementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "measure",
		Name:      "results_total",
		Help:      "Total measurements computed",
	}, []string{"kind"})

	SegmentsAccepted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "measure",
		Name:      "segments_accepted_total",
		Help:      "Total drawn segments accepted by a session",
	}, []string{"mode"})

	SegmentsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "measure",
		Name:      "segments_rejected_total",
		Help:      "Total drawn segments rejected",
	}, []string{"reason"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "geomeasure",
		Subsystem: "ws",
		Name:      "active_sessions",
		Help:      "Current number of drawing sessions connected over WebSocket",
	})

	PreferenceLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "cache",
		Name:      "preference_lookups_total",
		Help:      "Unit preference lookups by outcome",
	}, []string{"outcome"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geomeasure",
		Subsystem: "nats",
		Name:      "events_published_total",
		Help:      "Measurement events published to NATS",
	}, []string{"kind", "status"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		// fiber resolves the route pattern, which keeps label cardinality low
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
