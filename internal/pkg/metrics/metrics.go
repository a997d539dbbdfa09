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
		Namespace: "flyover",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "flyover",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Engine metrics
	RoutesResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "routes_resolved_total",
		Help:      "Route resolutions by outcome (ok, no_route, network_error, stale)",
	}, []string{"outcome"})

	RouteResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "route_resolve_duration_seconds",
		Help:      "Latency of directions provider calls",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	StaleChainsAbandoned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "stale_chains_abandoned_total",
		Help:      "Async chains that observed a newer generation and unwound",
	})

	SequencesInterrupted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "camera_sequences_interrupted_total",
		Help:      "Cinematic camera sequences cut short by user interruption",
	})

	RoutesCleared = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "routes_cleared_total",
		Help:      "Explicit route teardowns (background click, close action)",
	})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "active_sessions",
		Help:      "Currently connected map client sessions",
	})

	IntroRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "flyover",
		Subsystem: "engine",
		Name:      "intro_runs_total",
		Help:      "Intro sequence outcomes (started, autoplay_blocked, manual_start)",
	}, []string{"outcome"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
