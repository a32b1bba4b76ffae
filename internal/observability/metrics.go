package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API and the fetch
// pipeline.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	fetchesTotal        *prometheus.CounterVec
	fetchFailuresTotal  *prometheus.CounterVec
	queryDuration       *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acl_notify",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acl_notify",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acl_notify",
				Name:      "notification_fetches_total",
				Help:      "Total number of successful notification fetches by perspective.",
			},
			[]string{"perspective"},
		),
		fetchFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acl_notify",
				Name:      "notification_fetch_failures_total",
				Help:      "Total number of failed notification fetches by perspective and reason.",
			},
			[]string{"perspective", "reason"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "acl_notify",
				Name:      "notification_query_duration_seconds",
				Help:      "Notification statement execution duration in seconds by perspective.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"perspective"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.fetchesTotal,
		m.fetchFailuresTotal,
		m.queryDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncFetchSucceeded(perspective string) {
	if m == nil {
		return
	}
	m.fetchesTotal.WithLabelValues(normalizeLabel(perspective)).Inc()
}

func (m *Metrics) IncFetchFailed(perspective, reason string) {
	if m == nil {
		return
	}
	m.fetchFailuresTotal.WithLabelValues(normalizeLabel(perspective), normalizeLabel(reason)).Inc()
}

func (m *Metrics) ObserveQueryDuration(perspective string, d time.Duration) {
	if m == nil {
		return
	}
	m.queryDuration.WithLabelValues(normalizeLabel(perspective)).Observe(d.Seconds())
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		path := routePath(c)
		m.httpRequestsTotal.WithLabelValues(c.Method(), path, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(c.Method(), path).Observe(time.Since(start).Seconds())

		return err
	}
}

func routePath(c *fiber.Ctx) string {
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}

	path := strings.TrimSpace(c.Path())
	if path == "" {
		return "/"
	}
	return path
}

func normalizeLabel(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
