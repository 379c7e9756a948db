package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMiddleware records request counts and latencies per route pattern.
type PrometheusMiddleware struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	skip     map[string]struct{}
}

// NewPrometheusMiddleware registers the HTTP metrics on reg. Requests whose path
// is in skip (by default only /metrics) are not recorded. Registering twice on
// the same registry fails.
func NewPrometheusMiddleware(reg prometheus.Registerer, skip ...string) (*PrometheusMiddleware, error) {
	if len(skip) == 0 {
		skip = []string{"/metrics"}
	}
	m := &PrometheusMiddleware{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests handled, by method, route and status.",
		}, []string{"method", "path", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		skip: make(map[string]struct{}, len(skip)),
	}
	for _, p := range skip {
		m.skip[p] = struct{}{}
	}

	for _, c := range []prometheus.Collector{m.requests, m.latency} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Handler returns the fiber middleware handler.
func (m *PrometheusMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if _, ok := m.skip[c.Path()]; ok {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()

		// /books/:id rather than the concrete id keeps label cardinality bounded.
		route := c.Route().Path
		if route == "" {
			route = c.Path()
		}
		method := c.Method()

		m.requests.WithLabelValues(method, route, strconv.Itoa(statusOf(c, err))).Inc()
		m.latency.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
