package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "market",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "market",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "path", "status"},
	)

	operations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "market",
			Name:      "operations_total",
			Help:      "Total number of domain operations by outcome",
		},
		[]string{"operation", "status"},
	)
)

// Prometheus records request count and latency labelled by the matched route
// pattern so ids in the URL do not explode cardinality.
func Prometheus() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			}
		}
		code := strconv.Itoa(status)

		httpRequestsTotal.WithLabelValues(c.Method(), path, code).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), path, code).Observe(time.Since(start).Seconds())
		return err
	}
}

// RecordOperation counts one domain operation, e.g. ("order_create", true).
func RecordOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	operations.WithLabelValues(operation, status).Inc()
}

// MetricsHandler exposes the default registry on a fiber route.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
