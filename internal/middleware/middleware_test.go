package middleware

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusExposesRouteMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(Prometheus())
	app.Get("/metrics", MetricsHandler())
	app.Get("/api/orders/:id", func(c *fiber.Ctx) error {
		RecordOperation("order_get", true)
		return c.SendString("ok")
	})

	res, err := app.Test(httptest.NewRequest("GET", "/api/orders/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	res, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)

	assert.Contains(t, string(body), `market_http_requests_total{method="GET",path="/api/orders/:id",status="200"}`)
	assert.Contains(t, string(body), `market_operations_total{operation="order_get",status="success"}`)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	prevOut, prevFormatter := log.StandardLogger().Out, log.StandardLogger().Formatter
	log.SetOutput(&buf)
	log.SetFormatter(&log.JSONFormatter{})
	t.Cleanup(func() {
		log.SetOutput(prevOut)
		log.SetFormatter(prevFormatter)
	})

	app := fiber.New()
	app.Use(requestid.New())
	app.Use(RequestLogger())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	res, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, res.StatusCode)

	line := buf.String()
	assert.Contains(t, line, `"path":"/health"`)
	assert.Contains(t, line, `"status":200`)
	assert.Contains(t, line, `"request_id"`)
	assert.NotContains(t, line, `"user_id"`)
}
