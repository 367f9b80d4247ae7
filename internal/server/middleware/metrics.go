package middleware

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kbukum/studentms/internal/logger"
	"github.com/kbukum/studentms/internal/observability"
)

var (
	metricsOnce     sync.Once
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
)

// initInstruments creates the request instruments lazily so the middleware
// picks up whichever meter provider is installed by then (no-op when
// observability is disabled).
func initInstruments() {
	meter := observability.Meter("studentms/server")

	var err error
	requestTotal, err = meter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		logger.Warn("Creating request counter failed", map[string]interface{}{"error": err.Error()})
	}
	requestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("Duration of HTTP requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		logger.Warn("Creating request histogram failed", map[string]interface{}{"error": err.Error()})
	}
}

// RequestMetrics returns middleware that records request count and duration
// per method/route/status.
func RequestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		metricsOnce.Do(initInstruments)

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := metric.WithAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status", strconv.Itoa(c.Writer.Status())),
		)

		ctx := c.Request.Context()
		if requestTotal != nil {
			requestTotal.Add(ctx, 1, attrs)
		}
		if requestDuration != nil {
			requestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		}
	}
}
