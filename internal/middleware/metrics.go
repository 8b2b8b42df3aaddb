package middleware

import (
	"strconv"
	"time"

	"tonetranslate-go/internal/monitoring"

	"github.com/gin-gonic/gin"
)

// statusClass buckets a status code as "2xx", "4xx"...; 0 or less is "error".
func statusClass(code int) string {
	if code <= 0 {
		return "error"
	}
	return strconv.Itoa(code/100) + "xx"
}

// Metrics records request count and latency per method, route template and
// status class. Requests that match no route share the "unmatched" label.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		monitoring.HTTPInFlight.Inc()
		defer monitoring.HTTPInFlight.Dec()

		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		labels := []string{c.Request.Method, route, statusClass(c.Writer.Status())}
		monitoring.HTTPRequestsTotal.WithLabelValues(labels...).Inc()
		monitoring.HTTPRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
	}
}

// SetRateLimitKeyGauge sets the current per-key limiter count.
func SetRateLimitKeyGauge(n int) {
	monitoring.RateLimitKeysGauge.Set(float64(n))
}

// RecordRateLimitSweep increments the sweep counter for TTL cache.
func RecordRateLimitSweep() {
	monitoring.RateLimitSweepsTotal.Inc()
}

// RecordRateLimitRejection counts a 429 issued by the limiter.
func RecordRateLimitRejection() {
	monitoring.RateLimitRejectionsTotal.Inc()
}

// RecordDemoResponse counts a request answered from the canned demo table.
func RecordDemoResponse(reason string) {
	monitoring.DemoResponsesTotal.WithLabelValues(reason).Inc()
}
