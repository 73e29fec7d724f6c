// Package metrics exposes the Prometheus collectors served on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_http_request_duration_seconds",
		Help:    "HTTP request latency by route and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	CafeOrders = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_cafe_orders_total",
		Help: "Cafe orders by outcome (placed, rejected, cancelled).",
	}, []string{"result"})

	Enrollments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gym_enrollments_total",
		Help: "Members enrolled.",
	})

	Payments = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gym_payments_total",
		Help: "Payments recorded.",
	})

	SMSMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_sms_messages_total",
		Help: "SMS delivery attempts by message type and status.",
	}, []string{"type", "status"})
)

// Middleware records request latency under the matched route template so
// ids in paths do not explode label cardinality.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		RequestDuration.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
