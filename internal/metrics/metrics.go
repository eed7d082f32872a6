// Package metrics exposes Prometheus instrumentation for booking operations.
package metrics

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/saeid-a/StudioBookingBack/internal/apperr"
)

var (
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_booking_operations_total",
		Help: "Booking operations by outcome kind.",
	}, []string{"operation", "outcome"})

	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "studio_booking_operation_duration_seconds",
		Help:    "Latency of booking operations.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})

	expirationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_lazy_expirations_total",
		Help: "Records moved to EXPIRED while serving a request.",
	}, []string{"record"})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_events_published_total",
		Help: "Domain events handed to the broker.",
	}, []string{"type", "result"})
)

// Outcome is "ok" for nil and the lowercased error kind otherwise.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(apperr.KindOf(err)))
}

func ObserveOperation(operation string, started time.Time, err error) {
	operationsTotal.WithLabelValues(operation, Outcome(err)).Inc()
	operationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}

func RecordExpirations(record string, count int) {
	if count > 0 {
		expirationsTotal.WithLabelValues(record).Add(float64(count))
	}
}

func RecordPublish(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsTotal.WithLabelValues(eventType, result).Inc()
}

func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
