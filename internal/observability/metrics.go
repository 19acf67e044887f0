// Package observability holds the prometheus collectors of the service.
package observability

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups every collector. A nil *Metrics is valid and records nothing.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec
	RequestsDuration *prometheus.HistogramVec
	RatingsSubmitted *prometheus.CounterVec
	FormRejections   *prometheus.CounterVec
	EventsConsumed   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storerating",
				Name:      "http_requests_total",
				Help:      "Total HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		RequestsDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "storerating",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency distributions.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route", "status"},
		),
		RatingsSubmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storerating",
				Name:      "ratings_submitted_total",
				Help:      "Ratings submitted, by whether they created or changed a rating.",
			},
			[]string{"kind"}, // created|updated
		),
		FormRejections: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storerating",
				Name:      "form_rejections_total",
				Help:      "Form submissions rejected by field validation.",
			},
			[]string{"form"},
		),
		EventsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "storerating",
				Name:      "events_consumed_total",
				Help:      "Rating events consumed from the broker, by result.",
			},
			[]string{"result"}, // ok|error
		),
	}
	reg.MustRegister(m.RequestsTotal, m.RequestsDuration, m.RatingsSubmitted, m.FormRejections, m.EventsConsumed)
	return m
}

// RatingSubmitted counts one stored rating.
func (m *Metrics) RatingSubmitted(updated bool) {
	if m == nil {
		return
	}
	kind := "created"
	if updated {
		kind = "updated"
	}
	m.RatingsSubmitted.WithLabelValues(kind).Inc()
}

// FormRejected counts one submission that failed validation.
func (m *Metrics) FormRejected(form string) {
	if m == nil {
		return
	}
	m.FormRejections.WithLabelValues(form).Inc()
}

// EventConsumed counts one consumed broker message.
func (m *Metrics) EventConsumed(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.EventsConsumed.WithLabelValues(result).Inc()
}

// FiberMiddleware records request count and latency per route template.
func (m *Metrics) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		labels := []string{c.Method(), route, strconv.Itoa(status)}
		m.RequestsTotal.WithLabelValues(labels...).Inc()
		m.RequestsDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
		return err
	}
}
