// Package metrics exposes the engine's Prometheus instruments. All methods
// are safe on a nil *Metrics so components can run without a registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "slotkeeper"

type Metrics struct {
	bookingAttempts   *prometheus.CounterVec
	statusTransitions *prometheus.CounterVec
	blockChanges      *prometheus.CounterVec
	slotQueryDuration *prometheus.HistogramVec
	lockWait          *prometheus.HistogramVec
	httpRequests      *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
	eventsPublished   *prometheus.CounterVec
	eventPublishTime  *prometheus.HistogramVec
}

// New registers the instruments with reg, or with the default registerer
// when reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		bookingAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_attempts_total",
			Help:      "Create-booking attempts by outcome (created, conflict, out_of_window, past, not_found, invalid, error).",
		}, []string{"outcome", "initial_status"}),
		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_status_transitions_total",
			Help:      "Booking status change requests by source, target and outcome.",
		}, []string{"from", "to", "outcome"}),
		blockChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocked_interval_changes_total",
			Help:      "Blocked interval add/remove operations by outcome.",
		}, []string{"operation", "outcome"}),
		slotQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slot_query_duration_seconds",
			Help:      "Time to compute free slots.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		lockWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "occupancy_lock_wait_seconds",
			Help:      "Time spent waiting for a per-specialist-day lock.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"backend", "acquired"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		eventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Domain events handed to Kafka by type and outcome.",
		}, []string{"event_type", "outcome"}),
		eventPublishTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "event_publish_duration_seconds",
			Help:      "Kafka publish latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"event_type"}),
	}

	reg.MustRegister(
		m.bookingAttempts,
		m.statusTransitions,
		m.blockChanges,
		m.slotQueryDuration,
		m.lockWait,
		m.httpRequests,
		m.httpDuration,
		m.eventsPublished,
		m.eventPublishTime,
	)
	return m
}

func (m *Metrics) ObserveBookingAttempt(outcome, initialStatus string) {
	if m == nil {
		return
	}
	m.bookingAttempts.WithLabelValues(outcome, initialStatus).Inc()
}

func (m *Metrics) ObserveStatusTransition(from, to, outcome string) {
	if m == nil {
		return
	}
	m.statusTransitions.WithLabelValues(from, to, outcome).Inc()
}

func (m *Metrics) ObserveBlockChange(operation, outcome string) {
	if m == nil {
		return
	}
	m.blockChanges.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveSlotQuery(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.slotQueryDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) ObserveLockWait(backend string, d time.Duration, acquired bool) {
	if m == nil {
		return
	}
	label := "false"
	if acquired {
		label = "true"
	}
	m.lockWait.WithLabelValues(backend, label).Observe(d.Seconds())
}

func (m *Metrics) ObserveHTTPRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, statusLabel(status)).Inc()
	m.httpDuration.WithLabelValues(method).Observe(d.Seconds())
}

func (m *Metrics) ObserveEventPublish(eventType string, err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.eventsPublished.WithLabelValues(eventType, outcome).Inc()
	m.eventPublishTime.WithLabelValues(eventType).Observe(d.Seconds())
}

func statusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
