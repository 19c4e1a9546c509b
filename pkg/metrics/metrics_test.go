package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBookingAttempt("created", "PENDING")
	m.ObserveBookingAttempt("conflict", "PENDING")
	m.ObserveBookingAttempt("conflict", "PENDING")
	m.ObserveStatusTransition("PENDING", "CANCELLED", "success")
	m.ObserveBlockChange("add", "conflict")
	m.ObserveHTTPRequest("POST", 409, 20*time.Millisecond)
	m.ObserveEventPublish("booking.created", errors.New("broker down"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingAttempts.WithLabelValues("created", "PENDING")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingAttempts.WithLabelValues("conflict", "PENDING")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.statusTransitions.WithLabelValues("PENDING", "CANCELLED", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.blockChanges.WithLabelValues("add", "conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "4xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("booking.created", "error")))
}

func TestMetrics_Histograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveSlotQuery("success", 3*time.Millisecond)
	m.ObserveLockWait("redis", 10*time.Millisecond, true)
	m.ObserveLockWait("redis", time.Second, false)

	families, err := reg.Gather()
	require.NoError(t, err)

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["slotkeeper_slot_query_duration_seconds"])
	assert.True(t, found["slotkeeper_occupancy_lock_wait_seconds"])
	assert.Equal(t, 2, testutil.CollectAndCount(m.lockWait))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveBookingAttempt("created", "CONFIRMED")
		m.ObserveStatusTransition("PENDING", "CONFIRMED", "success")
		m.ObserveBlockChange("remove", "success")
		m.ObserveSlotQuery("success", time.Millisecond)
		m.ObserveLockWait("local", time.Millisecond, true)
		m.ObserveHTTPRequest("GET", 200, time.Millisecond)
		m.ObserveEventPublish("block.created", nil, time.Millisecond)
	})
}
