package utils

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMustNewMetrics_CountsActivity(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.IncBooking("booked")
	m.IncBooking("booked")
	m.IncBooking("conflict")
	m.IncFreeSlotQuery()
	m.IncPotentialSlotCreated()
	m.ObserveStoreOp("find_overlapping", 25*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookings.WithLabelValues("booked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookings.WithLabelValues("conflict")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.freeSlotReads))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.potentialSlots))
	assert.Equal(t, 1, testutil.CollectAndCount(m.storeOpSeconds))
}

func TestMustNewMetrics_ReusesExistingCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)

	// A second construction against the same registry must not panic and must
	// share the underlying collectors.
	var second *Metrics
	require.NotPanics(t, func() {
		second = MustNewMetrics(reg)
	})

	first.IncBooking("booked")
	assert.Equal(t, 1.0, testutil.ToFloat64(second.bookings.WithLabelValues("booked")))
}

func TestMetrics_NilReceiverIsSafe(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncBooking("booked")
		m.IncFreeSlotQuery()
		m.IncPotentialSlotCreated()
		m.ObserveStoreOp("create", time.Millisecond)
	})

	zero := &Metrics{}
	assert.NotPanics(t, func() {
		zero.IncBooking("booked")
		zero.ObserveStoreOp("create", time.Millisecond)
	})
}

func TestDefaultMetrics_Singleton(t *testing.T) {
	assert.Same(t, DefaultMetrics(), DefaultMetrics())
}
