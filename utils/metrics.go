// File: utils/metrics.go
package utils

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors that report scheduling activity.
type Metrics struct {
	bookings       *prometheus.CounterVec
	freeSlotReads  prometheus.Counter
	potentialSlots prometheus.Counter
	storeOpSeconds *prometheus.HistogramVec
}

var (
	defaultMetricsOnce sync.Once
	sharedMetrics      *Metrics
)

// DefaultMetrics returns the package-level metrics instance registered with
// the global Prometheus registry. The collectors are created only once to
// avoid duplicate registration panics when the engine is instantiated more
// than once (e.g. in unit tests).
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		sharedMetrics = MustNewMetrics(prometheus.DefaultRegisterer)
	})
	return sharedMetrics
}

// MustNewMetrics constructs a Metrics instance using the provided registerer.
// Callers supply a fresh registry when unique metric names are required (for
// example in tests). Registration errors panic, mirroring promauto semantics.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	bookings := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "slotify",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Booking attempts partitioned by outcome.",
		},
		[]string{"outcome"},
	)
	freeSlotReads := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotify",
			Subsystem: "scheduling",
			Name:      "free_slot_queries_total",
			Help:      "Total number of free-slot range queries served.",
		},
	)
	potentialSlots := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "slotify",
			Subsystem: "scheduling",
			Name:      "potential_slots_created_total",
			Help:      "Total number of potential slots added to the store.",
		},
	)
	storeOpSeconds := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "slotify",
			Subsystem: "store",
			Name:      "op_duration_seconds",
			Help:      "Duration of slot store operations.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	collectors := []prometheus.Collector{bookings, freeSlotReads, potentialSlots, storeOpSeconds}
	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				switch collector {
				case bookings:
					bookings = already.ExistingCollector.(*prometheus.CounterVec)
				case freeSlotReads:
					freeSlotReads = already.ExistingCollector.(prometheus.Counter)
				case potentialSlots:
					potentialSlots = already.ExistingCollector.(prometheus.Counter)
				case storeOpSeconds:
					storeOpSeconds = already.ExistingCollector.(*prometheus.HistogramVec)
				}
				continue
			}
			panic(err)
		}
	}

	return &Metrics{
		bookings:       bookings,
		freeSlotReads:  freeSlotReads,
		potentialSlots: potentialSlots,
		storeOpSeconds: storeOpSeconds,
	}
}

// IncBooking increments the booking counter for the given outcome label.
func (m *Metrics) IncBooking(outcome string) {
	if m == nil || m.bookings == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
}

// IncFreeSlotQuery increments the free-slot query counter.
func (m *Metrics) IncFreeSlotQuery() {
	if m == nil || m.freeSlotReads == nil {
		return
	}
	m.freeSlotReads.Inc()
}

// IncPotentialSlotCreated increments the potential-slot creation counter.
func (m *Metrics) IncPotentialSlotCreated() {
	if m == nil || m.potentialSlots == nil {
		return
	}
	m.potentialSlots.Inc()
}

// ObserveStoreOp records the time spent in a slot store operation.
func (m *Metrics) ObserveStoreOp(op string, duration time.Duration) {
	if m == nil || m.storeOpSeconds == nil {
		return
	}
	m.storeOpSeconds.WithLabelValues(op).Observe(duration.Seconds())
}
