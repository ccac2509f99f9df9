package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cservice",
			Name:      "bookings_created_total",
			Help:      "Count of bookings created by service type.",
		},
		[]string{"service_type"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cservice",
			Name:      "booking_conflicts_total",
			Help:      "Count of create or reschedule attempts rejected because the slot was taken.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cservice",
			Name:      "bookings_cancelled_total",
			Help:      "Count of bookings cancelled by users.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingConflicts, bookingCancelled)
	})
}

func IncBookingCreated(serviceType string) {
	bookingCreated.WithLabelValues(serviceType).Inc()
}

func IncBookingConflict() {
	bookingConflicts.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}
