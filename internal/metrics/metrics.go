package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fotobook",
			Name:      "booking_created_total",
			Help:      "Count of appointments committed by users.",
		},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fotobook",
			Name:      "booking_cancelled_total",
			Help:      "Count of booking dialogs cancelled before commit.",
		},
	)

	adminDecision = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fotobook",
			Name:      "admin_decision_total",
			Help:      "Count of admin decisions over appointments.",
		},
		[]string{"decision"},
	)

	sessionsExpired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fotobook",
			Name:      "sessions_expired_total",
			Help:      "Count of booking sessions dropped by the idle sweep.",
		},
	)

	reviewCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fotobook",
			Name:      "review_created_total",
			Help:      "Count of reviews left by users.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, adminDecision, sessionsExpired, reviewCreated)
	})
}

func IncBookingCreated() {
	bookingCreated.Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncAdminDecision(decision string) {
	adminDecision.WithLabelValues(decision).Inc()
}

func AddSessionsExpired(n int) {
	sessionsExpired.Add(float64(n))
}

func IncReviewCreated() {
	reviewCreated.Inc()
}
