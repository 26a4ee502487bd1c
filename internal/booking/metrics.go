package booking

import (
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"carwash/internal/bookingstate"
)

var (
	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "carwash_booking_transitions_total",
		Help: "Booking state transitions by action and result",
	}, []string{"action", "result"})

	bookingsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "carwash_bookings_created_total",
		Help: "Bookings created and initialized to draft",
	})
)

func recordTransition(action bookingstate.Action, err error) {
	transitionsTotal.WithLabelValues(action.String(), transitionResult(err)).Inc()
}

func transitionResult(err error) string {
	if err == nil {
		return "ok"
	}
	if k := bookingstate.KindOf(err); k != "" {
		return strings.ToLower(string(k))
	}
	if errors.Is(err, ErrNotFound) {
		return "not_found"
	}
	return "error"
}
