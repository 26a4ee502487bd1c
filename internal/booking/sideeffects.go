package booking

import (
	"context"
	"fmt"

	"carwash/internal/bookingstate"
	"carwash/internal/vehicle"
	"carwash/pkg/db"
)

// SideEffect runs inside the transition transaction after the new state is recorded.
type SideEffect struct {
	Name  string
	Apply func(ctx context.Context, conn db.DBTX, b *Booking) error
}

var washLabels = map[bookingstate.State]string{
	bookingstate.StateDraft:      "Awaiting Wash",
	bookingstate.StateBooked:     "Booked",
	bookingstate.StateInProgress: "Washing",
	bookingstate.StateDeparted:   "Departed",
	bookingstate.StateCompleted:  "Washed",
	bookingstate.StateCancelled:  "Not Washed",
}

// WashLabel is the vehicle label shown for a booking in st.
func WashLabel(st bookingstate.State) (string, bool) {
	l, ok := washLabels[st]
	return l, ok
}

// setWashLabel writes the vehicle's label. A vehicle can have several bookings;
// the label follows the oldest one that is still active, so a newer booking leaves
// it alone until the earlier visit completes or is cancelled.
func setWashLabel(label string) SideEffect {
	return SideEffect{
		Name: "vehicle.wash_status=" + label,
		Apply: func(ctx context.Context, conn db.DBTX, b *Booking) error {
			busy, err := olderActiveBooking(ctx, conn, b.ID)
			if err != nil {
				return err
			}
			if busy {
				return nil
			}
			return vehicle.UpdateWashLabel(ctx, conn, b.VehicleID, label)
		},
	}
}

// SideEffectsFor returns what entering st triggers. States without effects return nil.
func SideEffectsFor(st bookingstate.State) []SideEffect {
	label, ok := washLabels[st]
	if !ok {
		return nil
	}
	return []SideEffect{setWashLabel(label)}
}

func applySideEffects(ctx context.Context, conn db.DBTX, b *Booking, st bookingstate.State) error {
	for _, se := range SideEffectsFor(st) {
		if err := se.Apply(ctx, conn, b); err != nil {
			return fmt.Errorf("side effect %s: %w", se.Name, err)
		}
	}
	return nil
}
