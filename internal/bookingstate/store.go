package bookingstate

import (
	"context"
	"time"
)

// Record is one immutable entry of a booking's state history. OldState is nil for the
// initializing record. Sequence starts at 1 and is unique per booking.
type Record struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	Sequence  int       `json:"sequence"`
	OldState  *State    `json:"oldState"`
	NewState  State     `json:"newState"`
	ActorID   string    `json:"actorId"`
	Timestamp time.Time `json:"timestamp"`
}

// Store persists state history. AppendHistory must fail with ErrSequenceConflict when
// the (BookingID, Sequence) pair already exists; that check is what keeps two
// concurrent transitions from both applying on top of the same snapshot.
type Store interface {
	LatestHistory(ctx context.Context, bookingID string) (*Record, error)
	History(ctx context.Context, bookingID string) ([]Record, error)
	AppendHistory(ctx context.Context, rec Record) error
}
