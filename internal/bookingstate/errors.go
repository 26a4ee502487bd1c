package bookingstate

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotInitialized       Kind = "NOT_INITIALIZED"
	KindInvalidTransition    Kind = "INVALID_TRANSITION"
	KindAlreadyInitialized   Kind = "ALREADY_INITIALIZED"
	KindConcurrentTransition Kind = "CONCURRENT_TRANSITION"
	KindPersistence          Kind = "PERSISTENCE_FAILURE"
)

// ErrSequenceConflict is returned by a Store when a record with the same
// (booking id, sequence) already exists.
var ErrSequenceConflict = errors.New("history sequence already taken")

// Error is the failure type returned by Engine. State and Action are set when they
// are known at the point of failure.
type Error struct {
	Kind      Kind
	BookingID string
	State     State
	Action    Action
	Err       error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindNotInitialized:
		return fmt.Sprintf("booking %s has no state history", e.BookingID)
	case KindInvalidTransition:
		return fmt.Sprintf("cannot %s booking %s from %s", e.Action, e.BookingID, e.State)
	case KindAlreadyInitialized:
		return fmt.Sprintf("booking %s is already initialized (state %s)", e.BookingID, e.State)
	case KindConcurrentTransition:
		return fmt.Sprintf("booking %s changed state concurrently", e.BookingID)
	default:
		if e.Err != nil {
			return fmt.Sprintf("booking %s: persistence failure: %v", e.BookingID, e.Err)
		}
		return fmt.Sprintf("booking %s: persistence failure", e.BookingID)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or "" if err is not an engine error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}
