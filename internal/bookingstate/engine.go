package bookingstate

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Engine decides and records booking state changes. It holds no per-booking state and
// performs no locking; callers either serialize transitions per booking or rely on the
// store's sequence check to reject the loser of a race.
type Engine struct {
	table Table
	store Store
	now   func() time.Time
	newID func() string
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

func NewEngine(table Table, store Store, opts ...Option) *Engine {
	e := &Engine{
		table: table,
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Result describes an applied transition.
type Result struct {
	BookingID string `json:"bookingId"`
	Action    Action `json:"action"`
	OldState  State  `json:"oldState"`
	NewState  State  `json:"newState"`
	Record    Record `json:"record"`
}

func (e *Engine) Table() Table { return e.table }

func (e *Engine) IsValidTransition(state State, action Action) bool {
	return e.table.IsValidTransition(state, action)
}

func (e *Engine) ValidActions(state State) []Action {
	return e.table.ValidActions(state)
}

// CurrentState returns the newest recorded state. found is false when the booking has
// no history yet and should be initialized.
func (e *Engine) CurrentState(ctx context.Context, bookingID string) (State, bool, error) {
	latest, err := e.store.LatestHistory(ctx, bookingID)
	if err != nil {
		return "", false, persistenceErr(bookingID, err)
	}
	if latest == nil {
		return "", false, nil
	}
	return latest.NewState, true, nil
}

// History returns the booking's records oldest first. Each call reads the store again.
func (e *Engine) History(ctx context.Context, bookingID string) ([]Record, error) {
	recs, err := e.store.History(ctx, bookingID)
	if err != nil {
		return nil, persistenceErr(bookingID, err)
	}
	if recs == nil {
		recs = []Record{}
	}
	return recs, nil
}

// InitializeBooking writes the first record (null -> draft). It fails with
// KindAlreadyInitialized if any history exists.
func (e *Engine) InitializeBooking(ctx context.Context, bookingID, actorID string) (Record, error) {
	latest, err := e.store.LatestHistory(ctx, bookingID)
	if err != nil {
		return Record{}, persistenceErr(bookingID, err)
	}
	if latest != nil {
		return Record{}, &Error{Kind: KindAlreadyInitialized, BookingID: bookingID, State: latest.NewState}
	}

	rec := Record{
		ID:        e.newID(),
		BookingID: bookingID,
		Sequence:  1,
		OldState:  nil,
		NewState:  StateDraft,
		ActorID:   actorID,
		Timestamp: e.now().UTC(),
	}
	if err := e.store.AppendHistory(ctx, rec); err != nil {
		if errors.Is(err, ErrSequenceConflict) {
			return Record{}, &Error{Kind: KindAlreadyInitialized, BookingID: bookingID, Err: err}
		}
		return Record{}, persistenceErr(bookingID, err)
	}
	return rec, nil
}

// TransitionState applies action to the booking's current state and appends the
// resulting record. Nothing is written when it returns an error.
func (e *Engine) TransitionState(ctx context.Context, bookingID string, action Action, actorID string) (Result, error) {
	latest, err := e.store.LatestHistory(ctx, bookingID)
	if err != nil {
		return Result{}, persistenceErr(bookingID, err)
	}
	if latest == nil {
		return Result{}, &Error{Kind: KindNotInitialized, BookingID: bookingID, Action: action}
	}

	current := latest.NewState
	tr, ok := e.table.Lookup(current, action)
	if !ok {
		return Result{}, &Error{Kind: KindInvalidTransition, BookingID: bookingID, State: current, Action: action}
	}

	from := current
	rec := Record{
		ID:        e.newID(),
		BookingID: bookingID,
		Sequence:  latest.Sequence + 1,
		OldState:  &from,
		NewState:  tr.ToState,
		ActorID:   actorID,
		Timestamp: e.now().UTC(),
	}
	if err := e.store.AppendHistory(ctx, rec); err != nil {
		if errors.Is(err, ErrSequenceConflict) {
			return Result{}, &Error{Kind: KindConcurrentTransition, BookingID: bookingID, State: current, Action: action, Err: err}
		}
		return Result{}, persistenceErr(bookingID, err)
	}

	return Result{
		BookingID: bookingID,
		Action:    action,
		OldState:  current,
		NewState:  tr.ToState,
		Record:    rec,
	}, nil
}

func persistenceErr(bookingID string, err error) error {
	return &Error{Kind: KindPersistence, BookingID: bookingID, Err: err}
}
