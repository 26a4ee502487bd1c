package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"carwash/internal/audit"
	"carwash/internal/bookingstate"
	"carwash/internal/pos"
	"carwash/internal/statehistory"
	"carwash/internal/vehicle"
	"carwash/pkg/db"
)

// Workflow is what the HTTP layer needs from the booking service.
type Workflow interface {
	Create(ctx context.Context, actorID string, in CreateInput) (*Detail, error)
	Get(ctx context.Context, id string) (*Detail, error)
	List(ctx context.Context, f ListFilter) (*Page, error)
	History(ctx context.Context, id string) ([]bookingstate.Record, error)
	Activity(ctx context.Context, id string) ([]audit.Entry, error)
	Initialize(ctx context.Context, id, actorID string) (bookingstate.Record, error)
	Transition(ctx context.Context, id string, action bookingstate.Action, actorID string) (bookingstate.Result, error)
}

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Service runs each booking write in one Postgres transaction. The engine is
// bound to that transaction, so the history append, the denormalized status, the
// side effects and the audit row commit or roll back together.
type Service struct {
	db       *pgxpool.Pool
	table    bookingstate.Table
	taxRate  decimal.Decimal
	currency string
	log      zerolog.Logger
	now      func() time.Time
}

type ServiceConfig struct {
	Table    bookingstate.Table
	TaxRate  decimal.Decimal
	Currency string
	Logger   zerolog.Logger
}

func NewService(pool *pgxpool.Pool, cfg ServiceConfig) *Service {
	return &Service{
		db:       pool,
		table:    cfg.Table,
		taxRate:  cfg.TaxRate,
		currency: cfg.Currency,
		log:      cfg.Logger,
		now:      time.Now,
	}
}

var _ Workflow = (*Service)(nil)

func (s *Service) engine(conn db.DBTX) *bookingstate.Engine {
	return bookingstate.NewEngine(s.table, statehistory.NewRepository(conn), bookingstate.WithClock(s.now))
}

func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (*Detail, error) {
	totals, err := pos.CalculateTotals(in.Cart, s.taxRate, s.currency, pos.DefaultCurrencyScale)
	if err != nil {
		return nil, err
	}

	var bookingID string
	err = db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		v, err := vehicle.Upsert(ctx, tx, in.Vehicle)
		if err != nil {
			return err
		}

		var createdBy *string
		if actorID != "" {
			createdBy = &actorID
		}
		b, err := insertBooking(ctx, tx, insertParams{
			VehicleID:     v.ID,
			CustomerName:  strings.TrimSpace(in.CustomerName),
			CustomerPhone: strings.TrimSpace(in.CustomerPhone),
			ScheduledAt:   in.ScheduledAt,
			Totals:        totals,
			CreatedBy:     createdBy,
		})
		if err != nil {
			return err
		}
		if err := insertLines(ctx, tx, b.ID, totals.Lines); err != nil {
			return err
		}

		rec, err := s.engine(tx).InitializeBooking(ctx, b.ID, actorID)
		if err != nil {
			return err
		}
		if err := applySideEffects(ctx, tx, b, rec.NewState); err != nil {
			return err
		}

		bookingID = b.ID
		return audit.Insert(ctx, tx, &b.ID, audit.ActionBookingCreated, actorID, map[string]any{
			"plate": v.Plate,
			"total": totals.Total.StringFixed(2),
		})
	})
	if err != nil {
		return nil, storageErr(bookingID, err)
	}

	bookingsCreatedTotal.Inc()
	s.log.Info().Str("booking_id", bookingID).Str("actor_id", actorID).Msg("booking created")
	return s.Get(ctx, bookingID)
}

func (s *Service) Get(ctx context.Context, id string) (*Detail, error) {
	b, err := GetByID(ctx, s.db, id)
	if err != nil {
		return nil, storageErr(id, err)
	}
	lines, err := listLines(ctx, s.db, id)
	if err != nil {
		return nil, storageErr(id, err)
	}
	v, err := vehicle.GetByID(ctx, s.db, b.VehicleID)
	if err != nil && !errors.Is(err, vehicle.ErrNotFound) {
		return nil, storageErr(id, err)
	}

	st, found, err := s.engine(s.db).CurrentState(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Detail{
		Booking: *b,
		Lines:   lines,
		Vehicle: v,
		State:   stateView(s.table, st, found),
	}, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) (*Page, error) {
	f = normalizeFilter(f)
	items, total, err := list(ctx, s.db, f)
	if err != nil {
		return nil, storageErr("", err)
	}
	return &Page{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset}, nil
}

func normalizeFilter(f ListFilter) ListFilter {
	if f.Limit <= 0 {
		f.Limit = DefaultListLimit
	}
	if f.Limit > MaxListLimit {
		f.Limit = MaxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}

func (s *Service) History(ctx context.Context, id string) ([]bookingstate.Record, error) {
	if _, err := GetByID(ctx, s.db, id); err != nil {
		return nil, storageErr(id, err)
	}
	return s.engine(s.db).History(ctx, id)
}

// Activity is the operator-facing audit trail: creation plus every accepted change.
func (s *Service) Activity(ctx context.Context, id string) ([]audit.Entry, error) {
	if _, err := GetByID(ctx, s.db, id); err != nil {
		return nil, storageErr(id, err)
	}
	entries, err := audit.ListByBooking(ctx, s.db, id)
	if err != nil {
		return nil, storageErr(id, err)
	}
	return entries, nil
}

// Initialize gives a booking without history its first record. Bookings created
// through Create are already initialized.
func (s *Service) Initialize(ctx context.Context, id, actorID string) (bookingstate.Record, error) {
	var rec bookingstate.Record
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		b, err := GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		rec, err = s.engine(tx).InitializeBooking(ctx, b.ID, actorID)
		if err != nil {
			return err
		}
		if err := applySideEffects(ctx, tx, b, rec.NewState); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, &b.ID, audit.ActionBookingStatusChanged, actorID, map[string]any{
			"to": rec.NewState,
		})
	})
	if err != nil {
		return bookingstate.Record{}, storageErr(id, err)
	}
	s.log.Info().Str("booking_id", id).Str("actor_id", actorID).Msg("booking initialized")
	return rec, nil
}

func (s *Service) Transition(ctx context.Context, id string, action bookingstate.Action, actorID string) (bookingstate.Result, error) {
	var res bookingstate.Result
	err := db.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		b, err := GetForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		res, err = s.engine(tx).TransitionState(ctx, b.ID, action, actorID)
		if err != nil {
			return err
		}
		if err := applySideEffects(ctx, tx, b, res.NewState); err != nil {
			return err
		}
		return audit.Insert(ctx, tx, &b.ID, audit.ActionBookingStatusChanged, actorID, map[string]any{
			"action":   action,
			"from":     res.OldState,
			"to":       res.NewState,
			"sequence": res.Record.Sequence,
		})
	})
	err = storageErr(id, err)
	recordTransition(action, err)

	ev := s.log.Info()
	if err != nil {
		ev = s.log.Warn().Err(err)
	}
	ev.Str("booking_id", id).Str("action", action.String()).Str("actor_id", actorID)
	if err != nil {
		ev.Msg("booking transition rejected")
		return bookingstate.Result{}, fmt.Errorf("transition %s: %w", id, err)
	}
	ev.Str("from", res.OldState.String()).Str("to", res.NewState.String()).Msg("booking transitioned")
	return res, nil
}

// storageErr classifies a failure from the Postgres side of a booking operation.
// Missing bookings, cart validation and engine errors keep their meaning; anything
// else (pool exhausted, connection refused, a failed side effect) is a store failure
// the caller may retry.
func storageErr(id string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || bookingstate.KindOf(err) != "" {
		return err
	}
	var ve pos.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	return &bookingstate.Error{Kind: bookingstate.KindPersistence, BookingID: id, Err: err}
}
