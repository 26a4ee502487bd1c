package statehistory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"carwash/internal/bookingstate"
	"carwash/pkg/db"
)

// Repository is the Postgres bookingstate.Store. Construct it over a pgx.Tx to make
// history appends part of a larger unit of work.
type Repository struct {
	db db.DBTX
}

func NewRepository(conn db.DBTX) *Repository {
	return &Repository{db: conn}
}

var _ bookingstate.Store = (*Repository)(nil)

func (r *Repository) LatestHistory(ctx context.Context, bookingID string) (*bookingstate.Record, error) {
	const q = `
SELECT id, booking_id, sequence, old_state, new_state, actor_id, occurred_at
FROM booking_state_history
WHERE booking_id = $1
ORDER BY sequence DESC
LIMIT 1
`
	rec, err := scanRecord(r.db.QueryRow(ctx, q, bookingID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest history: %w", err)
	}
	return &rec, nil
}

func (r *Repository) History(ctx context.Context, bookingID string) ([]bookingstate.Record, error) {
	const q = `
SELECT id, booking_id, sequence, old_state, new_state, actor_id, occurred_at
FROM booking_state_history
WHERE booking_id = $1
ORDER BY sequence ASC
`
	rows, err := r.db.Query(ctx, q, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	out := []bookingstate.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AppendHistory inserts rec and copies its new state onto bookings.status in the
// same statement, so the denormalized status always matches the latest record.
func (r *Repository) AppendHistory(ctx context.Context, rec bookingstate.Record) error {
	const q = `
WITH ins AS (
    INSERT INTO booking_state_history (id, booking_id, sequence, old_state, new_state, actor_id, occurred_at)
    VALUES ($1, $2, $3, $4, $5, $6, $7)
    RETURNING booking_id, new_state
)
UPDATE bookings b
SET status = ins.new_state, updated_at = NOW()
FROM ins
WHERE b.id = ins.booking_id
`
	var oldState *string
	if rec.OldState != nil {
		s := string(*rec.OldState)
		oldState = &s
	}
	tag, err := r.db.Exec(ctx, q, rec.ID, rec.BookingID, rec.Sequence, oldState, string(rec.NewState), rec.ActorID, rec.Timestamp)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return bookingstate.ErrSequenceConflict
		}
		return fmt.Errorf("append history: %w", err)
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("append history: booking %s not found", rec.BookingID)
	}
	return nil
}

func scanRecord(row pgx.Row) (bookingstate.Record, error) {
	var rec bookingstate.Record
	var oldState *string
	var newState string
	if err := row.Scan(&rec.ID, &rec.BookingID, &rec.Sequence, &oldState, &newState, &rec.ActorID, &rec.Timestamp); err != nil {
		return bookingstate.Record{}, err
	}
	if oldState != nil {
		s := bookingstate.State(*oldState)
		rec.OldState = &s
	}
	rec.NewState = bookingstate.State(newState)
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}
