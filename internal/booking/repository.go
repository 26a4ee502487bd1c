package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"carwash/internal/bookingstate"
	"carwash/internal/pos"
	"carwash/pkg/db"
)

var ErrNotFound = errors.New("booking not found")

const bookingColumns = `
id, vehicle_id, customer_name, customer_phone, scheduled_at,
subtotal::text, discount::text, tax::text, total_amount::text, currency, status,
created_by, created_at, updated_at
`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	if err := row.Scan(
		&b.ID, &b.VehicleID, &b.CustomerName, &b.CustomerPhone, &b.ScheduledAt,
		&b.Subtotal, &b.Discount, &b.Tax, &b.TotalAmount, &b.Currency, &b.Status,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

type insertParams struct {
	VehicleID     string
	CustomerName  string
	CustomerPhone string
	ScheduledAt   *time.Time
	Totals        pos.Totals
	CreatedBy     *string
}

// insertBooking creates the row with status draft; the initializing history record
// written right after keeps it that way.
func insertBooking(ctx context.Context, conn db.DBTX, p insertParams) (*Booking, error) {
	q := `
INSERT INTO bookings (vehicle_id, customer_name, customer_phone, scheduled_at,
                      subtotal, discount, tax, total_amount, currency, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 'draft', $10)
RETURNING ` + bookingColumns
	b, err := scanBooking(conn.QueryRow(ctx, q,
		p.VehicleID, p.CustomerName, p.CustomerPhone, p.ScheduledAt,
		p.Totals.Subtotal.StringFixed(2), p.Totals.Discount.StringFixed(2), p.Totals.Tax.StringFixed(2),
		p.Totals.Total.StringFixed(2), p.Totals.Currency, p.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return b, nil
}

func insertLines(ctx context.Context, conn db.DBTX, bookingID string, lines []pos.LineTotal) error {
	const q = `
INSERT INTO booking_line_items (booking_id, position, service_code, description, unit_price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	batch := &pgx.Batch{}
	for i, l := range lines {
		batch.Queue(q, bookingID, i, l.ServiceCode, l.Description, l.UnitPrice.StringFixed(2), l.Quantity, l.Total.StringFixed(2))
	}
	if err := conn.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert lines: %w", err)
	}
	return nil
}

func GetByID(ctx context.Context, conn db.DBTX, id string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	b, err := scanBooking(conn.QueryRow(ctx, q, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return b, err
}

// GetForUpdate locks the booking row for the rest of tx. Every state change takes
// this lock first, which makes transitions on one booking single-writer.
func GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (*Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	b, err := scanBooking(tx.QueryRow(ctx, q, id))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return b, err
}

func listLines(ctx context.Context, conn db.DBTX, bookingID string) ([]LineItem, error) {
	const q = `
SELECT position, service_code, description, unit_price::text, quantity, line_total::text
FROM booking_line_items
WHERE booking_id = $1
ORDER BY position ASC
`
	rows, err := conn.Query(ctx, q, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer rows.Close()

	out := []LineItem{}
	for rows.Next() {
		var l LineItem
		if err := rows.Scan(&l.Position, &l.ServiceCode, &l.Description, &l.UnitPrice, &l.Quantity, &l.LineTotal); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func list(ctx context.Context, conn db.DBTX, f ListFilter) ([]ListItem, int, error) {
	const q = `
SELECT b.id, b.vehicle_id, v.plate, v.wash_status, b.customer_name, b.scheduled_at,
       b.total_amount::text, b.currency, b.status, b.created_at,
       COUNT(*) OVER () AS total
FROM bookings b
JOIN vehicles v ON v.id = b.vehicle_id
WHERE ($1::text = '' OR b.status = $1::text)
ORDER BY b.created_at DESC, b.id
LIMIT $2 OFFSET $3
`
	rows, err := conn.Query(ctx, q, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	out := []ListItem{}
	total := 0
	for rows.Next() {
		var it ListItem
		if err := rows.Scan(
			&it.ID, &it.VehicleID, &it.Plate, &it.WashStatus, &it.CustomerName, &it.ScheduledAt,
			&it.TotalAmount, &it.Currency, &it.Status, &it.CreatedAt, &total,
		); err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

// olderActiveBooking reports whether the booking's vehicle has another booking,
// created earlier, that has not reached a terminal state.
func olderActiveBooking(ctx context.Context, conn db.DBTX, bookingID string) (bool, error) {
	const q = `
SELECT EXISTS (
  SELECT 1
  FROM bookings b
  JOIN bookings o ON o.vehicle_id = b.vehicle_id AND o.id <> b.id
  WHERE b.id = $1
    AND o.status <> ALL($2::text[])
    AND (o.created_at, o.id) < (b.created_at, b.id)
)
`
	terminal := []string{bookingstate.StateCompleted.String(), bookingstate.StateCancelled.String()}
	var exists bool
	if err := conn.QueryRow(ctx, q, bookingID, terminal).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active bookings for vehicle: %w", err)
	}
	return exists, nil
}
