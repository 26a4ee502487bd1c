package audit

import (
	"context"
	"time"

	"carwash/pkg/db"
)

type Entry struct {
	ID        string    `json:"id"`
	BookingID string    `json:"bookingId"`
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Metadata  any       `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListByBooking returns the booking's audit trail oldest first.
func ListByBooking(ctx context.Context, conn db.DBTX, bookingID string) ([]Entry, error) {
	const q = `
SELECT id, booking_id, action, actor, COALESCE(metadata, '{}'::jsonb), created_at
FROM audit_logs
WHERE booking_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := conn.Query(ctx, q, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.BookingID, &e.Action, &e.Actor, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
