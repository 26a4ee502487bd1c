package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"carwash/pkg/db"
)

const (
	ActionBookingCreated       = "BOOKING_CREATED"
	ActionBookingStatusChanged = "BOOKING_STATUS_CHANGED"
)

// Insert records an operator action. bookingID may be nil for actions not tied to a
// booking.
func Insert(ctx context.Context, conn db.DBTX, bookingID *string, action, actor string, metadata any) error {
	var s *string
	if metadata != nil {
		b, err := json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("audit metadata: %w", err)
		}
		str := string(b)
		s = &str
	}
	const q = `
INSERT INTO audit_logs (booking_id, action, actor, metadata)
VALUES ($1, $2, $3, CAST($4 AS jsonb))
`
	_, err := conn.Exec(ctx, q, bookingID, action, actor, s)
	return err
}
