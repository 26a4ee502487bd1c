package vehicle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"carwash/pkg/db"
)

var ErrNotFound = errors.New("vehicle not found")

type Vehicle struct {
	ID         string    `json:"id"`
	Plate      string    `json:"plate"`
	Make       string    `json:"make,omitempty"`
	Model      string    `json:"model,omitempty"`
	Color      string    `json:"color,omitempty"`
	WashStatus string    `json:"washStatus"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type UpsertInput struct {
	Plate string
	Make  string
	Model string
	Color string
}

// NormalizePlate uppercases and strips spaces and dashes so "ab-12 cd" and "AB12CD"
// resolve to the same vehicle.
func NormalizePlate(p string) string {
	p = strings.ToUpper(strings.TrimSpace(p))
	return strings.NewReplacer(" ", "", "-", "").Replace(p)
}

// Upsert finds the vehicle by plate or creates it. Non-empty descriptive fields
// overwrite stored values.
func Upsert(ctx context.Context, conn db.DBTX, in UpsertInput) (*Vehicle, error) {
	const q = `
INSERT INTO vehicles (plate, make, model, color)
VALUES ($1, $2, $3, $4)
ON CONFLICT (plate) DO UPDATE SET
  make = COALESCE(NULLIF(EXCLUDED.make, ''), vehicles.make),
  model = COALESCE(NULLIF(EXCLUDED.model, ''), vehicles.model),
  color = COALESCE(NULLIF(EXCLUDED.color, ''), vehicles.color),
  updated_at = NOW()
RETURNING id, plate, make, model, color, wash_status, created_at, updated_at
`
	v := &Vehicle{}
	if err := conn.QueryRow(ctx, q, NormalizePlate(in.Plate), in.Make, in.Model, in.Color).Scan(
		&v.ID, &v.Plate, &v.Make, &v.Model, &v.Color, &v.WashStatus, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert vehicle: %w", err)
	}
	return v, nil
}

func GetByID(ctx context.Context, conn db.DBTX, id string) (*Vehicle, error) {
	const q = `
SELECT id, plate, make, model, color, wash_status, created_at, updated_at
FROM vehicles
WHERE id = $1
`
	v := &Vehicle{}
	if err := conn.QueryRow(ctx, q, id).Scan(
		&v.ID, &v.Plate, &v.Make, &v.Model, &v.Color, &v.WashStatus, &v.CreatedAt, &v.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return v, nil
}

// UpdateWashLabel writes the denormalized wash-status label shown on the dashboard.
func UpdateWashLabel(ctx context.Context, conn db.DBTX, vehicleID, label string) error {
	const q = `
UPDATE vehicles
SET wash_status = $2, updated_at = NOW()
WHERE id = $1
`
	tag, err := conn.Exec(ctx, q, vehicleID, label)
	if err != nil {
		return fmt.Errorf("update wash label: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
