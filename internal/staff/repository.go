package staff

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("staff member not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Upsert(ctx context.Context, email, displayName, role string) (*Member, error) {
	const q = `
INSERT INTO staff (email, display_name, role, active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (email) DO UPDATE SET
  display_name = EXCLUDED.display_name,
  role = EXCLUDED.role,
  active = TRUE
RETURNING id, email, display_name, role, active, created_at
`
	m := &Member{}
	if err := r.db.QueryRow(ctx, q, email, displayName, role).Scan(
		&m.ID, &m.Email, &m.DisplayName, &m.Role, &m.Active, &m.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("upsert staff: %w", err)
	}
	return m, nil
}

// FindActiveByID returns ErrNotFound for unknown or deactivated staff.
func (r *Repository) FindActiveByID(ctx context.Context, id string) (*Member, error) {
	const q = `
SELECT id, email, display_name, role, active, created_at
FROM staff
WHERE id = $1 AND active
`
	m := &Member{}
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Email, &m.DisplayName, &m.Role, &m.Active, &m.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find staff: %w", err)
	}
	return m, nil
}

// Deactivate revokes dashboard access. Tokens already issued stop working on the
// next request because StaffAuth only accepts active staff.
func (r *Repository) Deactivate(ctx context.Context, id string) error {
	const q = `UPDATE staff SET active = FALSE WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("deactivate staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
