// Package store serves the retail store directory that prices and
// comparisons are keyed against.
package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is a retail location prices can be attached to.
type Store struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Chain        string    `json:"chain"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	PrimaryColor string    `json:"primary_color"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Repo reads stores from Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

const storeColumns = `id, name, chain, address, city, primary_color, is_active, created_at`

// List returns active stores, optionally filtered by city, ordered by name.
func (r *Repo) List(ctx context.Context, city string) ([]Store, error) {
	q := `SELECT ` + storeColumns + ` FROM stores WHERE is_active`
	args := []any{}
	if city != "" {
		q += ` AND lower(city) = lower($1)`
		args = append(args, city)
	}
	q += ` ORDER BY name`

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := make([]Store, 0)
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Chain, &s.Address, &s.City, &s.PrimaryColor, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

// Get returns one store by ID.
func (r *Repo) Get(ctx context.Context, id uuid.UUID) (Store, error) {
	var s Store
	err := r.Pool.QueryRow(ctx, `SELECT `+storeColumns+` FROM stores WHERE id = $1`, id).Scan(
		&s.ID, &s.Name, &s.Chain, &s.Address, &s.City, &s.PrimaryColor, &s.IsActive, &s.CreatedAt,
	)
	return s, err
}

// ActiveNames returns display names for the given store IDs in one query.
// Unknown and inactive stores are simply absent from the result.
func (r *Repo) ActiveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	rows, err := r.Pool.Query(ctx, `SELECT id, name FROM stores WHERE is_active AND id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

// ErrNotFound aliases the pgx sentinel for callers that do not want to
// import pgx directly.
var ErrNotFound = pgx.ErrNoRows
