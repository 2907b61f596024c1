package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Favorite is a product a user starred, joined with catalog info.
type Favorite struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

// Service persists favorites directly on the pool.
type Service struct {
	Pool *pgxpool.Pool
}

func (s *Service) Add(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO favorites (user_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, productID,
	)
	return err
}

func (s *Service) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := s.Pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	)
	return err
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Favorite, error) {
	const q = `
		SELECT f.product_id, p.name, p.brand, p.image_url, f.created_at
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC`
	rows, err := s.Pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	favs := make([]Favorite, 0)
	for rows.Next() {
		var f Favorite
		if err := rows.Scan(&f.ProductID, &f.Name, &f.Brand, &f.ImageURL, &f.CreatedAt); err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	return favs, rows.Err()
}

func (s *Service) Check(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	var one int
	err := s.Pool.QueryRow(ctx,
		`SELECT 1 FROM favorites WHERE user_id = $1 AND product_id = $2`,
		userID, productID,
	).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
