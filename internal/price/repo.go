package price

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Entry is one persisted price observation.
type Entry struct {
	ID              uuid.UUID       `json:"id"`
	ProductID       uuid.UUID       `json:"product_id"`
	StoreID         uuid.UUID       `json:"store_id"`
	PriceEUR        decimal.Decimal `json:"price_eur"`
	PriceEntered    decimal.Decimal `json:"price_entered"`
	CurrencyEntered string          `json:"currency_entered"`
	Status          string          `json:"status"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StorePrice is the latest approved price of a product at one store.
type StorePrice struct {
	StoreID   uuid.UUID       `json:"store_id"`
	StoreName string          `json:"store_name"`
	PriceEUR  decimal.Decimal `json:"price_eur"`
	CreatedAt time.Time       `json:"created_at"`
}

type insertEntryParams struct {
	ProductID       uuid.UUID
	StoreID         uuid.UUID
	PriceEUR        decimal.Decimal
	PriceEntered    decimal.Decimal
	CurrencyEntered string
	SubmittedBy     uuid.UUID
}

type repoProvider interface {
	InsertEntry(ctx context.Context, arg insertEntryParams) (Entry, error)
	ListHistory(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID, limit int32) ([]Entry, error)
	LatestByStore(ctx context.Context, productID uuid.UUID) ([]StorePrice, error)
}

// Repo persists and reads price entries.
type Repo struct {
	Pool *pgxpool.Pool
}

var _ repoProvider = (*Repo)(nil)

func (r *Repo) InsertEntry(ctx context.Context, arg insertEntryParams) (Entry, error) {
	const q = `
		INSERT INTO product_prices (product_id, store_id, price_eur, price_entered, currency_entered, submitted_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, product_id, store_id, price_eur::text, price_entered::text, currency_entered, status, created_at`
	return scanEntry(r.Pool.QueryRow(ctx, q,
		arg.ProductID, arg.StoreID, arg.PriceEUR.String(), arg.PriceEntered.String(), arg.CurrencyEntered, arg.SubmittedBy,
	))
}

func (r *Repo) ListHistory(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID, limit int32) ([]Entry, error) {
	q := `
		SELECT id, product_id, store_id, price_eur::text, price_entered::text, currency_entered, status, created_at
		FROM product_prices
		WHERE product_id = $1 AND status = 'approved'`
	args := []any{productID}
	if storeID != nil {
		q += ` AND store_id = $2`
		args = append(args, *storeID)
	}
	q += ` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)+1)
	args = append(args, limit)

	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repo) LatestByStore(ctx context.Context, productID uuid.UUID) ([]StorePrice, error) {
	const q = `
		SELECT DISTINCT ON (pp.store_id) pp.store_id, s.name, pp.price_eur::text, pp.created_at
		FROM product_prices pp
		JOIN stores s ON s.id = pp.store_id
		WHERE pp.product_id = $1 AND pp.status = 'approved' AND s.is_active
		ORDER BY pp.store_id, pp.created_at DESC`
	rows, err := r.Pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prices := make([]StorePrice, 0)
	for rows.Next() {
		var sp StorePrice
		var raw string
		if err := rows.Scan(&sp.StoreID, &sp.StoreName, &raw, &sp.CreatedAt); err != nil {
			return nil, err
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, err
		}
		sp.PriceEUR = price
		prices = append(prices, sp)
	}
	return prices, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var e Entry
	var rawEUR, rawEntered string
	if err := row.Scan(&e.ID, &e.ProductID, &e.StoreID, &rawEUR, &rawEntered, &e.CurrencyEntered, &e.Status, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	priceEUR, err := decimal.NewFromString(rawEUR)
	if err != nil {
		return Entry{}, err
	}
	priceEntered, err := decimal.NewFromString(rawEntered)
	if err != nil {
		return Entry{}, err
	}
	e.PriceEUR = priceEUR
	e.PriceEntered = priceEntered
	return e, nil
}
