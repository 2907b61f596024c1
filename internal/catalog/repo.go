package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Product is a catalog entry. Barcode is nil for products entered without one.
type Product struct {
	ID        uuid.UUID `json:"id"`
	Barcode   *string   `json:"barcode,omitempty"`
	Name      string    `json:"name"`
	Brand     string    `json:"brand"`
	Category  string    `json:"category"`
	ImageURL  string    `json:"image_url"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// ScanEntry is one row of a user's barcode scan history.
type ScanEntry struct {
	Product   Product   `json:"product"`
	ScannedAt time.Time `json:"scanned_at"`
}

// CreateProductParams carries the fields for a user-submitted product.
type CreateProductParams struct {
	Barcode   *string
	Name      string
	Brand     string
	Category  string
	ImageURL  string
	CreatedBy uuid.UUID
}

type queryProvider interface {
	CountProducts(ctx context.Context, query, category string) (int64, error)
	ListProducts(ctx context.Context, query, category string, limit, offset int32) ([]Product, error)
	GetProductByID(ctx context.Context, id uuid.UUID) (Product, error)
	GetProductByBarcode(ctx context.Context, barcode string) (Product, error)
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	RecordScan(ctx context.Context, userID, productID uuid.UUID) error
	ListScans(ctx context.Context, userID uuid.UUID, limit int32) ([]ScanEntry, error)
}

// Repo implements catalog queries on top of pgx.
type Repo struct {
	Pool *pgxpool.Pool
}

var _ queryProvider = (*Repo)(nil)

// ErrNotFound is returned when a product does not exist.
var ErrNotFound = pgx.ErrNoRows

const productColumns = `id, barcode, name, brand, category, image_url, status, created_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Barcode, &p.Name, &p.Brand, &p.Category, &p.ImageURL, &p.Status, &p.CreatedAt)
	return p, err
}

func (r *Repo) CountProducts(ctx context.Context, query, category string) (int64, error) {
	const q = `
		SELECT count(*) FROM products
		WHERE status = 'approved'
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)`
	var total int64
	err := r.Pool.QueryRow(ctx, q, query, category).Scan(&total)
	return total, err
}

func (r *Repo) ListProducts(ctx context.Context, query, category string, limit, offset int32) ([]Product, error) {
	const q = `
		SELECT ` + productColumns + ` FROM products
		WHERE status = 'approved'
		  AND ($1 = '' OR name ILIKE '%' || $1 || '%' OR brand ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR category = $2)
		ORDER BY name
		LIMIT $3 OFFSET $4`
	rows, err := r.Pool.Query(ctx, q, query, category, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repo) GetProductByID(ctx context.Context, id uuid.UUID) (Product, error) {
	return scanProduct(r.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
}

func (r *Repo) GetProductByBarcode(ctx context.Context, barcode string) (Product, error) {
	return scanProduct(r.Pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode))
}

func (r *Repo) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	const q = `
		INSERT INTO products (barcode, name, brand, category, image_url, status, created_by)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6)
		RETURNING ` + productColumns
	return scanProduct(r.Pool.QueryRow(ctx, q, arg.Barcode, arg.Name, arg.Brand, arg.Category, arg.ImageURL, arg.CreatedBy))
}

func (r *Repo) RecordScan(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := r.Pool.Exec(ctx, `INSERT INTO scan_history (user_id, product_id) VALUES ($1, $2)`, userID, productID)
	return err
}

func (r *Repo) ListScans(ctx context.Context, userID uuid.UUID, limit int32) ([]ScanEntry, error) {
	const q = `
		SELECT p.id, p.barcode, p.name, p.brand, p.category, p.image_url, p.status, p.created_at, s.scanned_at
		FROM scan_history s
		JOIN products p ON p.id = s.product_id
		WHERE s.user_id = $1
		ORDER BY s.scanned_at DESC
		LIMIT $2`
	rows, err := r.Pool.Query(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]ScanEntry, 0, limit)
	for rows.Next() {
		var e ScanEntry
		p := &e.Product
		if err := rows.Scan(&p.ID, &p.Barcode, &p.Name, &p.Brand, &p.Category, &p.ImageURL, &p.Status, &p.CreatedAt, &e.ScannedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
