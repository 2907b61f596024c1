// Package price owns price submission, history, and the quote resolver
// the comparison engine reads from.
package price

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cenovnik-bg/backend-cenovnik/internal/cache"
	"github.com/cenovnik-bg/backend-cenovnik/internal/obs"
)

// ErrSourceUnavailable signals that the price source could not be
// reached at all, as opposed to a product simply having no price.
var ErrSourceUnavailable = errors.New("price source unavailable")

// Quote is the latest known approved price of a product at one store.
// Available is false when the store has no approved price for the product.
type Quote struct {
	ProductID uuid.UUID       `json:"product_id"`
	StoreID   uuid.UUID       `json:"store_id"`
	Available bool            `json:"available"`
	PriceEUR  decimal.Decimal `json:"price_eur"`
}

// Resolver answers batched quote lookups for a single store.
type Resolver interface {
	QuotesForStore(ctx context.Context, storeID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]Quote, error)
}

// PGResolver resolves quotes from Postgres with a short-lived Redis
// cache in front. A nil cache disables caching.
type PGResolver struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
}

var _ Resolver = (*PGResolver)(nil)

type cachedQuote struct {
	Available bool   `json:"available"`
	PriceEUR  string `json:"price_eur"`
}

// QuotesForStore returns a quote for every requested product. Products
// without an approved price come back with Available set to false.
func (r *PGResolver) QuotesForStore(ctx context.Context, storeID uuid.UUID, productIDs []uuid.UUID) (map[uuid.UUID]Quote, error) {
	quotes := make(map[uuid.UUID]Quote, len(productIDs))
	misses := make([]uuid.UUID, 0, len(productIDs))

	for _, productID := range productIDs {
		if r.Cache != nil {
			var cached cachedQuote
			ok, err := r.Cache.GetJSON(ctx, quoteCacheKey(storeID, productID), &cached)
			if err == nil && ok {
				q := Quote{ProductID: productID, StoreID: storeID, Available: cached.Available}
				if cached.Available {
					price, perr := decimal.NewFromString(cached.PriceEUR)
					if perr == nil {
						q.PriceEUR = price
						quotes[productID] = q
						countLookup("hit")
						continue
					}
				} else {
					quotes[productID] = q
					countLookup("hit")
					continue
				}
			}
		}
		misses = append(misses, productID)
	}

	if len(misses) == 0 {
		return quotes, nil
	}

	const q = `
		SELECT DISTINCT ON (product_id) product_id, price_eur::text
		FROM product_prices
		WHERE store_id = $1 AND product_id = ANY($2) AND status = 'approved'
		ORDER BY product_id, created_at DESC`
	rows, err := r.Pool.Query(ctx, q, storeID, misses)
	if err != nil {
		countLookup("error")
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer rows.Close()

	found := make(map[uuid.UUID]decimal.Decimal, len(misses))
	for rows.Next() {
		var productID uuid.UUID
		var raw string
		if err := rows.Scan(&productID, &raw); err != nil {
			countLookup("error")
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			countLookup("error")
			return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}
		found[productID] = price
	}
	if err := rows.Err(); err != nil {
		countLookup("error")
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	for _, productID := range misses {
		q := Quote{ProductID: productID, StoreID: storeID}
		if price, ok := found[productID]; ok {
			q.Available = true
			q.PriceEUR = price
			countLookup("miss")
		} else {
			countLookup("unpriced")
		}
		quotes[productID] = q
		if r.Cache != nil {
			_ = r.Cache.SetJSON(ctx, quoteCacheKey(storeID, productID), cachedQuote{
				Available: q.Available,
				PriceEUR:  q.PriceEUR.String(),
			})
		}
	}
	return quotes, nil
}

func quoteCacheKey(storeID, productID uuid.UUID) string {
	return "price:quote:" + storeID.String() + ":" + productID.String()
}

func countLookup(result string) {
	if obs.PriceLookupsTotal != nil {
		obs.PriceLookupsTotal.WithLabelValues(result).Inc()
	}
}
