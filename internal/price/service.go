package price

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/cenovnik-bg/backend-cenovnik/internal/cache"
	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
	"github.com/cenovnik-bg/backend-cenovnik/internal/money"
	"github.com/cenovnik-bg/backend-cenovnik/internal/obs"
)

// Service handles price submission, lookup, and history.
type Service struct {
	repo       repoProvider
	quoteCache *cache.Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Repo       repoProvider
	QuoteCache *cache.Cache
}

// SubmitParams carries one crowd-sourced price observation. Price is in
// the entered currency; the service converts to canonical EUR.
type SubmitParams struct {
	ProductID   uuid.UUID
	StoreID     uuid.UUID
	Price       decimal.Decimal
	Currency    string
	SubmittedBy uuid.UUID
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Repo == nil {
		return nil, errors.New("price: repo is required")
	}
	return &Service{repo: cfg.Repo, quoteCache: cfg.QuoteCache}, nil
}

// Submit validates, converts, and persists a price observation, then
// invalidates any cached quote for the product and store pair.
func (s *Service) Submit(ctx context.Context, arg SubmitParams) (Entry, error) {
	if !money.Supported(arg.Currency) {
		return Entry{}, common.NewAppError("UNSUPPORTED_CURRENCY", "currency must be EUR or BGN", http.StatusBadRequest, nil)
	}
	if !arg.Price.IsPositive() {
		return Entry{}, common.NewAppError("VALIDATION_ERROR", "price must be positive", http.StatusBadRequest, nil)
	}

	priceEUR, err := money.ToEUR(arg.Price, arg.Currency)
	if err != nil {
		return Entry{}, fmt.Errorf("convert price: %w", err)
	}

	entry, err := s.repo.InsertEntry(ctx, insertEntryParams{
		ProductID:       arg.ProductID,
		StoreID:         arg.StoreID,
		PriceEUR:        priceEUR,
		PriceEntered:    money.Round(arg.Price),
		CurrencyEntered: arg.Currency,
		SubmittedBy:     arg.SubmittedBy,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return Entry{}, common.NewAppError("NOT_FOUND", "unknown product or store", http.StatusNotFound, err)
		}
		return Entry{}, fmt.Errorf("insert price: %w", err)
	}

	if s.quoteCache != nil {
		_ = s.quoteCache.Invalidate(ctx, quoteCacheKey(arg.StoreID, arg.ProductID))
	}
	if obs.PriceSubmissionsTotal != nil {
		obs.PriceSubmissionsTotal.WithLabelValues(arg.Currency).Inc()
	}
	return entry, nil
}

// History returns the approved price trail of a product, optionally
// narrowed to a single store, newest first.
func (s *Service) History(ctx context.Context, productID uuid.UUID, storeID *uuid.UUID, limit int) ([]Entry, error) {
	if limit < 1 || limit > 200 {
		limit = 50
	}
	entries, err := s.repo.ListHistory(ctx, productID, storeID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// Latest returns the current approved price per active store.
func (s *Service) Latest(ctx context.Context, productID uuid.UUID) ([]StorePrice, error) {
	prices, err := s.repo.LatestByStore(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("latest prices: %w", err)
	}
	return prices, nil
}
