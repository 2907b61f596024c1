package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cenovnik-bg/backend-cenovnik/internal/cache"
	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

// Service orchestrates catalog queries, scan history, and caching.
type Service struct {
	queries      queryProvider
	cache        *cache.Cache
	defaultPage  int
	defaultLimit int
	maxLimit     int
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries      queryProvider
	Cache        *cache.Cache
	DefaultPage  int
	DefaultLimit int
	MaxLimit     int
}

// ListParams captures filters for product listing.
type ListParams struct {
	Query    string
	Category string
	Page     int
	Limit    int
}

// ListResult bundles a product page with pagination metadata.
type ListResult struct {
	Items []Product
	Total int64
	Page  int
	Limit int
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Queries == nil {
		return nil, errors.New("catalog: queries provider is required")
	}
	defaultPage := cfg.DefaultPage
	if defaultPage < 1 {
		defaultPage = 1
	}
	defaultLimit := cfg.DefaultLimit
	if defaultLimit < 1 {
		defaultLimit = 20
	}
	maxLimit := cfg.MaxLimit
	if maxLimit < 1 {
		maxLimit = 100
	}
	if defaultLimit > maxLimit {
		defaultLimit = maxLimit
	}
	return &Service{
		queries:      cfg.Queries,
		cache:        cfg.Cache,
		defaultPage:  defaultPage,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}, nil
}

// ParseListParams normalises raw query values into strongly typed filters.
func (s *Service) ParseListParams(values url.Values) (ListParams, error) {
	params := ListParams{
		Page:  s.defaultPage,
		Limit: s.defaultLimit,
	}
	params.Query = strings.TrimSpace(values.Get("q"))
	params.Category = strings.TrimSpace(values.Get("category"))

	if v := strings.TrimSpace(values.Get("page")); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return params, badRequest("page", "page must be a positive integer", err)
		}
		params.Page = page
	}

	limit := s.defaultLimit
	if v := strings.TrimSpace(values.Get("limit")); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil || l < 1 {
			return params, badRequest("limit", "limit must be a positive integer", err)
		}
		limit = l
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}
	params.Limit = limit
	return params, nil
}

// List returns an approved-product page matching the filters.
func (s *Service) List(ctx context.Context, params ListParams) (ListResult, error) {
	total, err := s.queries.CountProducts(ctx, params.Query, params.Category)
	if err != nil {
		return ListResult{}, fmt.Errorf("count products: %w", err)
	}
	offset := int32((params.Page - 1) * params.Limit)
	if offset < 0 {
		offset = 0
	}
	items, err := s.queries.ListProducts(ctx, params.Query, params.Category, int32(params.Limit), offset)
	if err != nil {
		return ListResult{}, fmt.Errorf("list products: %w", err)
	}
	return ListResult{Items: items, Total: total, Page: params.Page, Limit: params.Limit}, nil
}

// Get returns a single product by ID.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Product, error) {
	p, err := s.queries.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, common.NewAppError("NOT_FOUND", "product not found", http.StatusNotFound, err)
		}
		return Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Lookup resolves a barcode to a product, recording the scan when the
// caller is authenticated. Lookups are served from cache when possible;
// scans are recorded either way.
func (s *Service) Lookup(ctx context.Context, barcode string, userID *uuid.UUID) (Product, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Product{}, badRequest("barcode", "barcode is required", nil)
	}

	var p Product
	key := barcodeCacheKey(barcode)
	hit := false
	if s.cache != nil {
		if ok, err := s.cache.GetJSON(ctx, key, &p); err == nil && ok {
			hit = true
		}
	}
	if !hit {
		var err error
		p, err = s.queries.GetProductByBarcode(ctx, barcode)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return Product{}, common.NewAppError("NOT_FOUND", "no product with this barcode", http.StatusNotFound, err)
			}
			return Product{}, fmt.Errorf("lookup barcode: %w", err)
		}
		if s.cache != nil {
			_ = s.cache.SetJSON(ctx, key, p)
		}
	}

	if userID != nil {
		if err := s.queries.RecordScan(ctx, *userID, p.ID); err != nil {
			return Product{}, fmt.Errorf("record scan: %w", err)
		}
	}
	return p, nil
}

// Submit records a user-contributed product pending moderation.
func (s *Service) Submit(ctx context.Context, arg CreateProductParams) (Product, error) {
	arg.Name = strings.TrimSpace(arg.Name)
	if arg.Name == "" {
		return Product{}, badRequest("name", "name is required", nil)
	}
	if arg.Barcode != nil {
		trimmed := strings.TrimSpace(*arg.Barcode)
		if trimmed == "" {
			arg.Barcode = nil
		} else {
			arg.Barcode = &trimmed
		}
	}
	p, err := s.queries.CreateProduct(ctx, arg)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// ScanHistory returns the caller's most recent scans.
func (s *Service) ScanHistory(ctx context.Context, userID uuid.UUID, limit int) ([]ScanEntry, error) {
	if limit < 1 || limit > s.maxLimit {
		limit = s.defaultLimit
	}
	entries, err := s.queries.ListScans(ctx, userID, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	return entries, nil
}

func barcodeCacheKey(barcode string) string {
	return "catalog:barcode:" + barcode
}

func badRequest(field, message string, err error) *common.AppError {
	appErr := common.NewAppError("BAD_REQUEST", message, http.StatusBadRequest, err)
	appErr.Details = map[string]string{"field": field}
	return appErr
}
