package catalog

import (
	"context"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

type fakeQueries struct {
	products map[string]Product
	byID     map[uuid.UUID]Product
	scans    []ScanEntry
	scanErr  error

	lastScanLimit int32
}

func newFakeQueries(products ...Product) *fakeQueries {
	f := &fakeQueries{products: map[string]Product{}, byID: map[uuid.UUID]Product{}}
	for _, p := range products {
		if p.Barcode != nil {
			f.products[*p.Barcode] = p
		}
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakeQueries) CountProducts(context.Context, string, string) (int64, error) {
	return int64(len(f.byID)), nil
}

func (f *fakeQueries) ListProducts(context.Context, string, string, int32, int32) ([]Product, error) {
	out := make([]Product, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeQueries) GetProductByID(_ context.Context, id uuid.UUID) (Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQueries) GetProductByBarcode(_ context.Context, barcode string) (Product, error) {
	p, ok := f.products[barcode]
	if !ok {
		return Product{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeQueries) CreateProduct(_ context.Context, arg CreateProductParams) (Product, error) {
	p := Product{
		ID:       uuid.New(),
		Barcode:  arg.Barcode,
		Name:     arg.Name,
		Brand:    arg.Brand,
		Category: arg.Category,
		ImageURL: arg.ImageURL,
		Status:   "pending",
	}
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakeQueries) RecordScan(_ context.Context, userID, productID uuid.UUID) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	f.scans = append(f.scans, ScanEntry{Product: f.byID[productID]})
	return nil
}

func (f *fakeQueries) ListScans(_ context.Context, _ uuid.UUID, limit int32) ([]ScanEntry, error) {
	f.lastScanLimit = limit
	return f.scans, nil
}

func newTestService(t *testing.T, queries queryProvider) *Service {
	t.Helper()
	svc, err := NewService(ServiceConfig{Queries: queries, DefaultLimit: 20, MaxLimit: 100})
	require.NoError(t, err)
	return svc
}

func sampleProduct(barcode string) Product {
	b := barcode
	return Product{ID: uuid.New(), Barcode: &b, Name: "Прясно мляко 3.6%", Brand: "Верея", Status: "approved"}
}

func TestParseListParams(t *testing.T) {
	svc := newTestService(t, newFakeQueries())

	params, err := svc.ParseListParams(url.Values{"q": {" мляко "}, "page": {"2"}, "limit": {"500"}})
	require.NoError(t, err)
	require.Equal(t, "мляко", params.Query)
	require.Equal(t, 2, params.Page)
	require.Equal(t, 100, params.Limit, "limit is clamped to the maximum")

	_, err = svc.ParseListParams(url.Values{"page": {"0"}})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestLookupRecordsScanForAuthedUser(t *testing.T) {
	product := sampleProduct("3800123456789")
	queries := newFakeQueries(product)
	svc := newTestService(t, queries)
	userID := uuid.New()

	got, err := svc.Lookup(context.Background(), "3800123456789", &userID)
	require.NoError(t, err)
	require.Equal(t, product.ID, got.ID)
	require.Len(t, queries.scans, 1)
}

func TestLookupAnonymousSkipsScan(t *testing.T) {
	queries := newFakeQueries(sampleProduct("3800123456789"))
	svc := newTestService(t, queries)

	_, err := svc.Lookup(context.Background(), "3800123456789", nil)
	require.NoError(t, err)
	require.Empty(t, queries.scans)
}

func TestLookupUnknownBarcode(t *testing.T) {
	svc := newTestService(t, newFakeQueries())

	_, err := svc.Lookup(context.Background(), "0000000000000", nil)
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestSubmitNormalizesBarcode(t *testing.T) {
	queries := newFakeQueries()
	svc := newTestService(t, queries)

	empty := "  "
	p, err := svc.Submit(context.Background(), CreateProductParams{Name: "Кашкавал", Barcode: &empty})
	require.NoError(t, err)
	require.Nil(t, p.Barcode)
	require.Equal(t, "pending", p.Status)

	_, err = svc.Submit(context.Background(), CreateProductParams{Name: "   "})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "BAD_REQUEST", appErr.Code)
}

func TestLookupHandlerNotFound(t *testing.T) {
	svc := newTestService(t, newFakeQueries())
	h := &Handler{Service: svc}

	router := chi.NewRouter()
	router.Get("/products/barcode/{barcode}", h.Lookup)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/products/barcode/123", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, 404, rec.Code)
	require.Contains(t, rec.Body.String(), "NOT_FOUND")
}

func TestScanHistoryHandlerClampsLimit(t *testing.T) {
	queries := newFakeQueries()
	svc := newTestService(t, queries)
	h := &Handler{Service: svc}

	router := chi.NewRouter()
	router.Get("/scans", h.ScanHistory)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/scans?limit=5000", nil)
	req = req.WithContext(common.WithUserID(req.Context(), uuid.NewString()))
	router.ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	require.Equal(t, int32(100), queries.lastScanLimit)
}
