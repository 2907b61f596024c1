package price

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

type fakeRepo struct {
	entries []Entry
}

func (f *fakeRepo) InsertEntry(_ context.Context, arg insertEntryParams) (Entry, error) {
	e := Entry{
		ID:              uuid.New(),
		ProductID:       arg.ProductID,
		StoreID:         arg.StoreID,
		PriceEUR:        arg.PriceEUR,
		PriceEntered:    arg.PriceEntered,
		CurrencyEntered: arg.CurrencyEntered,
		Status:          "approved",
		CreatedAt:       time.Now(),
	}
	f.entries = append(f.entries, e)
	return e, nil
}

func (f *fakeRepo) ListHistory(_ context.Context, productID uuid.UUID, storeID *uuid.UUID, _ int32) ([]Entry, error) {
	out := make([]Entry, 0)
	for _, e := range f.entries {
		if e.ProductID != productID {
			continue
		}
		if storeID != nil && e.StoreID != *storeID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeRepo) LatestByStore(context.Context, uuid.UUID) ([]StorePrice, error) {
	return nil, nil
}

func newTestService(t *testing.T) (*Service, *fakeRepo) {
	t.Helper()
	repo := &fakeRepo{}
	svc, err := NewService(ServiceConfig{Repo: repo})
	require.NoError(t, err)
	return svc, repo
}

func TestSubmitConvertsBGNToEUR(t *testing.T) {
	svc, repo := newTestService(t)

	entry, err := svc.Submit(context.Background(), SubmitParams{
		ProductID: uuid.New(),
		StoreID:   uuid.New(),
		Price:     decimal.RequireFromString("3.99"),
		Currency:  "BGN",
	})
	require.NoError(t, err)
	require.True(t, entry.PriceEUR.Equal(decimal.RequireFromString("2.04")), "got %s", entry.PriceEUR)
	require.True(t, entry.PriceEntered.Equal(decimal.RequireFromString("3.99")))
	require.Equal(t, "BGN", entry.CurrencyEntered)
	require.Len(t, repo.entries, 1)
}

func TestSubmitKeepsEURAsIs(t *testing.T) {
	svc, _ := newTestService(t)

	entry, err := svc.Submit(context.Background(), SubmitParams{
		ProductID: uuid.New(),
		StoreID:   uuid.New(),
		Price:     decimal.RequireFromString("1.20"),
		Currency:  "EUR",
	})
	require.NoError(t, err)
	require.True(t, entry.PriceEUR.Equal(decimal.RequireFromString("1.20")))
}

func TestSubmitRejectsUnsupportedCurrency(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), SubmitParams{
		ProductID: uuid.New(),
		StoreID:   uuid.New(),
		Price:     decimal.NewFromInt(1),
		Currency:  "USD",
	})
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "UNSUPPORTED_CURRENCY", appErr.Code)
}

func TestSubmitRejectsNonPositivePrice(t *testing.T) {
	svc, _ := newTestService(t)

	for _, raw := range []string{"0", "-1.50"} {
		_, err := svc.Submit(context.Background(), SubmitParams{
			ProductID: uuid.New(),
			StoreID:   uuid.New(),
			Price:     decimal.RequireFromString(raw),
			Currency:  "EUR",
		})
		var appErr *common.AppError
		require.ErrorAs(t, err, &appErr)
		require.Equal(t, "VALIDATION_ERROR", appErr.Code)
	}
}

func TestHistoryFiltersByStore(t *testing.T) {
	svc, _ := newTestService(t)
	productID := uuid.New()
	storeA := uuid.New()
	storeB := uuid.New()

	for _, storeID := range []uuid.UUID{storeA, storeA, storeB} {
		_, err := svc.Submit(context.Background(), SubmitParams{
			ProductID: productID,
			StoreID:   storeID,
			Price:     decimal.RequireFromString("2.00"),
			Currency:  "EUR",
		})
		require.NoError(t, err)
	}

	all, err := svc.History(context.Background(), productID, nil, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)

	onlyA, err := svc.History(context.Background(), productID, &storeA, 0)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
}
