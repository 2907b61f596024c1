package compare

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
	"github.com/cenovnik-bg/backend-cenovnik/internal/price"
)

type fakeDirectory struct {
	names map[uuid.UUID]string
	err   error
}

func (f *fakeDirectory) ActiveNames(context.Context, []uuid.UUID) (map[uuid.UUID]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.names, nil
}

func TestStoreNamesResolvesAllStores(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	h := &Handler{Stores: &fakeDirectory{names: map[uuid.UUID]string{a: "Kaufland", b: "Lidl"}}}

	req := httptest.NewRequest(http.MethodPost, "/compare", nil)
	names, err := h.storeNames(req, []uuid.UUID{a, b})
	require.NoError(t, err)
	require.Equal(t, "Kaufland", names[a.String()])
	require.Equal(t, "Lidl", names[b.String()])
}

func TestStoreNamesRejectsUnknownStore(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	h := &Handler{Stores: &fakeDirectory{names: map[uuid.UUID]string{a: "Kaufland"}}}

	req := httptest.NewRequest(http.MethodPost, "/compare", nil)
	_, err := h.storeNames(req, []uuid.UUID{a, b})
	require.True(t, common.IsAppError(err))
	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, "NOT_FOUND", appErr.Code)
	require.Equal(t, http.StatusNotFound, appErr.HTTPStatus)
}

func TestEmptyStoreListPassesValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/compare", strings.NewReader(`{"store_ids":[]}`))
	var body compareRequest
	require.NoError(t, common.DecodeAndValidate(req, &body))
	require.Empty(t, body.StoreIDs)
}

func TestWriteCompareErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"insufficient", ErrInsufficientStores, http.StatusBadRequest, "INSUFFICIENT_STORES"},
		{"too many", ErrTooManyStores, http.StatusBadRequest, "TOO_MANY_STORES"},
		{"empty list", ErrEmptyList, http.StatusBadRequest, "EMPTY_LIST"},
		{"source down", price.ErrSourceUnavailable, http.StatusServiceUnavailable, "PRICE_SOURCE_UNAVAILABLE"},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError, "INTERNAL"},
	}

	h := &Handler{}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		h.writeCompareError(rec, tc.err)
		require.Equal(t, tc.status, rec.Code, tc.name)
		require.Contains(t, rec.Body.String(), tc.code, tc.name)
	}
}

func TestWriteCompareErrorKeepsAppErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	h := &Handler{}
	h.writeCompareError(rec, common.NewAppError("FORBIDDEN", "not a member", http.StatusForbidden, nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Contains(t, rec.Body.String(), "FORBIDDEN")
}
