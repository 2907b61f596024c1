package compare

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
	"github.com/cenovnik-bg/backend-cenovnik/internal/list"
	"github.com/cenovnik-bg/backend-cenovnik/internal/obs"
	"github.com/cenovnik-bg/backend-cenovnik/internal/price"
)

// Directory resolves store display names for a comparison response.
// *store.Repo satisfies it.
type Directory interface {
	ActiveNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)
}

// Handler exposes the comparison endpoint. Requires auth and list
// membership.
type Handler struct {
	Engine *Engine
	Lists  *list.Service
	Stores Directory
}

// Store count violations are left to the engine so they surface as
// INSUFFICIENT_STORES rather than a generic validation error.
type compareRequest struct {
	StoreIDs []string `json:"store_ids" validate:"dive,uuid"`
}

type compareResponse struct {
	Result
	StoreNames map[string]string `json:"store_names"`
}

// Compare handles POST /api/v1/lists/{listID}/compare.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	raw, ok := common.UserID(r.Context())
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	listID, err := uuid.Parse(chi.URLParam(r, "listID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid list id", nil)
		return
	}

	var req compareRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	storeIDs := make([]uuid.UUID, 0, len(req.StoreIDs))
	for _, rawID := range req.StoreIDs {
		storeIDs = append(storeIDs, uuid.MustParse(rawID))
	}

	if err := h.Lists.RequireMember(r.Context(), listID, userID); err != nil {
		countComparison("forbidden")
		common.WriteError(w, err)
		return
	}
	snapshot, err := h.Lists.Snapshot(r.Context(), listID)
	if err != nil {
		countComparison("error")
		common.WriteError(w, err)
		return
	}

	names, err := h.storeNames(r, storeIDs)
	if err != nil {
		countComparison("error")
		common.WriteError(w, err)
		return
	}

	started := time.Now()
	result, err := h.Engine.Compare(r.Context(), snapshot, storeIDs)
	if err != nil {
		h.writeCompareError(w, err)
		return
	}
	if obs.ComparisonDuration != nil {
		obs.ComparisonDuration.Observe(obs.DurationMillis(time.Since(started)))
	}
	countComparison("ok")

	common.JSONData(w, http.StatusOK, compareResponse{Result: result, StoreNames: names})
}

func (h *Handler) storeNames(r *http.Request, storeIDs []uuid.UUID) (map[string]string, error) {
	active, err := h.Stores.ActiveNames(r.Context(), storeIDs)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(storeIDs))
	for _, id := range storeIDs {
		name, ok := active[id]
		if !ok {
			return nil, common.NewAppError("NOT_FOUND", "unknown or inactive store: "+id.String(), http.StatusNotFound, nil)
		}
		names[id.String()] = name
	}
	return names, nil
}

func (h *Handler) writeCompareError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInsufficientStores):
		countComparison("insufficient_stores")
		common.JSONError(w, http.StatusBadRequest, "INSUFFICIENT_STORES", "select at least two stores to compare", nil)
	case errors.Is(err, ErrTooManyStores):
		countComparison("too_many_stores")
		common.JSONError(w, http.StatusBadRequest, "TOO_MANY_STORES", "at most three stores can be compared", nil)
	case errors.Is(err, ErrEmptyList):
		countComparison("empty_list")
		common.JSONError(w, http.StatusBadRequest, "EMPTY_LIST", "the list has no items to compare", nil)
	case errors.Is(err, price.ErrSourceUnavailable):
		countComparison("source_unavailable")
		common.JSONError(w, http.StatusServiceUnavailable, "PRICE_SOURCE_UNAVAILABLE", "prices are temporarily unavailable, try again", nil)
	default:
		countComparison("error")
		if !common.IsAppError(err) {
			err = common.NewAppError("INTERNAL", "comparison failed", http.StatusInternalServerError, err)
		}
		common.WriteError(w, err)
	}
}

func countComparison(result string) {
	if obs.ComparisonsTotal != nil {
		obs.ComparisonsTotal.WithLabelValues(result).Inc()
	}
}
