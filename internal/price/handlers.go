package price

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

// Handler exposes price endpoints.
type Handler struct {
	Service *Service
}

type submitPriceRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	StoreID   string `json:"store_id" validate:"required,uuid"`
	Price     string `json:"price" validate:"required"`
	Currency  string `json:"currency" validate:"required,oneof=EUR BGN"`
}

// Submit handles POST /api/v1/prices.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}

	var req submitPriceRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "VALIDATION_ERROR", "price must be a decimal number", nil)
		return
	}

	entry, err := h.Service.Submit(r.Context(), SubmitParams{
		ProductID:   uuid.MustParse(req.ProductID),
		StoreID:     uuid.MustParse(req.StoreID),
		Price:       price,
		Currency:    req.Currency,
		SubmittedBy: userID,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, entry)
}

// Latest handles GET /api/v1/products/{productID}/prices.
func (h *Handler) Latest(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	prices, err := h.Service.Latest(r.Context(), productID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, prices)
}

// History handles GET /api/v1/products/{productID}/prices/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	var storeID *uuid.UUID
	if raw := r.URL.Query().Get("store"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid store id", nil)
			return
		}
		storeID = &id
	}
	limit := common.AtoiDefault(r.URL.Query().Get("limit"), 0)
	entries, err := h.Service.History(r.Context(), productID, storeID, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, entries)
}

func authedUser(r *http.Request) (uuid.UUID, bool) {
	raw, ok := common.UserID(r.Context())
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
