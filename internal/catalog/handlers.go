package catalog

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

// Handler exposes public catalog endpoints.
type Handler struct {
	Service *Service
}

type submitProductRequest struct {
	Barcode  *string `json:"barcode" validate:"omitempty,max=64"`
	Name     string  `json:"name" validate:"required,max=200"`
	Brand    string  `json:"brand" validate:"max=100"`
	Category string  `json:"category" validate:"max=100"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
}

// Products handles GET /api/v1/products with search and pagination.
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	params, err := h.Service.ParseListParams(r.URL.Query())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	result, err := h.Service.List(r.Context(), params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	w.Header().Set("X-Total-Count", strconv.FormatInt(result.Total, 10))
	common.JSONPage(w, http.StatusOK, result.Items, common.Pagination{
		Page:       result.Page,
		PerPage:    result.Limit,
		TotalItems: int(result.Total),
	})
}

// ProductDetail handles GET /api/v1/products/{productID}.
func (h *Handler) ProductDetail(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, p)
}

// Lookup handles GET /api/v1/products/barcode/{barcode}. Authenticated
// lookups are recorded in the caller's scan history.
func (h *Handler) Lookup(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if raw, ok := common.UserID(r.Context()); ok {
		if id, err := uuid.Parse(raw); err == nil {
			userID = &id
		}
	}
	p, err := h.Service.Lookup(r.Context(), chi.URLParam(r, "barcode"), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, p)
}

// Submit handles POST /api/v1/products.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
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

	var req submitProductRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	p, err := h.Service.Submit(r.Context(), CreateProductParams{
		Barcode:   req.Barcode,
		Name:      req.Name,
		Brand:     req.Brand,
		Category:  req.Category,
		ImageURL:  req.ImageURL,
		CreatedBy: userID,
	})
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, p)
}

// ScanHistory handles GET /api/v1/scans.
func (h *Handler) ScanHistory(w http.ResponseWriter, r *http.Request) {
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
	_, limit := common.ParsePagination(r, 20, 100)
	entries, err := h.Service.ScanHistory(r.Context(), userID, limit)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, entries)
}
