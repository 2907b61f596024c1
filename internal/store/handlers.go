package store

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

// Handler exposes the public store directory endpoints.
type Handler struct {
	Repo *Repo
}

// List handles GET /api/v1/stores.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	stores, err := h.Repo.List(r.Context(), r.URL.Query().Get("city"))
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, stores)
}

// Get handles GET /api/v1/stores/{storeID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "storeID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid store id", nil)
		return
	}
	s, err := h.Repo.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "store not found", nil)
			return
		}
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, s)
}
