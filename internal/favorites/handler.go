package favorites

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

type Handler struct {
	Svc *Service
}

// List handles GET /api/v1/favorites.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	favs, err := h.Svc.List(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, favs)
}

// Toggle handles POST /api/v1/favorites.
func (h *Handler) Toggle(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(r)
	if !ok {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
		return
	}
	var req struct {
		ProductID string `json:"product_id" validate:"required,uuid"`
	}
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	productID := uuid.MustParse(req.ProductID)

	exists, err := h.Svc.Check(r.Context(), userID, productID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	if exists {
		err = h.Svc.Remove(r.Context(), userID, productID)
	} else {
		err = h.Svc.Add(r.Context(), userID, productID)
	}
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]bool{"favorited": !exists})
}

// Check handles GET /api/v1/favorites/{productID}.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
		return
	}
	userID, ok := authedUser(r)
	if !ok {
		common.JSONData(w, http.StatusOK, map[string]bool{"favorited": false})
		return
	}
	exists, err := h.Svc.Check(r.Context(), userID, productID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, map[string]bool{"favorited": exists})
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
