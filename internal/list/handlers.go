package list

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cenovnik-bg/backend-cenovnik/internal/common"
)

// Handler exposes shopping list endpoints. All routes require auth.
type Handler struct {
	Service *Service
}

type createListRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type renameListRequest struct {
	Name string `json:"name" validate:"required,max=200"`
}

type addItemRequest struct {
	ProductID  *string `json:"product_id" validate:"omitempty,uuid"`
	CustomName *string `json:"custom_name" validate:"omitempty,max=200"`
	Quantity   int     `json:"quantity" validate:"omitempty,min=1"`
}

type updateItemRequest struct {
	Quantity  *int  `json:"quantity" validate:"omitempty,min=1"`
	IsChecked *bool `json:"is_checked"`
}

type addMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Create handles POST /api/v1/lists.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	var req createListRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	l, err := h.Service.Create(r.Context(), userID, req.Name)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusCreated, l)
}

// Index handles GET /api/v1/lists.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(r)
	if !ok {
		unauthorized(w)
		return
	}
	lists, err := h.Service.Lists(r.Context(), userID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, lists)
}

// Get handles GET /api/v1/lists/{listID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	snapshot, err := h.Service.Get(r.Context(), userID, listID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, snapshot)
}

// Rename handles PATCH /api/v1/lists/{listID}.
func (h *Handler) Rename(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	var req renameListRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.Rename(r.Context(), userID, listID, req.Name); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/lists/{listID}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	if err := h.Service.Delete(r.Context(), userID, listID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddItem handles POST /api/v1/lists/{listID}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	var req addItemRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	params := AddItemParams{CustomName: req.CustomName, Quantity: req.Quantity}
	if req.ProductID != nil {
		id, err := uuid.Parse(*req.ProductID)
		if err != nil {
			common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid product id", nil)
			return
		}
		params.ProductID = &id
	}
	item, err := h.Service.AddItem(r.Context(), userID, listID, params)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, item)
}

// UpdateItem handles PATCH /api/v1/lists/{listID}/items/{itemID}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	var req updateItemRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	item, err := h.Service.UpdateItem(r.Context(), userID, listID, itemID, req.Quantity, req.IsChecked)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, item)
}

// RemoveItem handles DELETE /api/v1/lists/{listID}/items/{itemID}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid item id", nil)
		return
	}
	if err := h.Service.RemoveItem(r.Context(), userID, listID, itemID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Members handles GET /api/v1/lists/{listID}/members.
func (h *Handler) Members(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	members, err := h.Service.Members(r.Context(), userID, listID)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSONData(w, http.StatusOK, members)
}

// AddMember handles POST /api/v1/lists/{listID}/members.
func (h *Handler) AddMember(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	var req addMemberRequest
	if err := common.DecodeAndValidate(r, &req); err != nil {
		common.WriteError(w, err)
		return
	}
	if err := h.Service.AddMember(r.Context(), userID, listID, req.Email); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveMember handles DELETE /api/v1/lists/{listID}/members/{memberID}.
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, listID, ok := listRequest(w, r)
	if !ok {
		return
	}
	memberID, err := uuid.Parse(chi.URLParam(r, "memberID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid member id", nil)
		return
	}
	if err := h.Service.RemoveMember(r.Context(), userID, listID, memberID); err != nil {
		common.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func listRequest(w http.ResponseWriter, r *http.Request) (userID, listID uuid.UUID, ok bool) {
	userID, authed := authedUser(r)
	if !authed {
		unauthorized(w)
		return uuid.Nil, uuid.Nil, false
	}
	listID, err := uuid.Parse(chi.URLParam(r, "listID"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid list id", nil)
		return uuid.Nil, uuid.Nil, false
	}
	return userID, listID, true
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

func unauthorized(w http.ResponseWriter) {
	common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid token", nil)
}
