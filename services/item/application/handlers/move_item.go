package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemtree/pkg/validator"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// MoveItemRequest is the request body for POST /items/{id}/move. A null or
// absent parent_id, or no body at all, moves the item to the root.
type MoveItemRequest struct {
	ParentID *string `json:"parent_id" validate:"omitempty,uuid" example:"123e4567-e89b-12d3-a456-426614174000"`
} // @name MoveItemRequest

// MoveItemHandler handles POST /items/{id}/move requests.
type MoveItemHandler struct {
	svc *appsvcs.Services
}

func NewMoveItemHandler(svc *appsvcs.Services) *MoveItemHandler {
	return &MoveItemHandler{svc: svc}
}

// Execute re-parents an item and rewrites the paths of its whole subtree.
//
//	@Summary		Move item
//	@Description	Moves an item under a new parent (or to the root). Moving under itself or a descendant is refused.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Item ID"	format(uuid)
//	@Param			request	body		MoveItemRequest	false	"New parent"
//	@Success		200		{object}	ItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Router			/items/{id}/move [post]
func (h *MoveItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	var req MoveItemRequest
	if !emptyBody(r) {
		decoded, ok := pkgvalidator.ValidateRequest[MoveItemRequest](w, r)
		if !ok {
			return
		}
		req = *decoded
	}
	parentID, err := parseOptionalUUID(req.ParentID)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid parent_id")
		return
	}

	item, err := h.svc.Hierarchy.Move(r.Context(), tenantID, id, parentID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
