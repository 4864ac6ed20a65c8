package handlers

import (
	"net/http"
	"strconv"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// DeleteItemHandler handles DELETE /items/{id} requests.
type DeleteItemHandler struct {
	svc *appsvcs.Services
}

func NewDeleteItemHandler(svc *appsvcs.Services) *DeleteItemHandler {
	return &DeleteItemHandler{svc: svc}
}

// Execute deletes an item. Without cascade=true an item with children is
// refused; open work items block the delete either way.
//
//	@Summary	Delete item
//	@Tags		items
//	@Param		id		path	string	true	"Item ID"	format(uuid)
//	@Param		cascade	query	bool	false	"Also delete all descendants"
//	@Success	204
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Failure	409	{object}	ErrorResponse
//	@Router		/items/{id} [delete]
func (h *DeleteItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	cascade := false
	if raw := r.URL.Query().Get("cascade"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httpx.JSONError(w, http.StatusBadRequest, "cascade must be a boolean")
			return
		}
		cascade = v
	}

	if err := h.svc.Hierarchy.Delete(r.Context(), tenantID, id, cascade); err != nil {
		errhttp.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
