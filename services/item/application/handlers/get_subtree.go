package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// GetSubtreeHandler handles GET /items/{id}/subtree requests.
type GetSubtreeHandler struct {
	svc *appsvcs.Services
}

func NewGetSubtreeHandler(svc *appsvcs.Services) *GetSubtreeHandler {
	return &GetSubtreeHandler{svc: svc}
}

// Execute returns the item and all of its descendants as a flat list ordered
// by path.
//
//	@Summary	Get subtree
//	@Tags		hierarchy
//	@Produce	json
//	@Param		id	path		string	true	"Subtree root"	format(uuid)
//	@Success	200	{array}		ItemResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/subtree [get]
func (h *GetSubtreeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	items, err := h.svc.Hierarchy.GetSubtree(r.Context(), tenantID, &id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponses(items))
}
