package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// GetAncestorsHandler handles GET /items/{id}/ancestors requests.
type GetAncestorsHandler struct {
	svc *appsvcs.Services
}

func NewGetAncestorsHandler(svc *appsvcs.Services) *GetAncestorsHandler {
	return &GetAncestorsHandler{svc: svc}
}

// Execute returns the item's ancestors, root first.
//
//	@Summary	Get ancestors
//	@Tags		hierarchy
//	@Produce	json
//	@Param		id	path		string	true	"Item ID"	format(uuid)
//	@Success	200	{array}		ItemResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/{id}/ancestors [get]
func (h *GetAncestorsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	items, err := h.svc.Hierarchy.Ancestors(r.Context(), tenantID, id)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponses(items))
}
