package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// GetTreeHandler handles GET /items/tree requests.
type GetTreeHandler struct {
	svc *appsvcs.Services
}

func NewGetTreeHandler(svc *appsvcs.Services) *GetTreeHandler {
	return &GetTreeHandler{svc: svc}
}

// Execute returns the tenant forest, or the subtree under root_id, as nested
// nodes with siblings ordered by name.
//
//	@Summary	Get item tree
//	@Tags		hierarchy
//	@Produce	json
//	@Param		root_id	query		string	false	"Subtree root"	format(uuid)
//	@Success	200		{array}		TreeNodeResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Router		/items/tree [get]
func (h *GetTreeHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	rootID, ok := optionalUUIDQuery(w, r, "root_id")
	if !ok {
		return
	}

	roots, err := h.svc.Hierarchy.GetTree(r.Context(), tenantID, rootID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toTreeResponse(roots))
}
