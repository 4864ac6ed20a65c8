package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
)

// ListItemsHandler handles GET /items requests.
type ListItemsHandler struct {
	svc *appsvcs.Services
}

func NewListItemsHandler(svc *appsvcs.Services) *ListItemsHandler {
	return &ListItemsHandler{svc: svc}
}

// Execute returns one page of the tenant's items ordered by path.
//
//	@Summary	List items
//	@Tags		items
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 500)"	default(50)
//	@Param		offset	query		int	false	"Items to skip"			default(0)
//	@Success	200		{object}	ItemListResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Router		/items [get]
func (h *ListItemsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	limit, err := intQuery(r, "limit", defaultPageSize)
	if err != nil || limit < 1 || limit > maxPageSize {
		httpx.JSONError(w, http.StatusBadRequest, "limit must be between 1 and 500")
		return
	}
	offset, err := intQuery(r, "offset", 0)
	if err != nil || offset < 0 {
		httpx.JSONError(w, http.StatusBadRequest, "offset must not be negative")
		return
	}

	items, total, err := h.svc.Hierarchy.List(r.Context(), tenantID, repositories.QueryOpts{Limit: limit, Offset: offset})
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusOK, ItemListResponse{
		Items:  toItemResponses(items),
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
