package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemtree/pkg/validator"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// SetStatusRequest is the request body for POST /items/{id}/status.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=operational maintenance repair retired disposed lost" example:"maintenance"`
} // @name SetStatusRequest

// SetStatusHandler handles POST /items/{id}/status requests.
type SetStatusHandler struct {
	svc *appsvcs.Services
}

func NewSetStatusHandler(svc *appsvcs.Services) *SetStatusHandler {
	return &SetStatusHandler{svc: svc}
}

// Execute moves an item through its lifecycle.
//
//	@Summary	Change item status
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"	format(uuid)
//	@Param		request	body		SetStatusRequest	true	"Target status"
//	@Success	200		{object}	ItemResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/items/{id}/status [post]
func (h *SetStatusHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[SetStatusRequest](w, r)
	if !ok {
		return
	}

	item, err := h.svc.Hierarchy.SetStatus(r.Context(), tenantID, id, models.Status(req.Status))
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
