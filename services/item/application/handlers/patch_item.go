package handlers

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	pkgvalidator "github.com/ghuser/itemtree/pkg/validator"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// UpdateItemRequest is the request body for PATCH /items/{id}. Omitted fields
// are left unchanged; the clear_* flags reset optional fields. Parent and
// status have their own endpoints.
type UpdateItemRequest struct {
	Name               *string          `json:"name"                 validate:"omitempty,max=255" example:"Cooling pump B"`
	Category           *string          `json:"category"             validate:"omitempty,max=100" example:"pump"`
	TemplateID         *string          `json:"template_id"          validate:"omitempty,uuid"`
	ClearTemplate      bool             `json:"clear_template"`
	LocationID         *string          `json:"location_id"          validate:"omitempty,uuid"`
	ClearLocation      bool             `json:"clear_location"`
	IdentifierCode     *string          `json:"identifier_code"      validate:"omitempty,max=64"`
	CustomFields       map[string]any   `json:"custom_fields"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price"       swaggertype:"string"`
	ClearPurchasePrice bool             `json:"clear_purchase_price"`
	WarrantyExpiresAt  *time.Time       `json:"warranty_expires_at"`
	ClearWarranty      bool             `json:"clear_warranty"`
} // @name UpdateItemRequest

// PatchItemHandler handles PATCH /items/{id} requests.
type PatchItemHandler struct {
	svc *appsvcs.Services
}

func NewPatchItemHandler(svc *appsvcs.Services) *PatchItemHandler {
	return &PatchItemHandler{svc: svc}
}

// Execute applies a partial update.
//
//	@Summary	Update item
//	@Tags		items
//	@Accept		json
//	@Produce	json
//	@Param		id		path		string				true	"Item ID"	format(uuid)
//	@Param		request	body		UpdateItemRequest	true	"Fields to change"
//	@Success	200		{object}	ItemResponse
//	@Failure	400		{object}	ErrorResponse
//	@Failure	401		{object}	ErrorResponse
//	@Failure	404		{object}	ErrorResponse
//	@Failure	409		{object}	ErrorResponse
//	@Failure	422		{object}	ErrorResponse
//	@Router		/items/{id} [patch]
func (h *PatchItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := itemIDParam(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[UpdateItemRequest](w, r)
	if !ok {
		return
	}

	in := appsvcs.UpdateItemInput{
		Name:               req.Name,
		Category:           req.Category,
		ClearTemplate:      req.ClearTemplate,
		ClearLocation:      req.ClearLocation,
		IdentifierCode:     req.IdentifierCode,
		CustomFields:       req.CustomFields,
		PurchasePrice:      req.PurchasePrice,
		ClearPurchasePrice: req.ClearPurchasePrice,
		WarrantyExpiresAt:  req.WarrantyExpiresAt,
		ClearWarranty:      req.ClearWarranty,
	}
	var err error
	if in.TemplateID, err = parseOptionalUUID(req.TemplateID); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid template_id")
		return
	}
	if in.LocationID, err = parseOptionalUUID(req.LocationID); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid location_id")
		return
	}

	item, err := h.svc.Hierarchy.Update(r.Context(), tenantID, id, in)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toItemResponse(item))
}
