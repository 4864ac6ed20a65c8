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

// CreateItemRequest is the request body for POST /items.
type CreateItemRequest struct {
	Name              string           `json:"name"                validate:"required,max=255" example:"Cooling pump"`
	Category          string           `json:"category"            validate:"required,max=100" example:"pump"`
	ParentID          *string          `json:"parent_id"           validate:"omitempty,uuid"   example:"123e4567-e89b-12d3-a456-426614174000"`
	TemplateID        *string          `json:"template_id"         validate:"omitempty,uuid"`
	LocationID        *string          `json:"location_id"         validate:"omitempty,uuid"`
	IdentifierCode    string           `json:"identifier_code"     validate:"omitempty,max=64" example:"PUMP-0001"`
	CustomFields      map[string]any   `json:"custom_fields"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price"      swaggertype:"string" example:"1250.00"`
	WarrantyExpiresAt *time.Time       `json:"warranty_expires_at" example:"2027-01-15T00:00:00Z"`
} // @name CreateItemRequest

// PostItemHandler handles POST /items requests.
type PostItemHandler struct {
	svc *appsvcs.Services
}

// NewPostItemHandler returns a PostItemHandler backed by the given services.
func NewPostItemHandler(svc *appsvcs.Services) *PostItemHandler {
	return &PostItemHandler{svc: svc}
}

// Execute creates a new item, as a root or under parent_id.
//
//	@Summary		Create item
//	@Description	Creates an item in the caller's tenant. The materialized path is derived from the parent.
//	@Tags			items
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateItemRequest	true	"Item creation request"
//	@Success		201		{object}	CreatedItemResponse
//	@Failure		400		{object}	ErrorResponse
//	@Failure		401		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Router			/items [post]
func (h *PostItemHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	req, ok := pkgvalidator.ValidateRequest[CreateItemRequest](w, r)
	if !ok {
		return
	}

	in := appsvcs.CreateItemInput{
		Name:              req.Name,
		Category:          req.Category,
		IdentifierCode:    req.IdentifierCode,
		CustomFields:      req.CustomFields,
		PurchasePrice:     req.PurchasePrice,
		WarrantyExpiresAt: req.WarrantyExpiresAt,
	}
	var err error
	if in.ParentID, err = parseOptionalUUID(req.ParentID); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid parent_id")
		return
	}
	if in.TemplateID, err = parseOptionalUUID(req.TemplateID); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid template_id")
		return
	}
	if in.LocationID, err = parseOptionalUUID(req.LocationID); err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid location_id")
		return
	}

	item, err := h.svc.Hierarchy.Create(r.Context(), tenantID, in)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}

	httpx.JSON(w, http.StatusCreated, toCreatedItemResponse(item))
}
