package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/itemtree/pkg/auth"
	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/models"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

// ErrorResponse is returned on all error responses.
type ErrorResponse struct {
	Error  string            `json:"error" example:"item not found"`
	Kind   string            `json:"kind,omitempty" example:"not_found"`
	Fields map[string]string `json:"fields,omitempty"`
} // @name ErrorResponse

// ItemResponse is the JSON representation of one item.
type ItemResponse struct {
	ID                uuid.UUID        `json:"id"                            example:"123e4567-e89b-12d3-a456-426614174000"`
	TenantID          uuid.UUID        `json:"tenant_id"                     example:"550e8400-e29b-41d4-a716-446655440000"`
	ParentID          *uuid.UUID       `json:"parent_id"`
	Path              string           `json:"path"                          example:"/123e4567-e89b-12d3-a456-426614174000"`
	Name              string           `json:"name"                          example:"Cooling pump"`
	Category          string           `json:"category"                      example:"pump"`
	Status            string           `json:"status"                        example:"operational"`
	TemplateID        *uuid.UUID       `json:"template_id,omitempty"`
	LocationID        *uuid.UUID       `json:"location_id,omitempty"`
	IdentifierCode    string           `json:"identifier_code"               example:"ITM-123E4567E89B"`
	CustomFields      map[string]any   `json:"custom_fields,omitempty"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price,omitempty"      swaggertype:"string" example:"1250.00"`
	WarrantyExpiresAt *time.Time       `json:"warranty_expires_at,omitempty"`
	CreatedAt         time.Time        `json:"created_at"                    example:"2024-01-15T10:30:00Z"`
	UpdatedAt         time.Time        `json:"updated_at"                    example:"2024-01-15T10:30:00Z"`
} // @name ItemResponse

// ReferenceResponse summarizes an entity an item points at.
type ReferenceResponse struct {
	ID       uuid.UUID `json:"id"                 example:"123e4567-e89b-12d3-a456-426614174000"`
	Name     string    `json:"name"               example:"Hall B"`
	Path     string    `json:"path,omitempty"`
	Category string    `json:"category,omitempty" example:"pump"`
} // @name ReferenceResponse

// CreatedItemResponse is a freshly created item with its references
// resolved. Absent references are omitted.
type CreatedItemResponse struct {
	ItemResponse
	Parent   *ReferenceResponse `json:"parent,omitempty"`
	Template *ReferenceResponse `json:"template,omitempty"`
	Location *ReferenceResponse `json:"location,omitempty"`
} // @name CreatedItemResponse

// ItemListResponse is a page of items.
type ItemListResponse struct {
	Items  []ItemResponse `json:"items"`
	Total  int            `json:"total"  example:"42"`
	Limit  int            `json:"limit"  example:"50"`
	Offset int            `json:"offset" example:"0"`
} // @name ItemListResponse

// TreeNodeResponse is one item with its children.
type TreeNodeResponse struct {
	ItemResponse
	Children []*TreeNodeResponse `json:"children"`
} // @name TreeNodeResponse

func toItemResponse(it *models.Item) ItemResponse {
	resp := ItemResponse{
		ID:                it.ID,
		TenantID:          it.TenantID,
		ParentID:          it.ParentID,
		Path:              it.Path,
		Name:              it.Name.String(),
		Category:          it.Category,
		Status:            it.Status.String(),
		TemplateID:        it.TemplateID,
		LocationID:        it.LocationID,
		IdentifierCode:    it.IdentifierCode,
		CustomFields:      it.CustomFields,
		WarrantyExpiresAt: it.WarrantyExpiresAt,
		CreatedAt:         it.CreatedAt,
		UpdatedAt:         it.UpdatedAt,
	}
	if it.PurchasePrice.Valid {
		p := it.PurchasePrice.Decimal
		resp.PurchasePrice = &p
	}
	return resp
}

func toCreatedItemResponse(it *appsvcs.ResolvedItem) CreatedItemResponse {
	resp := CreatedItemResponse{ItemResponse: toItemResponse(it.Item)}
	if p := it.Parent; p != nil {
		resp.Parent = &ReferenceResponse{ID: p.ID, Name: p.Name.String(), Path: p.Path, Category: p.Category}
	}
	if t := it.Template; t != nil {
		resp.Template = &ReferenceResponse{ID: t.ID, Name: t.Name, Category: t.Category}
	}
	if l := it.Location; l != nil {
		resp.Location = &ReferenceResponse{ID: l.ID, Name: l.Name}
	}
	return resp
}

func toItemResponses(items []*models.Item) []ItemResponse {
	out := make([]ItemResponse, len(items))
	for i, it := range items {
		out[i] = toItemResponse(it)
	}
	return out
}

// toTreeResponse converts a forest without recursion.
func toTreeResponse(roots []*domainsvcs.TreeNode) []*TreeNodeResponse {
	type pair struct {
		src *domainsvcs.TreeNode
		dst *TreeNodeResponse
	}
	out := make([]*TreeNodeResponse, len(roots))
	stack := make([]pair, 0, len(roots))
	for i, n := range roots {
		out[i] = &TreeNodeResponse{ItemResponse: toItemResponse(n.Item)}
		stack = append(stack, pair{n, out[i]})
	}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		p.dst.Children = make([]*TreeNodeResponse, len(p.src.Children))
		for i, c := range p.src.Children {
			p.dst.Children[i] = &TreeNodeResponse{ItemResponse: toItemResponse(c.Item)}
			stack = append(stack, pair{c, p.dst.Children[i]})
		}
	}
	return out
}

// tenantFromRequest writes a 401 and returns false when the request is not
// bound to a tenant.
func tenantFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	tenantID, err := auth.TenantIDFromCtx(r.Context())
	if err != nil {
		errhttp.WriteError(w, err)
		return uuid.Nil, false
	}
	return tenantID, true
}

// itemIDParam parses the {id} route parameter, writing a 400 on failure.
func itemIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid item id")
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUIDQuery parses an optional uuid query parameter.
func optionalUUIDQuery(w http.ResponseWriter, r *http.Request, key string) (*uuid.UUID, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		httpx.JSONError(w, http.StatusBadRequest, "invalid "+key)
		return nil, false
	}
	return &id, true
}

func intQuery(r *http.Request, key string, def int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

// emptyBody reports whether the request carries no payload.
func emptyBody(r *http.Request) bool {
	return r.Body == nil || r.Body == http.NoBody || r.ContentLength == 0
}

// parseOptionalUUID converts a validated uuid string pointer.
func parseOptionalUUID(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
