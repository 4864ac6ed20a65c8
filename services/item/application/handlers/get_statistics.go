package handlers

import (
	"net/http"
	"time"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// StatisticsResponse aggregates a tenant's items.
type StatisticsResponse struct {
	TotalItems           int            `json:"total_items"            example:"42"`
	ByCategory           map[string]int `json:"by_category"`
	ByStatus             map[string]int `json:"by_status"`
	ByLocation           map[string]int `json:"by_location"`
	TotalValue           string         `json:"total_value"            example:"15300.00"`
	WarrantyExpiringSoon int            `json:"warranty_expiring_soon" example:"3"`
	WarrantyWindowEnd    time.Time      `json:"warranty_window_end"`
} // @name StatisticsResponse

// GetStatisticsHandler handles GET /items/statistics requests.
type GetStatisticsHandler struct {
	svc *appsvcs.Services
}

func NewGetStatisticsHandler(svc *appsvcs.Services) *GetStatisticsHandler {
	return &GetStatisticsHandler{svc: svc}
}

// Execute returns item counts by category, status and location, the total
// purchase value and how many warranties expire within the configured window.
//
//	@Summary	Item statistics
//	@Tags		hierarchy
//	@Produce	json
//	@Success	200	{object}	StatisticsResponse
//	@Failure	401	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse
//	@Router		/items/statistics [get]
func (h *GetStatisticsHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	stats, err := h.svc.Hierarchy.Statistics(r.Context(), tenantID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toStatisticsResponse(stats))
}

func toStatisticsResponse(s *models.Statistics) StatisticsResponse {
	byStatus := make(map[string]int, len(s.ByStatus))
	for k, v := range s.ByStatus {
		byStatus[k.String()] = v
	}
	return StatisticsResponse{
		TotalItems:           s.TotalItems,
		ByCategory:           s.ByCategory,
		ByStatus:             byStatus,
		ByLocation:           s.ByLocation,
		TotalValue:           s.TotalValue.StringFixed(2),
		WarrantyExpiringSoon: s.WarrantyExpiringSoon,
		WarrantyWindowEnd:    s.WarrantyWindowEnd,
	}
}
