package handlers

import (
	"net/http"

	"github.com/ghuser/itemtree/pkg/errhttp"
	"github.com/ghuser/itemtree/pkg/httpx"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

// IntegrityResponse is the result of a hierarchy sweep.
type IntegrityResponse struct {
	OK bool `json:"ok"`
	*domainsvcs.IntegrityReport
} // @name IntegrityResponse

// GetIntegrityHandler handles GET /items/integrity requests.
type GetIntegrityHandler struct {
	svc *appsvcs.Services
}

func NewGetIntegrityHandler(svc *appsvcs.Services) *GetIntegrityHandler {
	return &GetIntegrityHandler{svc: svc}
}

// Execute checks the tenant's hierarchy for broken paths, duplicates and
// cycles. It never repairs anything.
//
//	@Summary	Verify hierarchy integrity
//	@Tags		hierarchy
//	@Produce	json
//	@Success	200	{object}	IntegrityResponse
//	@Failure	401	{object}	ErrorResponse
//	@Router		/items/integrity [get]
func (h *GetIntegrityHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := tenantFromRequest(w, r)
	if !ok {
		return
	}

	report, err := h.svc.Hierarchy.VerifyIntegrity(r.Context(), tenantID)
	if err != nil {
		errhttp.WriteError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, IntegrityResponse{OK: report.OK(), IntegrityReport: report})
}
