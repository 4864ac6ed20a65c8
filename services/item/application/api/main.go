package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ghuser/itemtree/pkg/app"
	"github.com/ghuser/itemtree/pkg/auth"
	"github.com/ghuser/itemtree/pkg/config"
	"github.com/ghuser/itemtree/pkg/telemetry"
	"github.com/ghuser/itemtree/services/item/application/handlers"
	appsvcs "github.com/ghuser/itemtree/services/item/application/services"
)

// ItemRoutes registers item endpoints on the provided chi router behind the
// tenant authentication selected by the configuration.
func ItemRoutes(r chi.Router, a *app.Application) {
	svcs := appsvcs.New(a)
	r.Group(func(r chi.Router) {
		r.Use(tenantMiddleware(a))
		r.Use(telemetry.SentryTag("tenant_id", tenantTag))
		Mount(r, svcs)
	})
}

// Mount registers the item endpoints without any authentication middleware.
func Mount(r chi.Router, svcs *appsvcs.Services) {
	r.Route("/items", func(r chi.Router) {
		r.Post("/", handlers.NewPostItemHandler(svcs).Execute)
		r.Get("/", handlers.NewListItemsHandler(svcs).Execute)
		r.Get("/tree", handlers.NewGetTreeHandler(svcs).Execute)
		r.Get("/statistics", handlers.NewGetStatisticsHandler(svcs).Execute)
		r.Get("/integrity", handlers.NewGetIntegrityHandler(svcs).Execute)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handlers.NewGetItemHandler(svcs).Execute)
			r.Patch("/", handlers.NewPatchItemHandler(svcs).Execute)
			r.Delete("/", handlers.NewDeleteItemHandler(svcs).Execute)
			r.Post("/move", handlers.NewMoveItemHandler(svcs).Execute)
			r.Post("/status", handlers.NewSetStatusHandler(svcs).Execute)
			r.Get("/subtree", handlers.NewGetSubtreeHandler(svcs).Execute)
			r.Get("/ancestors", handlers.NewGetAncestorsHandler(svcs).Execute)
		})
	})
}

func tenantMiddleware(a *app.Application) func(http.Handler) http.Handler {
	if a.Config != nil && a.Config.AuthMode == config.AuthModeHeader {
		return auth.RequireTenantHeader(a.Logger)
	}
	return auth.RequireAuth(a.SessionStore, a.Logger)
}

func tenantTag(r *http.Request) string {
	id, err := auth.TenantIDFromCtx(r.Context())
	if err != nil {
		return ""
	}
	return id.String()
}
