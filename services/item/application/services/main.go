package services

import (
	"time"

	"github.com/ghuser/itemtree/pkg/app"
	"github.com/ghuser/itemtree/pkg/cache"
	"github.com/ghuser/itemtree/services/item/infrastructure/persistence/postgres"
)

// Services is the application-layer service container for this bounded context.
// It wires domain services with their infrastructure implementations.
type Services struct {
	Hierarchy *HierarchyStore
}

// New wires all item application services with infrastructure from the Application container.
func New(a *app.Application) *Services {
	repo := postgres.NewItemRepository(a.Db)
	refs := postgres.NewReferenceRepository(a.Db)

	deps := StoreDeps{
		Repo:      repo,
		Validator: NewRelationshipValidator(refs, refs, refs, repo),
		WorkItems: refs,
		Logger:    a.Logger,
	}
	// Assigned only when present so the interfaces never hold a typed nil.
	if a.EventBus != nil {
		deps.Notifier = a.EventBus
	}
	if a.Redis != nil {
		deps.ReadModel = NewCacheReadModel(cache.NewItemCache(a.Redis))
	}

	opts := StoreOptions{GuardSubtreeWork: true, WarrantyLookahead: 30 * 24 * time.Hour}
	if a.Config != nil {
		opts.GuardSubtreeWork = a.Config.ItemDeleteGuardSubtreeWork
		opts.WarrantyLookahead = a.Config.WarrantyLookahead()
	}

	return &Services{
		Hierarchy: NewHierarchyStore(deps, opts),
	}
}
