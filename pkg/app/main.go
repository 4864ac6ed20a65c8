package app

import (
	"github.com/gorilla/sessions"

	"github.com/ghuser/itemtree/pkg/cache"
	"github.com/ghuser/itemtree/pkg/config"
	"github.com/ghuser/itemtree/pkg/database"
	"github.com/ghuser/itemtree/pkg/events"
	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/pkg/workflows"
)

// Application is the dependency bundle cmd/api, cmd/worker and hierarchyctl
// build once and hand to services.New. Fields a process does not use stay nil:
// the worker has no SessionStore, the API has no TemporalClient and
// hierarchyctl only sets Config, Db and Logger.
//
// Log through the context methods so request_id, trace ids and tenant_id
// follow the call:
//
//	a.Logger.InfoContext(ctx, "item moved", "item_id", id)
type Application struct {
	Config         *config.Config
	Db             *database.Database
	Logger         logger.Logger
	EventBus       *events.EventBus
	Redis          *cache.RedisClient
	TemporalClient *workflows.TemporalClient
	SessionStore   sessions.Store
}
