// Package subscribers holds the worker-side handlers for item events.
package subscribers

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/services/item/application/services"
	"github.com/ghuser/itemtree/services/item/domain/events"
)

// CacheSync keeps the item read model in step with committed mutations.
type CacheSync struct {
	readModel services.ItemReadModel
	log       logger.Logger
}

// NewCacheSync returns a handler writing through to readModel.
func NewCacheSync(readModel services.ItemReadModel, log logger.Logger) *CacheSync {
	return &CacheSync{readModel: readModel, log: log}
}

// Handle processes one item.changed message. It is idempotent and tolerates
// reordering: entries are versioned by UpdatedAt, deletes leave a permanent
// tombstone, and a late after-image never replaces a newer entry.
func (c *CacheSync) Handle(ctx context.Context, msg *message.Message) error {
	var evt events.ItemChangedEvent
	if err := json.Unmarshal(msg.Payload, &evt); err != nil {
		// A payload that cannot be decoded will never succeed; ack it.
		c.log.ErrorContext(ctx, "dropping undecodable item event",
			"message_uuid", msg.UUID, "error", err)
		return nil
	}
	if evt.Version > events.EventVersion {
		c.log.WarnContext(ctx, "skipping item event with newer schema",
			"event_id", evt.EventID, "version", evt.Version)
		return nil
	}

	if evt.Action == events.ActionDeleted || evt.After == nil {
		gone := append([]uuid.UUID{evt.EntityID}, evt.AffectedIDs...)
		if err := c.readModel.Forget(ctx, evt.TenantID, gone); err != nil {
			return fmt.Errorf("cache forget: %w", err)
		}
		c.log.DebugContext(ctx, "item cache synced",
			"event_id", evt.EventID,
			"action", evt.Action,
			"item_id", evt.EntityID,
			"tenant_id", evt.TenantID,
			"forgotten", len(gone),
		)
		return nil
	}

	after := evt.After.ToItem()
	stored, err := c.readModel.Set(ctx, after)
	if err != nil {
		return fmt.Errorf("cache set %s: %w", evt.EntityID, err)
	}
	if !stored {
		c.log.DebugContext(ctx, "item cache holds a newer image",
			"event_id", evt.EventID, "item_id", evt.EntityID)
	}
	if len(evt.AffectedIDs) > 0 {
		if err := c.readModel.Invalidate(ctx, evt.TenantID, evt.AffectedIDs, after.UpdatedAt); err != nil {
			return fmt.Errorf("cache invalidate: %w", err)
		}
	}

	c.log.DebugContext(ctx, "item cache synced",
		"event_id", evt.EventID,
		"action", evt.Action,
		"item_id", evt.EntityID,
		"tenant_id", evt.TenantID,
		"invalidated", len(evt.AffectedIDs),
	)
	return nil
}
