package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// TopicItemChanged is the Watermill topic published after any committed item
// mutation.
const TopicItemChanged = "item.changed"

// EntityTypeItem is the entity_type carried by item events and audit rows.
const EntityTypeItem = "item"

// EventVersion is the current ItemChangedEvent schema version.
const EventVersion = 1

// Action names the mutation an event describes.
type Action string

const (
	ActionCreated       Action = "created"
	ActionUpdated       Action = "updated"
	ActionMoved         Action = "moved"
	ActionStatusChanged Action = "status_changed"
	ActionDeleted       Action = "deleted"
)

// ItemSnapshot is the serialised before/after image of an item.
type ItemSnapshot struct {
	ID                uuid.UUID        `json:"id"`
	TenantID          uuid.UUID        `json:"tenant_id"`
	ParentID          *uuid.UUID       `json:"parent_id"`
	Path              string           `json:"path"`
	Name              string           `json:"name"`
	Category          string           `json:"category"`
	Status            string           `json:"status"`
	TemplateID        *uuid.UUID       `json:"template_id"`
	LocationID        *uuid.UUID       `json:"location_id"`
	IdentifierCode    string           `json:"identifier_code"`
	CustomFields      map[string]any   `json:"custom_fields"`
	PurchasePrice     *decimal.Decimal `json:"purchase_price"`
	WarrantyExpiresAt *time.Time       `json:"warranty_expires_at"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// SnapshotOf converts an item into its event image. A nil item yields nil.
func SnapshotOf(item *models.Item) *ItemSnapshot {
	if item == nil {
		return nil
	}
	c := item.Clone()
	s := &ItemSnapshot{
		ID:                c.ID,
		TenantID:          c.TenantID,
		ParentID:          c.ParentID,
		Path:              c.Path,
		Name:              c.Name.String(),
		Category:          c.Category,
		Status:            c.Status.String(),
		TemplateID:        c.TemplateID,
		LocationID:        c.LocationID,
		IdentifierCode:    c.IdentifierCode,
		CustomFields:      c.CustomFields,
		WarrantyExpiresAt: c.WarrantyExpiresAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.PurchasePrice.Valid {
		p := c.PurchasePrice.Decimal
		s.PurchasePrice = &p
	}
	return s
}

// ItemChangedEvent is published after a mutation commits.
// Consumers subscribe via EventBus.Subscribe(ctx, events.TopicItemChanged).
type ItemChangedEvent struct {
	EventID    uuid.UUID     `json:"event_id"` // Unique publish-time identifier for deduplication
	Version    int           `json:"version"`  // Schema version; increment on breaking changes
	EntityType string        `json:"entity_type"`
	EntityID   uuid.UUID     `json:"entity_id"`
	TenantID   uuid.UUID     `json:"tenant_id"`
	Action     Action        `json:"action"`
	Before     *ItemSnapshot `json:"before"`
	After      *ItemSnapshot `json:"after"`

	// AffectedIDs lists other items touched by the same mutation: rewritten
	// descendants on move, removed descendants on cascade delete.
	AffectedIDs []uuid.UUID `json:"affected_ids"`
	OccurredAt  time.Time   `json:"occurred_at"`
}

// NewItemChangedEvent builds an event for one mutation.
func NewItemChangedEvent(action Action, tenantID, entityID uuid.UUID, before, after *models.Item, affected []uuid.UUID, at time.Time) ItemChangedEvent {
	if affected == nil {
		affected = []uuid.UUID{}
	}
	return ItemChangedEvent{
		EventID:     uuid.New(),
		Version:     EventVersion,
		EntityType:  EntityTypeItem,
		EntityID:    entityID,
		TenantID:    tenantID,
		Action:      action,
		Before:      SnapshotOf(before),
		After:       SnapshotOf(after),
		AffectedIDs: affected,
		OccurredAt:  at.UTC(),
	}
}

// ToItem rebuilds the domain item from its image.
func (s *ItemSnapshot) ToItem() *models.Item {
	if s == nil {
		return nil
	}
	it := &models.Item{
		ID:                s.ID,
		TenantID:          s.TenantID,
		ParentID:          s.ParentID,
		Path:              s.Path,
		Name:              models.ItemName(s.Name),
		Category:          s.Category,
		Status:            models.Status(s.Status),
		TemplateID:        s.TemplateID,
		LocationID:        s.LocationID,
		IdentifierCode:    s.IdentifierCode,
		CustomFields:      s.CustomFields,
		WarrantyExpiresAt: s.WarrantyExpiresAt,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
	if s.PurchasePrice != nil {
		it.PurchasePrice = decimal.NewNullDecimal(*s.PurchasePrice)
	}
	return it.Clone()
}
