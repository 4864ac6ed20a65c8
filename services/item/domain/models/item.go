package models

import (
	"maps"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is the core aggregate for this bounded context: one node of a tenant's
// hierarchy forest.
type Item struct {
	ID       uuid.UUID
	TenantID uuid.UUID // tenant scope: always filter by this in queries
	ParentID *uuid.UUID

	// Path is the materialized path "/<root id>/.../<own id>". It is computed
	// by the hierarchy store on create and move and never inferred afterwards.
	Path string

	Name              ItemName
	Category          string
	Status            Status
	TemplateID        *uuid.UUID
	LocationID        *uuid.UUID
	IdentifierCode    string
	CustomFields      map[string]any
	PurchasePrice     decimal.NullDecimal
	WarrantyExpiresAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewItem constructs an Item aggregate with a generated ID, operational status
// and current timestamps. Path is left empty until the item is placed.
func NewItem(tenantID uuid.UUID, name ItemName, category string) (*Item, error) {
	now := time.Now().UTC()
	return &Item{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Name:      name,
		Category:  category,
		Status:    StatusOperational,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsRoot reports whether the item has no parent.
func (i *Item) IsRoot() bool {
	return i.ParentID == nil
}

// Clone returns a deep copy so callers can keep a before-image across mutation.
func (i *Item) Clone() *Item {
	if i == nil {
		return nil
	}
	c := *i
	c.ParentID = cloneUUID(i.ParentID)
	c.TemplateID = cloneUUID(i.TemplateID)
	c.LocationID = cloneUUID(i.LocationID)
	if i.WarrantyExpiresAt != nil {
		t := *i.WarrantyExpiresAt
		c.WarrantyExpiresAt = &t
	}
	if i.CustomFields != nil {
		c.CustomFields = maps.Clone(i.CustomFields)
	}
	return &c
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
