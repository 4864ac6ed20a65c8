package repositories

import (
	"context"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// The lookups below are tenant-scoped: an entity owned by another tenant is
// reported exactly like a missing one.

// TenantLookup answers tenant existence.
type TenantLookup interface {
	TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error)
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TemplateLookup returns domain.ErrTemplateNotFound when absent.
type TemplateLookup interface {
	GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (*models.Template, error)
}

// LocationLookup returns domain.ErrLocationTenancyMismatch when absent.
type LocationLookup interface {
	GetLocation(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error)
}

// WorkItemCounter counts open work items referencing any of itemIDs.
type WorkItemCounter interface {
	CountOpenWorkItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (int, error)
}
