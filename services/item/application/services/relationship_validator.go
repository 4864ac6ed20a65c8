package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

// RelationshipValidator runs the cross-entity checks that precede a create or
// update: tenant, template, location and parent must all resolve inside the
// item's tenant.
type RelationshipValidator struct {
	tenants   repositories.TenantLookup
	templates repositories.TemplateLookup
	locations repositories.LocationLookup
	items     repositories.ItemReader
}

// NewRelationshipValidator wires the validator with its lookups.
func NewRelationshipValidator(
	tenants repositories.TenantLookup,
	templates repositories.TemplateLookup,
	locations repositories.LocationLookup,
	items repositories.ItemReader,
) *RelationshipValidator {
	return &RelationshipValidator{tenants: tenants, templates: templates, locations: locations, items: items}
}

// ValidateTenant fails with ErrTenantNotFound when the tenant does not exist.
func (v *RelationshipValidator) ValidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	ok, err := v.tenants.TenantExists(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("lookup tenant: %w", err)
	}
	if !ok {
		return fmt.Errorf("tenant %s: %w", tenantID, itemdomain.ErrTenantNotFound)
	}
	return nil
}

// Relations holds the entities an item references. A nil field means the
// item has no such reference.
type Relations struct {
	Parent   *models.Item
	Template *models.Template
	Location *models.Location
}

// ValidateReferences checks the tenant, the template (category and custom
// field schema) and the location of item, and returns what it resolved.
// Parent is left for the caller, which locks it inside its transaction.
func (v *RelationshipValidator) ValidateReferences(ctx context.Context, item *models.Item) (Relations, error) {
	var rel Relations
	if err := v.ValidateTenant(ctx, item.TenantID); err != nil {
		return rel, err
	}

	if item.TemplateID != nil {
		tmpl, err := v.templates.GetTemplate(ctx, item.TenantID, *item.TemplateID)
		if err != nil {
			return rel, fmt.Errorf("template %s: %w", *item.TemplateID, err)
		}
		if tmpl.Category != item.Category {
			return rel, fmt.Errorf("%w: template %s expects %q, item has %q",
				itemdomain.ErrCategoryMismatch, tmpl.ID, tmpl.Category, item.Category)
		}
		if err := domainsvcs.ValidateCustomFields(tmpl, item.CustomFields); err != nil {
			return rel, err
		}
		rel.Template = tmpl
	}

	if item.LocationID != nil {
		loc, err := v.locations.GetLocation(ctx, item.TenantID, *item.LocationID)
		if err != nil {
			return rel, fmt.Errorf("location %s: %w", *item.LocationID, err)
		}
		rel.Location = loc
	}
	return rel, nil
}

// ResolveParent fetches the proposed parent, reporting a missing one as
// ErrParentNotFound. The hierarchy store re-checks inside its transaction.
func (v *RelationshipValidator) ResolveParent(ctx context.Context, tenantID, parentID uuid.UUID) (*models.Item, error) {
	parent, err := v.items.GetByID(ctx, tenantID, parentID)
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		return nil, fmt.Errorf("parent %s: %w", parentID, itemdomain.ErrParentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup parent: %w", err)
	}
	return parent, nil
}

// ValidateIdentifierCode fails with ErrDuplicateIdentifierCode when code is
// used by any item of the tenant other than excludeID. It runs on the writer
// so the check sees the enclosing transaction.
func (v *RelationshipValidator) ValidateIdentifierCode(ctx context.Context, w repositories.ItemWriter, tenantID uuid.UUID, code string, excludeID uuid.UUID) error {
	taken, err := w.IdentifierCodeExists(ctx, tenantID, code, excludeID)
	if err != nil {
		return fmt.Errorf("check identifier code: %w", err)
	}
	if taken {
		return fmt.Errorf("%w: %q", itemdomain.ErrDuplicateIdentifierCode, code)
	}
	return nil
}
