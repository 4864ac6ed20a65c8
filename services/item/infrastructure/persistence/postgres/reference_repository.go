package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/pkg/database"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	"github.com/ghuser/itemtree/services/item/infrastructure/persistence/postgres/db"
)

var (
	_ repositories.TenantLookup    = (*ReferenceRepository)(nil)
	_ repositories.TemplateLookup  = (*ReferenceRepository)(nil)
	_ repositories.LocationLookup  = (*ReferenceRepository)(nil)
	_ repositories.WorkItemCounter = (*ReferenceRepository)(nil)
)

// ReferenceRepository reads the entities items point at: tenants, templates,
// locations and work items.
type ReferenceRepository struct {
	db *database.Database
}

func NewReferenceRepository(database *database.Database) *ReferenceRepository {
	return &ReferenceRepository{db: database}
}

func (r *ReferenceRepository) TenantExists(ctx context.Context, tenantID uuid.UUID) (bool, error) {
	ok, err := db.New(r.db.DB()).TenantExists(ctx, tenantID)
	if err != nil {
		return false, fmt.Errorf("check tenant: %w", err)
	}
	return ok, nil
}

func (r *ReferenceRepository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := db.New(r.db.DB()).ListTenantIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	return nonNil(ids), nil
}

func (r *ReferenceRepository) GetTemplate(ctx context.Context, tenantID, id uuid.UUID) (*models.Template, error) {
	row, err := db.New(r.db.DB()).GetTemplate(ctx, db.GetTemplateParams{ID: id, TenantID: tenantID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrTemplateNotFound
		}
		return nil, fmt.Errorf("query template: %w", err)
	}

	tmpl := &models.Template{
		ID:       row.ID,
		TenantID: row.TenantID,
		Name:     row.Name,
		Category: row.Category,
	}
	if len(row.Fields) > 0 {
		if err := json.Unmarshal(row.Fields, &tmpl.Fields); err != nil {
			return nil, fmt.Errorf("decode template %s fields: %w", row.ID, err)
		}
	}
	return tmpl, nil
}

func (r *ReferenceRepository) GetLocation(ctx context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	row, err := db.New(r.db.DB()).GetLocation(ctx, db.GetLocationParams{ID: id, TenantID: tenantID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, itemdomain.ErrLocationTenancyMismatch
		}
		return nil, fmt.Errorf("query location: %w", err)
	}
	return &models.Location{ID: row.ID, TenantID: row.TenantID, Name: row.Name}, nil
}

func (r *ReferenceRepository) CountOpenWorkItems(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (int, error) {
	if len(itemIDs) == 0 {
		return 0, fmt.Errorf("count open work items: no item ids")
	}
	n, err := db.New(r.db.DB()).CountOpenWorkItems(ctx, db.CountOpenWorkItemsParams{
		TenantID: tenantID,
		ItemIds:  itemIDs,
	})
	if err != nil {
		return 0, fmt.Errorf("count open work items: %w", err)
	}
	return int(n), nil
}
