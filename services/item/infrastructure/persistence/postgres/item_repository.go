package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ghuser/itemtree/pkg/database"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	"github.com/ghuser/itemtree/services/item/infrastructure/persistence/postgres/db"
)

// Postgres error codes and constraint names the repository translates into
// domain errors.
const (
	uniqueViolation      = "23505"
	foreignKeyViolation  = "23503"
	serializationFailure = "40001"
	deadlockDetected     = "40P01"

	constraintItemsPkey           = "items_pkey"
	constraintItemsPath           = "items_tenant_path_key"
	constraintItemsIdentifierCode = "items_tenant_identifier_code_key"
	constraintItemsParent         = "items_parent_id_fkey"
	constraintItemsTenant         = "items_tenant_id_fkey"
	constraintItemsTemplate       = "items_template_id_fkey"
	constraintItemsLocation       = "items_location_id_fkey"
)

var _ repositories.ItemRepository = (*ItemRepository)(nil)

// ItemRepository implements repositories.ItemRepository against PostgreSQL.
type ItemRepository struct {
	db *database.Database
}

// NewItemRepository returns an ItemRepository backed by the given connection pool.
func NewItemRepository(database *database.Database) *ItemRepository {
	return &ItemRepository{db: database}
}

// WithinTx runs fn in one database transaction. Writes made through the
// ItemWriter commit together or not at all. A transaction aborted by a
// deadlock or a serialization failure returns ErrConcurrentModification.
func (r *ItemRepository) WithinTx(ctx context.Context, fn func(ctx context.Context, w repositories.ItemWriter) error) error {
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &txWriter{q: db.New(tx)})
	})
	if isConcurrencyAbort(err) {
		return fmt.Errorf("%w: %w", itemdomain.ErrConcurrentModification, err)
	}
	return err
}

// GetByID retrieves an Item by ID scoped to the given tenant. Returns ErrItemNotFound if not found.
func (r *ItemRepository) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	q := db.New(r.db.DB())
	row, err := q.GetItemByID(ctx, db.GetItemByIDParams{
		ID:       id,
		TenantID: tenantID,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, itemdomain.ErrItemNotFound)
		}
		return nil, fmt.Errorf("query item: %w", err)
	}
	return rowToItem(row)
}

// FindByTenantID retrieves a paginated list of items and total count for the given tenant.
// A non-positive limit returns every item.
func (r *ItemRepository) FindByTenantID(ctx context.Context, tenantID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	q := db.New(r.db.DB())

	var (
		rows []db.ItemItem
		err  error
	)
	if opts.Limit > 0 {
		rows, err = q.FindItemsByTenantID(ctx, db.FindItemsByTenantIDParams{
			TenantID: tenantID,
			Limit:    int32(opts.Limit),
			Offset:   int32(max(opts.Offset, 0)),
		})
	} else {
		rows, err = q.ListItemsByTenantID(ctx, tenantID)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("query items: %w", err)
	}

	total, err := q.CountItemsByTenantID(ctx, tenantID)
	if err != nil {
		return nil, 0, fmt.Errorf("count items: %w", err)
	}

	items, err := rowsToItems(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// ListSubtree returns the item at rootPath and its descendants, or the whole
// tenant forest when rootPath is empty.
func (r *ItemRepository) ListSubtree(ctx context.Context, tenantID uuid.UUID, rootPath string) ([]*models.Item, error) {
	q := db.New(r.db.DB())

	var (
		rows []db.ItemItem
		err  error
	)
	if rootPath == "" {
		rows, err = q.ListItemsByTenantID(ctx, tenantID)
	} else {
		rows, err = q.ListSubtree(ctx, db.ListSubtreeParams{TenantID: tenantID, RootPath: rootPath})
	}
	if err != nil {
		return nil, fmt.Errorf("query subtree: %w", err)
	}
	return rowsToItems(rows)
}

// GetByIDs returns the tenant's items among ids in no particular order.
// Unknown ids are skipped.
func (r *ItemRepository) GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.Item, error) {
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}
	rows, err := db.New(r.db.DB()).GetItemsByIDs(ctx, db.GetItemsByIDsParams{TenantID: tenantID, Ids: ids})
	if err != nil {
		return nil, fmt.Errorf("query items by ids: %w", err)
	}
	return rowsToItems(rows)
}

// Statistics aggregates in SQL so the tenant's rows never leave the database.
func (r *ItemRepository) Statistics(ctx context.Context, tenantID uuid.UUID, now, cutoff time.Time) (*models.Statistics, error) {
	q := db.New(r.db.DB())
	stats := models.NewStatistics(cutoff)

	totals, err := q.ItemTotals(ctx, db.ItemTotalsParams{TenantID: tenantID, Now: now, Cutoff: cutoff})
	if err != nil {
		return nil, fmt.Errorf("query item totals: %w", err)
	}
	stats.TotalItems = int(totals.TotalItems)
	stats.TotalValue = totals.TotalValue
	stats.WarrantyExpiringSoon = int(totals.WarrantyExpiring)

	byCategory, err := q.CountItemsByCategory(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count by category: %w", err)
	}
	for _, row := range byCategory {
		stats.ByCategory[row.Category] = int(row.Total)
	}

	byStatus, err := q.CountItemsByStatus(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count by status: %w", err)
	}
	for _, row := range byStatus {
		stats.ByStatus[models.Status(row.Status)] = int(row.Total)
	}

	byLocation, err := q.CountItemsByLocation(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("count by location: %w", err)
	}
	for _, row := range byLocation {
		stats.ByLocation[row.Location] = int(row.Total)
	}
	return stats, nil
}

// txWriter implements repositories.ItemWriter on one *sql.Tx.
type txWriter struct {
	q *db.Queries
}

func (w *txWriter) LockByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	row, err := w.q.LockItemByID(ctx, db.LockItemByIDParams{ID: id, TenantID: tenantID})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("item %s: %w", id, itemdomain.ErrItemNotFound)
		}
		return nil, fmt.Errorf("lock item: %w", err)
	}
	return rowToItem(row)
}

func (w *txWriter) IdentifierCodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error) {
	exists, err := w.q.IdentifierCodeExists(ctx, db.IdentifierCodeExistsParams{
		TenantID:       tenantID,
		IdentifierCode: code,
		ExcludeID:      excludeID,
	})
	if err != nil {
		return false, fmt.Errorf("check identifier code: %w", err)
	}
	return exists, nil
}

func (w *txWriter) Insert(ctx context.Context, item *models.Item) error {
	fields, err := marshalCustomFields(item.CustomFields)
	if err != nil {
		return err
	}
	if err := w.q.InsertItem(ctx, db.InsertItemParams{
		ID:                item.ID,
		TenantID:          item.TenantID,
		ParentID:          nullUUID(item.ParentID),
		Path:              item.Path,
		Name:              item.Name.String(),
		Category:          item.Category,
		Status:            item.Status.String(),
		TemplateID:        nullUUID(item.TemplateID),
		LocationID:        nullUUID(item.LocationID),
		IdentifierCode:    item.IdentifierCode,
		CustomFields:      fields,
		PurchasePrice:     item.PurchasePrice,
		WarrantyExpiresAt: nullTime(item.WarrantyExpiresAt),
		CreatedAt:         item.CreatedAt,
		UpdatedAt:         item.UpdatedAt,
	}); err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

func (w *txWriter) Update(ctx context.Context, item *models.Item) error {
	fields, err := marshalCustomFields(item.CustomFields)
	if err != nil {
		return err
	}
	n, err := w.q.UpdateItem(ctx, db.UpdateItemParams{
		ID:                item.ID,
		TenantID:          item.TenantID,
		ParentID:          nullUUID(item.ParentID),
		Path:              item.Path,
		Name:              item.Name.String(),
		Category:          item.Category,
		Status:            item.Status.String(),
		TemplateID:        nullUUID(item.TemplateID),
		LocationID:        nullUUID(item.LocationID),
		IdentifierCode:    item.IdentifierCode,
		CustomFields:      fields,
		PurchasePrice:     item.PurchasePrice,
		WarrantyExpiresAt: nullTime(item.WarrantyExpiresAt),
		UpdatedAt:         item.UpdatedAt,
	})
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("update item: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", item.ID, itemdomain.ErrItemNotFound)
	}
	return nil
}

func (w *txWriter) RewriteDescendantPaths(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string, updatedAt time.Time) ([]uuid.UUID, error) {
	ids, err := w.q.RewriteDescendantPaths(ctx, db.RewriteDescendantPathsParams{
		TenantID:  tenantID,
		OldPrefix: oldPrefix,
		NewPrefix: newPrefix,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("rewrite descendant paths: %w", err)
	}
	return nonNil(ids), nil
}

// LockDescendants takes the row locks of the subtree below path in path
// order, so two movers of overlapping subtrees queue instead of interleaving.
func (w *txWriter) LockDescendants(ctx context.Context, tenantID uuid.UUID, path string) ([]*models.Item, error) {
	rows, err := w.q.LockDescendants(ctx, db.LockDescendantsParams{TenantID: tenantID, Path: path})
	if err != nil {
		return nil, fmt.Errorf("lock descendants: %w", err)
	}
	return rowsToItems(rows)
}

func (w *txWriter) DeleteSubtree(ctx context.Context, tenantID uuid.UUID, path string) ([]uuid.UUID, error) {
	ids, err := w.q.DeleteSubtree(ctx, db.DeleteSubtreeParams{TenantID: tenantID, Path: path})
	if err != nil {
		return nil, fmt.Errorf("delete subtree: %w", err)
	}
	return nonNil(ids), nil
}

func (w *txWriter) InsertAudit(ctx context.Context, entry *models.AuditEntry) error {
	if err := w.q.InsertAuditEntry(ctx, db.InsertAuditEntryParams{
		ID:         entry.ID,
		TenantID:   entry.TenantID,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Action:     entry.Action,
		Before:     entry.Before,
		After:      entry.After,
		Diff:       entry.Diff,
		CreatedAt:  entry.CreatedAt,
	}); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// mapConstraintError translates unique and foreign key violations on the
// items table. It returns nil for anything else.
func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case uniqueViolation:
		switch pgErr.ConstraintName {
		case constraintItemsIdentifierCode:
			return itemdomain.ErrDuplicateIdentifierCode
		case constraintItemsPkey, constraintItemsPath:
			return itemdomain.ErrItemAlreadyExists
		}
	case foreignKeyViolation:
		switch pgErr.ConstraintName {
		case constraintItemsParent:
			return itemdomain.ErrParentNotFound
		case constraintItemsTenant:
			return itemdomain.ErrTenantNotFound
		case constraintItemsTemplate:
			return itemdomain.ErrTemplateNotFound
		case constraintItemsLocation:
			return itemdomain.ErrLocationTenancyMismatch
		}
	}
	return nil
}

// isConcurrencyAbort reports whether Postgres aborted the transaction to
// resolve a conflict with a concurrent one. Retrying the call may succeed.
func isConcurrencyAbort(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == serializationFailure || pgErr.Code == deadlockDetected
}

func marshalCustomFields(fields map[string]any) (json.RawMessage, error) {
	if len(fields) == 0 {
		return json.RawMessage(`{}`), nil
	}
	b, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("marshal custom fields: %w", err)
	}
	return b, nil
}

func rowsToItems(rows []db.ItemItem) ([]*models.Item, error) {
	items := make([]*models.Item, len(rows))
	for i, row := range rows {
		it, err := rowToItem(row)
		if err != nil {
			return nil, err
		}
		items[i] = it
	}
	return items, nil
}

// rowToItem maps a db.ItemItem to a domain models.Item.
func rowToItem(row db.ItemItem) (*models.Item, error) {
	it := &models.Item{
		ID:             row.ID,
		TenantID:       row.TenantID,
		ParentID:       uuidPtr(row.ParentID),
		Path:           row.Path,
		Name:           models.ItemName(row.Name),
		Category:       row.Category,
		Status:         models.Status(row.Status),
		TemplateID:     uuidPtr(row.TemplateID),
		LocationID:     uuidPtr(row.LocationID),
		IdentifierCode: row.IdentifierCode,
		PurchasePrice:  row.PurchasePrice,
		CreatedAt:      row.CreatedAt.UTC(),
		UpdatedAt:      row.UpdatedAt.UTC(),
	}
	if row.WarrantyExpiresAt.Valid {
		t := row.WarrantyExpiresAt.Time.UTC()
		it.WarrantyExpiresAt = &t
	}
	if len(row.CustomFields) > 0 {
		var fields map[string]any
		if err := json.Unmarshal(row.CustomFields, &fields); err != nil {
			return nil, fmt.Errorf("decode custom fields of item %s: %w", row.ID, err)
		}
		if len(fields) > 0 {
			it.CustomFields = fields
		}
	}
	return it, nil
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func uuidPtr(id uuid.NullUUID) *uuid.UUID {
	if !id.Valid {
		return nil
	}
	v := id.UUID
	return &v
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nonNil(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
