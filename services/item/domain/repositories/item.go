package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// QueryOpts contains pagination parameters for list queries.
type QueryOpts struct {
	Limit  int // Maximum number of records to return
	Offset int // Number of records to skip
}

// ItemReader serves non-transactional reads. Every method is tenant-scoped.
type ItemReader interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)

	// FindByTenantID retrieves a paginated list of items for the given tenant
	// ordered by path. Returns the items slice and the total count (ignoring
	// pagination).
	FindByTenantID(ctx context.Context, tenantID uuid.UUID, opts QueryOpts) ([]*models.Item, int, error)

	// ListSubtree returns items ordered by (path, name). An empty rootPath
	// returns the whole tenant forest; otherwise the root and its descendants.
	ListSubtree(ctx context.Context, tenantID uuid.UUID, rootPath string) ([]*models.Item, error)

	// GetByIDs returns the items that exist among ids, in no particular order.
	GetByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.Item, error)

	// Statistics aggregates the tenant's items; warranty expiries within
	// [now, cutoff] count as expiring soon.
	Statistics(ctx context.Context, tenantID uuid.UUID, now, cutoff time.Time) (*models.Statistics, error)
}

// ItemWriter is bound to one open transaction. Reads through it observe the
// transaction's own writes.
type ItemWriter interface {
	// LockByID fetches an item and holds a row lock until the transaction ends.
	// Returns domain.ErrItemNotFound when absent.
	LockByID(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)

	// IdentifierCodeExists reports whether code is used by any item other than
	// excludeID (pass uuid.Nil to exclude nothing).
	IdentifierCodeExists(ctx context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error)

	Insert(ctx context.Context, item *models.Item) error
	Update(ctx context.Context, item *models.Item) error

	// RewriteDescendantPaths replaces the oldPrefix of every strict descendant
	// of oldPrefix with newPrefix in one set-based statement, stamps them with
	// updatedAt and returns the ids it touched.
	RewriteDescendantPaths(ctx context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string, updatedAt time.Time) ([]uuid.UUID, error)

	// LockDescendants returns every strict descendant of path in path order
	// and holds their row locks until the transaction ends. A writer holding a
	// lock anywhere in the subtree finishes first, and rows it inserted are
	// visible to the statements that follow.
	LockDescendants(ctx context.Context, tenantID uuid.UUID, path string) ([]*models.Item, error)

	// DeleteSubtree removes the item at path and all of its descendants and
	// returns the removed ids.
	DeleteSubtree(ctx context.Context, tenantID uuid.UUID, path string) ([]uuid.UUID, error)

	InsertAudit(ctx context.Context, entry *models.AuditEntry) error
}

// Transactor runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, w ItemWriter) error) error
}

// ItemRepository is the persistence interface for the Item aggregate.
// The domain layer owns this interface; infrastructure implements it.
type ItemRepository interface {
	ItemReader
	Transactor
}
