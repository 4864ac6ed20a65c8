// Package memory provides an in-process implementation of the item
// repositories. Transactions stage writes on a private copy of the item set
// and swap it in on commit, so a failed transaction leaves no trace.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

// Op names a writer operation for fault injection.
type Op string

const (
	OpInsert  Op = "insert"
	OpUpdate  Op = "update"
	OpRewrite Op = "rewrite"
	OpDelete  Op = "delete"
	OpAudit   Op = "audit"
)

// Fault makes the next call of Op fail with Err. For OpRewrite, After rows are
// rewritten in the staged copy before the failure.
type Fault struct {
	Op    Op
	After int
	Err   error
}

type workItem struct {
	id       uuid.UUID
	tenantID uuid.UUID
	itemID   uuid.UUID
	status   models.WorkItemStatus
}

// Store is safe for concurrent use. Transactions are serialized.
type Store struct {
	txMu sync.Mutex // one writer at a time

	dataMu sync.RWMutex
	items  map[uuid.UUID]*models.Item
	audit  []*models.AuditEntry

	refMu     sync.RWMutex
	tenants   map[uuid.UUID]models.Tenant
	templates map[uuid.UUID]models.Template
	locations map[uuid.UUID]models.Location
	work      []workItem

	faultMu sync.Mutex
	fault   *Fault
}

var (
	_ repositories.ItemRepository  = (*Store)(nil)
	_ repositories.TenantLookup    = (*Store)(nil)
	_ repositories.TemplateLookup  = (*Store)(nil)
	_ repositories.LocationLookup  = (*Store)(nil)
	_ repositories.WorkItemCounter = (*Store)(nil)
)

// New returns an empty Store.
func New() *Store {
	return &Store{
		items:     map[uuid.UUID]*models.Item{},
		tenants:   map[uuid.UUID]models.Tenant{},
		templates: map[uuid.UUID]models.Template{},
		locations: map[uuid.UUID]models.Location{},
	}
}

// InjectFault arms f for the next matching writer call.
func (s *Store) InjectFault(f Fault) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.fault = &f
}

func (s *Store) takeFault(op Op) *Fault {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if s.fault == nil || s.fault.Op != op {
		return nil
	}
	f := s.fault
	s.fault = nil
	return f
}

// WithinTx runs fn against a staged copy of the items and commits it when fn
// returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, w repositories.ItemWriter) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.dataMu.RLock()
	staged := make(map[uuid.UUID]*models.Item, len(s.items))
	for id, it := range s.items {
		staged[id] = it.Clone()
	}
	s.dataMu.RUnlock()

	w := &txWriter{store: s, items: staged}
	if err := fn(ctx, w); err != nil {
		return err
	}

	s.dataMu.Lock()
	s.items = staged
	s.audit = append(s.audit, w.audit...)
	s.dataMu.Unlock()
	return nil
}

// GetByID returns a copy of the item, or ErrItemNotFound when it is missing
// or owned by another tenant.
func (s *Store) GetByID(_ context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	it, ok := s.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, fmt.Errorf("item %s: %w", id, itemdomain.ErrItemNotFound)
	}
	return it.Clone(), nil
}

// FindByTenantID pages through the tenant's items in (path, name) order.
// A non-positive limit returns every item from the offset on.
func (s *Store) FindByTenantID(_ context.Context, tenantID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	all := s.tenantItems(tenantID, "")
	total := len(all)
	start := min(max(opts.Offset, 0), total)
	end := total
	if opts.Limit > 0 {
		end = min(start+opts.Limit, total)
	}
	return all[start:end], total, nil
}

// ListSubtree returns the item at rootPath and its descendants, or the whole
// tenant forest when rootPath is empty.
func (s *Store) ListSubtree(_ context.Context, tenantID uuid.UUID, rootPath string) ([]*models.Item, error) {
	return s.tenantItems(tenantID, rootPath), nil
}

// GetByIDs returns copies of the tenant's items among ids in the order given.
// Unknown ids are skipped.
func (s *Store) GetByIDs(_ context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]*models.Item, error) {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := make([]*models.Item, 0, len(ids))
	for _, id := range ids {
		if it, ok := s.items[id]; ok && it.TenantID == tenantID {
			out = append(out, it.Clone())
		}
	}
	return out, nil
}

// Statistics aggregates the tenant's items in process.
func (s *Store) Statistics(_ context.Context, tenantID uuid.UUID, now, cutoff time.Time) (*models.Statistics, error) {
	return domainsvcs.ComputeStatistics(s.tenantItems(tenantID, ""), now, cutoff.Sub(now)), nil
}

// tenantItems returns clones ordered by (path, name); a non-empty rootPath
// keeps only that item and its descendants.
func (s *Store) tenantItems(tenantID uuid.UUID, rootPath string) []*models.Item {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := make([]*models.Item, 0)
	for _, it := range s.items {
		if it.TenantID != tenantID {
			continue
		}
		if rootPath != "" && it.Path != rootPath && !domainsvcs.IsDescendantPath(rootPath, it.Path) {
			continue
		}
		out = append(out, it.Clone())
	}
	sortByPath(out)
	return out
}

// AuditEntries returns the committed audit rows of a tenant in write order.
func (s *Store) AuditEntries(tenantID uuid.UUID) []*models.AuditEntry {
	s.dataMu.RLock()
	defer s.dataMu.RUnlock()
	out := make([]*models.AuditEntry, 0)
	for _, e := range s.audit {
		if e.TenantID == tenantID {
			c := *e
			out = append(out, &c)
		}
	}
	return out
}

// Put stores item as-is, bypassing every check. Tests use it to plant
// corrupted rows for the integrity sweep.
func (s *Store) Put(item *models.Item) {
	s.dataMu.Lock()
	defer s.dataMu.Unlock()
	s.items[item.ID] = item.Clone()
}

func sortByPath(items []*models.Item) {
	slices.SortFunc(items, func(a, b *models.Item) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}

// txWriter implements repositories.ItemWriter over a staged item set.
type txWriter struct {
	store *Store
	items map[uuid.UUID]*models.Item
	audit []*models.AuditEntry
}

func (w *txWriter) LockByID(_ context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	it, ok := w.items[id]
	if !ok || it.TenantID != tenantID {
		return nil, fmt.Errorf("item %s: %w", id, itemdomain.ErrItemNotFound)
	}
	return it.Clone(), nil
}

func (w *txWriter) IdentifierCodeExists(_ context.Context, tenantID uuid.UUID, code string, excludeID uuid.UUID) (bool, error) {
	for _, it := range w.items {
		if it.TenantID == tenantID && it.IdentifierCode == code && it.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (w *txWriter) Insert(_ context.Context, item *models.Item) error {
	if f := w.store.takeFault(OpInsert); f != nil {
		return f.Err
	}
	if _, exists := w.items[item.ID]; exists {
		return fmt.Errorf("item %s: %w", item.ID, itemdomain.ErrItemAlreadyExists)
	}
	if err := w.checkUnique(item); err != nil {
		return err
	}
	w.items[item.ID] = item.Clone()
	return nil
}

func (w *txWriter) Update(_ context.Context, item *models.Item) error {
	if f := w.store.takeFault(OpUpdate); f != nil {
		return f.Err
	}
	cur, ok := w.items[item.ID]
	if !ok || cur.TenantID != item.TenantID {
		return fmt.Errorf("item %s: %w", item.ID, itemdomain.ErrItemNotFound)
	}
	if err := w.checkUnique(item); err != nil {
		return err
	}
	w.items[item.ID] = item.Clone()
	return nil
}

// checkUnique mirrors the (tenant_id, path) and (tenant_id, identifier_code)
// unique constraints of the Postgres schema.
func (w *txWriter) checkUnique(item *models.Item) error {
	for _, it := range w.items {
		if it.ID == item.ID || it.TenantID != item.TenantID {
			continue
		}
		if it.Path == item.Path {
			return fmt.Errorf("path %q: %w", item.Path, itemdomain.ErrItemAlreadyExists)
		}
		if it.IdentifierCode == item.IdentifierCode {
			return fmt.Errorf("%w: %q", itemdomain.ErrDuplicateIdentifierCode, item.IdentifierCode)
		}
	}
	return nil
}

func (w *txWriter) RewriteDescendantPaths(_ context.Context, tenantID uuid.UUID, oldPrefix, newPrefix string, updatedAt time.Time) ([]uuid.UUID, error) {
	targets := w.descendants(tenantID, oldPrefix)
	fault := w.store.takeFault(OpRewrite)

	ids := make([]uuid.UUID, 0, len(targets))
	for i, it := range targets {
		if fault != nil && i >= fault.After {
			return nil, fault.Err
		}
		it.Path = domainsvcs.RebasePath(it.Path, oldPrefix, newPrefix)
		it.UpdatedAt = updatedAt
		ids = append(ids, it.ID)
	}
	if fault != nil {
		return nil, fault.Err
	}
	return ids, nil
}

// LockDescendants lists the subtree below path. Transactions are already
// serialized by txMu, so there is nothing more to lock.
func (w *txWriter) LockDescendants(_ context.Context, tenantID uuid.UUID, path string) ([]*models.Item, error) {
	targets := w.descendants(tenantID, path)
	out := make([]*models.Item, 0, len(targets))
	for _, it := range targets {
		out = append(out, it.Clone())
	}
	return out, nil
}

func (w *txWriter) DeleteSubtree(_ context.Context, tenantID uuid.UUID, path string) ([]uuid.UUID, error) {
	if f := w.store.takeFault(OpDelete); f != nil {
		return nil, f.Err
	}
	removed := make([]uuid.UUID, 0)
	for id, it := range w.items {
		if it.TenantID == tenantID && (it.Path == path || domainsvcs.IsDescendantPath(path, it.Path)) {
			removed = append(removed, id)
			delete(w.items, id)
		}
	}
	return removed, nil
}

func (w *txWriter) InsertAudit(_ context.Context, entry *models.AuditEntry) error {
	if f := w.store.takeFault(OpAudit); f != nil {
		return f.Err
	}
	c := *entry
	w.audit = append(w.audit, &c)
	return nil
}

// descendants returns the staged (mutable) strict descendants of path,
// ordered by path.
func (w *txWriter) descendants(tenantID uuid.UUID, path string) []*models.Item {
	out := make([]*models.Item, 0)
	for _, it := range w.items {
		if it.TenantID == tenantID && domainsvcs.IsDescendantPath(path, it.Path) {
			out = append(out, it)
		}
	}
	sortByPath(out)
	return out
}
