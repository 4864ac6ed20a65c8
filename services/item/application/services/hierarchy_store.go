package services

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ghuser/itemtree/pkg/logger"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/events"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
	domainsvcs "github.com/ghuser/itemtree/services/item/domain/services"
)

// Notifier publishes change events. *events.EventBus satisfies it.
type Notifier interface {
	Publish(ctx context.Context, topic string, msgs ...*message.Message) error
}

// StoreOptions tunes policy decisions of the HierarchyStore.
type StoreOptions struct {
	// WarrantyLookahead is the window counted as "expiring soon" by Statistics.
	WarrantyLookahead time.Duration

	// GuardSubtreeWork makes a cascading delete refuse when any descendant, not
	// just the target, has open work items.
	GuardSubtreeWork bool
}

// StoreDeps are the collaborators of a HierarchyStore. Notifier and ReadModel
// are optional.
type StoreDeps struct {
	Repo      repositories.ItemRepository
	Validator *RelationshipValidator
	WorkItems repositories.WorkItemCounter
	Notifier  Notifier
	ReadModel ItemReadModel
	Logger    logger.Logger
}

// HierarchyStore is the transactional core of the item hierarchy. Every
// mutation runs in one transaction together with its audit row; events and
// read-model updates follow only after commit and never fail the call.
type HierarchyStore struct {
	repo      repositories.ItemRepository
	validator *RelationshipValidator
	work      repositories.WorkItemCounter
	notifier  Notifier
	readModel ItemReadModel
	log       logger.Logger
	opts      StoreOptions
	tracer    trace.Tracer
	now       func() time.Time
}

// NewHierarchyStore returns a HierarchyStore wired with deps.
func NewHierarchyStore(deps StoreDeps, opts StoreOptions) *HierarchyStore {
	log := deps.Logger
	if log == nil {
		log = logger.Nop()
	}
	return &HierarchyStore{
		repo:      deps.Repo,
		validator: deps.Validator,
		work:      deps.WorkItems,
		notifier:  deps.Notifier,
		readModel: deps.ReadModel,
		log:       log.With("component", "item.hierarchy"),
		opts:      opts,
		tracer:    otel.Tracer("services/item"),
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

// CreateItemInput carries the caller-supplied fields of a new item.
type CreateItemInput struct {
	Name              string
	Category          string
	ParentID          *uuid.UUID
	TemplateID        *uuid.UUID
	LocationID        *uuid.UUID
	IdentifierCode    string // generated from the id when empty
	CustomFields      map[string]any
	PurchasePrice     *decimal.Decimal
	WarrantyExpiresAt *time.Time
}

// UpdateItemInput is a partial update. Nil pointers leave a field unchanged;
// the Clear flags reset optional fields.
type UpdateItemInput struct {
	Name               *string
	Category           *string
	TemplateID         *uuid.UUID
	ClearTemplate      bool
	LocationID         *uuid.UUID
	ClearLocation      bool
	IdentifierCode     *string
	CustomFields       map[string]any
	PurchasePrice      *decimal.Decimal
	ClearPurchasePrice bool
	WarrantyExpiresAt  *time.Time
	ClearWarranty      bool
}

// ResolvedItem is an item together with the entities it references.
type ResolvedItem struct {
	*models.Item
	Relations
}

// Create validates and persists a new item under parentID (or as a root) and
// returns it with its parent, template and location resolved.
func (s *HierarchyStore) Create(ctx context.Context, tenantID uuid.UUID, in CreateItemInput) (_ *ResolvedItem, err error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.Create", tenantID)
	defer func() { s.endSpan(span, string(events.ActionCreated), err) }()

	item, err := buildItem(tenantID, in)
	if err != nil {
		return nil, err
	}
	item.CreatedAt = s.now()
	item.UpdatedAt = item.CreatedAt

	rel, err := s.validator.ValidateReferences(ctx, item)
	if err != nil {
		return nil, err
	}
	if item.ParentID != nil {
		if _, err := s.validator.ResolveParent(ctx, tenantID, *item.ParentID); err != nil {
			return nil, err
		}
	}

	err = s.repo.WithinTx(ctx, func(ctx context.Context, w repositories.ItemWriter) error {
		parentPath := ""
		if item.ParentID != nil {
			parent, err := w.LockByID(ctx, tenantID, *item.ParentID)
			if err != nil {
				return parentLookupError(*item.ParentID, err)
			}
			parentPath = parent.Path
			rel.Parent = parent
		}
		item.Path = domainsvcs.ComputePath(parentPath, item.ID)

		if item.IdentifierCode == "" {
			item.IdentifierCode = domainsvcs.GenerateIdentifierCode(item.ID)
		}
		if err := s.validator.ValidateIdentifierCode(ctx, w, tenantID, item.IdentifierCode, uuid.Nil); err != nil {
			return err
		}

		if err := w.Insert(ctx, item); err != nil {
			return fmt.Errorf("insert item: %w", err)
		}
		return s.writeAudit(ctx, w, events.ActionCreated, nil, item)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events.ActionCreated, nil, item, nil)
	return &ResolvedItem{Item: item, Relations: rel}, nil
}

// Move re-parents an item (nil newParentID moves it to the root) and rewrites
// the paths of its whole subtree in the same transaction. The subtree is
// locked before any path below the item is read, so concurrent moves and
// creates inside it queue behind this one.
func (s *HierarchyStore) Move(ctx context.Context, tenantID, id uuid.UUID, newParentID *uuid.UUID) (_ *models.Item, err error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.Move", tenantID)
	span.SetAttributes(attribute.String("item.id", id.String()))
	defer func() { s.endSpan(span, string(events.ActionMoved), err) }()

	var (
		before, after *models.Item
		rewritten     []uuid.UUID
	)
	err = s.repo.WithinTx(ctx, func(ctx context.Context, w repositories.ItemWriter) error {
		item, err := w.LockByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		descendants, err := w.LockDescendants(ctx, tenantID, item.Path)
		if err != nil {
			return fmt.Errorf("lock subtree: %w", err)
		}

		parentPath := ""
		if newParentID != nil {
			parent, err := w.LockByID(ctx, tenantID, *newParentID)
			if err != nil {
				return parentLookupError(*newParentID, err)
			}
			if err := domainsvcs.ValidateMove(item.Path, parent.Path, item.ID, newParentID); err != nil {
				return err
			}
			parentPath = parent.Path
		}

		newPath := domainsvcs.ComputePath(parentPath, item.ID)
		if newPath == item.Path {
			after = item
			return nil
		}

		at := s.nextVersion(latestUpdate(item, descendants))
		rewritten, err = w.RewriteDescendantPaths(ctx, tenantID, item.Path, newPath, at)
		if err != nil {
			return fmt.Errorf("rewrite descendant paths: %w", err)
		}

		before = item.Clone()
		item.ParentID = cloneID(newParentID)
		item.Path = newPath
		item.UpdatedAt = at
		if err := w.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		after = item
		if err := s.writeAudit(ctx, w, events.ActionMoved, before, after); err != nil {
			return err
		}
		for _, d := range descendants {
			moved := d.Clone()
			moved.Path = domainsvcs.RebasePath(d.Path, before.Path, newPath)
			moved.UpdatedAt = at
			if err := s.writeAudit(ctx, w, events.ActionMoved, d, moved); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if before != nil {
		hierarchyRewrittenPaths.Observe(float64(len(rewritten)))
		span.SetAttributes(attribute.Int("item.rewritten_paths", len(rewritten)))
		s.afterCommit(ctx, events.ActionMoved, before, after, rewritten)
	}
	return after, nil
}

// Delete removes an item. Without cascade an item with descendants is
// refused; with cascade the whole subtree goes and every removed item gets
// its own audit row. Open work items on the item, and on its descendants
// when GuardSubtreeWork is set, block the delete.
func (s *HierarchyStore) Delete(ctx context.Context, tenantID, id uuid.UUID, cascade bool) (err error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.Delete", tenantID)
	span.SetAttributes(attribute.String("item.id", id.String()), attribute.Bool("item.cascade", cascade))
	defer func() { s.endSpan(span, string(events.ActionDeleted), err) }()

	var (
		before  *models.Item
		removed []uuid.UUID
	)
	err = s.repo.WithinTx(ctx, func(ctx context.Context, w repositories.ItemWriter) error {
		item, err := w.LockByID(ctx, tenantID, id)
		if err != nil {
			return err
		}

		descendants, err := w.LockDescendants(ctx, tenantID, item.Path)
		if err != nil {
			return fmt.Errorf("lock subtree: %w", err)
		}
		if len(descendants) > 0 && !cascade {
			return fmt.Errorf("item %s has %d descendants: %w", id, len(descendants), itemdomain.ErrHasChildren)
		}

		guarded := []uuid.UUID{item.ID}
		if cascade && s.opts.GuardSubtreeWork {
			for _, d := range descendants {
				guarded = append(guarded, d.ID)
			}
		}
		open, err := s.work.CountOpenWorkItems(ctx, tenantID, guarded)
		if err != nil {
			return fmt.Errorf("count open work items: %w", err)
		}
		if open > 0 {
			return fmt.Errorf("item %s: %d open work items: %w", id, open, itemdomain.ErrHasActiveWork)
		}

		removed, err = w.DeleteSubtree(ctx, tenantID, item.Path)
		if err != nil {
			return fmt.Errorf("delete subtree: %w", err)
		}
		before = item
		if err := s.writeAudit(ctx, w, events.ActionDeleted, before, nil); err != nil {
			return err
		}
		for _, d := range descendants {
			if err := s.writeAudit(ctx, w, events.ActionDeleted, d, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.afterCommit(ctx, events.ActionDeleted, before, nil, without(removed, id))
	return nil
}

// SetStatus applies a lifecycle transition. Requesting the current status is
// a no-op that writes and emits nothing.
func (s *HierarchyStore) SetStatus(ctx context.Context, tenantID, id uuid.UUID, status models.Status) (_ *models.Item, err error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.SetStatus", tenantID)
	span.SetAttributes(attribute.String("item.id", id.String()), attribute.String("item.status", status.String()))
	defer func() { s.endSpan(span, string(events.ActionStatusChanged), err) }()

	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", itemdomain.ErrInvalidItem, status)
	}

	var before, after *models.Item
	err = s.repo.WithinTx(ctx, func(ctx context.Context, w repositories.ItemWriter) error {
		item, err := w.LockByID(ctx, tenantID, id)
		if err != nil {
			return err
		}
		if item.Status == status {
			after = item
			return nil
		}
		if err := domainsvcs.Transition(item.Status, status); err != nil {
			return err
		}

		before = item.Clone()
		item.Status = status
		item.UpdatedAt = s.nextVersion(item.UpdatedAt)
		if err := w.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		after = item
		return s.writeAudit(ctx, w, events.ActionStatusChanged, before, after)
	})
	if err != nil {
		return nil, err
	}

	if before != nil {
		s.afterCommit(ctx, events.ActionStatusChanged, before, after, nil)
	}
	return after, nil
}

// Update applies a partial update of descriptive fields. Parent, path and
// status are never touched here; use Move and SetStatus.
func (s *HierarchyStore) Update(ctx context.Context, tenantID, id uuid.UUID, in UpdateItemInput) (_ *models.Item, err error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.Update", tenantID)
	span.SetAttributes(attribute.String("item.id", id.String()))
	defer func() { s.endSpan(span, string(events.ActionUpdated), err) }()

	var before, after *models.Item
	err = s.repo.WithinTx(ctx, func(ctx context.Context, w repositories.ItemWriter) error {
		current, err := w.LockByID(ctx, tenantID, id)
		if err != nil {
			return err
		}

		item, err := applyUpdate(current.Clone(), in)
		if err != nil {
			return err
		}
		if err := domainsvcs.ValidateItem(item); err != nil {
			return err
		}
		if _, err := s.validator.ValidateReferences(ctx, item); err != nil {
			return err
		}
		if item.IdentifierCode != current.IdentifierCode {
			if err := s.validator.ValidateIdentifierCode(ctx, w, tenantID, item.IdentifierCode, item.ID); err != nil {
				return err
			}
		}

		item.UpdatedAt = s.nextVersion(current.UpdatedAt)
		if err := w.Update(ctx, item); err != nil {
			return fmt.Errorf("update item: %w", err)
		}
		before, after = current, item
		return s.writeAudit(ctx, w, events.ActionUpdated, before, after)
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, events.ActionUpdated, before, after, nil)
	return after, nil
}

// Get retrieves an item through the read model, falling back to the
// repository on a miss or a read-model error and warming the entry. The read
// model refuses the warm-up when a mutation committed in between.
func (s *HierarchyStore) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	if s.readModel != nil {
		cached, err := s.readModel.Get(ctx, tenantID, id)
		switch {
		case err == nil:
			recordReadModel("hit")
			return cached, nil
		case errors.Is(err, redis.Nil):
			recordReadModel("miss")
		default:
			recordReadModel("error")
			s.log.WarnContext(ctx, "item: read model get failed", "item_id", id, "error", err)
		}
	}

	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}

	if s.readModel != nil {
		stored, err := s.readModel.Set(ctx, item)
		switch {
		case err != nil:
			s.log.WarnContext(ctx, "item: read model warm failed", "item_id", id, "error", err)
		case !stored:
			s.log.DebugContext(ctx, "item: read model kept newer entry", "item_id", id)
		}
	}
	return item, nil
}

// List returns a paginated slice of items for the tenant plus total count.
func (s *HierarchyStore) List(ctx context.Context, tenantID uuid.UUID, opts repositories.QueryOpts) ([]*models.Item, int, error) {
	items, total, err := s.repo.FindByTenantID(ctx, tenantID, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list items: %w", err)
	}
	return items, total, nil
}

// GetSubtree returns a flat list ordered by (path, name): the subtree rooted
// at rootID inclusive, or the whole tenant forest when rootID is nil.
func (s *HierarchyStore) GetSubtree(ctx context.Context, tenantID uuid.UUID, rootID *uuid.UUID) ([]*models.Item, error) {
	rootPath := ""
	if rootID != nil {
		root, err := s.repo.GetByID(ctx, tenantID, *rootID)
		if err != nil {
			return nil, fmt.Errorf("get subtree root: %w", err)
		}
		rootPath = root.Path
	}
	items, err := s.repo.ListSubtree(ctx, tenantID, rootPath)
	if err != nil {
		return nil, fmt.Errorf("list subtree: %w", err)
	}
	return items, nil
}

// GetTree returns the subtree assembled into nodes, siblings ordered by name.
func (s *HierarchyStore) GetTree(ctx context.Context, tenantID uuid.UUID, rootID *uuid.UUID) ([]*domainsvcs.TreeNode, error) {
	items, err := s.GetSubtree(ctx, tenantID, rootID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(items, func(a, b *models.Item) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return domainsvcs.Assemble(items, rootID), nil
}

// Ancestors returns the item's ancestors root first, resolved from its
// materialized path.
func (s *HierarchyStore) Ancestors(ctx context.Context, tenantID, id uuid.UUID) ([]*models.Item, error) {
	item, err := s.repo.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	ids, err := domainsvcs.ParsePath(item.Path)
	if err != nil {
		return nil, fmt.Errorf("item %s: %w", id, err)
	}
	ids = ids[:len(ids)-1]
	if len(ids) == 0 {
		return []*models.Item{}, nil
	}

	found, err := s.repo.GetByIDs(ctx, tenantID, ids)
	if err != nil {
		return nil, fmt.Errorf("get ancestors: %w", err)
	}
	byID := make(map[uuid.UUID]*models.Item, len(found))
	for _, a := range found {
		byID[a.ID] = a
	}
	chain := make([]*models.Item, 0, len(ids))
	for _, aid := range ids {
		if a, ok := byID[aid]; ok {
			chain = append(chain, a)
		}
	}
	return chain, nil
}

// Statistics aggregates the tenant's items over the configured warranty window.
func (s *HierarchyStore) Statistics(ctx context.Context, tenantID uuid.UUID) (*models.Statistics, error) {
	if err := s.validator.ValidateTenant(ctx, tenantID); err != nil {
		return nil, err
	}
	now := s.now()
	stats, err := s.repo.Statistics(ctx, tenantID, now, now.Add(s.opts.WarrantyLookahead))
	if err != nil {
		return nil, fmt.Errorf("item statistics: %w", err)
	}
	return stats, nil
}

// VerifyIntegrity sweeps the tenant's forest for path, uniqueness and cycle
// violations. It only reads.
func (s *HierarchyStore) VerifyIntegrity(ctx context.Context, tenantID uuid.UUID) (*domainsvcs.IntegrityReport, error) {
	ctx, span := s.startSpan(ctx, "HierarchyStore.VerifyIntegrity", tenantID)
	defer span.End()

	items, err := s.repo.ListSubtree(ctx, tenantID, "")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list items: %w", err)
	}
	report := domainsvcs.CheckIntegrity(tenantID, items)
	if !report.OK() {
		s.log.WarnContext(ctx, "item: integrity violations found",
			"tenant_id", tenantID, "violations", len(report.Violations))
	}
	return report, nil
}

func (s *HierarchyStore) writeAudit(ctx context.Context, w repositories.ItemWriter, action events.Action, before, after *models.Item) error {
	entry, err := newAuditEntry(action, before, after, s.now())
	if err != nil {
		return err
	}
	if err := w.InsertAudit(ctx, entry); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}
	return nil
}

// afterCommit publishes the change event and refreshes the read model.
// Failures are logged only: the mutation is already committed.
func (s *HierarchyStore) afterCommit(ctx context.Context, action events.Action, before, after *models.Item, affected []uuid.UUID) {
	recordMutation(string(action))

	subject := after
	if subject == nil {
		subject = before
	}

	if s.notifier != nil {
		evt := events.NewItemChangedEvent(action, subject.TenantID, subject.ID, before, after, affected, s.now())
		if err := s.publish(ctx, evt); err != nil {
			s.log.WarnContext(ctx, "item: publish change event failed",
				"item_id", subject.ID, "action", action, "error", err)
		}
	}

	if s.readModel == nil {
		return
	}
	if after == nil {
		gone := append([]uuid.UUID{subject.ID}, affected...)
		if err := s.readModel.Forget(ctx, subject.TenantID, gone); err != nil {
			s.log.WarnContext(ctx, "item: read model forget failed", "item_id", subject.ID, "count", len(gone), "error", err)
		}
		return
	}
	if _, err := s.readModel.Set(ctx, after); err != nil {
		s.log.WarnContext(ctx, "item: read model set failed", "item_id", subject.ID, "error", err)
	}
	if len(affected) > 0 {
		if err := s.readModel.Invalidate(ctx, subject.TenantID, affected, after.UpdatedAt); err != nil {
			s.log.WarnContext(ctx, "item: read model invalidate failed", "item_id", subject.ID, "count", len(affected), "error", err)
		}
	}
}

// nextVersion returns the UpdatedAt for a write over rows last stamped at
// prev. It never goes backwards, so read-model versions stay ordered even
// when hosts disagree about the time.
func (s *HierarchyStore) nextVersion(prev time.Time) time.Time {
	now := s.now()
	if now.After(prev) {
		return now
	}
	return prev.Add(time.Microsecond)
}

func (s *HierarchyStore) publish(ctx context.Context, evt events.ItemChangedEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set("event_id", evt.EventID.String())
	msg.Metadata.Set("event_version", strconv.Itoa(evt.Version))
	msg.Metadata.Set("action", string(evt.Action))
	msg.Metadata.Set("tenant_id", evt.TenantID.String())
	return s.notifier.Publish(ctx, events.TopicItemChanged, msg)
}

func (s *HierarchyStore) startSpan(ctx context.Context, name string, tenantID uuid.UUID) (context.Context, trace.Span) {
	ctx, span := s.tracer.Start(ctx, name)
	span.SetAttributes(attribute.String("tenant.id", tenantID.String()))
	return ctx, span
}

func (s *HierarchyStore) endSpan(span trace.Span, action string, err error) {
	if err != nil {
		recordRejection(action, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func buildItem(tenantID uuid.UUID, in CreateItemInput) (*models.Item, error) {
	name, err := models.NewItemName(in.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
	}
	item, err := models.NewItem(tenantID, name, in.Category)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	item.ParentID = cloneID(in.ParentID)
	item.TemplateID = cloneID(in.TemplateID)
	item.LocationID = cloneID(in.LocationID)
	item.IdentifierCode = domainsvcs.NormalizeIdentifierCode(in.IdentifierCode)
	item.CustomFields = in.CustomFields
	if item.CustomFields == nil {
		item.CustomFields = map[string]any{}
	}
	if in.PurchasePrice != nil {
		item.PurchasePrice = decimal.NewNullDecimal(*in.PurchasePrice)
	}
	if in.WarrantyExpiresAt != nil {
		w := in.WarrantyExpiresAt.UTC()
		item.WarrantyExpiresAt = &w
	}
	if err := domainsvcs.ValidateItem(item); err != nil {
		return nil, err
	}
	return item, nil
}

func applyUpdate(item *models.Item, in UpdateItemInput) (*models.Item, error) {
	if in.Name != nil {
		name, err := models.NewItemName(*in.Name)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", itemdomain.ErrInvalidItemName, err)
		}
		item.Name = name
	}
	if in.Category != nil {
		item.Category = *in.Category
	}
	switch {
	case in.ClearTemplate:
		item.TemplateID = nil
	case in.TemplateID != nil:
		item.TemplateID = cloneID(in.TemplateID)
	}
	switch {
	case in.ClearLocation:
		item.LocationID = nil
	case in.LocationID != nil:
		item.LocationID = cloneID(in.LocationID)
	}
	if in.IdentifierCode != nil {
		code := domainsvcs.NormalizeIdentifierCode(*in.IdentifierCode)
		if code == "" {
			return nil, fmt.Errorf("%w: identifier code must not be empty", itemdomain.ErrInvalidItem)
		}
		item.IdentifierCode = code
	}
	if in.CustomFields != nil {
		item.CustomFields = in.CustomFields
	}
	switch {
	case in.ClearPurchasePrice:
		item.PurchasePrice = decimal.NullDecimal{}
	case in.PurchasePrice != nil:
		item.PurchasePrice = decimal.NewNullDecimal(*in.PurchasePrice)
	}
	switch {
	case in.ClearWarranty:
		item.WarrantyExpiresAt = nil
	case in.WarrantyExpiresAt != nil:
		w := in.WarrantyExpiresAt.UTC()
		item.WarrantyExpiresAt = &w
	}
	return item, nil
}

func parentLookupError(parentID uuid.UUID, err error) error {
	if errors.Is(err, itemdomain.ErrItemNotFound) {
		return fmt.Errorf("parent %s: %w", parentID, itemdomain.ErrParentNotFound)
	}
	return fmt.Errorf("lock parent: %w", err)
}

func latestUpdate(item *models.Item, others []*models.Item) time.Time {
	latest := item.UpdatedAt
	for _, o := range others {
		if o.UpdatedAt.After(latest) {
			latest = o.UpdatedAt
		}
	}
	return latest
}

func cloneID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func without(ids []uuid.UUID, drop uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
