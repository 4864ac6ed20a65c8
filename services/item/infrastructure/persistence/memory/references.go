package memory

import (
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"

	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// AddTenant registers a tenant.
func (s *Store) AddTenant(t models.Tenant) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.tenants[t.ID] = t
}

// AddTemplate registers a template.
func (s *Store) AddTemplate(t models.Template) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	t.Fields = slices.Clone(t.Fields)
	s.templates[t.ID] = t
}

// AddLocation registers a location.
func (s *Store) AddLocation(l models.Location) {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	s.locations[l.ID] = l
}

// AddWorkItem registers a work item referencing itemID and returns its id.
func (s *Store) AddWorkItem(tenantID, itemID uuid.UUID, status models.WorkItemStatus) uuid.UUID {
	s.refMu.Lock()
	defer s.refMu.Unlock()
	id := uuid.New()
	s.work = append(s.work, workItem{id: id, tenantID: tenantID, itemID: itemID, status: status})
	return id
}

func (s *Store) TenantExists(_ context.Context, tenantID uuid.UUID) (bool, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	_, ok := s.tenants[tenantID]
	return ok, nil
}

func (s *Store) ListTenantIDs(_ context.Context) ([]uuid.UUID, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	ids := make([]uuid.UUID, 0, len(s.tenants))
	for id := range s.tenants {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b uuid.UUID) int { return slices.Compare(a[:], b[:]) })
	return ids, nil
}

func (s *Store) GetTemplate(_ context.Context, tenantID, id uuid.UUID) (*models.Template, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	t, ok := s.templates[id]
	if !ok || t.TenantID != tenantID {
		return nil, itemdomain.ErrTemplateNotFound
	}
	t.Fields = slices.Clone(t.Fields)
	return &t, nil
}

func (s *Store) GetLocation(_ context.Context, tenantID, id uuid.UUID) (*models.Location, error) {
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	l, ok := s.locations[id]
	if !ok || l.TenantID != tenantID {
		return nil, itemdomain.ErrLocationTenancyMismatch
	}
	return &l, nil
}

func (s *Store) CountOpenWorkItems(_ context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) (int, error) {
	if len(itemIDs) == 0 {
		return 0, fmt.Errorf("count open work items: no item ids")
	}
	s.refMu.RLock()
	defer s.refMu.RUnlock()
	n := 0
	for _, w := range s.work {
		if w.tenantID == tenantID && w.status.IsOpen() && slices.Contains(itemIDs, w.itemID) {
			n++
		}
	}
	return n, nil
}
