package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// ViolationKind names a broken hierarchy invariant.
type ViolationKind string

const (
	ViolationMalformedPath ViolationKind = "malformed_path"
	ViolationPathMismatch  ViolationKind = "path_mismatch"
	ViolationDuplicatePath ViolationKind = "duplicate_path"
	ViolationMissingParent ViolationKind = "missing_parent"
	ViolationCycle         ViolationKind = "cycle"
)

// Violation is one item failing one invariant.
type Violation struct {
	ItemID uuid.UUID     `json:"item_id"`
	Kind   ViolationKind `json:"kind"`
	Detail string        `json:"detail"`
}

// IntegrityReport is the result of sweeping one tenant's hierarchy.
type IntegrityReport struct {
	TenantID   uuid.UUID   `json:"tenant_id"`
	Checked    int         `json:"checked"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no violations were found.
func (r *IntegrityReport) OK() bool {
	return len(r.Violations) == 0
}

// CheckIntegrity verifies path consistency, path uniqueness and acyclicity
// over a full tenant item list. Ancestor chains are walked iteratively with a
// step bound of len(items), so a corrupted cycle terminates.
func CheckIntegrity(tenantID uuid.UUID, items []*models.Item) *IntegrityReport {
	report := &IntegrityReport{TenantID: tenantID, Checked: len(items), Violations: []Violation{}}

	byID := make(map[uuid.UUID]*models.Item, len(items))
	byPath := make(map[string]uuid.UUID, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}

	add := func(id uuid.UUID, kind ViolationKind, format string, args ...any) {
		report.Violations = append(report.Violations, Violation{ItemID: id, Kind: kind, Detail: fmt.Sprintf(format, args...)})
	}

	for _, it := range items {
		if other, dup := byPath[it.Path]; dup {
			add(it.ID, ViolationDuplicatePath, "path %q also used by %s", it.Path, other)
		} else {
			byPath[it.Path] = it.ID
		}

		if _, err := ParsePath(it.Path); err != nil {
			add(it.ID, ViolationMalformedPath, "%v", err)
			continue
		}

		if it.ParentID == nil {
			if want := ComputePath("", it.ID); it.Path != want {
				add(it.ID, ViolationPathMismatch, "root path %q, want %q", it.Path, want)
			}
		} else {
			parent, ok := byID[*it.ParentID]
			if !ok {
				add(it.ID, ViolationMissingParent, "parent %s not found", *it.ParentID)
				continue
			}
			if want := ComputePath(parent.Path, it.ID); it.Path != want {
				add(it.ID, ViolationPathMismatch, "path %q, want %q", it.Path, want)
			}
		}

		if hasCycle(it, byID, len(items)) {
			add(it.ID, ViolationCycle, "item is its own ancestor")
		}
	}
	return report
}

func hasCycle(start *models.Item, byID map[uuid.UUID]*models.Item, bound int) bool {
	cur := start
	for steps := 0; steps <= bound; steps++ {
		if cur.ParentID == nil {
			return false
		}
		if *cur.ParentID == start.ID {
			return true
		}
		next, ok := byID[*cur.ParentID]
		if !ok {
			return false
		}
		cur = next
	}
	return true
}
