package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

// Sentinel errors for the item domain. Use errors.Is() to check these.
var (
	// ErrItemNotFound indicates the requested item does not exist in the tenant.
	ErrItemNotFound = errors.New("item not found")

	// ErrTenantNotFound indicates the tenant scope of a request does not exist.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrParentNotFound indicates the requested parent item does not exist in the tenant.
	ErrParentNotFound = errors.New("parent item not found")

	// ErrTemplateNotFound indicates the template does not exist or belongs to another tenant.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrLocationTenancyMismatch indicates the location does not exist or belongs to another tenant.
	ErrLocationTenancyMismatch = errors.New("location not found in tenant")

	// ErrItemAlreadyExists indicates an item with the same unique constraint already exists.
	ErrItemAlreadyExists = errors.New("item already exists")

	// ErrSelfParent indicates a move that names the item as its own parent.
	ErrSelfParent = errors.New("item cannot be its own parent")

	// ErrCircularDependency indicates a move underneath the item's own subtree.
	ErrCircularDependency = errors.New("move would create a circular hierarchy")

	// ErrDuplicateIdentifierCode indicates the identifier code is taken by another item in the tenant.
	ErrDuplicateIdentifierCode = errors.New("identifier code already in use")

	// ErrCategoryMismatch indicates the template category differs from the item category.
	ErrCategoryMismatch = errors.New("template category does not match item category")

	// ErrInvalidTransition indicates a status change outside the lifecycle table.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrHasChildren indicates a non-cascading delete of an item with descendants.
	ErrHasChildren = errors.New("item has children")

	// ErrHasActiveWork indicates a delete blocked by open work items.
	ErrHasActiveWork = errors.New("item has active work items")

	// ErrConcurrentModification indicates the store aborted the mutation to
	// resolve a conflict with a concurrent one. The caller may retry.
	ErrConcurrentModification = errors.New("concurrent modification, retry the request")

	// ErrInvalidItemName indicates the item name violates domain constraints.
	ErrInvalidItemName = errors.New("invalid item name")

	// ErrInvalidItem indicates a field-level constraint other than the name failed.
	ErrInvalidItem = errors.New("invalid item")

	// ErrInvalidCustomFields indicates custom field values do not match the template schema.
	ErrInvalidCustomFields = errors.New("invalid custom fields")
)

// TransitionError reports a status change the lifecycle table does not allow.
// It matches ErrInvalidTransition under errors.Is.
type TransitionError struct {
	From models.Status
	To   models.Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s -> %s", ErrInvalidTransition, e.From, e.To)
}

// Is reports whether target is ErrInvalidTransition.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CustomFieldsError carries per-field validation messages keyed by field key.
// It matches ErrInvalidCustomFields under errors.Is.
type CustomFieldsError struct {
	Fields map[string]string
}

func (e *CustomFieldsError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return fmt.Sprintf("%s: %s", ErrInvalidCustomFields, strings.Join(parts, "; "))
}

// Is reports whether target is ErrInvalidCustomFields.
func (e *CustomFieldsError) Is(target error) bool {
	return target == ErrInvalidCustomFields
}

// Kind is the coarse error taxonomy surfaced to callers.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConflict
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "unknown"
	}
}

var (
	notFoundErrors = []error{
		ErrItemNotFound,
		ErrTenantNotFound,
		ErrParentNotFound,
		ErrTemplateNotFound,
		ErrLocationTenancyMismatch,
	}
	conflictErrors = []error{
		ErrItemAlreadyExists,
		ErrSelfParent,
		ErrCircularDependency,
		ErrDuplicateIdentifierCode,
		ErrCategoryMismatch,
		ErrInvalidTransition,
		ErrHasChildren,
		ErrHasActiveWork,
		ErrConcurrentModification,
	}
	validationErrors = []error{
		ErrInvalidItemName,
		ErrInvalidItem,
		ErrInvalidCustomFields,
	}
)

// KindOf classifies err by the first domain sentinel it wraps.
func KindOf(err error) Kind {
	if err == nil {
		return KindUnknown
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return KindNotFound
		}
	}
	for _, target := range conflictErrors {
		if errors.Is(err, target) {
			return KindConflict
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return KindValidation
		}
	}
	return KindUnknown
}
