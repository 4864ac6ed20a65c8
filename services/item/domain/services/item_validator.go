// Package services contains stateless domain services for the item bounded context.
// Domain services enforce business rules that operate purely on domain types
// and have no I/O: they depend only on stdlib and the domain layer.
package services

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

const maxCategoryLength = 100

// ValidateName enforces business rules for ItemName beyond the structural
// constraints enforced by NewItemName.
//
// Business rules:
//   - No leading or trailing whitespace
//   - No control characters (Unicode category Cc)
//   - No consecutive spaces
//   - Must not be only whitespace characters
func ValidateName(name models.ItemName) error {
	s := name.String()

	if s != strings.TrimSpace(s) {
		return fmt.Errorf("item name must not have leading or trailing whitespace")
	}

	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("item name must not be only whitespace")
	}

	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("item name must not contain control characters")
		}
	}

	if strings.Contains(s, "  ") {
		return fmt.Errorf("item name must not contain consecutive spaces")
	}

	return nil
}

// ValidateCategory enforces that a category is present, trimmed and bounded.
func ValidateCategory(category string) error {
	if strings.TrimSpace(category) == "" {
		return fmt.Errorf("category must not be empty")
	}
	if category != strings.TrimSpace(category) {
		return fmt.Errorf("category must not have leading or trailing whitespace")
	}
	if len(category) > maxCategoryLength {
		return fmt.Errorf("category must not exceed %d characters", maxCategoryLength)
	}
	return nil
}

// ValidateItem performs cross-field validation on an Item aggregate before it
// is persisted, on create and on update. Failures wrap domain.ErrInvalidItemName
// or domain.ErrInvalidItem.
func ValidateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("item cannot be nil: %w", domain.ErrInvalidItem)
	}

	if err := ValidateName(item.Name); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidItemName, err)
	}

	if err := ValidateCategory(item.Category); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidItem, err)
	}

	if item.TenantID == uuid.Nil {
		return fmt.Errorf("%w: tenant_id must be set", domain.ErrInvalidItem)
	}

	if item.ID == uuid.Nil {
		return fmt.Errorf("%w: id must be set", domain.ErrInvalidItem)
	}

	if !item.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", domain.ErrInvalidItem, item.Status)
	}

	if item.PurchasePrice.Valid && item.PurchasePrice.Decimal.IsNegative() {
		return fmt.Errorf("%w: purchase price must not be negative", domain.ErrInvalidItem)
	}

	return nil
}
