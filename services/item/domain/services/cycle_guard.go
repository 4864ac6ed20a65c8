package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ghuser/itemtree/services/item/domain"
)

// ValidateMove checks that placing the item at itemPath under the proposed
// parent keeps the forest acyclic. A nil proposedParentID means "move to root",
// which is always structurally legal. It must run before any path is written.
func ValidateMove(itemPath, proposedParentPath string, itemID uuid.UUID, proposedParentID *uuid.UUID) error {
	if proposedParentID == nil {
		return nil
	}
	if *proposedParentID == itemID {
		return fmt.Errorf("item %s: %w", itemID, domain.ErrSelfParent)
	}
	if IsDescendantPath(itemPath, proposedParentPath) {
		return fmt.Errorf("item %s under %s: %w", itemID, *proposedParentID, domain.ErrCircularDependency)
	}
	return nil
}
