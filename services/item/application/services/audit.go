package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"

	"github.com/ghuser/itemtree/services/item/domain/events"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// newAuditEntry builds the before/after record for one item mutation. Either
// image may be nil; the RFC 6902 diff is only computed when both exist.
func newAuditEntry(action events.Action, before, after *models.Item, at time.Time) (*models.AuditEntry, error) {
	subject := after
	if subject == nil {
		subject = before
	}
	if subject == nil {
		return nil, fmt.Errorf("audit: no item image")
	}

	entry := &models.AuditEntry{
		ID:         uuid.New(),
		TenantID:   subject.TenantID,
		EntityType: events.EntityTypeItem,
		EntityID:   subject.ID,
		Action:     string(action),
		CreatedAt:  at.UTC(),
	}

	var err error
	if entry.Before, err = marshalImage(before); err != nil {
		return nil, fmt.Errorf("audit: before image: %w", err)
	}
	if entry.After, err = marshalImage(after); err != nil {
		return nil, fmt.Errorf("audit: after image: %w", err)
	}
	if entry.Before != nil && entry.After != nil {
		patch, err := jsondiff.CompareJSON(entry.Before, entry.After)
		if err != nil {
			return nil, fmt.Errorf("audit: diff: %w", err)
		}
		if entry.Diff, err = json.Marshal(patch); err != nil {
			return nil, fmt.Errorf("audit: marshal diff: %w", err)
		}
	}
	return entry, nil
}

func marshalImage(item *models.Item) (json.RawMessage, error) {
	if item == nil {
		return nil, nil
	}
	return json.Marshal(events.SnapshotOf(item))
}
