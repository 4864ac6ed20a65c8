package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AuditEntry is a before/after record written in the same transaction as the
// mutation it describes.
type AuditEntry struct {
	ID         uuid.UUID
	TenantID   uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Before     json.RawMessage // nil on create
	After      json.RawMessage // nil on delete
	Diff       json.RawMessage // RFC 6902 patch, nil unless both images exist
	CreatedAt  time.Time
}

// WorkItemStatus is the state of a maintenance/work order referencing an item.
type WorkItemStatus string

const (
	WorkItemOpen       WorkItemStatus = "open"
	WorkItemInProgress WorkItemStatus = "in_progress"
	WorkItemOnHold     WorkItemStatus = "on_hold"
	WorkItemCompleted  WorkItemStatus = "completed"
	WorkItemCancelled  WorkItemStatus = "cancelled"
)

// OpenWorkItemStatuses is the subset that blocks deletion of the referenced item.
var OpenWorkItemStatuses = []WorkItemStatus{WorkItemOpen, WorkItemInProgress, WorkItemOnHold}

// IsOpen reports whether s blocks deletion.
func (s WorkItemStatus) IsOpen() bool {
	for _, v := range OpenWorkItemStatuses {
		if s == v {
			return true
		}
	}
	return false
}
