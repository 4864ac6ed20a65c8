package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewItem(t *testing.T) {
	tenantID := uuid.New()
	name := ItemName("Test Item")

	t.Run("returns item with non-zero ID", func(t *testing.T) {
		item, err := NewItem(tenantID, name, "pump")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.ID == (uuid.UUID{}) {
			t.Fatal("expected non-zero UUID for ID")
		}
	})

	t.Run("sets TenantID and Category", func(t *testing.T) {
		item, err := NewItem(tenantID, name, "pump")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.TenantID != tenantID {
			t.Fatalf("expected TenantID %v, got %v", tenantID, item.TenantID)
		}
		if item.Category != "pump" {
			t.Fatalf("expected Category pump, got %q", item.Category)
		}
	})

	t.Run("starts operational and unplaced", func(t *testing.T) {
		item, _ := NewItem(tenantID, name, "pump")
		if item.Status != StatusOperational {
			t.Fatalf("expected operational, got %q", item.Status)
		}
		if item.Path != "" || !item.IsRoot() {
			t.Fatalf("expected empty path and no parent, got %q / %v", item.Path, item.ParentID)
		}
	})

	t.Run("sets CreatedAt to approximately now UTC", func(t *testing.T) {
		before := time.Now().UTC()
		item, err := NewItem(tenantID, name, "pump")
		after := time.Now().UTC()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.CreatedAt.Before(before) || item.CreatedAt.After(after) {
			t.Fatalf("CreatedAt %v not between %v and %v", item.CreatedAt, before, after)
		}
		if !item.UpdatedAt.Equal(item.CreatedAt) {
			t.Fatalf("expected UpdatedAt == CreatedAt, got %v", item.UpdatedAt)
		}
	})

	t.Run("generates unique IDs on each call", func(t *testing.T) {
		item1, _ := NewItem(tenantID, name, "pump")
		item2, _ := NewItem(tenantID, name, "pump")
		if item1.ID == item2.ID {
			t.Fatal("expected unique IDs, got identical")
		}
	})
}

func TestItem_Clone(t *testing.T) {
	parent := uuid.New()
	warranty := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	orig := &Item{
		ID:                uuid.New(),
		ParentID:          &parent,
		CustomFields:      map[string]any{"serial": "A1"},
		WarrantyExpiresAt: &warranty,
	}

	c := orig.Clone()
	*c.ParentID = uuid.New()
	c.CustomFields["serial"] = "B2"
	*c.WarrantyExpiresAt = warranty.AddDate(1, 0, 0)

	if *orig.ParentID != parent {
		t.Fatal("clone shares ParentID with original")
	}
	if orig.CustomFields["serial"] != "A1" {
		t.Fatal("clone shares CustomFields with original")
	}
	if !orig.WarrantyExpiresAt.Equal(warranty) {
		t.Fatal("clone shares WarrantyExpiresAt with original")
	}

	var nilItem *Item
	if nilItem.Clone() != nil {
		t.Fatal("expected nil clone of nil item")
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range AllStatuses {
		got, err := ParseStatus(string(s))
		if err != nil {
			t.Fatalf("ParseStatus(%q): unexpected error: %v", s, err)
		}
		if got != s {
			t.Fatalf("ParseStatus(%q) = %q", s, got)
		}
	}
	if _, err := ParseStatus("broken"); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestWorkItemStatus_IsOpen(t *testing.T) {
	cases := map[WorkItemStatus]bool{
		WorkItemOpen:       true,
		WorkItemInProgress: true,
		WorkItemOnHold:     true,
		WorkItemCompleted:  false,
		WorkItemCancelled:  false,
	}
	for s, want := range cases {
		if got := s.IsOpen(); got != want {
			t.Errorf("%s.IsOpen() = %v, want %v", s, got, want)
		}
	}
}
