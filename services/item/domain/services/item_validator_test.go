package services

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   models.ItemName
		wantErr bool
	}{
		{"valid name", "Valid Item Name", false},
		{"valid name with special chars", "Item-Name_123!@#", false},
		{"valid single space between words", "item name", false},
		{"leading whitespace", " Name", true},
		{"trailing whitespace", "Name ", true},
		{"leading and trailing whitespace", " Name ", true},
		{"only whitespace", "   ", true},
		{"tab character (control)", "Name\tName", true},
		{"newline character (control)", "Name\nName", true},
		{"null byte (control)", "Name\x00", true},
		{"DEL character", "Name\x7F", true},
		{"consecutive spaces", "Item  Name", true},
		{"three consecutive spaces", "Item   Name", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateName(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateCategory(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"pump", false},
		{"", true},
		{"   ", true},
		{" pump", true},
		{string(make([]byte, 101)), true},
	}
	for _, tt := range tests {
		if err := ValidateCategory(tt.input); (err != nil) != tt.wantErr {
			t.Errorf("ValidateCategory(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateItem(t *testing.T) {
	valid := func() *models.Item {
		return &models.Item{
			ID:       uuid.New(),
			TenantID: uuid.New(),
			Name:     "Valid Item",
			Category: "pump",
			Status:   models.StatusOperational,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*models.Item)
		wantErr error
	}{
		{"valid item", func(*models.Item) {}, nil},
		{"zero TenantID", func(i *models.Item) { i.TenantID = uuid.Nil }, domain.ErrInvalidItem},
		{"zero ID", func(i *models.Item) { i.ID = uuid.Nil }, domain.ErrInvalidItem},
		{"invalid name", func(i *models.Item) { i.Name = " leading space" }, domain.ErrInvalidItemName},
		{"control chars in name", func(i *models.Item) { i.Name = "name\x00control" }, domain.ErrInvalidItemName},
		{"missing category", func(i *models.Item) { i.Category = "" }, domain.ErrInvalidItem},
		{"unknown status", func(i *models.Item) { i.Status = "broken" }, domain.ErrInvalidItem},
		{"negative price", func(i *models.Item) {
			i.PurchasePrice = decimal.NewNullDecimal(decimal.NewFromInt(-1))
		}, domain.ErrInvalidItem},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			err := ValidateItem(item)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("nil item", func(t *testing.T) {
		if err := ValidateItem(nil); !errors.Is(err, domain.ErrInvalidItem) {
			t.Fatalf("expected ErrInvalidItem, got %v", err)
		}
	})
}
