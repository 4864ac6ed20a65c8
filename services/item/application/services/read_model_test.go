package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/services/item/domain/models"
)

func TestCachedItemConversion(t *testing.T) {
	parent := uuid.New()
	warranty := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	item := &models.Item{
		ID:                uuid.New(),
		TenantID:          uuid.New(),
		ParentID:          &parent,
		Path:              "/p/x",
		Name:              "Pump",
		Category:          "pump",
		Status:            models.StatusMaintenance,
		IdentifierCode:    "ITM-1",
		CustomFields:      map[string]any{"serial": "A"},
		PurchasePrice:     decimal.NewNullDecimal(decimal.RequireFromString("10.25")),
		WarrantyExpiresAt: &warranty,
	}

	back, err := fromCached(toCached(item))
	require.NoError(t, err)
	assert.Equal(t, item.ID, back.ID)
	assert.Equal(t, parent, *back.ParentID)
	assert.Equal(t, models.StatusMaintenance, back.Status)
	assert.True(t, back.PurchasePrice.Valid)
	assert.True(t, back.PurchasePrice.Decimal.Equal(item.PurchasePrice.Decimal))

	plain := &models.Item{ID: uuid.New(), Status: models.StatusOperational}
	back, err = fromCached(toCached(plain))
	require.NoError(t, err)
	assert.False(t, back.PurchasePrice.Valid)

	bad := toCached(plain)
	bad.Status = "melted"
	_, err = fromCached(bad)
	assert.Error(t, err)
}
