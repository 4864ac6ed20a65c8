package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgcache "github.com/ghuser/itemtree/pkg/cache"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

// ItemReadModel is the denormalized item cache. Entries are versioned by
// UpdatedAt so that writes arriving out of order cannot bring back an older
// image.
type ItemReadModel interface {
	// Get returns redis.Nil on a miss, matching the Redis-backed
	// implementation.
	Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error)
	// Set stores item unless a newer entry or tombstone is already there.
	// It reports whether the item was stored.
	Set(ctx context.Context, item *models.Item) (bool, error)
	// Invalidate drops the entries for ids and refuses later writes of
	// images older than since.
	Invalidate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, since time.Time) error
	// Forget drops the entries for deleted ids for good.
	Forget(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error
}

// CacheReadModel adapts pkg/cache.ItemCache to ItemReadModel.
type CacheReadModel struct {
	cache *pkgcache.ItemCache
}

// NewCacheReadModel returns a read model over the given cache.
func NewCacheReadModel(c *pkgcache.ItemCache) *CacheReadModel {
	return &CacheReadModel{cache: c}
}

// Get returns the cached item, or redis.Nil when it is absent or deleted.
func (m *CacheReadModel) Get(ctx context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	cached, err := m.cache.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	return fromCached(cached)
}

// Set writes item if its version is not older than the cached one.
func (m *CacheReadModel) Set(ctx context.Context, item *models.Item) (bool, error) {
	return m.cache.Set(ctx, toCached(item))
}

// Invalidate tombstones ids at the version of since.
func (m *CacheReadModel) Invalidate(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID, since time.Time) error {
	return m.cache.Invalidate(ctx, tenantID, ids, since)
}

// Forget tombstones ids above every version.
func (m *CacheReadModel) Forget(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) error {
	return m.cache.Forget(ctx, tenantID, ids)
}

func toCached(item *models.Item) *pkgcache.CachedItem {
	c := item.Clone()
	price := ""
	if c.PurchasePrice.Valid {
		price = c.PurchasePrice.Decimal.String()
	}
	return &pkgcache.CachedItem{
		ID:                c.ID,
		TenantID:          c.TenantID,
		ParentID:          c.ParentID,
		Path:              c.Path,
		Name:              c.Name.String(),
		Category:          c.Category,
		Status:            c.Status.String(),
		TemplateID:        c.TemplateID,
		LocationID:        c.LocationID,
		IdentifierCode:    c.IdentifierCode,
		CustomFields:      c.CustomFields,
		PurchasePrice:     price,
		WarrantyExpiresAt: c.WarrantyExpiresAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func fromCached(c *pkgcache.CachedItem) (*models.Item, error) {
	status, err := models.ParseStatus(c.Status)
	if err != nil {
		return nil, fmt.Errorf("cached item %s: %w", c.ID, err)
	}
	item := &models.Item{
		ID:                c.ID,
		TenantID:          c.TenantID,
		ParentID:          c.ParentID,
		Path:              c.Path,
		Name:              models.ItemName(c.Name),
		Category:          c.Category,
		Status:            status,
		TemplateID:        c.TemplateID,
		LocationID:        c.LocationID,
		IdentifierCode:    c.IdentifierCode,
		CustomFields:      c.CustomFields,
		WarrantyExpiresAt: c.WarrantyExpiresAt,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
	if c.PurchasePrice != "" {
		d, err := decimal.NewFromString(c.PurchasePrice)
		if err != nil {
			return nil, fmt.Errorf("cached item %s: purchase price: %w", c.ID, err)
		}
		item.PurchasePrice = decimal.NewNullDecimal(d)
	}
	return item, nil
}
