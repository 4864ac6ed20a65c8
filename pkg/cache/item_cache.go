package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// ItemCacheTTL is the time-to-live for cached items and tombstones.
	ItemCacheTTL = 24 * time.Hour

	itemCacheKeyPrefix = "item"

	// deletedVersion floors the tombstone of a deleted item so no later
	// write can revive it. Item ids are never reused.
	deletedVersion int64 = math.MaxInt64
)

// setItemScript replaces the hash at KEYS[1] unless it already holds a newer
// version or a tombstone with a higher floor.
// ARGV: version, ttl in ms, then field/value pairs.
var setItemScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'version')
if cur and tonumber(cur) > tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], unpack(ARGV, 3))
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 1
`)

// tombstoneScript replaces every key whose version is below ARGV[1] with a
// tombstone carrying that floor. ARGV: floor, ttl in ms.
var tombstoneScript = redis.NewScript(`
for _, key in ipairs(KEYS) do
  local cur = redis.call('HGET', key, 'version')
  if not cur or tonumber(cur) < tonumber(ARGV[1]) then
    redis.call('DEL', key)
    redis.call('HSET', key, 'tombstone', '1', 'version', ARGV[1])
    redis.call('PEXPIRE', key, ARGV[2])
  end
end
return #KEYS
`)

// CachedItem is the denormalized read model stored in Redis.
// Fields are stored as a Redis hash; optional fields are stored as empty
// strings and custom fields as a JSON document.
type CachedItem struct {
	ID                uuid.UUID      `json:"id"`
	TenantID          uuid.UUID      `json:"tenant_id"`
	ParentID          *uuid.UUID     `json:"parent_id"`
	Path              string         `json:"path"`
	Name              string         `json:"name"`
	Category          string         `json:"category"`
	Status            string         `json:"status"`
	TemplateID        *uuid.UUID     `json:"template_id"`
	LocationID        *uuid.UUID     `json:"location_id"`
	IdentifierCode    string         `json:"identifier_code"`
	CustomFields      map[string]any `json:"custom_fields"`
	PurchasePrice     string         `json:"purchase_price"` // decimal string, "" when unset
	WarrantyExpiresAt *time.Time     `json:"warranty_expires_at"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// Version orders writes of the same item. Postgres keeps microseconds, so a
// row read back from the database compares equal to the value it was written
// with.
func (c *CachedItem) Version() int64 {
	return c.UpdatedAt.UnixMicro()
}

// ItemCache provides structured read/write operations for item cache entries.
// Keys are scoped by tenantID to prevent cross-tenant data leakage, and the
// tenant is a hash tag so one tenant's keys share a cluster slot.
// Key format: "item:{<tenantID>}:<itemID>"
//
// Every entry carries a version. Writes never move an entry backwards, and
// invalidation leaves a tombstone instead of an empty key, so a reader that
// loaded a row before a mutation committed cannot overwrite the mutation's
// result.
type ItemCache struct {
	client *RedisClient
}

// NewItemCache creates a new ItemCache backed by the given RedisClient.
func NewItemCache(r *RedisClient) *ItemCache {
	return &ItemCache{client: r}
}

// Get retrieves a cached item by tenant + item ID.
// Returns redis.Nil when the key does not exist, has expired or holds a
// tombstone.
func (c *ItemCache) Get(ctx context.Context, tenantID, itemID uuid.UUID) (*CachedItem, error) {
	vals, err := c.client.Client().HGetAll(ctx, c.key(tenantID, itemID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}
	if len(vals) == 0 || vals["tombstone"] != "" {
		return nil, redis.Nil
	}
	return decodeItem(vals)
}

// Set writes item as a Redis hash with ItemCacheTTL, unless the key holds a
// newer version or a tombstone above item's version. It reports whether the
// entry was written.
func (c *ItemCache) Set(ctx context.Context, item *CachedItem) (bool, error) {
	fields, err := encodeItem(item)
	if err != nil {
		return false, fmt.Errorf("cache encode: %w", err)
	}
	args := make([]any, 0, len(fields)+2)
	args = append(args, item.Version(), ItemCacheTTL.Milliseconds())
	args = append(args, fields...)

	stored, err := setItemScript.Run(ctx, c.client.Client(), []string{c.key(item.TenantID, item.ID)}, args...).Int()
	if err != nil {
		return false, fmt.Errorf("cache set: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the cached entries of itemIDs and refuses any later write
// older than since. Callers pass the commit version of the mutation that
// made the entries stale.
func (c *ItemCache) Invalidate(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID, since time.Time) error {
	return c.tombstone(ctx, tenantID, itemIDs, since.UnixMicro())
}

// Forget drops the cached entries of deleted items for good.
func (c *ItemCache) Forget(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID) error {
	return c.tombstone(ctx, tenantID, itemIDs, deletedVersion)
}

func (c *ItemCache) tombstone(ctx context.Context, tenantID uuid.UUID, itemIDs []uuid.UUID, floor int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(itemIDs))
	for _, id := range itemIDs {
		keys = append(keys, c.key(tenantID, id))
	}
	if err := tombstoneScript.Run(ctx, c.client.Client(), keys, floor, ItemCacheTTL.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("cache invalidate: %w", err)
	}
	return nil
}

// key builds the Redis key: "item:{<tenantID>}:<itemID>"
func (c *ItemCache) key(tenantID, itemID uuid.UUID) string {
	return fmt.Sprintf("%s:{%s}:%s", itemCacheKeyPrefix, tenantID, itemID)
}

func encodeItem(item *CachedItem) ([]any, error) {
	custom, err := json.Marshal(item.CustomFields)
	if err != nil {
		return nil, err
	}
	warranty := ""
	if item.WarrantyExpiresAt != nil {
		warranty = item.WarrantyExpiresAt.UTC().Format(time.RFC3339Nano)
	}
	return []any{
		"id", item.ID.String(),
		"tenant_id", item.TenantID.String(),
		"parent_id", optionalUUID(item.ParentID),
		"path", item.Path,
		"name", item.Name,
		"category", item.Category,
		"status", item.Status,
		"template_id", optionalUUID(item.TemplateID),
		"location_id", optionalUUID(item.LocationID),
		"identifier_code", item.IdentifierCode,
		"custom_fields", string(custom),
		"purchase_price", item.PurchasePrice,
		"warranty_expires_at", warranty,
		"created_at", item.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at", item.UpdatedAt.UTC().Format(time.RFC3339Nano),
		"version", strconv.FormatInt(item.Version(), 10),
	}, nil
}

func decodeItem(vals map[string]string) (*CachedItem, error) {
	item := &CachedItem{
		Path:           vals["path"],
		Name:           vals["name"],
		Category:       vals["category"],
		Status:         vals["status"],
		IdentifierCode: vals["identifier_code"],
		PurchasePrice:  vals["purchase_price"],
	}

	var err error
	if item.ID, err = uuid.Parse(vals["id"]); err != nil {
		return nil, fmt.Errorf("cache parse id: %w", err)
	}
	if item.TenantID, err = uuid.Parse(vals["tenant_id"]); err != nil {
		return nil, fmt.Errorf("cache parse tenant_id: %w", err)
	}
	if item.ParentID, err = parseOptionalUUID(vals["parent_id"]); err != nil {
		return nil, fmt.Errorf("cache parse parent_id: %w", err)
	}
	if item.TemplateID, err = parseOptionalUUID(vals["template_id"]); err != nil {
		return nil, fmt.Errorf("cache parse template_id: %w", err)
	}
	if item.LocationID, err = parseOptionalUUID(vals["location_id"]); err != nil {
		return nil, fmt.Errorf("cache parse location_id: %w", err)
	}
	if raw := vals["custom_fields"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &item.CustomFields); err != nil {
			return nil, fmt.Errorf("cache parse custom_fields: %w", err)
		}
	}
	if raw := vals["warranty_expires_at"]; raw != "" {
		w, err := time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return nil, fmt.Errorf("cache parse warranty_expires_at: %w", err)
		}
		item.WarrantyExpiresAt = &w
	}
	if item.CreatedAt, err = time.Parse(time.RFC3339Nano, vals["created_at"]); err != nil {
		return nil, fmt.Errorf("cache parse created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339Nano, vals["updated_at"]); err != nil {
		return nil, fmt.Errorf("cache parse updated_at: %w", err)
	}
	return item, nil
}

func optionalUUID(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func parseOptionalUUID(s string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
