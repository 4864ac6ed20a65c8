package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/pkg/logger"
	"github.com/ghuser/itemtree/services/item/domain/events"
	"github.com/ghuser/itemtree/services/item/domain/models"
)

type fakeEntry struct {
	item    *models.Item
	version int64
}

// fakeReadModel mirrors the versioning of the Redis read model: a nil item
// is a tombstone.
type fakeReadModel struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]fakeEntry
	setErr      error
	forgotten   []uuid.UUID
	invalidated []uuid.UUID
}

func newFakeReadModel() *fakeReadModel {
	return &fakeReadModel{entries: map[uuid.UUID]fakeEntry{}}
}

func (f *fakeReadModel) put(item *models.Item) {
	f.entries[item.ID] = fakeEntry{item: item.Clone(), version: item.UpdatedAt.UnixMicro()}
}

func (f *fakeReadModel) live() int {
	n := 0
	for _, e := range f.entries {
		if e.item != nil {
			n++
		}
	}
	return n
}

func (f *fakeReadModel) Get(_ context.Context, tenantID, id uuid.UUID) (*models.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.entries[id]
	if !ok || e.item == nil || e.item.TenantID != tenantID {
		return nil, redis.Nil
	}
	return e.item.Clone(), nil
}

func (f *fakeReadModel) Set(_ context.Context, item *models.Item) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return false, f.setErr
	}
	v := item.UpdatedAt.UnixMicro()
	if e, ok := f.entries[item.ID]; ok && e.version > v {
		return false, nil
	}
	f.put(item)
	return true, nil
}

func (f *fakeReadModel) tombstone(ids []uuid.UUID, floor int64) {
	for _, id := range ids {
		if e, ok := f.entries[id]; !ok || e.version < floor {
			f.entries[id] = fakeEntry{version: floor}
		}
	}
}

func (f *fakeReadModel) Invalidate(_ context.Context, _ uuid.UUID, ids []uuid.UUID, since time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tombstone(ids, since.UnixMicro())
	f.invalidated = append(f.invalidated, ids...)
	return nil
}

func (f *fakeReadModel) Forget(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tombstone(ids, math.MaxInt64)
	f.forgotten = append(f.forgotten, ids...)
	return nil
}

func eventMessage(t *testing.T, evt events.ItemChangedEvent) *message.Message {
	t.Helper()
	payload, err := json.Marshal(evt)
	require.NoError(t, err)
	return message.NewMessage(watermill.NewUUID(), payload)
}

func TestCacheSync_MoveWritesEntityAndEvictsDescendants(t *testing.T) {
	rm := newFakeReadModel()
	h := NewCacheSync(rm, logger.Nop())

	tenant := uuid.New()
	item := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/a/b", Name: "b", Status: models.StatusOperational}
	item.UpdatedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	child := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/old/b/c", Name: "c", UpdatedAt: item.UpdatedAt.Add(-time.Hour)}
	rm.put(child)

	evt := events.NewItemChangedEvent(events.ActionMoved, tenant, item.ID, nil, item, []uuid.UUID{child.ID}, time.Now())
	require.NoError(t, h.Handle(context.Background(), eventMessage(t, evt)))

	got, err := rm.Get(context.Background(), tenant, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "/a/b", got.Path)

	_, err = rm.Get(context.Background(), tenant, child.ID)
	assert.ErrorIs(t, err, redis.Nil)

	// A reader holding the pre-move row cannot put it back.
	stored, err := rm.Set(context.Background(), child)
	require.NoError(t, err)
	assert.False(t, stored)

	rebased := child.Clone()
	rebased.Path = "/a/b/c"
	rebased.UpdatedAt = item.UpdatedAt
	stored, err = rm.Set(context.Background(), rebased)
	require.NoError(t, err)
	assert.True(t, stored)
}

func TestCacheSync_DeleteEvictsEverything(t *testing.T) {
	rm := newFakeReadModel()
	h := NewCacheSync(rm, logger.Nop())

	tenant := uuid.New()
	root := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/r"}
	leaf := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/r/l"}
	rm.put(root)
	rm.put(leaf)

	evt := events.NewItemChangedEvent(events.ActionDeleted, tenant, root.ID, root, nil, []uuid.UUID{leaf.ID}, time.Now())
	require.NoError(t, h.Handle(context.Background(), eventMessage(t, evt)))

	assert.Zero(t, rm.live())
	assert.ElementsMatch(t, []uuid.UUID{root.ID, leaf.ID}, rm.forgotten)
}

func TestCacheSync_LateEventsDoNotRegress(t *testing.T) {
	rm := newFakeReadModel()
	h := NewCacheSync(rm, logger.Nop())
	ctx := context.Background()

	tenant := uuid.New()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	v1 := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/x", Name: "old", UpdatedAt: t0}
	v2 := v1.Clone()
	v2.Name = "new"
	v2.UpdatedAt = t0.Add(time.Second)

	updated := func(it *models.Item) *message.Message {
		return eventMessage(t, events.NewItemChangedEvent(events.ActionUpdated, tenant, it.ID, nil, it, nil, it.UpdatedAt))
	}

	t.Run("older after-image is ignored", func(t *testing.T) {
		require.NoError(t, h.Handle(ctx, updated(v2)))
		require.NoError(t, h.Handle(ctx, updated(v1)))

		got, err := rm.Get(ctx, tenant, v1.ID)
		require.NoError(t, err)
		assert.Equal(t, models.ItemName("new"), got.Name)
	})

	t.Run("redelivered update after delete stays deleted", func(t *testing.T) {
		deleted := events.NewItemChangedEvent(events.ActionDeleted, tenant, v2.ID, v2, nil, nil, time.Now())
		require.NoError(t, h.Handle(ctx, eventMessage(t, deleted)))
		require.NoError(t, h.Handle(ctx, updated(v2)))

		_, err := rm.Get(ctx, tenant, v2.ID)
		assert.ErrorIs(t, err, redis.Nil)
	})
}

func TestCacheSync_RedeliveryIsIdempotent(t *testing.T) {
	rm := newFakeReadModel()
	h := NewCacheSync(rm, logger.Nop())

	tenant := uuid.New()
	item := &models.Item{ID: uuid.New(), TenantID: tenant, Path: "/x", Name: "x", Status: models.StatusMaintenance}
	msg := eventMessage(t, events.NewItemChangedEvent(events.ActionStatusChanged, tenant, item.ID, nil, item, nil, time.Now()))

	require.NoError(t, h.Handle(context.Background(), msg))
	require.NoError(t, h.Handle(context.Background(), msg))

	require.Equal(t, 1, rm.live())
	assert.Equal(t, models.StatusMaintenance, rm.entries[item.ID].item.Status)
}

func TestCacheSync_SetFailureIsRetried(t *testing.T) {
	rm := newFakeReadModel()
	rm.setErr = errors.New("connection refused")
	h := NewCacheSync(rm, logger.Nop())

	item := &models.Item{ID: uuid.New(), TenantID: uuid.New(), Path: "/x"}
	evt := events.NewItemChangedEvent(events.ActionUpdated, item.TenantID, item.ID, nil, item, nil, time.Now())

	err := h.Handle(context.Background(), eventMessage(t, evt))
	assert.ErrorIs(t, err, rm.setErr)
}

func TestCacheSync_SkipsUnusableMessages(t *testing.T) {
	rm := newFakeReadModel()
	h := NewCacheSync(rm, logger.Nop())

	garbage := message.NewMessage(watermill.NewUUID(), []byte("{not json"))
	assert.NoError(t, h.Handle(context.Background(), garbage))

	item := &models.Item{ID: uuid.New(), TenantID: uuid.New(), Path: "/x"}
	evt := events.NewItemChangedEvent(events.ActionCreated, item.TenantID, item.ID, nil, item, nil, time.Now())
	evt.Version = events.EventVersion + 1
	assert.NoError(t, h.Handle(context.Background(), eventMessage(t, evt)))

	assert.Empty(t, rm.entries)
	assert.Empty(t, rm.forgotten)
	assert.Empty(t, rm.invalidated)
}
