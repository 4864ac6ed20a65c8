package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ghuser/itemtree/pkg/database"
	itemdomain "github.com/ghuser/itemtree/services/item/domain"
	"github.com/ghuser/itemtree/services/item/domain/models"
	"github.com/ghuser/itemtree/services/item/domain/repositories"
)

var itemColumns = []string{
	"id", "tenant_id", "parent_id", "path", "name", "category", "status", "template_id", "location_id",
	"identifier_code", "custom_fields", "purchase_price", "warranty_expires_at", "created_at", "updated_at",
}

func newMockDB(t *testing.T) (*database.Database, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return database.New(conn), mock
}

func query(name string) string {
	return regexp.QuoteMeta("-- name: " + name + " ")
}

func TestItemRepository_GetByID_NotFound(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	mock.ExpectQuery(query("GetItemByID")).WillReturnRows(sqlmock.NewRows(itemColumns))

	_, err := repo.GetByID(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_GetByID_MapsRow(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	tenant, id, parent, loc := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	warranty := created.AddDate(1, 0, 0)

	mock.ExpectQuery(query("GetItemByID")).
		WithArgs(id, tenant).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(
			id.String(), tenant.String(), parent.String(), "/"+parent.String()+"/"+id.String(),
			"Pump", "pump", "repair", nil, loc.String(),
			"ITM-ABC", []byte(`{"serial":"S1","rpm":1450}`), "1250.50", warranty, created, created,
		))

	it, err := repo.GetByID(context.Background(), tenant, id)
	require.NoError(t, err)
	assert.Equal(t, id, it.ID)
	require.NotNil(t, it.ParentID)
	assert.Equal(t, parent, *it.ParentID)
	assert.Nil(t, it.TemplateID)
	require.NotNil(t, it.LocationID)
	assert.Equal(t, loc, *it.LocationID)
	assert.Equal(t, models.StatusRepair, it.Status)
	assert.Equal(t, models.ItemName("Pump"), it.Name)
	assert.True(t, it.PurchasePrice.Valid)
	assert.True(t, decimal.RequireFromString("1250.50").Equal(it.PurchasePrice.Decimal))
	require.NotNil(t, it.WarrantyExpiresAt)
	assert.True(t, warranty.Equal(*it.WarrantyExpiresAt))
	assert.Equal(t, "S1", it.CustomFields["serial"])
	assert.InDelta(t, 1450, it.CustomFields["rpm"], 0)
}

func TestItemRepository_Insert_MapsConstraintViolations(t *testing.T) {
	tests := []struct {
		name       string
		pgErr      *pgconn.PgError
		wantErr    error
		wantMapped bool
	}{
		{"duplicate code", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintItemsIdentifierCode}, itemdomain.ErrDuplicateIdentifierCode, true},
		{"duplicate path", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintItemsPath}, itemdomain.ErrItemAlreadyExists, true},
		{"duplicate id", &pgconn.PgError{Code: uniqueViolation, ConstraintName: constraintItemsPkey}, itemdomain.ErrItemAlreadyExists, true},
		{"missing parent", &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: constraintItemsParent}, itemdomain.ErrParentNotFound, true},
		{"missing template", &pgconn.PgError{Code: foreignKeyViolation, ConstraintName: constraintItemsTemplate}, itemdomain.ErrTemplateNotFound, true},
		{"other", &pgconn.PgError{Code: "22001"}, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDB(t)
			repo := NewItemRepository(d)

			mock.ExpectBegin()
			mock.ExpectExec(query("InsertItem")).WillReturnError(tt.pgErr)
			mock.ExpectRollback()

			item, err := models.NewItem(uuid.New(), "Pump", "pump")
			require.NoError(t, err)
			item.Path = "/" + item.ID.String()
			item.IdentifierCode = "ITM-1"

			err = repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
				return w.Insert(ctx, item)
			})
			require.Error(t, err)
			if tt.wantMapped {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				var pgErr *pgconn.PgError
				assert.True(t, errors.As(err, &pgErr))
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestItemRepository_MoveTransaction(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	tenant, id := uuid.New(), uuid.New()
	now := time.Now().UTC()
	oldPath := "/" + uuid.NewString() + "/" + id.String()
	newPath := "/" + id.String()
	child1, child2 := uuid.New(), uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(query("LockItemByID")).
		WithArgs(id, tenant).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(
			id.String(), tenant.String(), nil, oldPath, "B", "pump", "operational", nil, nil,
			"ITM-B", []byte(`{}`), nil, nil, now, now,
		))
	// The subtree is locked before any of its paths are rewritten.
	mock.ExpectQuery(query("LockDescendants") + `(?s).*FOR UPDATE`).
		WithArgs(tenant, oldPath).
		WillReturnRows(sqlmock.NewRows(itemColumns).
			AddRow(child1.String(), tenant.String(), id.String(), oldPath+"/"+child1.String(), "C1", "pump", "operational",
				nil, nil, "ITM-C1", []byte(`{}`), nil, nil, now, now).
			AddRow(child2.String(), tenant.String(), id.String(), oldPath+"/"+child2.String(), "C2", "pump", "operational",
				nil, nil, "ITM-C2", []byte(`{}`), nil, nil, now, now))
	mock.ExpectQuery(query("RewriteDescendantPaths")).
		WithArgs(tenant, oldPath, newPath, now).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(child1.String()).AddRow(child2.String()))
	mock.ExpectExec(query("UpdateItem")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var (
		locked    []*models.Item
		rewritten []uuid.UUID
	)
	err := repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
		it, err := w.LockByID(ctx, tenant, id)
		if err != nil {
			return err
		}
		if locked, err = w.LockDescendants(ctx, tenant, it.Path); err != nil {
			return err
		}
		rewritten, err = w.RewriteDescendantPaths(ctx, tenant, it.Path, newPath, now)
		if err != nil {
			return err
		}
		it.Path = newPath
		it.ParentID = nil
		return w.Update(ctx, it)
	})
	require.NoError(t, err)
	require.Len(t, locked, 2)
	assert.Equal(t, child1, locked[0].ID)
	assert.Equal(t, id, *locked[0].ParentID)
	assert.Equal(t, []uuid.UUID{child1, child2}, rewritten)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_ConcurrencyAbortIsConflict(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		atCommit bool
	}{
		{"deadlock on subtree lock", deadlockDetected, false},
		{"serialization failure on commit", serializationFailure, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, mock := newMockDB(t)
			repo := NewItemRepository(d)
			pgErr := &pgconn.PgError{Code: tt.code}

			mock.ExpectBegin()
			if tt.atCommit {
				mock.ExpectQuery(query("LockDescendants")).WillReturnRows(sqlmock.NewRows(itemColumns))
				mock.ExpectCommit().WillReturnError(pgErr)
			} else {
				mock.ExpectQuery(query("LockDescendants")).WillReturnError(pgErr)
				mock.ExpectRollback()
			}

			err := repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
				_, err := w.LockDescendants(ctx, uuid.New(), "/a")
				return err
			})
			require.ErrorIs(t, err, itemdomain.ErrConcurrentModification)
			assert.Equal(t, itemdomain.KindConflict, itemdomain.KindOf(err))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestItemRepository_RewriteFailureRollsBack(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	mock.ExpectBegin()
	mock.ExpectQuery(query("RewriteDescendantPaths")).WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
		_, err := w.RewriteDescendantPaths(ctx, uuid.New(), "/a", "/b", time.Now())
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rewrite descendant paths")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_UpdateMissingRow(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	mock.ExpectBegin()
	mock.ExpectExec(query("UpdateItem")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	item, err := models.NewItem(uuid.New(), "Pump", "pump")
	require.NoError(t, err)
	err = repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
		return w.Update(ctx, item)
	})
	assert.ErrorIs(t, err, itemdomain.ErrItemNotFound)
}

func TestItemRepository_DeleteSubtree(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	tenant := uuid.New()
	a, b := uuid.New(), uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(query("LockDescendants")).
		WithArgs(tenant, "/"+a.String()).
		WillReturnRows(sqlmock.NewRows(itemColumns).AddRow(
			b.String(), tenant.String(), a.String(), "/"+a.String()+"/"+b.String(), "B", "pump", "operational",
			nil, nil, "ITM-B", []byte(`{}`), nil, nil, now, now,
		))
	mock.ExpectQuery(query("DeleteSubtree")).
		WithArgs(tenant, "/"+a.String()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(a.String()).AddRow(b.String()))
	mock.ExpectExec(query("InsertAuditEntry")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	var (
		descendants []*models.Item
		removed     []uuid.UUID
	)
	err := repo.WithinTx(context.Background(), func(ctx context.Context, w repositories.ItemWriter) error {
		var err error
		if descendants, err = w.LockDescendants(ctx, tenant, "/"+a.String()); err != nil {
			return err
		}
		if removed, err = w.DeleteSubtree(ctx, tenant, "/"+a.String()); err != nil {
			return err
		}
		return w.InsertAudit(ctx, &models.AuditEntry{ID: uuid.New(), TenantID: tenant, EntityID: a, Action: "deleted"})
	})
	require.NoError(t, err)
	require.Len(t, descendants, 1)
	assert.Equal(t, b, descendants[0].ID)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_FindByTenantID(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)
	tenant := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows(itemColumns)
	for _, n := range []string{"a", "b"} {
		id := uuid.New()
		rows.AddRow(id.String(), tenant.String(), nil, "/"+id.String(), n, "pump", "operational", nil, nil,
			"ITM-"+n, []byte(`{}`), nil, nil, now, now)
	}
	mock.ExpectQuery(query("FindItemsByTenantID")).WithArgs(tenant, 2, 0).WillReturnRows(rows)
	mock.ExpectQuery(query("CountItemsByTenantID")).WithArgs(tenant).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	items, total, err := repo.FindByTenantID(context.Background(), tenant, repositories.QueryOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 5, total)
	assert.Nil(t, items[0].CustomFields)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_Statistics(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)
	tenant := uuid.New()
	now := time.Now().UTC()
	cutoff := now.Add(30 * 24 * time.Hour)
	loc := uuid.NewString()

	mock.ExpectQuery(query("ItemTotals")).WithArgs(tenant, now, cutoff).
		WillReturnRows(sqlmock.NewRows([]string{"total_items", "total_value", "warranty_expiring"}).AddRow(3, "300.25", 1))
	mock.ExpectQuery(query("CountItemsByCategory")).
		WillReturnRows(sqlmock.NewRows([]string{"category", "total"}).AddRow("pump", 2).AddRow("valve", 1))
	mock.ExpectQuery(query("CountItemsByStatus")).
		WillReturnRows(sqlmock.NewRows([]string{"status", "total"}).AddRow("operational", 3))
	mock.ExpectQuery(query("CountItemsByLocation")).
		WillReturnRows(sqlmock.NewRows([]string{"location", "total"}).AddRow(loc, 1).AddRow(models.UnassignedLocation, 2))

	stats, err := repo.Statistics(context.Background(), tenant, now, cutoff)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalItems)
	assert.Equal(t, "300.25", stats.TotalValue.StringFixed(2))
	assert.Equal(t, 1, stats.WarrantyExpiringSoon)
	assert.Equal(t, 2, stats.ByCategory["pump"])
	assert.Equal(t, 3, stats.ByStatus[models.StatusOperational])
	assert.Equal(t, 2, stats.ByLocation[models.UnassignedLocation])
	assert.Equal(t, cutoff, stats.WarrantyWindowEnd)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepository_GetByIDsEmpty(t *testing.T) {
	d, mock := newMockDB(t)
	repo := NewItemRepository(d)

	items, err := repo.GetByIDs(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, mock.ExpectationsWereMet())
}
