package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestWithTenantID_TenantIDFromCtx(t *testing.T) {
	tenantID := uuid.New()
	ctx := WithTenantID(context.Background(), tenantID)

	got, err := TenantIDFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != tenantID {
		t.Fatalf("expected %v, got %v", tenantID, got)
	}
}

func TestTenantIDFromCtx_EmptyContext(t *testing.T) {
	_, err := TenantIDFromCtx(context.Background())
	if !errors.Is(err, ErrTenantIDNotFound) {
		t.Fatalf("expected ErrTenantIDNotFound, got %v", err)
	}
}

func TestTenantIDFromCtx_NilUUID(t *testing.T) {
	ctx := WithTenantID(context.Background(), uuid.Nil)
	_, err := TenantIDFromCtx(ctx)
	if !errors.Is(err, ErrTenantIDNotFound) {
		t.Fatalf("expected ErrTenantIDNotFound for uuid.Nil, got %v", err)
	}
}

func TestTenantIDFromCtx_Isolation(t *testing.T) {
	tenantID1 := uuid.New()
	tenantID2 := uuid.New()

	ctx1 := WithTenantID(context.Background(), tenantID1)
	ctx2 := WithTenantID(context.Background(), tenantID2)

	got1, _ := TenantIDFromCtx(ctx1)
	got2, _ := TenantIDFromCtx(ctx2)

	if got1 != tenantID1 {
		t.Fatalf("ctx1: expected %v, got %v", tenantID1, got1)
	}
	if got2 != tenantID2 {
		t.Fatalf("ctx2: expected %v, got %v", tenantID2, got2)
	}
	if got1 == got2 {
		t.Fatal("expected different TenantIDs in isolated contexts")
	}
}

func TestBindingFromCtx_CarriesSource(t *testing.T) {
	tenantID := uuid.New()
	ctx := WithBinding(context.Background(), Binding{TenantID: tenantID, Source: SourceHeader})

	b, err := BindingFromCtx(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.TenantID != tenantID || b.Source != SourceHeader {
		t.Fatalf("unexpected binding %+v", b)
	}

	b, err = BindingFromCtx(WithTenantID(context.Background(), tenantID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Source != SourceInternal {
		t.Fatalf("expected internal source, got %q", b.Source)
	}
}

func TestBindingFromCtx_ForeignValueIgnored(t *testing.T) {
	// A plain string key with the same name must not satisfy the lookup.
	ctx := context.WithValue(context.Background(), "tenant_id", uuid.New()) //nolint:staticcheck
	if _, err := BindingFromCtx(ctx); !errors.Is(err, ErrTenantIDNotFound) {
		t.Fatalf("expected ErrTenantIDNotFound, got %v", err)
	}
}
