package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Source records how a request came to be bound to its tenant.
type Source string

const (
	SourceSession  Source = "session"
	SourceHeader   Source = "header"
	SourceInternal Source = "internal"
)

// Binding is the tenant a request or job acts for. Every item operation is
// scoped to Binding.TenantID.
type Binding struct {
	TenantID uuid.UUID
	Source   Source
}

type bindingKey struct{}

// ErrTenantIDNotFound means the context carries no tenant binding. The HTTP
// layer answers it with 401.
var ErrTenantIDNotFound = errors.New("request is not bound to a tenant")

// WithBinding attaches b to ctx. A binding to uuid.Nil is treated as absent.
func WithBinding(ctx context.Context, b Binding) context.Context {
	return context.WithValue(ctx, bindingKey{}, b)
}

// BindingFromCtx returns the tenant binding of ctx.
func BindingFromCtx(ctx context.Context) (Binding, error) {
	b, ok := ctx.Value(bindingKey{}).(Binding)
	if !ok || b.TenantID == uuid.Nil {
		return Binding{}, ErrTenantIDNotFound
	}
	return b, nil
}

// TenantIDFromCtx returns the bound tenant, or ErrTenantIDNotFound.
func TenantIDFromCtx(ctx context.Context) (uuid.UUID, error) {
	b, err := BindingFromCtx(ctx)
	return b.TenantID, err
}

// WithTenantID binds tenantID for work that does not come through the HTTP
// middleware, such as workers and tests.
func WithTenantID(ctx context.Context, tenantID uuid.UUID) context.Context {
	return WithBinding(ctx, Binding{TenantID: tenantID, Source: SourceInternal})
}
