package auth

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/ghuser/itemtree/pkg/httpx"
	"github.com/ghuser/itemtree/pkg/logger"
)

const sessionName = "itemtree_session"
const sessionTenantIDKey = "tenant_id"

// RequireAuth is a chi middleware that enforces authentication via session cookies.
// It reads the session cookie, extracts the TenantID, and injects it into the request context.
// Returns 401 Unauthorized if the session is missing, invalid, or lacks a valid tenant_id.
//
// After this middleware, handlers can safely call auth.TenantIDFromCtx(r.Context()).
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			tenantIDStr, ok := session.Values[sessionTenantIDKey].(string)
			if !ok || tenantIDStr == "" {
				log.WarnContext(r.Context(), "session missing tenant_id")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			tenantID, err := uuid.Parse(tenantIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid tenant_id in session", "tenant_id", tenantIDStr, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			next.ServeHTTP(w, r.WithContext(withTenant(r.Context(), Binding{TenantID: tenantID, Source: SourceSession})))
		})
	}
}

// TenantHeader carries the tenant id when header authentication is enabled.
const TenantHeader = "X-Tenant-ID"

// RequireTenantHeader is a development alternative to RequireAuth: it trusts
// the X-Tenant-ID header instead of a session. Never enable it in production.
func RequireTenantHeader(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TenantHeader)
			if raw == "" {
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			tenantID, err := uuid.Parse(raw)
			if err != nil || tenantID == uuid.Nil {
				log.WarnContext(r.Context(), "invalid tenant header", "tenant_id", raw)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid tenant id")
				return
			}
			next.ServeHTTP(w, r.WithContext(withTenant(r.Context(), Binding{TenantID: tenantID, Source: SourceHeader})))
		})
	}
}

// withTenant binds the tenant for handlers and for every log line they write.
func withTenant(ctx context.Context, b Binding) context.Context {
	return logger.ContextWith(WithBinding(ctx, b), "tenant_id", b.TenantID.String(), "auth_source", string(b.Source))
}
