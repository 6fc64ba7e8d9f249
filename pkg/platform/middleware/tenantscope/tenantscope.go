// Package tenantscope restricts tenant-addressed routes to the tenant's own
// members. Admins pass for every tenant.
package tenantscope

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/requestcontext"
)

// TenantResolver maps a tenant slug from the URL to its ID.
type TenantResolver interface {
	ResolveSlug(ctx context.Context, slug string) (id.TenantID, error)
}

type contextKeyTenantSlug struct{}

// TenantSlug returns the slug admitted by RequireTenantAccess.
func TenantSlug(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyTenantSlug{}).(string); ok {
		return v
	}
	return ""
}

// RequireTenantAccess must run after auth.RequireAuth. param names the chi URL
// parameter holding the tenant slug.
func RequireTenantAccess(resolver TenantResolver, param string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)
			slug := chi.URLParam(r, param)

			ident, ok := requestcontext.GetIdentity(ctx)
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header"))
				return
			}

			tenantID, err := resolver.ResolveSlug(ctx, slug)
			if err != nil {
				logger.WarnContext(ctx, "tenant scope - unknown tenant",
					"tenant_slug", slug,
					"request_id", requestID,
				)
				httputil.WriteError(w, err)
				return
			}

			if !ident.IsAdmin() && (ident.TenantID == nil || *ident.TenantID != tenantID) {
				logger.WarnContext(ctx, "tenant scope - cross-tenant access denied",
					"log_type", "audit",
					"user_id", ident.UserID.String(),
					"tenant_slug", slug,
					"request_id", requestID,
				)
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "no access to this tenant"))
				return
			}

			ctx = context.WithValue(ctx, contextKeyTenantSlug{}, slug)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
