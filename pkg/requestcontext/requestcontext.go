// Package requestcontext carries request-scoped values (request ID, client
// metadata, request time, authenticated identity) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "automatik/pkg/domain"
)

type (
	contextKeyRequestID   struct{}
	contextKeyClientIP    struct{}
	contextKeyUserAgent   struct{}
	contextKeyRequestTime struct{}
	contextKeyIdentity    struct{}
)

// Identity is the authenticated caller derived from a verified session assertion.
type Identity struct {
	UserID   id.UserID
	Role     string
	TenantID *id.TenantID
}

// RoleAdmin is the cross-tenant role.
const RoleAdmin = "admin"

// IsAdmin reports whether the identity may act across tenants.
func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKeyRequestID{}, requestID)
}

// RequestID returns the request ID, or "" outside of an HTTP request.
func RequestID(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyRequestID{}).(string); ok {
		return v
	}
	return ""
}

func WithClientMetadata(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, contextKeyClientIP{}, ip)
	return context.WithValue(ctx, contextKeyUserAgent{}, userAgent)
}

func ClientIP(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyClientIP{}).(string); ok {
		return v
	}
	return ""
}

func UserAgent(ctx context.Context) string {
	if v, ok := ctx.Value(contextKeyUserAgent{}).(string); ok {
		return v
	}
	return ""
}

// WithTime injects a specific time into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, contextKeyRequestTime{}, t)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(contextKeyRequestTime{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

func WithIdentity(ctx context.Context, ident Identity) context.Context {
	return context.WithValue(ctx, contextKeyIdentity{}, ident)
}

// GetIdentity returns the authenticated identity and whether one is present.
func GetIdentity(ctx context.Context) (Identity, bool) {
	v, ok := ctx.Value(contextKeyIdentity{}).(Identity)
	return v, ok
}
