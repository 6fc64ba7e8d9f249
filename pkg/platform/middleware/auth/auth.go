package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/platform/httputil"
	"automatik/pkg/requestcontext"
)

// JWTValidator verifies a session assertion's signature and expiry.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims is the validator's view of a verified assertion.
type JWTClaims struct {
	Subject  string
	Role     string
	TenantID *int64
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, bool) {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		return "", false
	}
	return token, true
}

func identityFromClaims(claims *JWTClaims) (requestcontext.Identity, error) {
	userID, err := id.ParseUserID(claims.Subject)
	if err != nil {
		return requestcontext.Identity{}, fmt.Errorf("invalid sub: %w", err)
	}
	ident := requestcontext.Identity{UserID: userID, Role: claims.Role}
	if claims.TenantID != nil {
		if *claims.TenantID <= 0 {
			return requestcontext.Identity{}, fmt.Errorf("invalid tenantId: %d", *claims.TenantID)
		}
		tenantID := id.TenantID(*claims.TenantID)
		ident.TenantID = &tenantID
	}
	return ident, nil
}

func authenticate(ctx context.Context, r *http.Request, validator JWTValidator, logger *slog.Logger) (requestcontext.Identity, error) {
	token, ok := BearerToken(r)
	if !ok {
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - invalid token",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	ident, err := identityFromClaims(claims)
	if err != nil {
		logger.WarnContext(ctx, "unauthorized access - malformed token claims",
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
		return requestcontext.Identity{}, dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
	}
	return ident, nil
}

// RequireAuth rejects requests without a valid bearer assertion and stores
// the caller's identity in the request context.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ident, err := authenticate(ctx, r, validator, logger)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
		})
	}
}

// OptionalAuth attaches the caller's identity when a valid bearer assertion
// is present and otherwise lets the request through anonymously.
func OptionalAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if _, ok := BearerToken(r); !ok {
				next.ServeHTTP(w, r)
				return
			}
			ident, err := authenticate(ctx, r, validator, logger)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithIdentity(ctx, ident)))
		})
	}
}
