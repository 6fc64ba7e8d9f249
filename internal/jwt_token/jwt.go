package jwttoken

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/requestcontext"
)

// DefaultTTL is the fixed session window from issuance.
const DefaultTTL = 24 * time.Hour

// SessionClaims is the payload of a session assertion. TenantID is always
// serialized, as null for users without a tenant.
type SessionClaims struct {
	Role     string `json:"role"`
	TenantID *int64 `json:"tenantId"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies HS256 session assertions.
type JWTService struct {
	signingKey []byte
	tokenTTL   time.Duration
	now        func() time.Time
}

func NewJWTService(signingKey string, tokenTTL time.Duration) *JWTService {
	if tokenTTL <= 0 {
		tokenTTL = DefaultTTL
	}
	return &JWTService{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
		now:        time.Now,
	}
}

// TTL returns the configured session window.
func (s *JWTService) TTL() time.Duration {
	return s.tokenTTL
}

// IssueSessionToken mints an assertion for the user. Issuance time comes from
// the request context so a whole request observes one clock reading.
func (s *JWTService) IssueSessionToken(ctx context.Context, userID id.UserID, role string, tenantID *id.TenantID) (string, error) {
	if userID.IsNil() {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "session subject is required")
	}
	if role == "" {
		return "", dErrors.New(dErrors.CodeInvariantViolation, "session role is required")
	}

	now := requestcontext.Now(ctx)
	var tid *int64
	if tenantID != nil {
		v := int64(*tenantID)
		tid = &v
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Role:     role,
		TenantID: tid,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	})

	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign session token")
	}
	return signed, nil
}

// ValidateToken verifies signature, algorithm and expiry. Every failure is
// CodeUnauthorized; only the message distinguishes an expired token.
func (s *JWTService) ValidateToken(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}
	if claims.Subject == "" || claims.Role == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "token is missing subject or role")
	}
	return claims, nil
}
