package jwttoken

import (
	"automatik/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *SessionClaims) *auth.JWTClaims {
	return &auth.JWTClaims{
		Subject:  claims.Subject,
		Role:     claims.Role,
		TenantID: claims.TenantID,
	}
}

// JWTServiceAdapter satisfies auth.JWTValidator.
type JWTServiceAdapter struct {
	service *JWTService
}

func NewJWTServiceAdapter(service *JWTService) *JWTServiceAdapter {
	return &JWTServiceAdapter{service: service}
}

func (a *JWTServiceAdapter) ValidateToken(tokenString string) (*auth.JWTClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
