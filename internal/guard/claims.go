// Package guard decides whether a portal page may be rendered for the
// current session, mirroring the checks the browser performs on navigation.
package guard

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var (
	ErrMalformedToken = errors.New("malformed session token")
	ErrMissingClaim   = errors.New("session token is missing a required claim")
)

// Claims is the decoded payload of a session assertion. Optional claims are
// nil when absent.
type Claims struct {
	Subject   string
	Role      string
	TenantID  *int64
	ExpiresAt *time.Time
}

// Expired reports whether now is at or after the expiry. Claims without an
// expiry never expire.
func (c *Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

type rawClaims struct {
	Sub      json.RawMessage `json:"sub"`
	Role     string          `json:"role"`
	TenantID json.RawMessage `json:"tenantId"`
	Exp      json.RawMessage `json:"exp"`
}

// DecodeClaims reads the payload segment of a compact token without checking
// the signature. The token needs at least two non-empty segments.
func DecodeClaims(token string) (*Claims, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, ErrMalformedToken
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	var raw rawClaims
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	subject := stringOrNumber(raw.Sub)
	if subject == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}
	if raw.Role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}

	claims := &Claims{Subject: subject, Role: raw.Role}
	if n, ok := number(raw.TenantID); ok {
		tid := int64(n)
		claims.TenantID = &tid
	}
	// Only a numeric exp counts; anything else leaves the token unbounded.
	if n, ok := number(raw.Exp); ok {
		claims.ExpiresAt = expiry(n)
	}
	return claims, nil
}

// expiry converts exp seconds to a time. Values past the int64 range never
// expire; values below it are already expired.
func expiry(n float64) *time.Time {
	if n >= math.MaxInt64 {
		return nil
	}
	if n <= math.MinInt64 {
		exp := time.Unix(0, 0)
		return &exp
	}
	sec, frac := math.Modf(n)
	exp := time.Unix(int64(sec), int64(frac*1e9))
	return &exp
}

// decodeSegment accepts both base64url and standard alphabets, padded or not.
func decodeSegment(seg string) ([]byte, error) {
	seg = strings.NewReplacer("+", "-", "/", "_").Replace(seg)
	seg = strings.TrimRight(seg, "=")
	return base64.RawURLEncoding.DecodeString(seg)
}

func stringOrNumber(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if n, ok := number(raw); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return ""
}

// number reports a JSON number. Absent and null values are not numbers.
func number(raw json.RawMessage) (float64, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var n *float64
	if err := json.Unmarshal(raw, &n); err != nil || n == nil {
		return 0, false
	}
	return *n, true
}
