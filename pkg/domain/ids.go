// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"strconv"
	"strings"

	dErrors "automatik/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where TenantID is expected.
// Both are database-assigned sequence values.
type (
	UserID   int64
	TenantID int64
)

// Parse functions - use at trust boundaries (handlers, token claims).

func ParseUserID(s string) (UserID, error) {
	v, err := parseSerial(s, "user ID")
	return UserID(v), err
}

func ParseTenantID(s string) (TenantID, error) {
	v, err := parseSerial(s, "tenant ID")
	return TenantID(v), err
}

func (id UserID) String() string   { return strconv.FormatInt(int64(id), 10) }
func (id TenantID) String() string { return strconv.FormatInt(int64(id), 10) }

func (id UserID) IsNil() bool   { return id == 0 }
func (id TenantID) IsNil() bool { return id == 0 }

// parseSerial is the shared validation logic. Zero and negative values are
// rejected: sequences start at 1.
func parseSerial(s, label string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, dErrors.New(dErrors.CodeBadRequest, label+" cannot be empty")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "invalid "+label+" format")
	}
	return v, nil
}
