package models

import (
	"strings"

	tenantmodels "automatik/internal/tenant/models"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/validation"
)

// User is a portal account. Tenant is nil for admins that are not bound to
// a tenant.
type User struct {
	ID           id.UserID
	Email        string
	PasswordHash string
	Username     string
	Role         Role
	HomePath     *string
	Tenant       *tenantmodels.Tenant
}

// NewUser validates and builds a user. Email is stored lowercased.
func NewUser(email, passwordHash, username string, role Role, homePath *string, tenant *tenantmodels.Tenant) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)

	if email == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email cannot be empty")
	}
	if len(email) > validation.MaxEmailLength {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user email is too long")
	}
	if passwordHash == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user password hash cannot be empty")
	}
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "user name cannot be empty")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "unknown user role")
	}
	if role == RoleTenantMember && tenant == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant members must belong to a tenant")
	}

	return &User{
		Email:        email,
		PasswordHash: passwordHash,
		Username:     username,
		Role:         role,
		HomePath:     homePath,
		Tenant:       tenant,
	}, nil
}

// TenantID returns the ID of the user's tenant, or nil.
func (u *User) TenantID() *id.TenantID {
	if u.Tenant == nil {
		return nil
	}
	tid := u.Tenant.ID
	return &tid
}

// TenantSlug returns the slug of the user's tenant, or "".
func (u *User) TenantSlug() string {
	if u.Tenant == nil {
		return ""
	}
	return u.Tenant.Slug
}
