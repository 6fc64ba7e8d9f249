package testutil

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	authmodels "automatik/internal/auth/models"
	tenantmodels "automatik/internal/tenant/models"
	id "automatik/pkg/domain"
)

// TestIDs provides fixed IDs for deterministic test data.
var TestIDs = struct {
	UserID1   id.UserID
	UserID2   id.UserID
	TenantID1 id.TenantID
	TenantID2 id.TenantID
}{
	UserID1:   101,
	UserID2:   102,
	TenantID1: 201,
	TenantID2: 202,
}

// HashPassword returns a bcrypt hash at the minimum cost so tests stay fast.
func HashPassword(plain string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return string(hash)
}

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *authmodels.User
}

// NewUserBuilder creates a tenant member of TestIDs.TenantID1 with password "secret".
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &authmodels.User{
			ID:           TestIDs.UserID1,
			Email:        "test@example.com",
			PasswordHash: HashPassword("secret"),
			Username:     "test",
			Role:         authmodels.RoleTenantMember,
			Tenant:       NewTenantBuilder().Build(),
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithPassword(plain string) *UserBuilder {
	b.user.PasswordHash = HashPassword(plain)
	return b
}

func (b *UserBuilder) WithRole(role authmodels.Role) *UserBuilder {
	b.user.Role = role
	return b
}

func (b *UserBuilder) WithHomePath(home string) *UserBuilder {
	b.user.HomePath = &home
	return b
}

func (b *UserBuilder) WithTenant(tenant *tenantmodels.Tenant) *UserBuilder {
	b.user.Tenant = tenant
	return b
}

// WithoutTenant also promotes the user to admin; members must have a tenant.
func (b *UserBuilder) WithoutTenant() *UserBuilder {
	b.user.Tenant = nil
	b.user.Role = authmodels.RoleAdmin
	return b
}

func (b *UserBuilder) Build() *authmodels.User {
	return b.user
}

// TenantBuilder provides a fluent interface for building test tenants.
type TenantBuilder struct {
	tenant *tenantmodels.Tenant
}

// NewTenantBuilder creates the "oguz" tenant with ID TestIDs.TenantID1.
func NewTenantBuilder() *TenantBuilder {
	now := time.Now()
	return &TenantBuilder{
		tenant: &tenantmodels.Tenant{
			ID:           TestIDs.TenantID1,
			Slug:         "oguz",
			Name:         "Oguz",
			RedirectPath: "/oguz",
			CreatedAt:    now,
			UpdatedAt:    now,
		},
	}
}

func (b *TenantBuilder) WithID(tenantID id.TenantID) *TenantBuilder {
	b.tenant.ID = tenantID
	return b
}

// WithSlug also points the redirect path at the slug.
func (b *TenantBuilder) WithSlug(slug string) *TenantBuilder {
	b.tenant.Slug = slug
	b.tenant.RedirectPath = "/" + slug
	return b
}

func (b *TenantBuilder) WithName(name string) *TenantBuilder {
	b.tenant.Name = name
	return b
}

func (b *TenantBuilder) WithRedirectPath(path string) *TenantBuilder {
	b.tenant.RedirectPath = path
	return b
}

func (b *TenantBuilder) Build() *tenantmodels.Tenant {
	return b.tenant
}
