package seeder

import (
	"context"
	"fmt"
	"log/slog"

	authmodels "automatik/internal/auth/models"
	authservice "automatik/internal/auth/service"
	tenantmodels "automatik/internal/tenant/models"
)

// TenantProvisioner creates tenants that do not exist yet.
type TenantProvisioner interface {
	EnsureTenant(ctx context.Context, slug, name, redirectPath string) (*tenantmodels.Tenant, error)
}

// UserProvisioner creates or replaces accounts keyed by email.
type UserProvisioner interface {
	ProvisionUser(ctx context.Context, cmd *authservice.ProvisionUserCommand) (*authmodels.User, error)
}

// DemoTenant and DemoAccount describe the development data set.
type DemoTenant struct {
	Slug         string
	Name         string
	RedirectPath string
}

type DemoAccount struct {
	Username   string
	Email      string
	Password   string
	Role       string
	HomePath   string
	TenantSlug string
}

var DemoTenants = []DemoTenant{
	{Slug: "default", Name: "Default", RedirectPath: "/"},
	{Slug: "oguz", Name: "Oguz", RedirectPath: "/oguz"},
	{Slug: "oflaz", Name: "Oflaz", RedirectPath: "/oflaz"},
	{Slug: "klees", Name: "Klees", RedirectPath: "/klees"},
}

// DemoAccounts use well-known passwords and must never reach production.
var DemoAccounts = []DemoAccount{
	{Username: "adam", Email: "test@test.de", Password: "test2025", Role: "admin", HomePath: "/", TenantSlug: "default"},
	{Username: "oguz", Email: "ougz@test.de", Password: "oguz123", Role: "tenant-member", HomePath: "oguz", TenantSlug: "oguz"},
	{Username: "abdul", Email: "abdul@test.de", Password: "abdul123", Role: "tenant-member", HomePath: "oflaz", TenantSlug: "oflaz"},
	{Username: "barak", Email: "barak@test.de", Password: "barak2025", Role: "tenant-member", HomePath: "klees", TenantSlug: "klees"},
}

// Seeder populates the stores with demo data
type Seeder struct {
	tenants TenantProvisioner
	users   UserProvisioner
	logger  *slog.Logger
}

func New(tenants TenantProvisioner, users UserProvisioner, logger *slog.Logger) *Seeder {
	return &Seeder{tenants: tenants, users: users, logger: logger}
}

// SeedAll provisions every demo tenant and account. Running it twice leaves
// the same data behind.
func (s *Seeder) SeedAll(ctx context.Context) error {
	s.logger.Info("seeding demo data...")

	bySlug := make(map[string]*tenantmodels.Tenant, len(DemoTenants))
	for _, t := range DemoTenants {
		tenant, err := s.tenants.EnsureTenant(ctx, t.Slug, t.Name, t.RedirectPath)
		if err != nil {
			return fmt.Errorf("failed to seed tenant %s: %w", t.Slug, err)
		}
		bySlug[t.Slug] = tenant
	}

	for _, a := range DemoAccounts {
		home := a.HomePath
		_, err := s.users.ProvisionUser(ctx, &authservice.ProvisionUserCommand{
			Email:    a.Email,
			Password: a.Password,
			Username: a.Username,
			Role:     a.Role,
			HomePath: &home,
			Tenant:   bySlug[a.TenantSlug],
		})
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", a.Email, err)
		}
	}

	s.logger.Info("demo data seeded successfully",
		"tenants", len(DemoTenants),
		"users", len(DemoAccounts),
	)
	return nil
}
