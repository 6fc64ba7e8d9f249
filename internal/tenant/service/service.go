package service

import (
	"context"
	"errors"
	"log/slog"

	authmodels "automatik/internal/auth/models"
	"automatik/internal/sentinel"
	tenantmetrics "automatik/internal/tenant/metrics"
	"automatik/internal/tenant/models"
	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
	"automatik/pkg/requestcontext"
)

type TenantStore interface {
	FindOrCreateBySlug(ctx context.Context, tenant *models.Tenant) (*models.Tenant, error)
	FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error)
	FindBySlug(ctx context.Context, slug string) (*models.Tenant, error)
	ListByName(ctx context.Context) ([]*models.Tenant, error)
}

// UserStore looks up the caller. Directory access is decided on the stored
// role, not the role carried in the assertion.
type UserStore interface {
	FindByID(ctx context.Context, userID id.UserID) (*authmodels.User, error)
}

// Service serves the tenant directory and tenant lookups.
type Service struct {
	tenants TenantStore
	users   UserStore
	logger  *slog.Logger
	metrics *tenantmetrics.Metrics
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *tenantmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(tenants TenantStore, users UserStore, opts ...Option) *Service {
	s := &Service{tenants: tenants, users: users}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTenants returns every tenant ordered by name. Only callers whose stored
// role is admin may list; a caller missing from the store is forbidden.
func (s *Service) ListTenants(ctx context.Context, ident requestcontext.Identity) ([]*models.Tenant, error) {
	user, err := s.users.FindByID(ctx, ident.UserID)
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.incrementListing(tenantmetrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load caller")
	}
	if user == nil || !user.Role.IsAdmin() {
		s.incrementListing(tenantmetrics.OutcomeForbidden)
		s.logAudit(ctx, "tenant_directory_denied", "user_id", ident.UserID.String())
		return nil, dErrors.New(dErrors.CodeForbidden, "Forbidden")
	}

	tenants, err := s.tenants.ListByName(ctx)
	if err != nil {
		s.incrementListing(tenantmetrics.OutcomeError)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	s.incrementListing(tenantmetrics.OutcomeListed)
	return tenants, nil
}

// ResolveSlug maps a URL slug to its tenant ID.
func (s *Service) ResolveSlug(ctx context.Context, slug string) (id.TenantID, error) {
	t, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return 0, err
	}
	return t.ID, nil
}

func (s *Service) GetBySlug(ctx context.Context, slug string) (*models.Tenant, error) {
	t, err := s.tenants.FindBySlug(ctx, slug)
	if err != nil {
		return nil, wrapTenantErr(err, "failed to load tenant")
	}
	return t, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	if tenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant ID required")
	}
	t, err := s.tenants.FindByID(ctx, tenantID)
	if err != nil {
		return nil, wrapTenantErr(err, "failed to load tenant")
	}
	return t, nil
}

// RouteSlugs lists, in name order, the slugs of tenants that own a portal
// route. Tenants redirecting to the root are left out.
func (s *Service) RouteSlugs(ctx context.Context) ([]string, error) {
	tenants, err := s.tenants.ListByName(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list tenants")
	}
	slugs := make([]string, 0, len(tenants))
	for _, t := range tenants {
		if t.HasOwnRoute() {
			slugs = append(slugs, t.Slug)
		}
	}
	return slugs, nil
}

// EnsureTenant creates the tenant unless its slug exists. Existing tenants are
// returned unchanged.
func (s *Service) EnsureTenant(ctx context.Context, slug, name, redirectPath string) (*models.Tenant, error) {
	t, err := models.NewTenant(slug, name, redirectPath, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	_, lookupErr := s.tenants.FindBySlug(ctx, t.Slug)
	stored, err := s.tenants.FindOrCreateBySlug(ctx, t)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to provision tenant")
	}
	if errors.Is(lookupErr, sentinel.ErrNotFound) {
		s.logAudit(ctx, "tenant_provisioned", "tenant_id", stored.ID.String(), "tenant_slug", stored.Slug)
		s.incrementProvisioned()
	}
	return stored, nil
}

func wrapTenantErr(err error, msg string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "tenant not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, msg)
}
