package tenant

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"automatik/internal/sentinel"
	"automatik/internal/tenant/models"
	id "automatik/pkg/domain"
)

// ErrNotFound is returned when a tenant is not found.
var ErrNotFound = sentinel.ErrNotFound

// InMemory stores tenants in memory for the demo environment and tests.
type InMemory struct {
	mu      sync.RWMutex
	nextID  id.TenantID
	tenants map[id.TenantID]*models.Tenant
	slugIdx map[string]id.TenantID
}

func NewInMemory() *InMemory {
	return &InMemory{
		tenants: make(map[id.TenantID]*models.Tenant),
		slugIdx: make(map[string]id.TenantID),
	}
}

// FindOrCreateBySlug returns the tenant with t.Slug, inserting t (and
// assigning its ID) when the slug is new. Existing tenants are not modified.
func (s *InMemory) FindOrCreateBySlug(_ context.Context, t *models.Tenant) (*models.Tenant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	slug := strings.ToLower(t.Slug)
	if existingID, ok := s.slugIdx[slug]; ok {
		return clone(s.tenants[existingID]), nil
	}
	s.nextID++
	stored := clone(t)
	stored.ID = s.nextID
	s.tenants[stored.ID] = stored
	s.slugIdx[slug] = stored.ID
	return clone(stored), nil
}

func (s *InMemory) FindByID(_ context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.tenants[tenantID]; ok {
		return clone(t), nil
	}
	return nil, ErrNotFound
}

func (s *InMemory) FindBySlug(_ context.Context, slug string) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tenantID, ok := s.slugIdx[strings.ToLower(slug)]; ok {
		return clone(s.tenants[tenantID]), nil
	}
	return nil, ErrNotFound
}

// ListByName returns every tenant ordered by name ascending, ties broken by ID.
func (s *InMemory) ListByName(_ context.Context) ([]*models.Tenant, error) {
	s.mu.RLock()
	out := make([]*models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, clone(t))
	}
	s.mu.RUnlock()

	slices.SortFunc(out, func(a, b *models.Tenant) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (s *InMemory) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tenants), nil
}

func clone(t *models.Tenant) *models.Tenant {
	c := *t
	return &c
}
