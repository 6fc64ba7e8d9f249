package store

import (
	"context"
	"sync"

	"automatik/internal/usage/models"
	id "automatik/pkg/domain"
)

// InMemory keeps usage entries in process memory, in insertion order.
type InMemory struct {
	mu      sync.RWMutex
	entries []models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Create(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, *entry)
	return nil
}

// ListByTenant returns a tenant's entries, newest first.
func (s *InMemory) ListByTenant(_ context.Context, tenantID id.TenantID, limit int) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Entry
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].TenantID != tenantID {
			continue
		}
		e := s.entries[i]
		out = append(out, &e)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
