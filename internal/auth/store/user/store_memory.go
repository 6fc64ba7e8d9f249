package user

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"automatik/internal/auth/models"
	"automatik/internal/sentinel"
	id "automatik/pkg/domain"
)

// Error Contract:
// All store methods follow this error pattern:
// - Return sentinel.ErrNotFound when the requested user does not exist
// - Return wrapped errors with context for infrastructure failures
//
// InMemoryUserStore keeps users in memory for the demo environment and tests.
// Users carry a snapshot of their tenant taken at Upsert time.
type InMemoryUserStore struct {
	mu       sync.RWMutex
	nextID   id.UserID
	users    map[id.UserID]*models.User
	emailIdx map[string]id.UserID
}

// New constructs an empty in-memory user store.
func New() *InMemoryUserStore {
	return &InMemoryUserStore{
		users:    make(map[id.UserID]*models.User),
		emailIdx: make(map[string]id.UserID),
	}
}

// Upsert creates the user or, when the email is already taken, replaces the
// stored credentials, role, home path and tenant. The stored user is returned.
func (s *InMemoryUserStore) Upsert(_ context.Context, user *models.User) (*models.User, error) {
	if user == nil {
		return nil, fmt.Errorf("user is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	email := strings.ToLower(user.Email)
	stored := cloneUser(user)
	stored.Email = email
	if existingID, ok := s.emailIdx[email]; ok {
		stored.ID = existingID
	} else {
		s.nextID++
		stored.ID = s.nextID
		s.emailIdx[email] = stored.ID
	}
	s.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (s *InMemoryUserStore) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if user, ok := s.users[userID]; ok {
		return cloneUser(user), nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

// FindByEmail matches case-insensitively.
func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if userID, ok := s.emailIdx[strings.ToLower(strings.TrimSpace(email))]; ok {
		return cloneUser(s.users[userID]), nil
	}
	return nil, fmt.Errorf("user not found: %w", sentinel.ErrNotFound)
}

func (s *InMemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users), nil
}

func cloneUser(u *models.User) *models.User {
	c := *u
	if u.HomePath != nil {
		home := *u.HomePath
		c.HomePath = &home
	}
	if u.Tenant != nil {
		t := *u.Tenant
		c.Tenant = &t
	}
	return &c
}
