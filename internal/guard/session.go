package guard

import (
	"encoding/json"
	"sync"
)

// Storage keys shared with the portal frontend.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Storage is the client-held key/value store backing a Session.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
}

// CachedUser is the part of the login user summary the guard reads.
type CachedUser struct {
	Role   string        `json:"role"`
	Tenant *CachedTenant `json:"tenant"`
}

type CachedTenant struct {
	Slug string `json:"slug"`
}

// TenantSlug returns the user's tenant slug, or "".
func (u *CachedUser) TenantSlug() string {
	if u == nil || u.Tenant == nil {
		return ""
	}
	return u.Tenant.Slug
}

// Session owns the token and user entries of a Storage. They are only ever
// written or removed together.
type Session struct {
	storage Storage
}

func NewSession(storage Storage) *Session {
	return &Session{storage: storage}
}

// Set stores the token together with the user summary as returned by login.
func (s *Session) Set(token string, user any) error {
	encoded, err := json.Marshal(user)
	if err != nil {
		return err
	}
	s.storage.Set(KeyToken, token)
	s.storage.Set(KeyUser, string(encoded))
	return nil
}

// Clear removes both entries.
func (s *Session) Clear() {
	s.storage.Delete(KeyToken)
	s.storage.Delete(KeyUser)
}

func (s *Session) Token() (string, bool) {
	token, ok := s.storage.Get(KeyToken)
	return token, ok && token != ""
}

// User decodes the cached user summary. A missing or unreadable entry yields nil.
func (s *Session) User() *CachedUser {
	raw, ok := s.storage.Get(KeyUser)
	if !ok || raw == "" {
		return nil
	}
	var u CachedUser
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	return &u
}

// MemoryStorage is a Storage held in process memory.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

func (m *MemoryStorage) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MemoryStorage) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *MemoryStorage) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}
