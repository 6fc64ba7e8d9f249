package models

import (
	"regexp"
	"strings"
	"time"

	id "automatik/pkg/domain"
	dErrors "automatik/pkg/domain-errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

// Tenant is a customer organisation. Its slug is the first path segment of
// every tenant-scoped portal route.
type Tenant struct {
	ID           id.TenantID
	Slug         string
	Name         string
	RedirectPath string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewTenant validates and builds a tenant. An empty redirect path defaults to "/".
func NewTenant(slug, name, redirectPath string, now time.Time) (*Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	name = strings.TrimSpace(name)
	redirectPath = strings.TrimSpace(redirectPath)

	if !slugPattern.MatchString(slug) {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant slug must be lowercase letters, digits or dashes")
	}
	if name == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name cannot be empty")
	}
	if len(name) > 128 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "tenant name must be 128 characters or less")
	}
	if redirectPath == "" {
		redirectPath = "/"
	}
	if !strings.HasPrefix(redirectPath, "/") {
		redirectPath = "/" + redirectPath
	}
	return &Tenant{
		Slug:         slug,
		Name:         name,
		RedirectPath: redirectPath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// LandingPath is where an admin lands after picking this tenant: the
// redirect path when it points somewhere specific, otherwise "/<slug>".
func (t *Tenant) LandingPath() string {
	if t.RedirectPath != "" && t.RedirectPath != "/" {
		return t.RedirectPath
	}
	return "/" + t.Slug
}

// HasOwnRoute reports whether the tenant's portal pages live under
// "/<slug>". A tenant redirecting to the root has none.
func (t *Tenant) HasOwnRoute() bool {
	p := strings.ReplaceAll(strings.TrimSpace(t.RedirectPath), `\`, "/")
	return strings.Trim(p, "/") != ""
}
