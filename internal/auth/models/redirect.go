package models

import (
	"regexp"
	"strings"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

// NormalizePath canonicalizes a path-like value. Backslashes become forward
// slashes, runs of slashes collapse to one and a single leading slash is
// ensured. Nil, empty and whitespace-only input yields nil.
func NormalizePath(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	if v == "" {
		return nil
	}
	v = strings.ReplaceAll(v, `\`, "/")
	v = repeatedSlashes.ReplaceAllString(v, "/")
	if !strings.HasPrefix(v, "/") {
		v = "/" + v
	}
	return &v
}

// ResolveRedirect picks the post-login destination. The first matching rule wins:
//
//  1. an admin with a requested path goes there
//  2. a requested path inside the user's home path is honored
//  3. otherwise the home path, then the tenant redirect, then "/"
func ResolveRedirect(u *User, requested *string) string {
	req := NormalizePath(requested)
	home := NormalizePath(u.HomePath)

	if u.Role.IsAdmin() && req != nil {
		return *req
	}
	if req != nil && home != nil && strings.HasPrefix(*req, *home) {
		return *req
	}
	if home != nil {
		return *home
	}
	if u.Tenant != nil {
		if tenantRedirect := NormalizePath(&u.Tenant.RedirectPath); tenantRedirect != nil {
			return *tenantRedirect
		}
	}
	return "/"
}
