package guard

import "strings"

// RouteTable maps the first path segment of tenant pages to the tenant that
// owns them.
type RouteTable struct {
	tenants map[string]string
}

// NewRouteTable builds the table from the known tenant slugs. Empty slugs
// are ignored.
func NewRouteTable(slugs []string) *RouteTable {
	t := &RouteTable{tenants: make(map[string]string, len(slugs))}
	for _, slug := range slugs {
		if slug = strings.TrimSpace(slug); slug != "" {
			t.tenants[slug] = slug
		}
	}
	return t
}

// TenantFor returns the tenant required by path, if any.
func (t *RouteTable) TenantFor(path string) (string, bool) {
	if t == nil {
		return "", false
	}
	segment, _, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	tenant, ok := t.tenants[segment]
	return tenant, ok
}

// Len returns the number of tenant routes.
func (t *RouteTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.tenants)
}
