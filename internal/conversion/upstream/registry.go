package upstream

import (
	"context"
	"maps"
	"slices"
	"time"

	"automatik/pkg/platform/circuit"
)

// Registry holds one Client per tenant with a conversion service.
type Registry struct {
	clients map[string]*Client
}

// NewRegistry builds a client per slug=baseURL target. Each client gets its
// own circuit breaker.
func NewRegistry(targets map[string]string, opts ...Option) *Registry {
	r := &Registry{clients: make(map[string]*Client, len(targets))}
	for slug, base := range targets {
		clientOpts := append([]Option{
			WithBreaker(circuit.New("upstream-"+slug, circuit.WithCooldown(30*time.Second))),
		}, opts...)
		r.clients[slug] = NewClient(slug, base, clientOpts...)
	}
	return r
}

// Lookup returns the client for tenant.
func (r *Registry) Lookup(tenant string) (*Client, bool) {
	c, ok := r.clients[tenant]
	return c, ok
}

// Tenants returns the configured tenant slugs, sorted.
func (r *Registry) Tenants() []string {
	return slices.Sorted(maps.Keys(r.clients))
}

// Checks returns a readiness check per tenant keyed "upstream_<slug>".
func (r *Registry) Checks() map[string]func(context.Context) error {
	out := make(map[string]func(context.Context) error, len(r.clients))
	for slug, c := range r.clients {
		out["upstream_"+slug] = c.Ping
	}
	return out
}
