package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for directory listings.
const (
	OutcomeListed    = "listed"
	OutcomeForbidden = "forbidden"
	OutcomeError     = "error"
)

type Metrics struct {
	TenantListings     *prometheus.CounterVec
	TenantsProvisioned prometheus.Counter
}

// New registers tenant metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		TenantListings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automatik_tenant_listings_total",
			Help: "Tenant directory requests by outcome",
		}, []string{"outcome"}),
		TenantsProvisioned: factory.NewCounter(prometheus.CounterOpts{
			Name: "automatik_tenants_provisioned_total",
			Help: "Tenants created by provisioning or seeding",
		}),
	}
}

func (m *Metrics) IncrementListing(outcome string) {
	m.TenantListings.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncrementProvisioned() {
	m.TenantsProvisioned.Inc()
}
