package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcome labels.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeValidation         = "validation_error"
	OutcomeError              = "error"
)

// Metrics holds Prometheus collectors for auth operations.
type Metrics struct {
	Logins           *prometheus.CounterVec
	LoginDuration    prometheus.Histogram
	UsersProvisioned prometheus.Counter
}

// New registers auth collectors with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automatik_logins_total",
			Help: "Login attempts by outcome",
		}, []string{"outcome"}),
		LoginDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "automatik_login_duration_seconds",
			Help:    "Duration of login requests, dominated by password verification",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
		UsersProvisioned: factory.NewCounter(prometheus.CounterOpts{
			Name: "automatik_users_provisioned_total",
			Help: "Users created or updated by provisioning",
		}),
	}
}

func (m *Metrics) IncrementLogin(outcome string) {
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLogin(start time.Time) {
	m.LoginDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncrementProvisioned() {
	m.UsersProvisioned.Inc()
}
