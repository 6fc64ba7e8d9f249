package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Calls        *prometheus.CounterVec
	CallDuration *prometheus.HistogramVec
	BreakerOpen  *prometheus.GaugeVec
}

// New registers conversion metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Calls: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "automatik_upstream_calls_total",
			Help: "Calls to conversion services by tenant, operation and status class",
		}, []string{"tenant", "operation", "status"}),
		CallDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "automatik_upstream_call_duration_seconds",
			Help:    "Latency of calls to conversion services",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"tenant", "operation"}),
		BreakerOpen: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "automatik_upstream_breaker_open",
			Help: "1 while the circuit breaker of a conversion service is open",
		}, []string{"tenant"}),
	}
}

func (m *Metrics) ObserveCall(tenant, operation, status string, seconds float64) {
	m.Calls.WithLabelValues(tenant, operation, status).Inc()
	m.CallDuration.WithLabelValues(tenant, operation).Observe(seconds)
}

func (m *Metrics) SetBreakerOpen(tenant string, open bool) {
	v := 0.0
	if open {
		v = 1
	}
	m.BreakerOpen.WithLabelValues(tenant).Set(v)
}
