package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Decisions *prometheus.CounterVec
}

// New registers guard metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		Decisions: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "automatik_guard_decisions_total",
			Help: "Portal navigation decisions by action",
		}, []string{"action"}),
	}
}

func (m *Metrics) IncrementDecision(action string) {
	m.Decisions.WithLabelValues(action).Inc()
}
