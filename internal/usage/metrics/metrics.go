package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Recorded *prometheus.CounterVec
}

// New registers usage metrics with reg. A nil reg uses the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		Recorded: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "automatik_usage_logs_total",
			Help: "Usage log submissions by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) IncrementRecorded(outcome string) {
	m.Recorded.WithLabelValues(outcome).Inc()
}
