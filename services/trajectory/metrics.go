package trajectory

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registerer  prometheus.Registerer
	plans       prometheus.Counter
	planErrors  prometheus.Counter
	planSeconds prometheus.Histogram
	samples     prometheus.Histogram
}

// newMetrics builds the session collectors and registers them with reg when it is not nil.
func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		registerer: reg,
		plans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "armtraj",
			Name:      "plans_total",
			Help:      "Number of trajectories planned and committed.",
		}),
		planErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "armtraj",
			Name:      "plan_errors_total",
			Help:      "Number of plan requests rejected by the planner.",
		}),
		planSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "armtraj",
			Name:      "plan_duration_seconds",
			Help:      "Wall time spent computing a trajectory.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		samples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "armtraj",
			Name:      "plan_samples",
			Help:      "Number of samples per planned trajectory.",
			Buckets:   prometheus.ExponentialBuckets(4, 2, 12),
		}),
	}
	if reg == nil {
		return m, nil
	}
	collectors := m.collectors()
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			for _, registered := range collectors[:i] {
				reg.Unregister(registered)
			}
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.plans, m.planErrors, m.planSeconds, m.samples}
}

func (m *metrics) unregister() {
	if m.registerer == nil {
		return
	}
	for _, c := range m.collectors() {
		m.registerer.Unregister(c)
	}
}
