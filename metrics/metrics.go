// Package metrics exposes Prometheus collectors for the locomotion pipeline. A nil *Metrics is valid
// and records nothing, so components can be used without a registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "locomotion"

// Metrics holds the collectors recorded by the mediator and the transformer.
type Metrics struct {
	Transitions *prometheus.CounterVec
	Applied     *prometheus.CounterVec
	DrainDepth  prometheus.Histogram
}

// New creates the collectors and registers them with reg. If reg is nil, the collectors are created
// but not registered anywhere.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transitions_total",
			Help:      "Number of provider state transitions, by the state entered.",
		}, []string{"state"}),
		Applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transformations_applied_total",
			Help:      "Number of body transformations applied, by kind.",
		}, []string{"kind"}),
		DrainDepth: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "drain_depth",
			Help:      "Number of transformations applied per transformer tick.",
			Buckets:   []float64{0, 1, 2, 4, 8, 16, 32},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Transitions, m.Applied, m.DrainDepth)
	}
	return m
}

// ObserveTransition records a provider entering the state named.
func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(state).Inc()
}

// ObserveApplied records a transformation of the kind named being applied.
func (m *Metrics) ObserveApplied(kind string) {
	if m == nil {
		return
	}
	m.Applied.WithLabelValues(kind).Inc()
}

// ObserveDrain records the number of transformations applied in one drain.
func (m *Metrics) ObserveDrain(depth int) {
	if m == nil {
		return
	}
	m.DrainDepth.Observe(float64(depth))
}
