// Package metrics exposes prometheus counters for transaction operations.
package metrics

import (
	// External Packages
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	outcomes *prometheus.CounterVec
	dead     prometheus.Counter
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer in
// the binary and a fresh registry in tests.
func New(namespace string, reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transaction_operations_total",
			Help:      "Operations applied to transactions, by operation and result.",
		}, []string{"operation", "result"}),
		dead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dead_letters_total",
			Help:      "Command items sent to the dead-letter queue.",
		}),
	}
	for _, c := range []prometheus.Collector{m.outcomes, m.dead} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ObserveOutcome(operation, result string) {
	m.outcomes.WithLabelValues(operation, result).Inc()
}

func (m *Metrics) ObserveDeadLetters(n int) {
	m.dead.Add(float64(n))
}
