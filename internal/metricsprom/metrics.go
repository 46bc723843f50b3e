// Package metricsprom implements hooks.MetricsCollector on top of
// client_golang, the same way the reference HTTP layer instruments request
// counts and latencies.
package metricsprom

import (
	"github.com/konditional/konditional/internal/hooks"
	"github.com/prometheus/client_golang/prometheus"
)

var _ hooks.MetricsCollector = (*Collector)(nil)

// Collector is a hooks.MetricsCollector backed by four Prometheus vectors:
// evaluation outcomes by feature and decision kind, config loads by
// namespace, the loaded feature count by namespace (a gauge), and rollbacks
// by namespace and outcome.
type Collector struct {
	evaluations *prometheus.CounterVec
	loads       *prometheus.CounterVec
	loadedCount *prometheus.GaugeVec
	rollbacks   *prometheus.CounterVec
}

// New constructs a Collector with its own metric vectors. Call Register to
// add them to a registry (prometheus.DefaultRegisterer or a test-local one).
func New() *Collector {
	return &Collector{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konditional_evaluations_total",
			Help: "Total feature evaluations by feature key and decision kind.",
		}, []string{"feature", "decision"}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konditional_config_loads_total",
			Help: "Total successful configuration loads by namespace.",
		}, []string{"namespace"}),
		loadedCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "konditional_config_features",
			Help: "Number of features in a namespace's current configuration.",
		}, []string{"namespace"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "konditional_config_rollbacks_total",
			Help: "Total rollback attempts by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
	}
}

// Register adds every vector to reg.
func (c *Collector) Register(reg prometheus.Registerer) error {
	for _, coll := range []prometheus.Collector{c.evaluations, c.loads, c.loadedCount, c.rollbacks} {
		if err := reg.Register(coll); err != nil {
			return err
		}
	}
	return nil
}

// RecordEvaluation implements hooks.MetricsCollector.
func (c *Collector) RecordEvaluation(featureKey, decisionKind string) {
	c.evaluations.WithLabelValues(featureKey, decisionKind).Inc()
}

// RecordConfigLoad implements hooks.MetricsCollector.
func (c *Collector) RecordConfigLoad(namespace string, featureCount int) {
	c.loads.WithLabelValues(namespace).Inc()
	c.loadedCount.WithLabelValues(namespace).Set(float64(featureCount))
}

// RecordConfigRollback implements hooks.MetricsCollector.
func (c *Collector) RecordConfigRollback(namespace string, steps int, ok bool) {
	outcome := "failed"
	if ok {
		outcome = "ok"
	}
	_ = steps
	c.rollbacks.WithLabelValues(namespace, outcome).Inc()
}
