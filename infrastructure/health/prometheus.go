package health

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics mirrors tracker samples to Prometheus so fleet dashboards can
// watch first-pass validity by identity, provider, and configuration
// without scraping process-local state.
type Metrics struct {
	calls           *prometheus.CounterVec
	failures        *prometheus.CounterVec
	repairSuccesses *prometheus.CounterVec
}

// NewMetrics registers the health counters with the given registerer.
// Pass prometheus.DefaultRegisterer for the process-global registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	labels := []string{"identity", "provider", "configuration"}

	return &Metrics{
		calls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_health_calls_total",
				Help: "Total validation-repair loop calls recorded per generation configuration.",
			},
			labels,
		),
		failures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_health_first_pass_failures_total",
				Help: "Loop calls whose initial response failed schema validation before any repair.",
			},
			labels,
		),
		repairSuccesses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_health_repair_successes_total",
				Help: "Loop calls rescued to validity by at least one repair round.",
			},
			labels,
		),
	}
}

func (m *Metrics) recordCall(key Key, firstPassValid bool) {
	m.calls.WithLabelValues(key.Identity, key.Provider, key.Configuration).Inc()
	if !firstPassValid {
		m.failures.WithLabelValues(key.Identity, key.Provider, key.Configuration).Inc()
	}
}

func (m *Metrics) recordRepairSuccess(key Key) {
	m.repairSuccesses.WithLabelValues(key.Identity, key.Provider, key.Configuration).Inc()
}
