// Package metrics provides Prometheus-backed implementations of the
// engine's metrics port.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ahrav/go-conform/internal/ports"
)

// Compile-time verification that PrometheusCollector implements MetricsCollector.
var _ ports.MetricsCollector = (*PrometheusCollector)(nil)

// PrometheusCollector implements ports.MetricsCollector on Prometheus
// metric vectors. It routes the counter and histogram names emitted by the
// validation-repair loop and the generation client to dedicated vectors,
// with catch-all vectors for everything else.
type PrometheusCollector struct {
	loopResults    *prometheus.CounterVec
	extractions    *prometheus.CounterVec
	repairRounds   prometheus.Counter
	repairAttempts prometheus.Histogram

	llmRequests *prometheus.CounterVec
	llmTokens   *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec

	operationCounter *prometheus.CounterVec
	operationLatency *prometheus.HistogramVec
	systemGauges     *prometheus.GaugeVec
}

// NewPrometheusCollector registers the collector's metric vectors with the
// given registry. Pass prometheus.DefaultRegisterer for the global
// registry; a fresh registry keeps tests isolated.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		loopResults: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_loop_results_total",
				Help: "Validation-repair loop outcomes by final status.",
			},
			[]string{"status"},
		),
		extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_extractions_total",
				Help: "JSON extractions by winning strategy.",
			},
			[]string{"strategy"},
		),
		repairRounds: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conform_repair_rounds_total",
				Help: "Total repair rounds issued across all loops.",
			},
		),
		repairAttempts: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "conform_repair_attempts",
				Help:    "Repair attempts consumed per loop.",
				Buckets: []float64{0, 1, 2, 3, 5, 10},
			},
		),
		llmRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_requests_total",
				Help: "Generation requests by model and status.",
			},
			[]string{"model", "status"},
		),
		llmTokens: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "llm_tokens_total",
				Help: "Tokens consumed by model and direction.",
			},
			[]string{"model", "token_type"},
		),
		llmLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "llm_latency_seconds",
				Help:    "Generation request latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model", "status"},
		),
		operationCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conform_operations_total",
				Help: "Miscellaneous operation counts.",
			},
			[]string{"operation", "status"},
		),
		operationLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conform_operation_duration_seconds",
				Help:    "Miscellaneous operation latency.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		systemGauges: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "conform_system_state",
				Help: "Current system state values.",
			},
			[]string{"metric"},
		),
	}
}

// RecordLatency implements ports.MetricsCollector.
func (pc *PrometheusCollector) RecordLatency(operation string, duration time.Duration, labels map[string]string) {
	pc.operationLatency.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordCounter implements ports.MetricsCollector, routing known metric
// names to their dedicated vectors.
func (pc *PrometheusCollector) RecordCounter(metric string, value float64, labels map[string]string) {
	switch metric {
	case "conform_loop_results_total":
		pc.loopResults.WithLabelValues(labelOr(labels, "status")).Add(value)
	case "conform_extractions_total":
		pc.extractions.WithLabelValues(labelOr(labels, "strategy")).Add(value)
	case "conform_repair_rounds_total":
		pc.repairRounds.Add(value)
	case "llm_requests_total":
		pc.llmRequests.WithLabelValues(labelOr(labels, "model"), labelOr(labels, "status")).Add(value)
	case "llm_tokens_total":
		pc.llmTokens.WithLabelValues(labelOr(labels, "model"), labelOr(labels, "token_type")).Add(value)
	default:
		pc.operationCounter.WithLabelValues(metric, labelOr(labels, "status")).Add(value)
	}
}

// RecordGauge implements ports.MetricsCollector.
func (pc *PrometheusCollector) RecordGauge(metric string, value float64, labels map[string]string) {
	pc.systemGauges.WithLabelValues(metric).Set(value)
}

// RecordHistogram implements ports.MetricsCollector.
func (pc *PrometheusCollector) RecordHistogram(metric string, value float64, labels map[string]string) {
	switch metric {
	case "conform_repair_attempts":
		pc.repairAttempts.Observe(value)
	case "llm_latency_seconds":
		pc.llmLatency.WithLabelValues(labelOr(labels, "model"), labelOr(labels, "status")).Observe(value)
	default:
		pc.operationLatency.WithLabelValues(metric).Observe(value)
	}
}

func labelOr(labels map[string]string, key string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return "unknown"
}
