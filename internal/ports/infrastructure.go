// Package ports defines the interfaces that form the contract between the
// conformance engine and the infrastructure layer. These interfaces enable
// dependency inversion and make the engine testable without live backends.
package ports

import (
	"context"
	"time"
)

// GenerationClient defines the interface for the text-generation backend.
// Implementations handle provider-specific details like authentication,
// request formatting, and response assembly. A call represents exactly one
// generation turn and must return the full accumulated text, never a
// partial chunk.
type GenerationClient interface {
	// Complete sends a prompt to the generation backend and returns the
	// generated text. The options map carries provider-tunable parameters
	// without widening the interface. Common options:
	//   - "temperature": float64 (0.0-1.0)
	//   - "max_tokens": int
	//   - "model": string
	//
	// Transport and authentication failures are returned as errors; the
	// conformance engine never retries those, so implementations that want
	// transport-level resilience must layer it beneath this interface.
	Complete(ctx context.Context, prompt string, options map[string]any) (string, error)

	// EstimateTokens calculates the approximate token count for a given
	// text. Used for prompt-budget accounting when sizing repair prompts.
	EstimateTokens(text string) (int, error)

	// GetModel returns the model identifier being used by this client.
	// Health tracking uses it as part of the configuration key.
	GetModel() string
}

// MetricsCollector defines the interface for collecting operational metrics.
// Implementations should integrate with observability platforms like
// Prometheus or OpenTelemetry.
type MetricsCollector interface {
	// RecordLatency records the execution time of an operation.
	// The labels map provides additional context for the metric.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	// Useful for tracking events like extraction strategy hits and
	// repair-round counts.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets the current value of a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)

	// RecordHistogram records a value in a histogram, such as repair
	// attempts per call or response sizes.
	RecordHistogram(metric string, value float64, labels map[string]string)
}
