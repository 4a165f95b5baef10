package llm

import (
	"context"
	"time"

	"github.com/ahrav/go-conform/internal/ports"
)

// metricsBackend records request latency, outcome, and token usage.
type metricsBackend struct {
	next      Backend
	collector ports.MetricsCollector
}

// MetricsMiddleware returns middleware that reports per-request metrics
// through the given collector. A nil collector disables recording without
// disturbing the chain.
func MetricsMiddleware(collector ports.MetricsCollector) Middleware {
	return func(next Backend) Backend {
		return &metricsBackend{next: next, collector: collector}
	}
}

// Generate forwards the request and records latency, request count, and
// token counters keyed by model and status.
func (m *metricsBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	start := time.Now()
	completion, err := m.next.Generate(ctx, prompt, opts)

	if m.collector == nil {
		return completion, err
	}

	labels := map[string]string{
		"model":  m.next.Model(),
		"status": "success",
	}
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			labels["status"] = "timeout"
		} else {
			labels["status"] = "error"
		}
	}

	m.collector.RecordHistogram("llm_latency_seconds", time.Since(start).Seconds(), labels)
	m.collector.RecordCounter("llm_requests_total", 1, labels)

	if err == nil {
		labels["token_type"] = "input"
		m.collector.RecordCounter("llm_tokens_total", float64(completion.TokensIn), labels)

		labels["token_type"] = "output"
		m.collector.RecordCounter("llm_tokens_total", float64(completion.TokensOut), labels)
	}

	return completion, err
}

func (m *metricsBackend) Model() string { return m.next.Model() }
