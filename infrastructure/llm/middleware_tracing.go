package llm

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// tracedBackend wraps each generation turn in an OpenTelemetry span.
type tracedBackend struct {
	next        Backend
	serviceName string
}

// TracingMiddleware returns middleware that emits a span per request with
// model, prompt size, and token usage attributes.
func TracingMiddleware(serviceName string) Middleware {
	return func(next Backend) Backend {
		return &tracedBackend{next: next, serviceName: serviceName}
	}
}

// Generate executes the request within a span named "llm.generate".
func (t *tracedBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	tracer := otel.Tracer(t.serviceName)
	ctx, span := tracer.Start(ctx, "llm.generate",
		trace.WithAttributes(
			attribute.String("service.name", t.serviceName),
			attribute.String("llm.model", t.next.Model()),
			attribute.Int("llm.prompt.length", len(prompt)),
		),
	)
	defer span.End()

	completion, err := t.next.Generate(ctx, prompt, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return completion, err
	}

	span.SetAttributes(
		attribute.Int("llm.tokens.input", completion.TokensIn),
		attribute.Int("llm.tokens.output", completion.TokensOut),
	)
	return completion, nil
}

func (t *tracedBackend) Model() string { return t.next.Model() }
