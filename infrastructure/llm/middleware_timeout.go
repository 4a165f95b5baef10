package llm

import (
	"context"
	"time"
)

// timeoutBackend bounds the wall-clock time of a single generation turn.
type timeoutBackend struct {
	next    Backend
	timeout time.Duration
}

// TimeoutMiddleware returns middleware that cancels requests that run
// longer than the given duration.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next Backend) Backend {
		return &timeoutBackend{next: next, timeout: timeout}
	}
}

// Generate executes the request under a deadline derived from the parent
// context.
func (t *timeoutBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, prompt, opts)
}

func (t *timeoutBackend) Model() string { return t.next.Model() }
