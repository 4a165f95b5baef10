package llm

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"
)

// rateLimitedBackend paces requests with a token bucket so repair loops
// cannot burst past provider rate limits.
type rateLimitedBackend struct {
	next    Backend
	limiter *rate.Limiter
}

// RateLimitMiddleware returns middleware that enforces a sustained request
// rate with an allowance for short bursts. All requests through the wrapped
// backend share one bucket.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)

	return func(next Backend) Backend {
		return &rateLimitedBackend{next: next, limiter: limiter}
	}
}

// Generate blocks until a token is available, then forwards the request.
func (r *rateLimitedBackend) Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Completion{}, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Generate(ctx, prompt, opts)
}

func (r *rateLimitedBackend) Model() string { return r.next.Model() }
