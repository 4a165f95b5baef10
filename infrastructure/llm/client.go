// Package llm provides generation backend adapters for the conformance
// engine. It abstracts multiple providers (OpenAI, Anthropic, Google)
// behind a minimal Backend interface and composes cross-cutting concerns
// such as rate limiting, metrics, tracing, and timeouts through a
// middleware chain.
//
// Basic usage:
//
//	client, err := llm.NewClient("openai", llm.Config{
//	    APIKey: os.Getenv("OPENAI_API_KEY"),
//	    Model:  "gpt-4o-mini",
//	})
//	text, err := client.Complete(ctx, "Produce the work item as JSON.", nil)
//
// With middleware:
//
//	client, err := llm.NewClient("anthropic", llm.Config{
//	    APIKey: key,
//	    Model:  "claude-3-5-sonnet-20241022",
//	    Middleware: []llm.Middleware{
//	        llm.RateLimitMiddleware(10, 20),
//	        llm.MetricsMiddleware(collector),
//	    },
//	})
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/ahrav/go-conform/infrastructure/repair"
	"github.com/ahrav/go-conform/internal/ports"
)

// Completion is the result of one generation turn: the full accumulated
// text plus token usage when the provider reports it.
type Completion struct {
	// Text is the complete generated text, never a partial chunk.
	Text string

	// TokensIn is the prompt token count, estimated when the provider
	// omits usage data.
	TokensIn int

	// TokensOut is the completion token count, estimated when the
	// provider omits usage data.
	TokensOut int
}

// Backend is the minimal interface a provider must implement. Middleware
// wraps any conforming implementation, so providers stay free of
// cross-cutting concerns.
type Backend interface {
	// Generate sends one prompt and returns one full completion.
	// The opts map carries tunables such as "temperature" (float64),
	// "max_tokens" (int), "model" (string), and "system" (string).
	Generate(ctx context.Context, prompt string, opts map[string]any) (Completion, error)

	// Model returns the configured model identifier.
	Model() string
}

// Middleware wraps a Backend to add cross-cutting functionality.
type Middleware func(Backend) Backend

// Config holds the settings for creating a client.
type Config struct {
	// APIKey authenticates requests to the provider.
	APIKey string

	// Model selects the provider model.
	Model string

	// BaseURL overrides the provider's default endpoint. Optional.
	BaseURL string

	// Timeout bounds individual requests. Zero means no client-side
	// timeout.
	Timeout time.Duration

	// Middleware is applied in order, first entry outermost.
	Middleware []Middleware
}

// ProviderFactory creates a Backend from configuration. The registry keyed
// by provider name lets callers select providers by string without linking
// against provider types.
type ProviderFactory func(Config) (Backend, error)

var providerFactories = map[string]ProviderFactory{}

// RegisterProviderFactory registers a custom provider under a name.
// Built-in providers register themselves in init.
func RegisterProviderFactory(name string, factory ProviderFactory) {
	providerFactories[name] = factory
}

var _ ports.GenerationClient = (*Client)(nil)

// Client implements ports.GenerationClient over a middleware-wrapped
// Backend. It is safe for concurrent use when the underlying provider is.
type Client struct {
	backend   Backend
	estimator TokenEstimator
}

// NewClient creates a client for the named provider and assembles its
// middleware chain.
func NewClient(provider string, config Config) (*Client, error) {
	if config.APIKey == "" {
		return nil, ErrEmptyAPIKey
	}
	if config.Model == "" {
		return nil, fmt.Errorf("model is required")
	}

	factory, ok := providerFactories[provider]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, provider)
	}

	backend, err := factory(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", provider, err)
	}

	// Apply middleware in reverse order so the first entry is outermost.
	for i := len(config.Middleware) - 1; i >= 0; i-- {
		backend = config.Middleware[i](backend)
	}

	return &Client{backend: backend, estimator: charTokenEstimator{}}, nil
}

// NewClientFromBackend wraps an existing Backend, mainly for tests and
// custom providers.
func NewClientFromBackend(backend Backend, middleware ...Middleware) *Client {
	for i := len(middleware) - 1; i >= 0; i-- {
		backend = middleware[i](backend)
	}
	return &Client{backend: backend, estimator: charTokenEstimator{}}
}

// Complete implements ports.GenerationClient. It returns the full text of
// one generation turn and discards usage data.
func (c *Client) Complete(ctx context.Context, prompt string, options map[string]any) (string, error) {
	completion, err := c.backend.Generate(ctx, prompt, options)
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

// CompleteWithUsage returns the completion along with token usage for
// budget accounting.
func (c *Client) CompleteWithUsage(ctx context.Context, prompt string, options map[string]any) (Completion, error) {
	return c.backend.Generate(ctx, prompt, options)
}

// EstimateTokens implements ports.GenerationClient with a character-based
// heuristic.
func (c *Client) EstimateTokens(text string) (int, error) {
	return c.estimator.EstimateTokens(text), nil
}

// GetModel implements ports.GenerationClient.
func (c *Client) GetModel() string { return c.backend.Model() }

// RepairFunc adapts the client to the validation-repair loop's callback
// contract, binding the given request options to every repair round.
// Callers typically set the guardrail temperature for the task here.
func (c *Client) RepairFunc(options map[string]any) repair.Func {
	return func(ctx context.Context, prompt string) (string, error) {
		return c.Complete(ctx, prompt, options)
	}
}

// TokenEstimator approximates token counts when a provider tokenizer is
// unavailable.
type TokenEstimator interface {
	EstimateTokens(text string) int
}

// charTokenEstimator assumes roughly four characters per token, a workable
// approximation for English text.
type charTokenEstimator struct{}

func (charTokenEstimator) EstimateTokens(text string) int {
	return (len(text) + 3) / 4
}
