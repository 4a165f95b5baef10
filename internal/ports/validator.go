package ports

import (
	"github.com/ahrav/go-conform/internal/domain"
)

// SchemaValidator is the engine's view of a schema: something that can judge
// whether a value satisfies it and describe itself compactly for repair
// prompts. The validation-repair loop is schema-agnostic beyond this
// contract, so callers may bring their own descriptor implementations.
type SchemaValidator interface {
	// Validate checks value against the schema and returns the outcome.
	// It must be deterministic: identical inputs always yield identical
	// outcomes. Implementations must not mutate value.
	Validate(value any) domain.Outcome

	// Hint renders a compact, one-line-per-field description of the schema
	// suitable for embedding in a repair prompt. Hint output consumes
	// prompt budget, so implementations should keep it terse.
	Hint() string
}
