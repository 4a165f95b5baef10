package domain

import (
	"errors"
	"fmt"
)

// Common domain errors that can occur during schema and validation operations.
var (
	// ErrNoStructuredContent indicates that no parseable structured value
	// could be recovered from a backend response.
	ErrNoStructuredContent = errors.New("no parseable structured content")

	// ErrNilSchema indicates that a validation operation received a nil schema.
	ErrNilSchema = errors.New("schema cannot be nil")

	// ErrInvalidConfiguration indicates that configuration is invalid or incomplete.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// SchemaError represents an error in a schema definition itself,
// as opposed to a value failing validation against a well-formed schema.
type SchemaError struct {
	// Schema is the name of the schema that is malformed.
	Schema string

	// Field is the field the error refers to, if any.
	Field string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for SchemaError.
func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema error: schema=%s, field=%s, err=%v", e.Schema, e.Field, e.Err)
	}
	return fmt.Sprintf("schema error: schema=%s, err=%v", e.Schema, e.Err)
}

// Unwrap returns the underlying error, supporting errors.Is and errors.As.
func (e *SchemaError) Unwrap() error { return e.Err }

// NewSchemaError creates a new SchemaError with the given details.
func NewSchemaError(schema, field string, err error) *SchemaError {
	return &SchemaError{Schema: schema, Field: field, Err: err}
}
