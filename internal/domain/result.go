package domain

import (
	"fmt"
	"strings"
)

// FieldError describes one structural violation found during validation.
// The path is dot-separated for nested fields ("parent.child"), and the
// message states what was expected.
type FieldError struct {
	// Path locates the offending field within the value tree.
	Path string `json:"path"`

	// Message explains the violation in terms the generation backend can
	// act on during a repair round.
	Message string `json:"message"`
}

// Error renders the field error as "path: message".
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Outcome is the result of validating a value against a schema.
// It is either valid with no errors, or invalid with at least one FieldError.
type Outcome struct {
	// Valid is true when every required field is present and every present
	// field matches its declared type category.
	Valid bool `json:"valid"`

	// Value is the value that was validated, returned for caller convenience.
	Value any `json:"value,omitempty"`

	// Errors lists the violations found. Empty when Valid.
	Errors []FieldError `json:"errors,omitempty"`
}

// ValidOutcome constructs an Outcome for a conformant value.
func ValidOutcome(value any) Outcome {
	return Outcome{Valid: true, Value: value}
}

// InvalidOutcome constructs an Outcome carrying the given violations.
func InvalidOutcome(value any, errs []FieldError) Outcome {
	return Outcome{Valid: false, Value: value, Errors: errs}
}

// ErrorStrings returns the outcome's errors rendered as plain strings,
// in the order they were recorded.
func (o Outcome) ErrorStrings() []string {
	if len(o.Errors) == 0 {
		return nil
	}
	msgs := make([]string, len(o.Errors))
	for i, e := range o.Errors {
		msgs[i] = e.Error()
	}
	return msgs
}

// LoopResult is the external contract of the validation-repair loop.
// It is fully populated once, at loop termination, and never mutated after.
type LoopResult struct {
	// Valid reports whether the final value conforms to the schema.
	Valid bool `json:"valid"`

	// Data holds the last successfully parsed value. It may be non-nil
	// even when Valid is false: the best-effort value from the final
	// round is retained so downstream callers can apply defaults instead
	// of discarding partial output. Nil only when nothing ever parsed.
	Data any `json:"data,omitempty"`

	// Errors lists the violations from the final round, rendered as strings.
	Errors []string `json:"errors,omitempty"`

	// RawResponse is the backend text of the final round, kept for
	// diagnostics and health recording.
	RawResponse string `json:"raw_response"`

	// RepairAttempts counts the generation round-trips consumed,
	// including the single rescue attempt for unparseable input.
	// Always within [0, max repairs].
	RepairAttempts int `json:"repair_attempts"`
}

// FirstPassValid reports whether the loop succeeded without any repair
// round-trips. This is the signal the health tracker records, so that
// configurations rescued by repair are still flagged as unreliable.
func (r LoopResult) FirstPassValid() bool {
	return r.Valid && r.RepairAttempts == 0
}

// Summary returns a one-line description of the result for diagnostics.
func (r LoopResult) Summary() string {
	if r.Valid {
		return fmt.Sprintf("valid after %d repair(s)", r.RepairAttempts)
	}
	return fmt.Sprintf("invalid after %d repair(s): %s", r.RepairAttempts, strings.Join(r.Errors, "; "))
}
