// Package schema implements the schema descriptor adapter: validation of
// generic value trees against a domain.Schema and rendering of compact
// schema hints for repair prompts.
//
// Validation is deliberately permissive on extra data and strict on required
// data: fields present in the value but absent from the schema are ignored,
// never flagged. The engine exists to tolerate verbose model output, so this
// tolerance must not be tightened to strict validation.
package schema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ahrav/go-conform/internal/domain"
	"github.com/ahrav/go-conform/internal/ports"
)

var _ ports.SchemaValidator = (*Adapter)(nil)

// Adapter binds a domain.Schema to the ports.SchemaValidator contract
// consumed by the validation-repair loop. It holds a reference to the
// schema, never a copy; the schema is owned by the caller and must not be
// mutated while validation calls are in flight.
type Adapter struct {
	schema *domain.Schema
}

// NewAdapter creates an Adapter for the given schema.
func NewAdapter(s *domain.Schema) (*Adapter, error) {
	if s == nil {
		return nil, domain.ErrNilSchema
	}
	return &Adapter{schema: s}, nil
}

// Schema returns the wrapped schema.
func (a *Adapter) Schema() *domain.Schema { return a.schema }

// Validate checks value against the adapter's schema.
// It implements ports.SchemaValidator and is deterministic: identical
// inputs always produce identical outcomes, with errors ordered by field
// name.
func (a *Adapter) Validate(value any) domain.Outcome {
	return Validate(value, a.schema)
}

// Hint implements ports.SchemaValidator by rendering the wrapped schema.
func (a *Adapter) Hint() string { return Hint(a.schema) }

// Validate checks a generic value tree against a schema and returns the
// outcome. A valid outcome means every required field is present and every
// present field matches its declared type category. Extra fields are
// ignored. The value is never mutated.
func Validate(value any, s *domain.Schema) domain.Outcome {
	if s == nil {
		return domain.InvalidOutcome(value, []domain.FieldError{
			{Path: "$", Message: "no schema to validate against"},
		})
	}

	errs := validateObject(value, s, "")
	if len(errs) > 0 {
		return domain.InvalidOutcome(value, errs)
	}
	return domain.ValidOutcome(value)
}

// validateObject validates value as an object conforming to s.
// The prefix is the dot-separated path of the enclosing field, empty at the
// top level.
func validateObject(value any, s *domain.Schema, prefix string) []domain.FieldError {
	obj, ok := value.(map[string]any)
	if !ok {
		return []domain.FieldError{{
			Path:    pathOr(prefix, "$"),
			Message: fmt.Sprintf("expected an object, got %s", typeName(value)),
		}}
	}

	var errs []domain.FieldError

	// Iterate fields in sorted order so repeated validations of the same
	// value agree error-for-error.
	for _, name := range s.FieldNames() {
		field := s.Fields[name]
		path := joinPath(prefix, name)

		raw, present := obj[name]
		if !present {
			if field.Required {
				errs = append(errs, missingFieldError(path, field, obj, s))
			}
			continue
		}

		errs = append(errs, validateField(raw, field, path)...)
	}

	return errs
}

// validateField checks a present value against its field descriptor.
func validateField(value any, field domain.Field, path string) []domain.FieldError {
	switch field.Type {
	case domain.TypeString:
		if _, ok := value.(string); !ok {
			return typeError(path, "a string", value)
		}

	case domain.TypeNumber:
		if !isNumber(value) {
			return typeError(path, "a number", value)
		}

	case domain.TypeBool:
		if _, ok := value.(bool); !ok {
			return typeError(path, "a boolean", value)
		}

	case domain.TypeStringList:
		return validateStringList(value, path)

	case domain.TypeObject:
		if field.Nested != nil {
			return validateObject(value, field.Nested, path)
		}
		if _, ok := value.(map[string]any); !ok {
			return typeError(path, "an object", value)
		}

	case domain.TypeEnum:
		return validateEnum(value, field, path)
	}

	return nil
}

// validateStringList checks that value is a list whose elements are all
// strings. A native []string is accepted alongside the []any that JSON
// decoding produces.
func validateStringList(value any, path string) []domain.FieldError {
	switch list := value.(type) {
	case []string:
		return nil
	case []any:
		for i, elem := range list {
			if _, ok := elem.(string); !ok {
				return []domain.FieldError{{
					Path:    fmt.Sprintf("%s[%d]", path, i),
					Message: fmt.Sprintf("expected a string element, got %s", typeName(elem)),
				}}
			}
		}
		return nil
	default:
		return typeError(path, "a list of strings", value)
	}
}

// validateEnum checks that value is a string drawn from the field's
// allowed set. On mismatch the error lists the allowed values so a repair
// round can correct it without guessing.
func validateEnum(value any, field domain.Field, path string) []domain.FieldError {
	str, ok := value.(string)
	if !ok {
		return typeError(path, fmt.Sprintf("one of [%s]", strings.Join(field.Enum, ", ")), value)
	}

	for _, allowed := range field.Enum {
		if str == allowed {
			return nil
		}
	}

	msg := fmt.Sprintf("value %q is not one of [%s]", str, strings.Join(field.Enum, ", "))
	if suggestion, found := closestMatch(str, field.Enum); found {
		msg += fmt.Sprintf(" (did you mean %q?)", suggestion)
	}
	return []domain.FieldError{{Path: path, Message: msg}}
}

// missingFieldError builds the error for an absent required field.
// When the value carries an extra key with a name close to the missing
// field, the message mentions it; backends frequently emit the right data
// under a slightly wrong key, and naming the near-miss makes the repair
// prompt actionable. This is message enrichment only: the near-miss key is
// never accepted in place of the declared one.
func missingFieldError(path string, field domain.Field, obj map[string]any, s *domain.Schema) domain.FieldError {
	msg := fmt.Sprintf("missing required field (%s)", describeType(field))

	extras := extraKeys(obj, s)
	if suggestion, found := closestMatch(field.Name, extras); found {
		msg += fmt.Sprintf("; found similar field %q", suggestion)
	}

	return domain.FieldError{Path: path, Message: msg}
}

// extraKeys returns the keys present in obj but absent from s, sorted.
func extraKeys(obj map[string]any, s *domain.Schema) []string {
	var extras []string
	for key := range obj {
		if _, declared := s.Fields[key]; !declared {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	return extras
}

func typeError(path, expected string, value any) []domain.FieldError {
	return []domain.FieldError{{
		Path:    path,
		Message: fmt.Sprintf("expected %s, got %s", expected, typeName(value)),
	}}
}

// isNumber reports whether value is numeric. JSON decoding produces
// float64, but caller-constructed values may carry native integer types.
func isNumber(value any) bool {
	switch value.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// typeName renders a value's type for error messages in JSON vocabulary
// rather than Go vocabulary, since the repair prompt is read by the
// generation backend.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case map[string]any:
		return "an object"
	case []any, []string:
		return "a list"
	default:
		if isNumber(value) {
			return "a number"
		}
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func pathOr(path, fallback string) string {
	if path == "" {
		return fallback
	}
	return path
}
