// Package domain defines the core value types of the conformance engine:
// schema descriptors, validation outcomes, and repair-loop results.
// Types in this package are plain values with no behavior beyond
// construction and inspection, keeping the domain layer free of
// infrastructure concerns.
package domain

import (
	"fmt"
	"sort"
	"strings"
)

// FieldType is the closed set of type categories a schema field may declare.
// Validation interprets these tags over the generic value tree produced by
// extraction; there is no reflection-based validation of caller structs.
type FieldType string

// Supported field type categories.
const (
	// TypeString accepts any string value.
	TypeString FieldType = "string"

	// TypeNumber accepts any numeric value. JSON decoding produces float64,
	// so integers and floats both satisfy this category.
	TypeNumber FieldType = "number"

	// TypeBool accepts true or false.
	TypeBool FieldType = "bool"

	// TypeStringList accepts a list whose elements are all strings.
	TypeStringList FieldType = "string_list"

	// TypeObject accepts a nested map validated against the field's
	// Nested schema, if one is declared.
	TypeObject FieldType = "object"

	// TypeEnum accepts a string drawn from the field's Enum values.
	TypeEnum FieldType = "enum"
)

// IsValid reports whether ft is one of the supported type categories.
func (ft FieldType) IsValid() bool {
	switch ft {
	case TypeString, TypeNumber, TypeBool, TypeStringList, TypeObject, TypeEnum:
		return true
	}
	return false
}

// Field describes a single named field of a schema: its type category,
// whether it must be present, and category-specific detail (enum values,
// nested schema).
type Field struct {
	// Name is the key the field is stored under in the value tree.
	Name string

	// Type is the field's type category.
	Type FieldType

	// Required marks the field as mandatory. Optional fields are validated
	// only when present.
	Required bool

	// Enum lists the allowed values for TypeEnum fields.
	// Ignored for other categories.
	Enum []string

	// Nested is the schema applied to TypeObject fields.
	// A nil Nested accepts any map value.
	Nested *Schema
}

// Schema is a declarative description of the fields a structured value must
// carry. It is immutable by convention: callers construct it once and share
// it read-only across validation calls.
type Schema struct {
	// Name identifies the schema in error messages and hints.
	Name string

	// Fields holds the field descriptors keyed by field name.
	Fields map[string]Field
}

// NewSchema builds a Schema from the given fields.
// Field names must be unique and non-empty; duplicate or invalid
// descriptors return an error naming the offending field.
func NewSchema(name string, fields ...Field) (*Schema, error) {
	s := &Schema{Name: name, Fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema %q: field name cannot be empty", name)
		}
		if !f.Type.IsValid() {
			return nil, fmt.Errorf("schema %q: field %q has unknown type %q", name, f.Name, f.Type)
		}
		if f.Type == TypeEnum && len(f.Enum) == 0 {
			return nil, fmt.Errorf("schema %q: enum field %q declares no values", name, f.Name)
		}
		if _, dup := s.Fields[f.Name]; dup {
			return nil, fmt.Errorf("schema %q: duplicate field %q", name, f.Name)
		}
		s.Fields[f.Name] = f
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Intended for package-level schema declarations in callers and tests.
func MustSchema(name string, fields ...Field) *Schema {
	s, err := NewSchema(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

// FieldNames returns the schema's field names in sorted order.
// Sorting keeps hints and error output deterministic.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.Fields))
	for name := range s.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// String returns a short human-readable description of the schema.
func (s *Schema) String() string {
	return fmt.Sprintf("schema %s (%d fields: %s)", s.Name, len(s.Fields), strings.Join(s.FieldNames(), ", "))
}
