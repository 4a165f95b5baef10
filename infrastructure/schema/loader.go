package schema

import (
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/ahrav/go-conform/internal/domain"
)

// Definition is the YAML-facing shape of a schema. Callers that configure
// schemas outside code (the conformcheck CLI, orchestration config files)
// declare them in this form and compile them with Build.
//
// Example:
//
//	name: work_item
//	fields:
//	  - name: title
//	    type: string
//	    required: true
//	  - name: status
//	    type: enum
//	    required: true
//	    enum: [open, in_progress, done]
type Definition struct {
	// Name identifies the schema in errors and hints.
	Name string `yaml:"name" validate:"required"`

	// Fields lists the schema's field definitions.
	Fields []FieldDefinition `yaml:"fields" validate:"required,min=1,dive"`
}

// FieldDefinition is the YAML-facing shape of a single field.
type FieldDefinition struct {
	// Name is the field's key in the value tree.
	Name string `yaml:"name" validate:"required"`

	// Type is the field's type category.
	Type string `yaml:"type" validate:"required,oneof=string number bool string_list object enum"`

	// Required marks the field as mandatory.
	Required bool `yaml:"required"`

	// Enum lists allowed values for enum fields.
	Enum []string `yaml:"enum,omitempty"`

	// Fields declares the nested schema for object fields.
	Fields []FieldDefinition `yaml:"fields,omitempty" validate:"omitempty,dive"`
}

// Package-level validator for definition structs, matching the struct tags
// above. go-playground/validator v10 with tag-based validation.
var validate = validator.New()

// LoadDefinition parses and compiles a YAML schema definition from r.
func LoadDefinition(r io.Reader) (*domain.Schema, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema definition: %w", err)
	}
	return ParseDefinition(data)
}

// LoadDefinitionFile parses and compiles a YAML schema definition from a file.
func LoadDefinitionFile(path string) (*domain.Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open schema definition %s: %w", path, err)
	}
	defer f.Close()
	return LoadDefinition(f)
}

// ParseDefinition decodes a YAML schema definition and compiles it into a
// domain.Schema. Structural problems (unknown type categories, enum fields
// without values, duplicate names) are reported before compilation.
func ParseDefinition(data []byte) (*domain.Schema, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("failed to parse schema YAML: %w", err)
	}

	if err := validate.Struct(def); err != nil {
		return nil, fmt.Errorf("schema definition validation failed: %w", err)
	}

	return def.Build()
}

// Build compiles the definition into a domain.Schema.
func (d Definition) Build() (*domain.Schema, error) {
	fields, err := buildFields(d.Name, d.Fields)
	if err != nil {
		return nil, err
	}
	return domain.NewSchema(d.Name, fields...)
}

func buildFields(schemaName string, defs []FieldDefinition) ([]domain.Field, error) {
	fields := make([]domain.Field, 0, len(defs))
	for _, fd := range defs {
		field := domain.Field{
			Name:     fd.Name,
			Type:     domain.FieldType(fd.Type),
			Required: fd.Required,
			Enum:     fd.Enum,
		}

		if field.Type == domain.TypeObject && len(fd.Fields) > 0 {
			nestedFields, err := buildFields(schemaName+"."+fd.Name, fd.Fields)
			if err != nil {
				return nil, err
			}
			nested, err := domain.NewSchema(schemaName+"."+fd.Name, nestedFields...)
			if err != nil {
				return nil, domain.NewSchemaError(schemaName, fd.Name, err)
			}
			field.Nested = nested
		}

		fields = append(fields, field)
	}
	return fields, nil
}
