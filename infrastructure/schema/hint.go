package schema

import (
	"fmt"
	"strings"

	"github.com/ahrav/go-conform/internal/domain"
)

// Hint renders a compact field summary of the schema for embedding in repair
// prompts: one line per field as "name<marker>: type", where required fields
// carry a "*" marker. Hints consume prompt budget on every repair round, so
// the format stays terse; anything longer belongs in documentation, not in
// the prompt.
func Hint(s *domain.Schema) string {
	if s == nil || len(s.Fields) == 0 {
		return ""
	}

	var b strings.Builder
	for _, name := range s.FieldNames() {
		field := s.Fields[name]
		marker := ""
		if field.Required {
			marker = "*"
		}
		fmt.Fprintf(&b, "%s%s: %s\n", name, marker, describeType(field))
	}
	return strings.TrimRight(b.String(), "\n")
}

// describeType renders a field's type category for hints and error messages.
func describeType(field domain.Field) string {
	switch field.Type {
	case domain.TypeStringList:
		return "list of string"
	case domain.TypeEnum:
		return "enum(" + strings.Join(field.Enum, "|") + ")"
	case domain.TypeObject:
		if field.Nested != nil {
			inner := make([]string, 0, len(field.Nested.Fields))
			for _, name := range field.Nested.FieldNames() {
				nested := field.Nested.Fields[name]
				marker := ""
				if nested.Required {
					marker = "*"
				}
				inner = append(inner, name+marker+": "+describeType(nested))
			}
			return "object{" + strings.Join(inner, ", ") + "}"
		}
		return "object"
	default:
		return string(field.Type)
	}
}
