package schema

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-conform/internal/domain"
)

const workItemYAML = `
name: work_item
fields:
  - name: title
    type: string
    required: true
  - name: status
    type: enum
    required: true
    enum: [open, in_progress, done]
  - name: tags
    type: string_list
  - name: assignee
    type: object
    required: true
    fields:
      - name: name
        type: string
        required: true
`

func TestParseDefinition(t *testing.T) {
	s, err := ParseDefinition([]byte(workItemYAML))
	require.NoError(t, err)

	assert.Equal(t, "work_item", s.Name)
	assert.Equal(t, []string{"assignee", "status", "tags", "title"}, s.FieldNames())

	title := s.Fields["title"]
	assert.Equal(t, domain.TypeString, title.Type)
	assert.True(t, title.Required)

	status := s.Fields["status"]
	assert.Equal(t, domain.TypeEnum, status.Type)
	assert.Equal(t, []string{"open", "in_progress", "done"}, status.Enum)

	assignee := s.Fields["assignee"]
	require.NotNil(t, assignee.Nested)
	assert.Equal(t, []string{"name"}, assignee.Nested.FieldNames())
	assert.True(t, assignee.Nested.Fields["name"].Required)
}

func TestParseDefinition_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{
			name: "not yaml",
			yaml: "{{{{",
		},
		{
			name: "missing schema name",
			yaml: "fields:\n  - name: title\n    type: string\n",
		},
		{
			name: "no fields",
			yaml: "name: empty\n",
		},
		{
			name: "unknown type category",
			yaml: "name: s\nfields:\n  - name: f\n    type: uuid\n",
		},
		{
			name: "enum without values",
			yaml: "name: s\nfields:\n  - name: f\n    type: enum\n",
		},
		{
			name: "duplicate field names",
			yaml: "name: s\nfields:\n  - name: f\n    type: string\n  - name: f\n    type: number\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDefinition([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadDefinition_Reader(t *testing.T) {
	s, err := LoadDefinition(strings.NewReader(workItemYAML))
	require.NoError(t, err)
	assert.Equal(t, "work_item", s.Name)
}

// A loaded schema must validate values identically to one constructed in
// code with the same fields.
func TestLoadDefinition_RoundTrip(t *testing.T) {
	s, err := ParseDefinition([]byte(workItemYAML))
	require.NoError(t, err)

	outcome := Validate(map[string]any{
		"title":    "Ship parser",
		"status":   "open",
		"assignee": map[string]any{"name": "dana"},
	}, s)
	assert.True(t, outcome.Valid)

	outcome = Validate(map[string]any{"title": "Ship parser", "status": "later"}, s)
	require.False(t, outcome.Valid)

	paths := make([]string, 0, len(outcome.Errors))
	for _, fe := range outcome.Errors {
		paths = append(paths, fe.Path)
	}
	assert.Equal(t, []string{"assignee", "status"}, paths)
}
