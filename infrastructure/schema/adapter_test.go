package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-conform/internal/domain"
)

func workItemSchema(t *testing.T) *domain.Schema {
	t.Helper()
	s, err := domain.NewSchema("work_item",
		domain.Field{Name: "title", Type: domain.TypeString, Required: true},
		domain.Field{Name: "owner", Type: domain.TypeString, Required: true},
		domain.Field{Name: "estimate", Type: domain.TypeNumber},
		domain.Field{Name: "blocked", Type: domain.TypeBool},
		domain.Field{Name: "tags", Type: domain.TypeStringList},
		domain.Field{Name: "status", Type: domain.TypeEnum, Enum: []string{"open", "in_progress", "done"}},
	)
	require.NoError(t, err)
	return s
}

func TestValidate(t *testing.T) {
	s := workItemSchema(t)

	tests := []struct {
		name          string
		value         any
		expectValid   bool
		expectedPaths []string
	}{
		{
			name: "conformant value with all fields",
			value: map[string]any{
				"title":    "Ship parser",
				"owner":    "dana",
				"estimate": float64(3),
				"blocked":  false,
				"tags":     []any{"backend", "parser"},
				"status":   "open",
			},
			expectValid: true,
		},
		{
			name:        "conformant value with only required fields",
			value:       map[string]any{"title": "Ship parser", "owner": "dana"},
			expectValid: true,
		},
		{
			name: "extra fields are ignored",
			value: map[string]any{
				"title":      "Ship parser",
				"owner":      "dana",
				"confidence": 0.9,
				"narrative":  "I did my best!",
			},
			expectValid: true,
		},
		{
			name:          "missing required field yields exactly one error",
			value:         map[string]any{"title": "Ship parser"},
			expectValid:   false,
			expectedPaths: []string{"owner"},
		},
		{
			name:          "multiple missing required fields",
			value:         map[string]any{"tags": []any{"x"}},
			expectValid:   false,
			expectedPaths: []string{"owner", "title"},
		},
		{
			name:          "wrong type for present field",
			value:         map[string]any{"title": 42, "owner": "dana"},
			expectValid:   false,
			expectedPaths: []string{"title"},
		},
		{
			name:          "wrong element type in string list",
			value:         map[string]any{"title": "t", "owner": "o", "tags": []any{"ok", 7}},
			expectValid:   false,
			expectedPaths: []string{"tags[1]"},
		},
		{
			name:          "enum value outside allowed set",
			value:         map[string]any{"title": "t", "owner": "o", "status": "closed"},
			expectValid:   false,
			expectedPaths: []string{"status"},
		},
		{
			name:          "non-object top level",
			value:         []any{"a", "b"},
			expectValid:   false,
			expectedPaths: []string{"$"},
		},
		{
			name:          "nil value",
			value:         nil,
			expectValid:   false,
			expectedPaths: []string{"$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Validate(tt.value, s)
			assert.Equal(t, tt.expectValid, outcome.Valid)
			assert.Equal(t, tt.value, outcome.Value)

			var paths []string
			for _, fe := range outcome.Errors {
				paths = append(paths, fe.Path)
			}
			assert.Equal(t, tt.expectedPaths, paths)
		})
	}
}

func TestValidate_Deterministic(t *testing.T) {
	s := workItemSchema(t)
	value := map[string]any{"estimate": "three", "blocked": "yes"}

	first := Validate(value, s)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Validate(value, s))
	}
}

func TestValidate_NestedObjectPaths(t *testing.T) {
	nested, err := domain.NewSchema("work_item.assignee",
		domain.Field{Name: "name", Type: domain.TypeString, Required: true},
		domain.Field{Name: "team", Type: domain.TypeString},
	)
	require.NoError(t, err)

	s, err := domain.NewSchema("work_item",
		domain.Field{Name: "title", Type: domain.TypeString, Required: true},
		domain.Field{Name: "assignee", Type: domain.TypeObject, Required: true, Nested: nested},
	)
	require.NoError(t, err)

	outcome := Validate(map[string]any{
		"title":    "t",
		"assignee": map[string]any{"team": "infra"},
	}, s)

	require.False(t, outcome.Valid)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "assignee.name", outcome.Errors[0].Path)
}

func TestValidate_SimilarFieldHint(t *testing.T) {
	s := workItemSchema(t)

	outcome := Validate(map[string]any{"title": "t", "Owners": "dana"}, s)

	require.False(t, outcome.Valid)
	require.Len(t, outcome.Errors, 1)
	assert.Equal(t, "owner", outcome.Errors[0].Path)
	assert.Contains(t, outcome.Errors[0].Message, `found similar field "Owners"`)
}

func TestValidate_EnumSuggestion(t *testing.T) {
	s := workItemSchema(t)

	outcome := Validate(map[string]any{"title": "t", "owner": "o", "status": "Done"}, s)

	require.False(t, outcome.Valid)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0].Message, `did you mean "done"?`)
}

func TestAdapter_ImplementsSchemaValidator(t *testing.T) {
	s := workItemSchema(t)
	adapter, err := NewAdapter(s)
	require.NoError(t, err)

	outcome := adapter.Validate(map[string]any{"title": "t", "owner": "o"})
	assert.True(t, outcome.Valid)

	assert.Equal(t, Hint(s), adapter.Hint())
	assert.Same(t, s, adapter.Schema())
}

func TestNewAdapter_NilSchema(t *testing.T) {
	_, err := NewAdapter(nil)
	assert.ErrorIs(t, err, domain.ErrNilSchema)
}
