package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-conform/internal/domain"
)

func TestHint(t *testing.T) {
	s := workItemSchema(t)

	hint := Hint(s)

	expected := "blocked: bool\n" +
		"estimate: number\n" +
		"owner*: string\n" +
		"status: enum(open|in_progress|done)\n" +
		"tags: list of string\n" +
		"title*: string"
	assert.Equal(t, expected, hint)
}

func TestHint_NestedObject(t *testing.T) {
	nested, err := domain.NewSchema("doc.meta",
		domain.Field{Name: "author", Type: domain.TypeString, Required: true},
	)
	require.NoError(t, err)

	s, err := domain.NewSchema("doc",
		domain.Field{Name: "meta", Type: domain.TypeObject, Required: true, Nested: nested},
	)
	require.NoError(t, err)

	assert.Equal(t, "meta*: object{author*: string}", Hint(s))
}

func TestHint_Empty(t *testing.T) {
	assert.Equal(t, "", Hint(nil))

	s, err := domain.NewSchema("empty")
	require.NoError(t, err)
	assert.Equal(t, "", Hint(s))
}
