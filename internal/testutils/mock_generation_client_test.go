package testutils

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockGenerationClient_PatternMatching(t *testing.T) {
	client := NewMockGenerationClient("mock-model")
	client.AddResponse("work item", `{"title": "Fix login", "owner": "ana"}`)

	text, err := client.Complete(context.Background(), "Produce the work item as JSON.", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"title": "Fix login", "owner": "ana"}`, text)

	text, err = client.Complete(context.Background(), "unrelated prompt", nil)
	require.NoError(t, err)
	assert.Equal(t, `{"status": "ok"}`, text)

	assert.Equal(t, 2, client.CallCount())
	assert.Len(t, client.Prompts(), 2)
}

func TestMockGenerationClient_Script(t *testing.T) {
	client := NewMockGenerationClient("mock-model")
	client.Script("first", "second")

	for i, want := range []string{"first", "second", "second"} {
		text, err := client.Complete(context.Background(), "p", nil)
		require.NoError(t, err, "call %d", i)
		assert.Equal(t, want, text)
	}
}

func TestMockGenerationClient_Errors(t *testing.T) {
	client := NewMockGenerationClient("mock-model")

	_, err := client.Complete(context.Background(), "", nil)
	require.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Complete(ctx, "p", nil)
	require.ErrorIs(t, err, context.Canceled)

	boom := errors.New("boom")
	client.FailWith(boom)
	_, err = client.Complete(context.Background(), "p", nil)
	require.ErrorIs(t, err, boom)
}

func TestMockGenerationClient_EstimateTokens(t *testing.T) {
	client := NewMockGenerationClient("mock-model")

	count, err := client.EstimateTokens("")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	count, err = client.EstimateTokens("ab")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.Equal(t, "mock-model", client.GetModel())
}
