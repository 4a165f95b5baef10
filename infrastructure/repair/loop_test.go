package repair

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahrav/go-conform/infrastructure/schema"
	"github.com/ahrav/go-conform/internal/domain"
)

func titleOwnerValidator(t *testing.T) *schema.Adapter {
	t.Helper()
	s, err := domain.NewSchema("doc",
		domain.Field{Name: "title", Type: domain.TypeString, Required: true},
		domain.Field{Name: "owner", Type: domain.TypeString, Required: true},
	)
	require.NoError(t, err)

	adapter, err := schema.NewAdapter(s)
	require.NoError(t, err)
	return adapter
}

// scriptedCallback returns canned responses in order, repeating the last one
// once the script is exhausted, and counts invocations.
func scriptedCallback(calls *int, responses ...string) Func {
	return func(ctx context.Context, prompt string) (string, error) {
		idx := *calls
		*calls++
		if idx >= len(responses) {
			idx = len(responses) - 1
		}
		return responses[idx], nil
	}
}

func TestValidateAndRepair_FirstAttemptValid(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls, "should never be used")

	result, err := ValidateAndRepair(context.Background(),
		`{"title": "X", "owner": "Y"}`, sv, fn, DefaultOptions())
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 0, result.RepairAttempts)
	assert.Equal(t, map[string]any{"title": "X", "owner": "Y"}, result.Data)
	assert.Empty(t, result.Errors)
	assert.True(t, result.FirstPassValid())
	assert.Equal(t, 0, calls, "callback must not be invoked when first attempt is valid")
}

// Scenario: fenced JSON with prose, one missing required field, repaired in
// a single round.
func TestValidateAndRepair_OneRepairRound(t *testing.T) {
	sv := titleOwnerValidator(t)
	raw := "Sure! Here is the JSON:\n```json\n{\"title\": \"X\"}\n```\nLet me know!"

	calls := 0
	var seenPrompt string
	fn := func(ctx context.Context, prompt string) (string, error) {
		calls++
		seenPrompt = prompt
		return `{"title": "X", "owner": "Y"}`, nil
	}

	result, err := ValidateAndRepair(context.Background(), raw, sv, fn,
		Options{MaxRepairs: 2, OriginalPrompt: "Produce the document record."})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.RepairAttempts)
	assert.Equal(t, 1, calls)
	assert.False(t, result.FirstPassValid())
	assert.Equal(t, map[string]any{"title": "X", "owner": "Y"}, result.Data)

	// The repair prompt carries the original prompt, the owner error, and
	// the schema hint.
	assert.Contains(t, seenPrompt, "Produce the document record.")
	assert.Contains(t, seenPrompt, "owner: missing required field")
	assert.Contains(t, seenPrompt, "owner*: string")
}

// Scenario: unparseable initial response gets exactly one rescue attempt,
// never the full budget.
func TestValidateAndRepair_UnparseableInitialResponse(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls, "still not json at all")

	result, err := ValidateAndRepair(context.Background(),
		"not json at all", sv, fn, Options{MaxRepairs: 2})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Nil(t, result.Data)
	assert.Equal(t, 1, result.RepairAttempts)
	assert.Equal(t, 1, calls)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "no parseable structured content")
}

func TestValidateAndRepair_RescueAttemptCanSucceed(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls, `{"title": "X", "owner": "Y"}`)

	result, err := ValidateAndRepair(context.Background(),
		"no structure here", sv, fn, Options{MaxRepairs: 2})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.RepairAttempts)
	assert.False(t, result.FirstPassValid())
}

func TestValidateAndRepair_BudgetExhausted(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	// Every repair round returns a parseable but still-invalid value.
	fn := scriptedCallback(&calls, `{"title": "X", "draft": true}`)

	result, err := ValidateAndRepair(context.Background(),
		`{"owner": 7}`, sv, fn, Options{MaxRepairs: 3})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 3, result.RepairAttempts)
	assert.Equal(t, 3, calls)

	// Data holds the best-effort value from the final round even though it
	// is invalid.
	assert.Equal(t, map[string]any{"title": "X", "draft": true}, result.Data)

	// Errors reflect the final round only: owner is still missing, but the
	// initial owner-type error is gone.
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "owner: missing required field")
}

func TestValidateAndRepair_GarbageRepairRoundsContinue(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls,
		"garbage round one",
		`{"title": "X", "owner": "Y"}`,
	)

	result, err := ValidateAndRepair(context.Background(),
		`{"title": "X"}`, sv, fn, Options{MaxRepairs: 2})
	require.NoError(t, err)

	// The garbage round records a round-scoped error and continues rather
	// than aborting early.
	assert.True(t, result.Valid)
	assert.Equal(t, 2, result.RepairAttempts)
	assert.Equal(t, 2, calls)
}

func TestValidateAndRepair_GarbageRoundsKeepEarlierBestEffort(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls, "never json")

	result, err := ValidateAndRepair(context.Background(),
		`{"title": "X"}`, sv, fn, Options{MaxRepairs: 2})
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 2, result.RepairAttempts)
	// The initial parse survives as the best-effort value across failed
	// extraction rounds.
	assert.Equal(t, map[string]any{"title": "X"}, result.Data)
}

func TestValidateAndRepair_ZeroBudget(t *testing.T) {
	sv := titleOwnerValidator(t)

	tests := []struct {
		name       string
		raw        string
		expectData any
	}{
		{
			name:       "invalid value terminates immediately",
			raw:        `{"title": "X"}`,
			expectData: map[string]any{"title": "X"},
		},
		{
			name:       "unparseable input terminates immediately",
			raw:        "not json",
			expectData: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateAndRepair(context.Background(),
				tt.raw, sv, nil, Options{MaxRepairs: 0})
			require.NoError(t, err)

			assert.False(t, result.Valid)
			assert.Equal(t, 0, result.RepairAttempts)
			assert.Equal(t, tt.expectData, result.Data)
			assert.NotEmpty(t, result.Errors)
		})
	}
}

func TestValidateAndRepair_TransportErrorPropagates(t *testing.T) {
	sv := titleOwnerValidator(t)
	transportErr := errors.New("connection reset")

	fn := func(ctx context.Context, prompt string) (string, error) {
		return "", transportErr
	}

	_, err := ValidateAndRepair(context.Background(),
		`{"title": "X"}`, sv, fn, Options{MaxRepairs: 2})
	assert.ErrorIs(t, err, transportErr)
}

func TestValidateAndRepair_ContextCancellation(t *testing.T) {
	sv := titleOwnerValidator(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fn := func(ctx context.Context, prompt string) (string, error) {
		return "", ctx.Err()
	}

	_, err := ValidateAndRepair(ctx, `{"title": "X"}`, sv, fn, Options{MaxRepairs: 2})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestValidateAndRepair_InvalidArguments(t *testing.T) {
	sv := titleOwnerValidator(t)
	fn := func(ctx context.Context, prompt string) (string, error) { return "", nil }

	t.Run("nil validator", func(t *testing.T) {
		_, err := ValidateAndRepair(context.Background(), "{}", nil, fn, DefaultOptions())
		assert.Error(t, err)
	})

	t.Run("nil callback with repairs enabled", func(t *testing.T) {
		_, err := ValidateAndRepair(context.Background(), "{}", sv, nil, DefaultOptions())
		assert.Error(t, err)
	})

	t.Run("negative budget", func(t *testing.T) {
		_, err := ValidateAndRepair(context.Background(), "{}", sv, fn, Options{MaxRepairs: -1})
		assert.Error(t, err)
	})
}

// Attempts stay within [0, MaxRepairs] across a spread of behaviors.
func TestValidateAndRepair_AttemptBounds(t *testing.T) {
	sv := titleOwnerValidator(t)

	behaviors := map[string]Func{
		"always garbage": func(ctx context.Context, prompt string) (string, error) {
			return "garbage", nil
		},
		"always invalid json": func(ctx context.Context, prompt string) (string, error) {
			return `{"noise": 1}`, nil
		},
		"always valid": func(ctx context.Context, prompt string) (string, error) {
			return `{"title": "X", "owner": "Y"}`, nil
		},
	}

	inputs := []string{`{"title": "X"}`, "not json", `{"title": "X", "owner": "Y"}`}

	for name, fn := range behaviors {
		for _, raw := range inputs {
			for _, budget := range []int{0, 1, 2, 4} {
				opts := Options{MaxRepairs: budget}
				var result domain.LoopResult
				var err error
				if budget == 0 {
					result, err = ValidateAndRepair(context.Background(), raw, sv, nil, opts)
				} else {
					result, err = ValidateAndRepair(context.Background(), raw, sv, fn, opts)
				}
				require.NoError(t, err, "%s raw=%q budget=%d", name, raw, budget)
				assert.GreaterOrEqual(t, result.RepairAttempts, 0)
				assert.LessOrEqual(t, result.RepairAttempts, budget,
					"%s raw=%q budget=%d", name, raw, budget)
			}
		}
	}
}

// A callback whose responses always re-validate terminates the loop after
// at most one round regardless of the budget.
func TestValidateAndRepair_PerfectCallbackTerminatesEarly(t *testing.T) {
	sv := titleOwnerValidator(t)

	calls := 0
	fn := scriptedCallback(&calls, `{"title": "X", "owner": "Y"}`)

	result, err := ValidateAndRepair(context.Background(),
		`{"title": "X"}`, sv, fn, Options{MaxRepairs: 10})
	require.NoError(t, err)

	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.RepairAttempts)
	assert.Equal(t, 1, calls)
}

func TestValidateAndRepair_RawResponseTracksFinalRound(t *testing.T) {
	sv := titleOwnerValidator(t)

	final := `{"title": "X", "owner": "Y"}`
	calls := 0
	fn := scriptedCallback(&calls, final)

	result, err := ValidateAndRepair(context.Background(),
		`{"title": "X"}`, sv, fn, Options{MaxRepairs: 2})
	require.NoError(t, err)

	assert.Equal(t, final, result.RawResponse)
	assert.True(t, strings.Contains(result.RawResponse, "owner"))
}
