package guardrails

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemperatureFor(t *testing.T) {
	tests := []struct {
		name     string
		category TaskCategory
		expected float64
		known    bool
	}{
		{"requirements analysis is deterministic", TaskRequirementsAnalysis, 0.0, true},
		{"decomposition is near-deterministic", TaskWorkItemDecomposition, 0.1, true},
		{"classification is deterministic", TaskClassification, 0.0, true},
		{"summarization allows slight variance", TaskSummarization, 0.3, true},
		{"drafting allows variety", TaskFreeformDrafting, 0.7, true},
		{"unknown category falls back to default", TaskCategory("poetry"), DefaultTemperature, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			temp, ok := TemperatureFor(tt.category)
			assert.Equal(t, tt.expected, temp)
			assert.Equal(t, tt.known, ok)
		})
	}
}

func TestCategories_AllHaveTemperatures(t *testing.T) {
	for _, category := range Categories() {
		_, ok := TemperatureFor(category)
		assert.True(t, ok, "category %s missing from the guardrail table", category)
	}
}

// Structured categories must stay at or below the default; only freeform
// drafting may exceed it.
func TestTemperatureFor_StructuredCategoriesStayLow(t *testing.T) {
	for _, category := range Categories() {
		temp, _ := TemperatureFor(category)
		if category == TaskFreeformDrafting {
			assert.Greater(t, temp, DefaultTemperature)
			continue
		}
		assert.LessOrEqual(t, temp, 0.3)
	}
}
