// Package guardrails maps task categories to sampling temperatures.
// Structured-extraction tasks need near-deterministic sampling or the
// repair loop spends its budget chasing creative formatting; drafting
// tasks tolerate more variance. Callers consult the table before invoking
// the generation backend and pass the temperature through the request
// options.
package guardrails

// TaskCategory classifies what a generation pass is asked to produce.
type TaskCategory string

// Known task categories.
const (
	// TaskRequirementsAnalysis extracts a structured requirements document
	// from source material.
	TaskRequirementsAnalysis TaskCategory = "requirements_analysis"

	// TaskWorkItemDecomposition breaks a requirement into structured work
	// items.
	TaskWorkItemDecomposition TaskCategory = "work_item_decomposition"

	// TaskClassification assigns values from closed enum sets.
	TaskClassification TaskCategory = "classification"

	// TaskSummarization condenses content into structured summaries.
	TaskSummarization TaskCategory = "summarization"

	// TaskFreeformDrafting produces narrative text where variety is wanted.
	TaskFreeformDrafting TaskCategory = "freeform_drafting"
)

// DefaultTemperature is returned for unknown categories: conservative
// enough for structured output without being fully deterministic.
const DefaultTemperature = 0.2

// temperatures is the static guardrail table. It is fixed at compile time;
// tuning happens here, not at call sites.
var temperatures = map[TaskCategory]float64{
	TaskRequirementsAnalysis:  0.0,
	TaskWorkItemDecomposition: 0.1,
	TaskClassification:        0.0,
	TaskSummarization:         0.3,
	TaskFreeformDrafting:      0.7,
}

// TemperatureFor returns the sampling temperature for a task category and
// whether the category is known. Unknown categories get
// DefaultTemperature with ok=false so callers can log the miss.
func TemperatureFor(category TaskCategory) (float64, bool) {
	if temp, ok := temperatures[category]; ok {
		return temp, true
	}
	return DefaultTemperature, false
}

// Categories returns every known task category.
func Categories() []TaskCategory {
	return []TaskCategory{
		TaskRequirementsAnalysis,
		TaskWorkItemDecomposition,
		TaskClassification,
		TaskSummarization,
		TaskFreeformDrafting,
	}
}
