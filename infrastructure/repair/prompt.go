// Package repair implements the validation-repair loop: the engine that
// turns unreliable generation backend output into schema-conformant values
// by round-tripping structural errors back through the backend a bounded
// number of times.
package repair

import (
	"strings"

	"github.com/ahrav/go-conform/internal/domain"
	"github.com/ahrav/go-conform/internal/ports"
)

// repairInstruction is the fixed template appended to every repair prompt.
// It forbids prose, fencing, and partial answers, and demands that every
// listed error be resolved in one response.
const repairInstruction = "Your previous response did not conform to the required structure. " +
	"Produce the complete JSON object again, correcting every error listed below. " +
	"Respond with only the JSON object: no explanations, no markdown fences, no partial answers."

// BuildPrompt combines the original prompt, the fixed repair instruction,
// the current round's errors, and the schema hint into a repair prompt.
// It is a pure function: no I/O, no state. Only the immediately preceding
// round's errors are included, never the accumulated history, so prompt
// size stays bounded across rounds.
func BuildPrompt(originalPrompt string, errs []domain.FieldError, sv ports.SchemaValidator) string {
	var b strings.Builder

	if originalPrompt != "" {
		b.WriteString(originalPrompt)
		b.WriteString("\n\n")
	}

	b.WriteString(repairInstruction)

	if len(errs) > 0 {
		b.WriteString("\n\nErrors to resolve:\n")
		for _, e := range errs {
			b.WriteString("- ")
			b.WriteString(e.Error())
			b.WriteString("\n")
		}
	}

	if hint := sv.Hint(); hint != "" {
		b.WriteString("\nExpected fields (\"*\" marks required):\n")
		b.WriteString(hint)
		b.WriteString("\n")
	}

	return b.String()
}
