package repair

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/ahrav/go-conform/infrastructure/extract"
	"github.com/ahrav/go-conform/internal/domain"
	"github.com/ahrav/go-conform/internal/ports"
)

// DefaultMaxRepairs is the repair budget used when Options.MaxRepairs is
// not set explicitly. Two rounds rescue the vast majority of repairable
// responses; beyond that the configuration itself is usually at fault.
const DefaultMaxRepairs = 2

// noContentError is the synthetic error used when a response carries no
// parseable structured value at all. It stands in for field-level errors in
// the rescue prompt, since there is no parsed value to diagnose.
var noContentError = domain.FieldError{
	Path:    "$",
	Message: "no parseable structured content in the response",
}

// Func is the caller-supplied generation callback: one prompt in, the full
// accumulated text of one generation turn out. Implementations must never
// return a partial chunk. Transport and authentication failures are
// returned as errors and propagate out of the loop untouched; the loop
// retries only on structural invalidity.
type Func func(ctx context.Context, prompt string) (string, error)

// Options configures one validation-repair call.
type Options struct {
	// MaxRepairs is the hard ceiling on generation round-trips, inclusive
	// of the single rescue attempt made when the initial response has no
	// parseable content. Zero disables repair entirely.
	MaxRepairs int `validate:"min=0,max=10"`

	// OriginalPrompt is the prompt that produced the raw response. It is
	// prepended to every repair prompt so the backend regenerates against
	// the original task, not just the error list. May be empty.
	OriginalPrompt string

	// Metrics, when non-nil, receives counters for extraction strategies,
	// repair rounds, and terminal loop status.
	Metrics ports.MetricsCollector
}

// DefaultOptions returns Options with the default repair budget.
func DefaultOptions() Options {
	return Options{MaxRepairs: DefaultMaxRepairs}
}

// Package-level validator instance for option validation.
var validate = validator.New()

// ValidateAndRepair drives raw backend output to a schema-conformant value.
//
// The loop extracts a structured value from raw, validates it against sv,
// and while it remains invalid, feeds the current error list back through
// fn as a repair prompt, up to opts.MaxRepairs round-trips. An initial
// response with no parseable content at all gets exactly one rescue
// round-trip regardless of the remaining budget; a backend that cannot
// produce structure on a direct request is not worth burning the full
// budget on.
//
// The returned LoopResult is fully populated at termination and never
// mutated afterward. Data retains the last successfully parsed value even
// when Valid is false, so downstream callers can coerce defaults instead
// of discarding partial output.
//
// The error return is reserved for concerns outside the loop's contract:
// invalid arguments, transport failures from fn, and context cancellation.
// Structural nonconformance is never an error; it is expressed through
// LoopResult.Valid. Rounds are strictly sequential; each repair prompt is
// built from the immediately preceding round's errors only.
func ValidateAndRepair(
	ctx context.Context,
	raw string,
	sv ports.SchemaValidator,
	fn Func,
	opts Options,
) (domain.LoopResult, error) {
	if sv == nil {
		return domain.LoopResult{}, fmt.Errorf("schema validator cannot be nil")
	}
	if fn == nil && opts.MaxRepairs > 0 {
		return domain.LoopResult{}, fmt.Errorf("repair callback cannot be nil when repairs are enabled")
	}
	if err := validate.Struct(opts); err != nil {
		return domain.LoopResult{}, fmt.Errorf("invalid repair options: %w", err)
	}

	loop := &loopState{sv: sv, fn: fn, opts: opts, raw: raw}
	return loop.run(ctx)
}

// loopState carries the mutable state of one ValidateAndRepair call.
// It is created per call and discarded at termination; the loop shares
// nothing across calls.
type loopState struct {
	sv   ports.SchemaValidator
	fn   Func
	opts Options

	// raw is the backend text of the most recent round.
	raw string

	// attempts counts generation round-trips consumed so far.
	attempts int

	// best is the last successfully parsed value, valid or not.
	best any
}

func (l *loopState) run(ctx context.Context) (domain.LoopResult, error) {
	value, ok, err := l.extractInitial(ctx)
	if err != nil {
		return domain.LoopResult{}, err
	}
	if !ok {
		// Nothing parseable even after the rescue attempt. Terminate with
		// the budget deliberately not exhausted: this is the hard case the
		// single rescue round exists for.
		return l.terminate(false, nil, []string{noContentError.Error()}), nil
	}

	outcome := l.sv.Validate(value)
	if outcome.Valid {
		return l.terminate(true, value, nil), nil
	}
	l.best = value

	return l.repairLoop(ctx, outcome.Errors)
}

// extractInitial runs the EXTRACT_INITIAL stage: extract from the original
// response, and if nothing parses, spend exactly one rescue round-trip on a
// synthetic "no structured content" repair prompt.
func (l *loopState) extractInitial(ctx context.Context) (any, bool, error) {
	value, strategy, ok := extract.JSONWithStrategy(l.raw)
	l.countStrategy(strategy)
	if ok {
		return value, true, nil
	}
	if l.opts.MaxRepairs == 0 {
		return nil, false, nil
	}

	prompt := BuildPrompt(l.opts.OriginalPrompt, []domain.FieldError{noContentError}, l.sv)
	response, err := l.fn(ctx, prompt)
	if err != nil {
		return nil, false, err
	}
	l.attempts++
	l.raw = response

	value, strategy, ok = extract.JSONWithStrategy(response)
	l.countStrategy(strategy)
	return value, ok, nil
}

// repairLoop runs REPAIR_LOOP until the value validates or the budget is
// exhausted. Each round's prompt carries only that round's error list, and
// a round whose response fails extraction records a round-scoped error and
// continues rather than aborting.
func (l *loopState) repairLoop(ctx context.Context, errs []domain.FieldError) (domain.LoopResult, error) {
	current := errs

	for l.attempts < l.opts.MaxRepairs {
		prompt := BuildPrompt(l.opts.OriginalPrompt, current, l.sv)
		response, err := l.fn(ctx, prompt)
		if err != nil {
			return domain.LoopResult{}, err
		}
		l.attempts++
		l.raw = response
		l.countRound()

		value, strategy, ok := extract.JSONWithStrategy(response)
		l.countStrategy(strategy)
		if !ok {
			current = []domain.FieldError{noContentError}
			continue
		}

		outcome := l.sv.Validate(value)
		if outcome.Valid {
			return l.terminate(true, value, nil), nil
		}

		l.best = value
		current = outcome.Errors
	}

	return l.terminate(false, l.best, fieldErrorStrings(current)), nil
}

// terminate builds the final LoopResult and records terminal metrics.
func (l *loopState) terminate(valid bool, data any, errs []string) domain.LoopResult {
	result := domain.LoopResult{
		Valid:          valid,
		Data:           data,
		Errors:         errs,
		RawResponse:    l.raw,
		RepairAttempts: l.attempts,
	}

	if l.opts.Metrics != nil {
		status := "invalid"
		if valid {
			status = "valid"
		}
		l.opts.Metrics.RecordCounter("conform_loop_results_total", 1, map[string]string{"status": status})
		l.opts.Metrics.RecordHistogram("conform_repair_attempts", float64(l.attempts), nil)
	}

	return result
}

func (l *loopState) countStrategy(strategy extract.Strategy) {
	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordCounter("conform_extractions_total", 1,
			map[string]string{"strategy": string(strategy)})
	}
}

func (l *loopState) countRound() {
	if l.opts.Metrics != nil {
		l.opts.Metrics.RecordCounter("conform_repair_rounds_total", 1, nil)
	}
}

func fieldErrorStrings(errs []domain.FieldError) []string {
	if len(errs) == 0 {
		return nil
	}
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Error()
	}
	return out
}
