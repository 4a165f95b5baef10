package repair

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ahrav/go-conform/internal/domain"
	"github.com/ahrav/go-conform/internal/ports"
)

// DefaultBatchConcurrency limits concurrent loop calls in a batch when the
// caller does not set one, so a large batch cannot flood the backend.
const DefaultBatchConcurrency = 5

// BatchItem pairs one raw backend response with the schema it must satisfy.
type BatchItem struct {
	// Raw is the backend response to validate and repair.
	Raw string

	// Validator judges the item. Items in one batch may target different
	// schemas.
	Validator ports.SchemaValidator

	// OriginalPrompt is the prompt that produced Raw. May be empty.
	OriginalPrompt string
}

// ValidateAndRepairBatch runs independent validation-repair loops over the
// items concurrently. Individual loops remain strictly sequential inside;
// the batch only parallelizes across items, which share nothing with each
// other. Results are returned in item order.
//
// maxConcurrency bounds in-flight loops; values below one fall back to
// DefaultBatchConcurrency. A transport failure in any loop cancels the
// remaining work and is returned, matching the single-call contract that
// transport errors propagate uncaught.
func ValidateAndRepairBatch(
	ctx context.Context,
	items []BatchItem,
	fn Func,
	opts Options,
	maxConcurrency int,
) ([]domain.LoopResult, error) {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultBatchConcurrency
	}

	results := make([]domain.LoopResult, len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrency)

	for i, item := range items {
		g.Go(func() error {
			itemOpts := opts
			itemOpts.OriginalPrompt = item.OriginalPrompt

			result, err := ValidateAndRepair(gctx, item.Raw, item.Validator, fn, itemOpts)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
