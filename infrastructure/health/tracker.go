// Package health tracks how often a generation configuration produces
// schema-valid output on the first attempt. Persistently weak
// configurations are flagged even when the repair loop usually rescues
// them, since every rescue costs a generation round-trip.
package health

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/ahrav/go-conform/internal/domain"
)

// Warning thresholds. Both parts must hold before a warning is emitted so
// a single unlucky call never flags a configuration.
const (
	// WarnMinCalls is the minimum number of recorded calls before a
	// configuration can be flagged.
	WarnMinCalls = 3

	// WarnFailureRatio is the first-pass failure ratio above which a
	// configuration is flagged.
	WarnFailureRatio = 0.30
)

// Key identifies one tracked generation configuration.
type Key struct {
	// Identity is the caller identity the calls were made for.
	Identity string

	// Provider is the generation backend provider.
	Provider string

	// Configuration distinguishes model/parameter combinations under one
	// provider, typically the model name.
	Configuration string
}

// String renders the key as identity/provider/configuration.
func (k Key) String() string {
	return k.Identity + "/" + k.Provider + "/" + k.Configuration
}

// Snapshot is a point-in-time copy of one configuration's counters.
type Snapshot struct {
	Key                Key
	TotalCalls         int64
	ValidationFailures int64
	RepairSuccesses    int64
}

// FailureRatio returns the first-pass failure ratio, or 0 with no calls.
func (s Snapshot) FailureRatio() float64 {
	if s.TotalCalls == 0 {
		return 0
	}
	return float64(s.ValidationFailures) / float64(s.TotalCalls)
}

// counters holds one configuration's counters. Increments are atomic and
// lock-free: different keys never interfere, and same-key concurrent
// recording needs no stronger guarantee because health is a soft
// diagnostic signal, not a correctness-critical count.
type counters struct {
	totalCalls         atomic.Int64
	validationFailures atomic.Int64
	repairSuccesses    atomic.Int64
}

// Tracker is an explicit, injectable registry of per-configuration health
// counters. The process composition root owns one Tracker and shares it
// across callers; there is no hidden package-level instance. Counters live
// for the process lifetime; persistence, if any, is external.
type Tracker struct {
	entries sync.Map // Key -> *counters
	metrics *Metrics
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithMetrics mirrors every recorded sample to Prometheus counters.
func WithMetrics(m *Metrics) Option {
	return func(t *Tracker) { t.metrics = m }
}

// NewTracker creates an empty Tracker.
func NewTracker(opts ...Option) *Tracker {
	t := &Tracker{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Record registers one completed loop call for the given configuration.
// firstPassValid must reflect pre-repair validity (LoopResult.FirstPassValid),
// not the final outcome: a configuration that always needs rescuing is
// exactly what this tracker exists to expose.
func (t *Tracker) Record(identity, provider, configuration string, firstPassValid bool) {
	key := Key{Identity: identity, Provider: provider, Configuration: configuration}
	c := t.countersFor(key)

	c.totalCalls.Add(1)
	if !firstPassValid {
		c.validationFailures.Add(1)
	}

	if t.metrics != nil {
		t.metrics.recordCall(key, firstPassValid)
	}
}

// RecordRepairSuccess registers that a call which failed first-pass
// validation was rescued by the repair loop.
func (t *Tracker) RecordRepairSuccess(identity, provider, configuration string) {
	key := Key{Identity: identity, Provider: provider, Configuration: configuration}
	t.countersFor(key).repairSuccesses.Add(1)

	if t.metrics != nil {
		t.metrics.recordRepairSuccess(key)
	}
}

// RecordResult derives both signals from a finished LoopResult: the
// first-pass sample always, and a repair success when the loop ended valid
// after at least one round-trip.
func (t *Tracker) RecordResult(identity, provider, configuration string, result domain.LoopResult) {
	t.Record(identity, provider, configuration, result.FirstPassValid())
	if result.Valid && result.RepairAttempts > 0 {
		t.RecordRepairSuccess(identity, provider, configuration)
	}
}

// ShouldWarn reports whether the (identity, provider) pair has a first-pass
// failure ratio above WarnFailureRatio across at least WarnMinCalls calls,
// aggregated over all configurations recorded under the pair. The warning
// text embeds the observed percentage.
func (t *Tracker) ShouldWarn(identity, provider string) (string, bool) {
	var total, failures int64
	t.entries.Range(func(k, v any) bool {
		key := k.(Key)
		if key.Identity == identity && key.Provider == provider {
			c := v.(*counters)
			total += c.totalCalls.Load()
			failures += c.validationFailures.Load()
		}
		return true
	})

	if total < WarnMinCalls {
		return "", false
	}

	ratio := float64(failures) / float64(total)
	if ratio <= WarnFailureRatio {
		return "", false
	}

	warning := fmt.Sprintf(
		"%s/%s failed first-pass validation on %.0f%% of %d calls (threshold %.0f%%); consider a different model or prompt",
		identity, provider, ratio*100, total, WarnFailureRatio*100)
	return warning, true
}

// Snapshots returns a copy of every tracked configuration's counters,
// sorted by key for deterministic output.
func (t *Tracker) Snapshots() []Snapshot {
	var snaps []Snapshot
	t.entries.Range(func(k, v any) bool {
		key := k.(Key)
		c := v.(*counters)
		snaps = append(snaps, Snapshot{
			Key:                key,
			TotalCalls:         c.totalCalls.Load(),
			ValidationFailures: c.validationFailures.Load(),
			RepairSuccesses:    c.repairSuccesses.Load(),
		})
		return true
	})

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Key.String() < snaps[j].Key.String()
	})
	return snaps
}

func (t *Tracker) countersFor(key Key) *counters {
	if v, ok := t.entries.Load(key); ok {
		return v.(*counters)
	}
	v, _ := t.entries.LoadOrStore(key, &counters{})
	return v.(*counters)
}
