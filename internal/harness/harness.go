package harness

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/roach88/adt/internal/config"
	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/metrics"
	"github.com/roach88/adt/internal/testutil"
)

// RunIDGenerator produces run identifiers.
type RunIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run identifiers.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 string. Panics if the system random source
// fails.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Option configures Run.
type Option func(*Harness)

// WithConfig supplies container defaults.
func WithConfig(cfg config.Config) Option {
	return func(h *Harness) {
		h.cfg = cfg
	}
}

// WithLogger sets the logger passed to the container and used for step
// logging.
func WithLogger(logger *zap.Logger) Option {
	return func(h *Harness) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithRunIDGenerator replaces the UUIDv7 run identifiers.
func WithRunIDGenerator(g RunIDGenerator) Option {
	return func(h *Harness) {
		if g != nil {
			h.runIDs = g
		}
	}
}

// WithGoldenDir compares each run's trace snapshot with
// dir/{scenario.Name}.golden; a mismatch fails the run. With update set the
// file is rewritten instead.
func WithGoldenDir(dir string, update bool) Option {
	return func(h *Harness) {
		h.goldenDir = dir
		h.updateGolden = update
	}
}

// Harness executes one scenario against a fresh container.
type Harness struct {
	cfg          config.Config
	seq          *testutil.Sequence
	runIDs       RunIDGenerator
	logger       *zap.Logger
	driver       driver
	goldenDir    string
	updateGolden bool
}

// Run executes a scenario and returns its result.
//
// Execution flow:
//  1. Build the container from config defaults, snapshot and options
//  2. Execute setup steps
//  3. Execute flow steps, checking expect clauses
//  4. Capture the final snapshot and gauges
//  5. Evaluate assertions and, if configured, the golden file
//
// The error is non-nil only when the scenario cannot run at all: the
// container cannot be built, or a step has malformed args. Failed
// expectations are reported in the result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	h := &Harness{
		cfg:    config.Default(),
		seq:    testutil.NewSequence(),
		runIDs: UUIDv7Generator{},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	if scenario.RunID != "" {
		h.runIDs = testutil.NewFixedRunID(scenario.RunID)
	}

	runID := h.runIDs.Generate()
	h.logger = h.logger.With(zap.String("run_id", runID), zap.String("scenario", scenario.Name))

	d, err := newDriver(scenario, h.cfg, h.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", scenario.Container, err)
	}
	h.driver = d

	collector := metrics.NewCollector("adt")
	d.register(collector, scenario.Name)
	registry := prometheus.NewRegistry()
	if err := registry.Register(collector); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	result := NewResult()
	result.RunID = runID

	if err := h.executeSteps("setup", scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeSteps("flow", scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	snap, err := d.snapshot()
	if err != nil {
		return nil, fmt.Errorf("failed to capture final state: %w", err)
	}
	if final, isMap := ir.ToAny(snap).(map[string]any); isMap {
		result.State = final
	}

	samples, err := metrics.Gather(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}
	result.Metrics = samples

	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	if h.goldenDir != "" {
		if err := CheckGoldenFile(h.goldenDir, scenario, result, h.updateGolden); err != nil {
			result.AddError(err.Error())
		}
	}

	h.logger.Info("scenario finished",
		zap.Bool("pass", result.Pass),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

// executeSteps runs steps in order. Each step produces an invocation and a
// completion event; a completion that contradicts the step's expect clause
// is recorded as an error and execution continues.
func (h *Harness) executeSteps(phase string, steps []Step, result *Result) error {
	for i, step := range steps {
		result.AddInvocationTrace(step.Op, step.Args, h.seq.Next())

		out, err := h.driver.apply(step.Op, step.Args)
		if err != nil {
			return fmt.Errorf("%s step %d (%s): %w", phase, i, step.Op, err)
		}
		result.AddCompletionTrace(out.Case, out.Result, h.seq.Next())

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, out) {
				result.AddError(fmt.Sprintf("%s[%d] %s: %s", phase, i, step.Op, msg))
			}
		}

		h.logger.Debug("step completed",
			zap.String("phase", phase),
			zap.Int("step", i),
			zap.String("op", step.Op),
			zap.String("output_case", out.Case),
		)
	}
	return nil
}

// checkExpect compares a completion with an expect clause. The result is a
// subset match.
func checkExpect(expect *ExpectClause, out outcome) []string {
	var msgs []string
	if expect.Case != out.Case {
		msgs = append(msgs, fmt.Sprintf("expected case %q, got %q", expect.Case, out.Case))
	}
	for _, key := range sortedKeys(expect.Result) {
		actual, found := out.Result[key]
		if !found {
			msgs = append(msgs, fmt.Sprintf("result field %q missing", key))
			continue
		}
		if !valuesEqual(actual, expect.Result[key]) {
			msgs = append(msgs, fmt.Sprintf("result field %q: expected %v, got %v", key, expect.Result[key], actual))
		}
	}
	return msgs
}
