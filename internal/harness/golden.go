package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/adt/internal/ir"
)

// TraceSnapshot is the deterministic part of a run: the run id and gauges
// are left out.
type TraceSnapshot struct {
	ScenarioName string         `json:"scenario_name"`
	Container    string         `json:"container"`
	Trace        []TraceEvent   `json:"trace"`
	FinalState   map[string]any `json:"final_state"`
}

// NewTraceSnapshot builds the snapshot of a finished run.
func NewTraceSnapshot(scenario *Scenario, result *Result) TraceSnapshot {
	return TraceSnapshot{
		ScenarioName: scenario.Name,
		Container:    scenario.Container,
		Trace:        result.Trace,
		FinalState:   result.State,
	}
}

// toCanonicalMap converts the snapshot to plain maps for
// ir.MarshalCanonical. Empty args and results are omitted.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	traceList := make([]any, len(s.Trace))
	for i, event := range s.Trace {
		eventMap := map[string]any{
			"type": event.Type,
			"seq":  event.Seq,
		}
		if event.Op != "" {
			eventMap["op"] = event.Op
		}
		if len(event.Args) > 0 {
			eventMap["args"] = event.Args
		}
		if event.OutputCase != "" {
			eventMap["output_case"] = event.OutputCase
		}
		if len(event.Result) > 0 {
			eventMap["result"] = event.Result
		}
		traceList[i] = eventMap
	}

	finalState := s.FinalState
	if finalState == nil {
		finalState = map[string]any{}
	}
	return map[string]any{
		"scenario_name": s.ScenarioName,
		"container":     s.Container,
		"trace":         traceList,
		"final_state":   finalState,
	}
}

// MarshalCanonical renders the snapshot as canonical JSON.
func (s *TraceSnapshot) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(s.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario, opts ...Option) (*Result, error) {
	t.Helper()

	result, err := Run(scenario, opts...)
	if err != nil {
		return nil, err
	}
	return result, AssertGolden(t, scenario, result)
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenario *Scenario, result *Result) error {
	t.Helper()

	snapshot := NewTraceSnapshot(scenario, result)
	traceJSON, err := snapshot.MarshalCanonical()
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return nil
}

// GoldenMismatchError is returned when a trace snapshot differs from its
// golden file.
type GoldenMismatchError struct {
	Path string
}

// Error implements the error interface.
func (e *GoldenMismatchError) Error() string {
	return fmt.Sprintf("trace does not match golden file %s", e.Path)
}

// CheckGoldenFile is the file-based counterpart of AssertGolden for use
// outside tests. It compares the trace snapshot of result with
// dir/{scenario.Name}.golden, or writes that file when update is set.
func CheckGoldenFile(dir string, scenario *Scenario, result *Result, update bool) error {
	snapshot := NewTraceSnapshot(scenario, result)
	got, err := snapshot.MarshalCanonical()
	if err != nil {
		return fmt.Errorf("failed to render trace: %w", err)
	}
	path := filepath.Join(dir, scenario.Name+".golden")

	if update {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create golden dir: %w", err)
		}
		if err := os.WriteFile(path, got, 0644); err != nil {
			return fmt.Errorf("failed to write golden file: %w", err)
		}
		return nil
	}

	want, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read golden file: %w", err)
	}
	if !bytes.Equal(want, got) {
		return &GoldenMismatchError{Path: path}
	}
	return nil
}
