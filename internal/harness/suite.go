package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roach88/adt/internal/metrics"
)

// ScenarioNotFoundError is returned when a scenario path does not exist.
type ScenarioNotFoundError struct {
	Path string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("scenario file %q does not exist", e.Path)
}

// FindScenarios resolves path to scenario files. A file is returned as is;
// a directory yields its *.yaml and *.yml files in name order.
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !e.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, filepath.Join(path, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// SuiteResult summarizes a batch of scenario runs.
type SuiteResult struct {
	Total     int           `json:"total"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Scenarios []ScenarioRun `json:"scenarios"`
}

// ScenarioRun is the outcome of one scenario file. Result is nil when the
// scenario could not be loaded or run.
type ScenarioRun struct {
	Scenario string           `json:"scenario"`
	Path     string           `json:"path"`
	Pass     bool             `json:"pass"`
	RunID    string           `json:"run_id,omitempty"`
	Errors   []string         `json:"errors,omitempty"`
	Metrics  []metrics.Sample `json:"metrics,omitempty"`
	Result   *Result          `json:"-"`
}

// RunSuite loads and runs every scenario in paths. A scenario that cannot
// be loaded or run counts as failed; RunSuite itself does not stop.
func RunSuite(paths []string, opts ...Option) *SuiteResult {
	suite := &SuiteResult{Scenarios: []ScenarioRun{}}
	for _, path := range paths {
		suite.add(runFile(path, opts))
	}
	return suite
}

func runFile(path string, opts []Option) ScenarioRun {
	scenario, err := LoadScenario(path)
	if err != nil {
		return ScenarioRun{Scenario: path, Path: path, Errors: []string{err.Error()}}
	}

	result, err := Run(scenario, opts...)
	if err != nil {
		return ScenarioRun{Scenario: scenario.Name, Path: path, Errors: []string{err.Error()}}
	}
	run := ScenarioRun{
		Scenario: scenario.Name,
		Path:     path,
		Pass:     result.Pass,
		RunID:    result.RunID,
		Metrics:  result.Metrics,
		Result:   result,
	}
	if !result.Pass {
		run.Errors = result.Errors
	}
	return run
}

func (s *SuiteResult) add(run ScenarioRun) {
	s.Total++
	if run.Pass {
		s.Passed++
	} else {
		s.Failed++
	}
	s.Scenarios = append(s.Scenarios, run)
}

// Failures returns the runs that did not pass.
func (s *SuiteResult) Failures() []ScenarioRun {
	var out []ScenarioRun
	for _, run := range s.Scenarios {
		if !run.Pass {
			out = append(out, run)
		}
	}
	return out
}
