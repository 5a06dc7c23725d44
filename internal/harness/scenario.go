package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Container kinds a scenario can drive.
const (
	ContainerCircularQueue = "circular_queue"
	ContainerObjectPool    = "object_pool"
)

// Scenario is a scripted run of operations against one container.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description"`

	// Container is circular_queue or object_pool.
	Container string `yaml:"container"`

	// Snapshot optionally restores the container before options apply.
	Snapshot string `yaml:"snapshot,omitempty"`

	// Options override configuration defaults for this container.
	Options ContainerOptions `yaml:"options,omitempty"`

	// Setup runs before the flow. Setup steps are traced but carry no
	// expectations.
	Setup []Step `yaml:"setup,omitempty"`

	// Flow is the main list of operations.
	Flow []Step `yaml:"flow"`

	// Assertions are checked against the trace and final state.
	Assertions []Assertion `yaml:"assertions"`

	// RunID optionally fixes the run identifier.
	RunID string `yaml:"run_id,omitempty"`
}

// ContainerOptions mirrors the container options. Unset fields keep the
// configured default.
type ContainerOptions struct {
	// Circular queue.
	MaxSize   *int    `yaml:"max_size,omitempty"`
	Overwrite *bool   `yaml:"overwrite,omitempty"`
	Size      *int    `yaml:"size,omitempty"`
	Front     *int    `yaml:"front,omitempty"`
	Rear      *int    `yaml:"rear,omitempty"`
	Elements  []int64 `yaml:"elements,omitempty"`

	// Object pool. MaxSize is shared.
	StartSize          *int     `yaml:"start_size,omitempty"`
	AutoIncrease       *bool    `yaml:"auto_increase,omitempty"`
	IncreaseBreakPoint *float64 `yaml:"increase_break_point,omitempty"`
	IncreaseFactor     *float64 `yaml:"increase_factor,omitempty"`
	InstanceArgs       []any    `yaml:"instance_args,omitempty"`
}

// Step is one operation.
type Step struct {
	// Op names the operation, e.g. push or allocate.
	Op string `yaml:"op"`

	// Args holds the operation arguments.
	Args map[string]any `yaml:"args,omitempty"`

	// Expect checks the completion. Nil means no check.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected completion.
type ExpectClause struct {
	// Case is the expected outcome, e.g. ok or empty.
	Case string `yaml:"case"`

	// Result is matched as a subset of the completion result.
	Result map[string]any `yaml:"result,omitempty"`
}

// Assertion validates the trace or the final state.
type Assertion struct {
	// Type is one of trace_contains, trace_order, trace_count, final_state.
	Type string `yaml:"type"`

	// Op is used by trace_contains and trace_count.
	Op string `yaml:"op,omitempty"`

	// Args is matched as a subset (trace_contains).
	Args map[string]any `yaml:"args,omitempty"`

	// Count is the exact number of invocations (trace_count).
	Count int `yaml:"count,omitempty"`

	// Ops is the expected invocation order (trace_order).
	Ops []string `yaml:"ops,omitempty"`

	// Expect is matched as a subset of the final snapshot (final_state).
	Expect map[string]any `yaml:"expect,omitempty"`
}

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
)

// LoadScenario reads and parses a scenario YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML. Unknown fields are rejected so a typo
// such as "assertion:" fails instead of being ignored.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and that every
// op exists for the container.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	ops, ok := containerOps[s.Container]
	if !ok {
		return fmt.Errorf("container must be %s or %s, got %q",
			ContainerCircularQueue, ContainerObjectPool, s.Container)
	}

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Setup {
		if err := validateStep(ops, step); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
		if step.Expect != nil {
			return fmt.Errorf("setup[%d]: expect is not allowed in setup", i)
		}
	}
	for i, step := range s.Flow {
		if err := validateStep(ops, step); err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		if step.Expect != nil && step.Expect.Case == "" {
			return fmt.Errorf("flow[%d].expect: case is required", i)
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(ops map[string]bool, step Step) error {
	if step.Op == "" {
		return fmt.Errorf("op is required")
	}
	if !ops[step.Op] {
		return fmt.Errorf("unknown op %q", step.Op)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_contains", index)
		}
	case AssertTraceOrder:
		if len(a.Ops) == 0 {
			return fmt.Errorf("assertions[%d]: ops list is required for trace_order", index)
		}
	case AssertTraceCount:
		if a.Op == "" {
			return fmt.Errorf("assertions[%d]: op is required for trace_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if len(a.Expect) == 0 {
			return fmt.Errorf("assertions[%d]: expect is required for final_state", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
