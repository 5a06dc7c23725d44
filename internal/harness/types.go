package harness

import (
	"github.com/roach88/adt/internal/metrics"
)

// Trace event types.
const (
	EventInvocation = "invocation"
	EventCompletion = "completion"
)

// Outcome cases reported by completions.
const (
	CaseOK        = "ok"
	CaseEmpty     = "empty"
	CaseRejected  = "rejected"
	CaseExhausted = "exhausted"
	CaseNotFound  = "not_found"
)

// TraceEvent is either the invocation of an operation or its completion.
type TraceEvent struct {
	Type       string         `json:"type"`
	Op         string         `json:"op,omitempty"`
	Args       map[string]any `json:"args,omitempty"`
	OutputCase string         `json:"output_case,omitempty"`
	Result     map[string]any `json:"result,omitempty"`
	Seq        int64          `json:"seq"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// RunID identifies this run. It is not part of golden traces.
	RunID string `json:"run_id"`

	// Pass is true when every expect clause and assertion held.
	Pass bool `json:"pass"`

	// Trace holds every invocation and completion in order.
	Trace []TraceEvent `json:"trace"`

	// Errors lists failed expectations and assertions.
	Errors []string `json:"errors,omitempty"`

	// State is the container's final snapshot as plain values.
	State map[string]any `json:"state,omitempty"`

	// Metrics are the container gauges gathered after the flow.
	Metrics []metrics.Sample `json:"metrics,omitempty"`
}

// NewResult creates a passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		State:  map[string]any{},
	}
}

// AddError records a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddInvocationTrace appends an invocation.
func (r *Result) AddInvocationTrace(op string, args map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type: EventInvocation,
		Op:   op,
		Args: args,
		Seq:  seq,
	})
}

// AddCompletionTrace appends a completion.
func (r *Result) AddCompletionTrace(outputCase string, result map[string]any, seq int64) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:       EventCompletion,
		OutputCase: outputCase,
		Result:     result,
		Seq:        seq,
	})
}
