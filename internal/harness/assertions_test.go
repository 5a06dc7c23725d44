package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTrace() []TraceEvent {
	return []TraceEvent{
		{Type: EventInvocation, Op: "push", Args: map[string]any{"value": int64(1)}, Seq: 1},
		{Type: EventCompletion, OutputCase: CaseOK, Seq: 2},
		{Type: EventInvocation, Op: "push", Args: map[string]any{"value": int64(2)}, Seq: 3},
		{Type: EventCompletion, OutputCase: CaseOK, Seq: 4},
		{Type: EventInvocation, Op: "pop", Seq: 5},
		{Type: EventCompletion, OutputCase: CaseOK, Seq: 6},
	}
}

func TestAssertTraceContains(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceContains(trace, Assertion{Op: "push", Args: map[string]any{"value": 2}}))
	assert.NoError(t, assertTraceContains(trace, Assertion{Op: "pop"}))

	err := assertTraceContains(trace, Assertion{Op: "push", Args: map[string]any{"value": 3}})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertTraceContains, ae.Type)
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "[5] pop")
}

func TestAssertTraceOrder(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceOrder(trace, Assertion{Ops: []string{"push", "pop"}}))

	err := assertTraceOrder(trace, Assertion{Ops: []string{"pop", "push"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pop (pos 5) should be before push (pos 1)")

	err = assertTraceOrder(trace, Assertion{Ops: []string{"push", "clear"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing op: clear")
}

func TestAssertTraceCount(t *testing.T) {
	trace := sampleTrace()

	assert.NoError(t, assertTraceCount(trace, Assertion{Op: "push", Count: 2}))
	assert.NoError(t, assertTraceCount(trace, Assertion{Op: "clear", Count: 0}))

	err := assertTraceCount(trace, Assertion{Op: "pop", Count: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 occurrences")
}

func TestAssertFinalState(t *testing.T) {
	final := map[string]any{
		"size":      int64(2),
		"overwrite": false,
		"elements":  []any{int64(1), int64(2)},
		"ratio":     0.5,
	}

	assert.NoError(t, assertFinalState(final, Assertion{Expect: map[string]any{
		"size":     2,
		"elements": []any{1, 2},
		"ratio":    0.5,
	}}))

	err := assertFinalState(final, Assertion{Expect: map[string]any{
		"size":      3,
		"overwrite": true,
		"front":     0,
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "front missing; overwrite = false, want true; size = 2, want 3")
}

func TestValuesEqual(t *testing.T) {
	tests := []struct {
		name     string
		actual   any
		expected any
		want     bool
	}{
		{"int and int64", int64(2), 2, true},
		{"int and whole float", int64(2), 2.0, true},
		{"different numbers", int64(2), 3, false},
		{"number and string", int64(2), "2", false},
		{"strings", "a", "a", true},
		{"nested arrays", []any{int64(1), []any{"x"}}, []any{1, []any{"x"}}, true},
		{"array length", []any{int64(1)}, []any{1, 2}, false},
		{"objects", map[string]any{"a": int64(1)}, map[string]any{"a": 1}, true},
		{"object extra key", map[string]any{"a": int64(1)}, map[string]any{"a": 1, "b": 2}, false},
		{"nulls", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, valuesEqual(tt.actual, tt.expected))
		})
	}
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	result.Trace = sampleTrace()
	result.State = map[string]any{"size": int64(1)}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertTraceCount, Op: "push", Count: 2},
		{Type: AssertFinalState, Expect: map[string]any{"size": 1}},
		{Type: AssertTraceCount, Op: "pop", Count: 3},
		{Type: "eventually"},
	})

	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "3 occurrences of pop")
	assert.Contains(t, errs[1], `assertion[3]: unknown assertion type "eventually"`)
}
