package harness

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/adt/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			if event.Type == EventInvocation {
				fmt.Fprintf(&buf, "  [%d] %s %v\n", i+1, event.Op, event.Args)
			}
		}
	}
	return buf.String()
}

// assertTraceContains checks for an invocation of the op whose args contain
// the expected args.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type == EventInvocation && event.Op == assertion.Op && matchArgs(event.Args, assertion.Args) {
			return nil
		}
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: fmt.Sprintf("op %s with args %v", assertion.Op, assertion.Args),
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that the first invocation of each op appears in
// the given order. Other invocations may come between them.
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)
	for i, event := range trace {
		if event.Type != EventInvocation {
			continue
		}
		if _, seen := positions[event.Op]; !seen {
			positions[event.Op] = i + 1
		}
	}

	for _, op := range assertion.Ops {
		if positions[op] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all ops present: %v", assertion.Ops),
				Actual:   fmt.Sprintf("missing op: %s", op),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Ops); i++ {
		prev := assertion.Ops[i-1]
		curr := assertion.Ops[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("ops in order: %v", assertion.Ops),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks the exact number of invocations of an op.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == EventInvocation && event.Op == assertion.Op {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Op),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}
	return nil
}

// assertFinalState checks the final snapshot fields named in Expect.
func assertFinalState(final map[string]any, assertion Assertion) error {
	var mismatches []string
	for _, key := range sortedKeys(assertion.Expect) {
		want := assertion.Expect[key]
		got, found := final[key]
		switch {
		case !found:
			mismatches = append(mismatches, fmt.Sprintf("%s missing", key))
		case !valuesEqual(got, want):
			mismatches = append(mismatches, fmt.Sprintf("%s = %v, want %v", key, got, want))
		}
	}

	if len(mismatches) > 0 {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("final state containing %v", assertion.Expect),
			Actual:   strings.Join(mismatches, "; "),
		}
	}
	return nil
}

// matchArgs checks that actual contains every expected key with an equal
// value. Extra keys in actual are ignored.
func matchArgs(actual, expected map[string]any) bool {
	for key, want := range expected {
		got, found := actual[key]
		if !found || !valuesEqual(got, want) {
			return false
		}
	}
	return true
}

// valuesEqual compares two plain values by their JSON meaning: 2, int64(2)
// and 2.0 are equal, and nested arrays and objects compare element-wise.
func valuesEqual(actual, expected any) bool {
	a, errA := ir.FromAny(actual)
	e, errE := ir.FromAny(expected)
	if errA != nil || errE != nil {
		return reflect.DeepEqual(actual, expected)
	}
	return irEqual(a, e)
}

func irEqual(a, b ir.IRValue) bool {
	if fa, isNum := ir.AsFloat(a); isNum {
		fb, bothNum := ir.AsFloat(b)
		return bothNum && fa == fb
	}

	switch av := a.(type) {
	case ir.IRArray:
		bv, same := b.(ir.IRArray)
		if !same || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !irEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	case ir.IRObject:
		bv, same := b.(ir.IRObject)
		if !same || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, found := bv[k]
			if !found || !irEqual(v, w) {
				return false
			}
		}
		return true
	default:
		return reflect.DeepEqual(a, b)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EvaluateAssertions evaluates all assertions against the result and
// returns a message for each failure.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}
	return errors
}
