// Package harness runs scripted scenarios against the containers and
// checks the resulting trace and final state.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: cqueue_overwrite
//	description: "Pushing into a full ring drops the oldest element"
//	container: circular_queue
//	options:
//	  max_size: 4
//	  overwrite: true
//	flow:
//	  - op: push
//	    args: { value: 90 }
//	    expect:
//	      case: ok
//	      result: { size: 1 }
//	assertions:
//	  - type: trace_count
//	    op: push
//	    count: 1
//	  - type: final_state
//	    expect: { size: 1, front: 0 }
//
// container is circular_queue (elements are integers) or object_pool
// (instances are numbered from 1 in build order and tagged with the first
// instance arg). Options override the configured defaults; a snapshot, if
// given, replaces them.
//
// # Assertion Types
//
//   - trace_contains: an op was invoked with matching args
//   - trace_order: ops were first invoked in the given order
//   - trace_count: an op was invoked exactly N times
//   - final_state: fields of the final snapshot have the given values
//
// # Deterministic Testing
//
// Trace events are numbered by a logical sequence starting at 1, and the
// golden snapshot excludes the run id and gauges, so the same scenario
// always produces byte-identical canonical JSON.
//
// Tests compare that JSON with goldie (RunWithGolden). Outside of tests,
// WithGoldenDir makes Run check, or rewrite, testdata/golden style files
// through CheckGoldenFile.
package harness
