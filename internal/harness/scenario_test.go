package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one push"
container: circular_queue
options:
  max_size: 2
  overwrite: true
flow:
  - op: push
    args:
      value: 7
    expect:
      case: ok
      result:
        size: 1
assertions:
  - type: trace_contains
    op: push
`

func TestLoadScenario_ValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0644))

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", scenario.Name)
	assert.Equal(t, ContainerCircularQueue, scenario.Container)
	require.NotNil(t, scenario.Options.MaxSize)
	assert.Equal(t, 2, *scenario.Options.MaxSize)
	require.NotNil(t, scenario.Options.Overwrite)
	assert.True(t, *scenario.Options.Overwrite)
	assert.Nil(t, scenario.Options.StartSize)
	require.Len(t, scenario.Flow, 1)
	assert.Equal(t, "push", scenario.Flow[0].Op)
	assert.Equal(t, 7, scenario.Flow[0].Args["value"])
	require.NotNil(t, scenario.Flow[0].Expect)
	assert.Equal(t, CaseOK, scenario.Flow[0].Expect.Case)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_TestdataScenarios(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("testdata", "scenarios", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		_, err := LoadScenario(path)
		assert.NoError(t, err, path)
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "unknown field",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertion: []\n",
			wantErr: "failed to parse YAML",
		},
		{
			name:    "missing name",
			yaml:    "description: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: trace_contains, op: pop}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: x\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: trace_contains, op: pop}]\n",
			wantErr: "description is required",
		},
		{
			name:    "unknown container",
			yaml:    "name: x\ndescription: d\ncontainer: heap\nflow: [{op: pop}]\nassertions: [{type: trace_contains, op: pop}]\n",
			wantErr: `got "heap"`,
		},
		{
			name:    "empty flow",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: []\nassertions: [{type: trace_contains, op: pop}]\n",
			wantErr: "flow list is required",
		},
		{
			name:    "no assertions",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\n",
			wantErr: "assertions list is required",
		},
		{
			name:    "op of the other container",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: allocate}]\nassertions: [{type: trace_contains, op: pop}]\n",
			wantErr: `flow[0]: unknown op "allocate"`,
		},
		{
			name:    "expect in setup",
			yaml:    "name: x\ndescription: d\ncontainer: object_pool\nsetup: [{op: allocate, expect: {case: ok}}]\nflow: [{op: stats}]\nassertions: [{type: trace_contains, op: stats}]\n",
			wantErr: "expect is not allowed in setup",
		},
		{
			name:    "expect without case",
			yaml:    "name: x\ndescription: d\ncontainer: object_pool\nflow: [{op: stats, expect: {result: {free: 1}}}]\nassertions: [{type: trace_contains, op: stats}]\n",
			wantErr: "case is required",
		},
		{
			name:    "trace_count without op",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: trace_count, count: 1}]\n",
			wantErr: "op is required for trace_count",
		},
		{
			name:    "trace_order without ops",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: trace_order}]\n",
			wantErr: "ops list is required",
		},
		{
			name:    "final_state without expect",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: final_state}]\n",
			wantErr: "expect is required for final_state",
		},
		{
			name:    "unknown assertion type",
			yaml:    "name: x\ndescription: d\ncontainer: circular_queue\nflow: [{op: pop}]\nassertions: [{type: eventually}]\n",
			wantErr: `unknown assertion type "eventually"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
