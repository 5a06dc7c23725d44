package query

import (
	"iter"
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sliceSource is a minimal Source over a slice.
type sliceSource struct {
	items []int
}

func (s *sliceSource) Elements() iter.Seq[int] {
	return slices.Values(s.items)
}

func (s *sliceSource) Locate(e int) (int, bool) {
	i := slices.Index(s.items, e)
	return i, i >= 0
}

func (s *sliceSource) Remove(e int) (int, bool) {
	i, ok := s.Locate(e)
	if !ok {
		return 0, false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return e, true
}

func elements(results []Result[int]) []int {
	out := make([]int, len(results))
	for i, r := range results {
		out[i] = r.Element
	}
	return out
}

func TestOptionsMaxResults(t *testing.T) {
	tests := []struct {
		name  string
		limit float64
		want  int
	}{
		{"zero", 0, math.MaxInt},
		{"negative", -3, math.MaxInt},
		{"below one", 0.5, math.MaxInt},
		{"NaN", math.NaN(), math.MaxInt},
		{"infinity", math.Inf(1), math.MaxInt},
		{"one", 1, 1},
		{"rounds down", 2.4, 2},
		{"rounds up", 2.5, 3},
		{"integer", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Options{Limit: tt.limit}.MaxResults())
		})
	}
}

func TestRunFilters(t *testing.T) {
	src := &sliceSource{items: []int{90, 70, 50, 30, 10}}

	above := func(n int) Filter[int] { return func(e int) bool { return e > n } }
	below := func(n int) Filter[int] { return func(e int) bool { return e < n } }

	tests := []struct {
		name   string
		filter Filter[int]
		opts   Options
		want   []int
	}{
		{"nil matches all", nil, Options{}, []int{90, 70, 50, 30, 10}},
		{"single", above(40), Options{}, []int{90, 70, 50}},
		{"and", All(above(20), below(80)), Options{}, []int{70, 50, 30}},
		{"and with nil", All(nil, below(60)), Options{}, []int{50, 30, 10}},
		{"empty all", All[int](), Options{}, []int{90, 70, 50, 30, 10}},
		{"equal", Equal(30), Options{}, []int{30}},
		{"not", Not(Equal(30)), Options{Limit: 2}, []int{90, 70}},
		{"limit", nil, Options{Limit: 2}, []int{90, 70}},
		{"limit rounded", above(0), Options{Limit: 1.6}, []int{90, 70}},
		{"no match", above(100), Options{}, []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, elements(Run(src, tt.filter, tt.opts)))
		})
	}
}

func TestNotNilMatchesNothing(t *testing.T) {
	src := &sliceSource{items: []int{1, 2}}
	assert.Empty(t, Run(src, Not[int](nil), Options{}))
}

func TestRunNilSource(t *testing.T) {
	results := Run[int](nil, nil, Options{})
	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestResultIndexAndDelete(t *testing.T) {
	src := &sliceSource{items: []int{5, 6, 7}}
	results := Run(src, Equal(6), Options{})
	require.Len(t, results, 1)

	idx, ok := results[0].Index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	removed, ok := results[0].Delete()
	assert.True(t, ok)
	assert.Equal(t, 6, removed)
	assert.Equal(t, []int{5, 7}, src.items)

	// Stale handle degrades to not found.
	_, ok = results[0].Index()
	assert.False(t, ok)
	_, ok = results[0].Delete()
	assert.False(t, ok)
}

func TestZeroResult(t *testing.T) {
	var r Result[int]
	_, ok := r.Index()
	assert.False(t, ok)
	_, ok = r.Delete()
	assert.False(t, ok)

	bound := NewResult[int](&sliceSource{items: []int{3}}, 3)
	idx, ok := bound.Index()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}
