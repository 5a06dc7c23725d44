package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adt/internal/query"
	"github.com/roach88/adt/internal/state"
)

func newStack(t *testing.T, values ...string) *Stack[string] {
	t.Helper()
	s, err := New[string]()
	require.NoError(t, err)
	for _, v := range values {
		require.True(t, s.Push(v))
	}
	return s
}

func TestEmptyStack(t *testing.T) {
	s := newStack(t)

	assert.True(t, s.IsEmpty())
	_, ok := s.Pop()
	assert.False(t, ok)
	_, ok = s.Top()
	assert.False(t, ok)
	_, ok = s.Bottom()
	assert.False(t, ok)
}

func TestPushPop(t *testing.T) {
	s := newStack(t, "a", "b", "c")
	assert.Equal(t, 3, s.Size())

	top, _ := s.Top()
	bottom, _ := s.Bottom()
	assert.Equal(t, "c", top)
	assert.Equal(t, "a", bottom)

	for _, want := range []string{"c", "b", "a"} {
		got, ok := s.Pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	assert.True(t, s.IsEmpty())

	// Pushing after pops lands on top.
	s.Push("d")
	top, _ = s.Top()
	assert.Equal(t, "d", top)
	assert.Equal(t, 1, s.Size())
}

func TestReverse(t *testing.T) {
	s := newStack(t, "a")
	s.Reverse()
	top, _ := s.Top()
	assert.Equal(t, "a", top)

	s = newStack(t, "a", "b", "c")
	s.Reverse()
	top, _ = s.Top()
	bottom, _ := s.Bottom()
	assert.Equal(t, "a", top)
	assert.Equal(t, "c", bottom)
	assert.Equal(t, 3, s.Size())
}

func TestAllTopFirst(t *testing.T) {
	s := newStack(t, "a", "b", "c")

	var got []string
	for i, v := range s.All() {
		got = append(got, v)
		assert.Equal(t, len(got)-1, i)
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestClearResetAndInvalid(t *testing.T) {
	s := newStack(t, "a", "b")
	s.Clear()
	assert.True(t, s.IsEmpty())

	s.Push("x")
	s.state.Type = state.TypeQueue
	assert.False(t, s.Push("y"))
	assert.Equal(t, 0, s.Size())
	_, err := s.Stringify()
	assert.ErrorIs(t, err, ErrInvalidState)

	s.Reset()
	assert.Equal(t, state.DefaultSequence[string](state.TypeStack), s.State())
}

func TestSnapshot(t *testing.T) {
	s := newStack(t, "a", "b")
	raw, err := s.Stringify()
	require.NoError(t, err)
	assert.Equal(t, `{"elements":["a","b"],"type":"Stack"}`, raw)

	again, err := New(WithSnapshot[string](raw))
	require.NoError(t, err)
	top, _ := again.Top()
	assert.Equal(t, "b", top)

	withElems, err := New(WithSnapshot[string](raw), WithElements([]string{"z"}))
	require.NoError(t, err)
	assert.Equal(t, 1, withElems.Size())

	_, err = New(WithSnapshot[string](`{"type":"Queue","elements":[]}`))
	assert.True(t, state.IsSnapshotError(err))
}

func TestQueryDelete(t *testing.T) {
	s := newStack(t, "x", "y", "x", "z")

	results := s.Query(query.Equal("x"), query.Options{})
	require.Len(t, results, 2)

	idx, ok := results[0].Index()
	assert.True(t, ok)
	assert.Equal(t, 1, idx, "nearest to the top")

	v, ok := results[0].Delete()
	assert.True(t, ok)
	assert.Equal(t, "x", v)

	var got []string
	for _, e := range s.All() {
		got = append(got, e)
	}
	assert.Equal(t, []string{"z", "y", "x"}, got)
	assert.Len(t, s.Query(nil, query.Options{Limit: 1}), 1)
}
