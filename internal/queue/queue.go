// Package queue provides an unbounded FIFO queue with the same snapshot and
// query conventions as the bounded containers.
package queue

import (
	"errors"
	"fmt"
	"iter"
	"slices"

	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/query"
	"github.com/roach88/adt/internal/state"
)

// ErrInvalidState is returned by Stringify when the state record no longer
// passes validation.
var ErrInvalidState = errors.New("queue: state is not valid")

// Option configures a Queue at construction.
type Option[T any] func(*settings[T])

type settings[T any] struct {
	snapshot string
	elements []T
}

// WithSnapshot restores the queue from snapshot text. An empty string is
// ignored.
func WithSnapshot[T any](snapshot string) Option[T] {
	return func(s *settings[T]) {
		s.snapshot = snapshot
	}
}

// WithElements replaces the queued elements, front first. Ignored when nil.
func WithElements[T any](elements []T) Option[T] {
	return func(s *settings[T]) {
		if elements != nil {
			s.elements = elements
		}
	}
}

// Queue is a FIFO queue. Elements[0] is the front.
type Queue[T comparable] struct {
	state state.Sequence[T]
}

// New creates a queue. The only error is a *state.SnapshotError for a
// snapshot that does not validate.
func New[T comparable](opts ...Option[T]) (*Queue[T], error) {
	var cfg settings[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	st := state.DefaultSequence[T](state.TypeQueue)
	if cfg.snapshot != "" {
		decoded, err := state.DecodeSequence[T](state.TypeQueue, []byte(cfg.snapshot))
		if err != nil {
			return nil, fmt.Errorf("queue: %w", err)
		}
		st = decoded
	}
	if cfg.elements != nil {
		st.Elements = slices.Clone(cfg.elements)
	}
	return &Queue[T]{state: st}, nil
}

func (q *Queue[T]) valid() bool {
	return len(q.state.Errors(state.TypeQueue)) == 0
}

// Push appends e at the rear. Returns false if the state is invalid.
func (q *Queue[T]) Push(e T) bool {
	if !q.valid() {
		return false
	}
	q.state.Elements = append(q.state.Elements, e)
	return true
}

// Pop removes and returns the front element.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T
	if !q.valid() || len(q.state.Elements) == 0 {
		return zero, false
	}
	e := q.state.Elements[0]
	q.state.Elements[0] = zero
	q.state.Elements = q.state.Elements[1:]
	return e, true
}

// Front returns the oldest element without removing it.
func (q *Queue[T]) Front() (T, bool) {
	return q.GetIndex(0)
}

// Rear returns the newest element without removing it.
func (q *Queue[T]) Rear() (T, bool) {
	return q.GetIndex(-1)
}

// GetIndex returns the n-th element from the front, or for negative n the
// |n|-th element from the rear (-1 is the rear).
func (q *Queue[T]) GetIndex(n int) (T, bool) {
	var zero T
	if !q.valid() {
		return zero, false
	}
	if n < 0 {
		n += len(q.state.Elements)
	}
	if n < 0 || n >= len(q.state.Elements) {
		return zero, false
	}
	return q.state.Elements[n], true
}

// Size returns the element count, 0 if the state is invalid.
func (q *Queue[T]) Size() int {
	if !q.valid() {
		return 0
	}
	return len(q.state.Elements)
}

// IsEmpty reports whether the queue holds nothing.
func (q *Queue[T]) IsEmpty() bool {
	return q.Size() == 0
}

// All iterates elements front to rear with their position.
func (q *Queue[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if !q.valid() {
			return
		}
		for i, e := range q.state.Elements {
			if !yield(i, e) {
				return
			}
		}
	}
}

// ForEach calls fn for each element front to rear.
func (q *Queue[T]) ForEach(fn func(e T, i int)) *Queue[T] {
	for i, e := range q.All() {
		fn(e, i)
	}
	return q
}

// Reverse flips the order so the rear becomes the front.
func (q *Queue[T]) Reverse() *Queue[T] {
	if q.valid() {
		slices.Reverse(q.state.Elements)
	}
	return q
}

// ClearElements drops every element.
func (q *Queue[T]) ClearElements() *Queue[T] {
	q.state.Elements = []T{}
	return q
}

// Reset restores the default state.
func (q *Queue[T]) Reset() *Queue[T] {
	q.state = state.DefaultSequence[T](state.TypeQueue)
	return q
}

// Stringify returns the canonical JSON snapshot.
func (q *Queue[T]) Stringify() (string, error) {
	if !q.valid() {
		return "", ErrInvalidState
	}
	obj, err := q.state.ToIRObject()
	if err != nil {
		return "", fmt.Errorf("queue: stringify: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("queue: stringify: %w", err)
	}
	return string(data), nil
}

// State returns a copy of the state record.
func (q *Queue[T]) State() state.Sequence[T] {
	return q.state.Clone()
}

// Query returns elements matching filter, front first. Each result's
// Delete removes the first equal element.
func (q *Queue[T]) Query(filter query.Filter[T], opts query.Options) []query.Result[T] {
	return query.Run[T](source[T]{q}, filter, opts)
}

type source[T comparable] struct {
	q *Queue[T]
}

func (s source[T]) Elements() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range s.q.All() {
			if !yield(e) {
				return
			}
		}
	}
}

func (s source[T]) Locate(e T) (int, bool) {
	if !s.q.valid() {
		return -1, false
	}
	i := slices.Index(s.q.state.Elements, e)
	return i, i >= 0
}

func (s source[T]) Remove(e T) (T, bool) {
	i, ok := s.Locate(e)
	if !ok {
		var zero T
		return zero, false
	}
	s.q.state.Elements = slices.Delete(s.q.state.Elements, i, i+1)
	return e, true
}
