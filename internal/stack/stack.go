// Package stack provides an unbounded LIFO stack with the same snapshot and
// query conventions as the bounded containers.
package stack

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
var ErrInvalidState = errors.New("stack: state is not valid")

// Option configures a Stack at construction.
type Option[T any] func(*settings[T])

type settings[T any] struct {
	snapshot string
	elements []T
}

// WithSnapshot restores the stack from snapshot text. An empty string is
// ignored.
func WithSnapshot[T any](snapshot string) Option[T] {
	return func(s *settings[T]) {
		s.snapshot = snapshot
	}
}

// WithElements replaces the stacked elements, bottom first. Ignored when nil.
func WithElements[T any](elements []T) Option[T] {
	return func(s *settings[T]) {
		if elements != nil {
			s.elements = elements
		}
	}
}

// Stack is a LIFO stack. The last element of the state is the top.
type Stack[T comparable] struct {
	state state.Sequence[T]
}

// New creates a stack. The only error is a *state.SnapshotError for a
// snapshot that does not validate.
func New[T comparable](opts ...Option[T]) (*Stack[T], error) {
	var cfg settings[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	st := state.DefaultSequence[T](state.TypeStack)
	if cfg.snapshot != "" {
		decoded, err := state.DecodeSequence[T](state.TypeStack, []byte(cfg.snapshot))
		if err != nil {
			return nil, fmt.Errorf("stack: %w", err)
		}
		st = decoded
	}
	if cfg.elements != nil {
		st.Elements = slices.Clone(cfg.elements)
	}
	return &Stack[T]{state: st}, nil
}

func (s *Stack[T]) valid() bool {
	return len(s.state.Errors(state.TypeStack)) == 0
}

// Push puts e on top. Returns false if the state is invalid.
func (s *Stack[T]) Push(e T) bool {
	if !s.valid() {
		return false
	}
	s.state.Elements = append(s.state.Elements, e)
	return true
}

// Pop removes and returns the top element.
func (s *Stack[T]) Pop() (T, bool) {
	var zero T
	top := len(s.state.Elements) - 1
	if !s.valid() || top < 0 {
		return zero, false
	}
	e := s.state.Elements[top]
	s.state.Elements[top] = zero
	s.state.Elements = s.state.Elements[:top]
	return e, true
}

// Top returns the most recently pushed element.
func (s *Stack[T]) Top() (T, bool) {
	var zero T
	if !s.valid() || len(s.state.Elements) == 0 {
		return zero, false
	}
	return s.state.Elements[len(s.state.Elements)-1], true
}

// Bottom returns the oldest element.
func (s *Stack[T]) Bottom() (T, bool) {
	var zero T
	if !s.valid() || len(s.state.Elements) == 0 {
		return zero, false
	}
	return s.state.Elements[0], true
}

// Size returns the element count, 0 if the state is invalid.
func (s *Stack[T]) Size() int {
	if !s.valid() {
		return 0
	}
	return len(s.state.Elements)
}

// IsEmpty reports whether the stack holds nothing.
func (s *Stack[T]) IsEmpty() bool {
	return s.Size() == 0
}

// Reverse flips the stack so the bottom becomes the top.
func (s *Stack[T]) Reverse() *Stack[T] {
	if s.valid() {
		slices.Reverse(s.state.Elements)
	}
	return s
}

// All iterates from top to bottom. The index is the distance from the top.
func (s *Stack[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if !s.valid() {
			return
		}
		n := len(s.state.Elements)
		for i := n - 1; i >= 0; i-- {
			if !yield(n-1-i, s.state.Elements[i]) {
				return
			}
		}
	}
}

// Clear drops every element.
func (s *Stack[T]) Clear() *Stack[T] {
	s.state.Elements = []T{}
	return s
}

// Reset restores the default state.
func (s *Stack[T]) Reset() *Stack[T] {
	s.state = state.DefaultSequence[T](state.TypeStack)
	return s
}

// Stringify returns the canonical JSON snapshot, elements bottom first.
func (s *Stack[T]) Stringify() (string, error) {
	if !s.valid() {
		return "", ErrInvalidState
	}
	obj, err := s.state.ToIRObject()
	if err != nil {
		return "", fmt.Errorf("stack: stringify: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("stack: stringify: %w", err)
	}
	return string(data), nil
}

// State returns a copy of the state record.
func (s *Stack[T]) State() state.Sequence[T] {
	return s.state.Clone()
}

// Query returns elements matching filter, top first. Index is the distance
// from the top; Delete removes the element nearest the top that is equal.
func (s *Stack[T]) Query(filter query.Filter[T], opts query.Options) []query.Result[T] {
	return query.Run[T](source[T]{s}, filter, opts)
}

type source[T comparable] struct {
	s *Stack[T]
}

func (src source[T]) Elements() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, e := range src.s.All() {
			if !yield(e) {
				return
			}
		}
	}
}

func (src source[T]) Locate(e T) (int, bool) {
	for i, v := range src.s.All() {
		if v == e {
			return i, true
		}
	}
	return -1, false
}

func (src source[T]) Remove(e T) (T, bool) {
	i, ok := src.Locate(e)
	if !ok {
		var zero T
		return zero, false
	}
	phys := len(src.s.state.Elements) - 1 - i
	src.s.state.Elements = slices.Delete(src.s.state.Elements, phys, phys+1)
	return e, true
}
