package query

import (
	"iter"
	"math"
)

// Filter is a predicate over elements. A nil Filter matches everything.
type Filter[T any] func(T) bool

// All combines filters with AND, evaluated in order. Nil filters are
// skipped; with no filters the result matches everything.
func All[T any](filters ...Filter[T]) Filter[T] {
	return func(e T) bool {
		for _, f := range filters {
			if f != nil && !f(e) {
				return false
			}
		}
		return true
	}
}

// Equal matches elements equal to v.
func Equal[T comparable](v T) Filter[T] {
	return func(e T) bool {
		return e == v
	}
}

// Not negates f. Not(nil) matches nothing.
func Not[T any](f Filter[T]) Filter[T] {
	return func(e T) bool {
		return f != nil && !f(e)
	}
}

func (f Filter[T]) match(e T) bool {
	return f == nil || f(e)
}

// Options controls a query.
type Options struct {
	// Limit caps the number of results. Values below 1 (including the zero
	// value) and NaN mean unbounded; fractional values are rounded.
	Limit float64 `json:"limit,omitempty" yaml:"limit,omitempty"`
}

// MaxResults returns the normalized limit. Unbounded is math.MaxInt.
func (o Options) MaxResults() int {
	l := o.Limit
	if math.IsNaN(l) || l < 1 || math.IsInf(l, 1) {
		return math.MaxInt
	}
	r := math.Round(l)
	if r >= math.MaxInt {
		return math.MaxInt
	}
	return int(r)
}

// Source is what a container exposes to queries.
type Source[T any] interface {
	// Elements yields live elements in container order.
	Elements() iter.Seq[T]
	// Locate returns the current index of e, found by identity.
	Locate(e T) (int, bool)
	// Remove deletes e using the container's own deletion routine and
	// returns the removed value.
	Remove(e T) (T, bool)
}

// Result is one query match bound to the container it came from.
type Result[T any] struct {
	Element T
	src     Source[T]
}

// NewResult binds e to src. Containers use it for hand-built results.
func NewResult[T any](src Source[T], e T) Result[T] {
	return Result[T]{Element: e, src: src}
}

// Index re-locates the element. ok is false once it has left the container.
func (r Result[T]) Index() (int, bool) {
	if r.src == nil {
		return -1, false
	}
	return r.src.Locate(r.Element)
}

// Delete removes the element from the container it came from.
func (r Result[T]) Delete() (T, bool) {
	if r.src == nil {
		var zero T
		return zero, false
	}
	return r.src.Remove(r.Element)
}

// Run collects matches from src in container order.
func Run[T any](src Source[T], filter Filter[T], opts Options) []Result[T] {
	limit := opts.MaxResults()
	results := []Result[T]{}
	if src == nil {
		return results
	}

	for e := range src.Elements() {
		if len(results) >= limit {
			break
		}
		if filter.match(e) {
			results = append(results, Result[T]{Element: e, src: src})
		}
	}
	return results
}
