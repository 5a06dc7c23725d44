package cqueue

import (
	"errors"
	"fmt"
	"iter"

	"go.uber.org/zap"

	"github.com/roach88/adt/internal/ir"
	"github.com/roach88/adt/internal/query"
	"github.com/roach88/adt/internal/state"
)

// ErrInvalidState is returned by Stringify when the queue's state record
// no longer passes validation.
var ErrInvalidState = errors.New("cqueue: state is not valid")

// CircularQueue is a fixed-capacity ring buffer.
//
// INVARIANTS:
//   - size == 0: Front and Rear report nothing
//   - 0 < size <= maxSize: the size slots starting at front (wrapping) are
//     the live window
//   - maxSize never changes after construction
//
// Mutating operations are silent no-ops when the state is invalid.
// A CircularQueue is not safe for concurrent use.
type CircularQueue[T comparable] struct {
	state  state.CircularQueue[T]
	logger *zap.Logger
}

// New creates a queue from the default state, an optional snapshot and
// optional per-field overrides. The only error is a *state.SnapshotError
// for a snapshot that does not validate.
func New[T comparable](opts ...Option[T]) (*CircularQueue[T], error) {
	var cfg settings[T]
	for _, opt := range opts {
		opt(&cfg)
	}

	st := state.DefaultCircularQueue[T]()
	if cfg.snapshot != "" {
		decoded, err := state.DecodeCircularQueue[T]([]byte(cfg.snapshot))
		if err != nil {
			return nil, fmt.Errorf("cqueue: %w", err)
		}
		st = decoded
	}

	if cfg.maxSize != nil && *cfg.maxSize >= 1 && *cfg.maxSize <= state.MaxCapacity {
		st.MaxSize = *cfg.maxSize
	}
	if cfg.size != nil && *cfg.size >= 0 && *cfg.size <= st.MaxSize {
		st.Size = *cfg.size
	}
	if cfg.front != nil {
		st.Front = *cfg.front
	}
	if cfg.rear != nil {
		st.Rear = *cfg.rear
	}
	st.Front = wrapCursor(st.Front, st.MaxSize)
	st.Rear = wrapCursor(st.Rear, st.MaxSize)
	if cfg.overwrite != nil {
		st.Overwrite = *cfg.overwrite
	}
	if cfg.elements != nil {
		st.Elements = append([]T{}, cfg.elements...)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &CircularQueue[T]{state: st, logger: logger}, nil
}

// wrapCursor maps n into [0, m) when m is a usable capacity.
func wrapCursor(n, m int) int {
	if m < 1 {
		return n
	}
	return ((n % m) + m) % m
}

func (q *CircularQueue[T]) valid() bool {
	return q.state.IsValid()
}

// at reads a physical slot. Slots never written read as the zero value.
func (q *CircularQueue[T]) at(i int) T {
	if i < 0 || i >= len(q.state.Elements) {
		var zero T
		return zero
	}
	return q.state.Elements[i]
}

// put writes a physical slot, growing the backing slice up to i.
func (q *CircularQueue[T]) put(i int, e T) {
	if i >= len(q.state.Elements) {
		grown := make([]T, i+1)
		copy(grown, q.state.Elements)
		q.state.Elements = grown
	}
	q.state.Elements[i] = e
}

// clear zeroes a physical slot if it exists.
func (q *CircularQueue[T]) clear(i int) {
	if i >= 0 && i < len(q.state.Elements) {
		var zero T
		q.state.Elements[i] = zero
	}
}

// WrapIndex maps any integer into [0, maxSize). Returns -1 if the state is
// invalid.
func (q *CircularQueue[T]) WrapIndex(n int) int {
	if !q.valid() {
		return -1
	}
	return wrapCursor(n, q.state.MaxSize)
}

// Front returns the oldest live element.
func (q *CircularQueue[T]) Front() (T, bool) {
	if !q.valid() || q.state.Size == 0 {
		var zero T
		return zero, false
	}
	return q.at(q.WrapIndex(q.state.Front)), true
}

// Rear returns the newest live element.
func (q *CircularQueue[T]) Rear() (T, bool) {
	if !q.valid() || q.state.Size == 0 {
		var zero T
		return zero, false
	}
	return q.at(q.WrapIndex(q.state.Rear - 1)), true
}

// Push appends e at the rear. On a full queue it fails unless overwrite is
// set, in which case the oldest element is dropped.
func (q *CircularQueue[T]) Push(e T) bool {
	if !q.valid() {
		return false
	}
	if !q.state.Overwrite && q.IsFull() {
		return false
	}

	rear := q.WrapIndex(q.state.Rear)
	q.put(rear, e)
	q.state.Rear = q.WrapIndex(rear + 1)

	if q.state.Overwrite && q.IsFull() {
		q.state.Front = q.WrapIndex(q.state.Front + 1)
		q.logger.Debug("circular queue overwrote oldest element",
			zap.Int("front", q.state.Front),
			zap.Int("size", q.state.Size),
		)
	} else {
		q.state.Size++
	}
	return true
}

// Pop removes and returns the oldest element.
func (q *CircularQueue[T]) Pop() (T, bool) {
	front, ok := q.Front()
	if !ok {
		return front, false
	}
	q.state.Front = q.WrapIndex(q.state.Front + 1)
	q.state.Size--
	return front, true
}

// GetIndex reads relative to the live window: n >= 0 counts forward from
// front, n < 0 counts back from the newest element, so GetIndex(-1) is the
// element pushed just before it.
//
// There is no bounds check against size; |n| >= size reads whatever the
// backing slot holds.
func (q *CircularQueue[T]) GetIndex(n int) (T, bool) {
	if !q.valid() || q.state.Size == 0 {
		var zero T
		return zero, false
	}

	idx := q.state.Front + n
	if n < 0 {
		idx = q.state.Rear - 1 + n
	}
	return q.at(q.WrapIndex(idx)), true
}

// IsEmpty reports size == 0. False if the state is invalid.
func (q *CircularQueue[T]) IsEmpty() bool {
	if !q.valid() {
		return false
	}
	return q.state.Size == 0
}

// IsFull reports size >= maxSize. False if the state is invalid.
func (q *CircularQueue[T]) IsFull() bool {
	if !q.valid() {
		return false
	}
	return q.state.Size >= q.state.MaxSize
}

// Size returns the live element count, or 0 if the state is invalid.
func (q *CircularQueue[T]) Size() int {
	if !q.valid() {
		return 0
	}
	return q.state.Size
}

// MaxSize returns the capacity.
func (q *CircularQueue[T]) MaxSize() int {
	return q.state.MaxSize
}

// Overwrite reports whether pushes on a full queue evict the oldest element.
func (q *CircularQueue[T]) Overwrite() bool {
	return q.state.Overwrite
}

// All yields (physical index, element) over the live window, oldest first.
func (q *CircularQueue[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		if !q.valid() {
			return
		}
		for i := 0; i < q.state.Size; i++ {
			idx := q.WrapIndex(q.state.Front + i)
			if !yield(idx, q.at(idx)) {
				return
			}
		}
	}
}

// ForEach calls fn for each live element, oldest first.
func (q *CircularQueue[T]) ForEach(fn func(index int, e T)) {
	for idx, e := range q.All() {
		fn(idx, e)
	}
}

// Values returns the live elements, oldest first.
func (q *CircularQueue[T]) Values() []T {
	out := make([]T, 0, q.Size())
	for _, e := range q.All() {
		out = append(out, e)
	}
	return out
}

// ClearElements empties the queue and rewinds the cursors.
func (q *CircularQueue[T]) ClearElements() *CircularQueue[T] {
	q.state.Elements = []T{}
	q.state.Front = 0
	q.state.Rear = 0
	q.state.Size = 0
	return q
}

// Reset empties the queue and restores the discriminant. maxSize and
// overwrite are kept.
func (q *CircularQueue[T]) Reset() *CircularQueue[T] {
	q.ClearElements()
	q.state.Type = state.TypeCircularQueue
	return q
}

// Stringify returns the canonical JSON snapshot of the queue.
func (q *CircularQueue[T]) Stringify() (string, error) {
	if !q.valid() {
		return "", ErrInvalidState
	}
	obj, err := q.state.ToIRObject()
	if err != nil {
		return "", fmt.Errorf("cqueue: stringify: %w", err)
	}
	data, err := ir.MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("cqueue: stringify: %w", err)
	}
	return string(data), nil
}

// Restore replaces the whole state with a snapshot. On error the queue is
// left unchanged.
func (q *CircularQueue[T]) Restore(snapshot string) error {
	decoded, err := state.DecodeCircularQueue[T]([]byte(snapshot))
	if err != nil {
		return fmt.Errorf("cqueue: %w", err)
	}
	q.state = decoded
	q.logger.Debug("circular queue restored",
		zap.Int("size", decoded.Size),
		zap.Int("max_size", decoded.MaxSize),
	)
	return nil
}

// State returns a copy of the state record.
func (q *CircularQueue[T]) State() state.CircularQueue[T] {
	return q.state.Clone()
}

// SetCursors moves front, rear and size together. size must be within
// [0, maxSize]; front and rear are wrapped.
func (q *CircularQueue[T]) SetCursors(front, rear, size int) error {
	if !q.valid() {
		return ErrInvalidState
	}
	if size < 0 || size > q.state.MaxSize {
		return state.ValidationError{
			Field:   "size",
			Message: fmt.Sprintf("size %d is outside [0, %d]", size, q.state.MaxSize),
			Code:    state.ErrCursorsInvalid,
		}
	}
	q.state.Front = q.WrapIndex(front)
	q.state.Rear = q.WrapIndex(rear)
	q.state.Size = size
	return nil
}

// Query returns live elements matching filter, oldest first. Each result's
// Delete routes to QueryDelete.
func (q *CircularQueue[T]) Query(filter query.Filter[T], opts query.Options) []query.Result[T] {
	return query.Run[T](source[T]{q}, filter, opts)
}

// QueryDelete removes the element of a query result.
//
// Inside the live window the element is removed and later elements shift
// back one slot, so logical order is kept and rear retracts by one. A match
// outside the live window is a stale slot: it is cleared and size is left
// alone. Returns false if the element is no longer in the queue.
func (q *CircularQueue[T]) QueryDelete(r query.Result[T]) (T, bool) {
	return q.remove(r.Element)
}

// Locate returns the physical index of e, searching the live window first
// and then the rest of the backing storage.
func (q *CircularQueue[T]) Locate(e T) (int, bool) {
	if !q.valid() {
		return -1, false
	}
	for idx, v := range q.All() {
		if v == e {
			return idx, true
		}
	}
	for idx, v := range q.state.Elements {
		if v == e {
			return idx, true
		}
	}
	return -1, false
}

func (q *CircularQueue[T]) remove(e T) (T, bool) {
	var zero T
	index, ok := q.Locate(e)
	if !ok {
		return zero, false
	}

	m := q.state.MaxSize
	front := q.WrapIndex(q.state.Front)
	offset := q.WrapIndex(index - front)

	if index >= m || offset >= q.state.Size {
		removed := q.at(index)
		q.clear(index)
		return removed, true
	}

	removed := q.at(index)
	last := front + q.state.Size - 1
	for k := front + offset; k < last; k++ {
		q.put(k%m, q.at((k+1)%m))
	}
	q.clear(last % m)

	q.state.Size--
	q.state.Rear = q.WrapIndex(q.state.Rear - 1)
	return removed, true
}

// source adapts a queue to query.Source.
type source[T comparable] struct {
	q *CircularQueue[T]
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
	return s.q.Locate(e)
}

func (s source[T]) Remove(e T) (T, bool) {
	return s.q.remove(e)
}
