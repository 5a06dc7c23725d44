package state

import (
	"fmt"

	"github.com/roach88/adt/internal/ir"
)

// Discriminants of the unbounded containers.
const (
	TypeQueue = "Queue"
	TypeStack = "Stack"
)

// Sequence is the serializable state of an unbounded queue or stack.
// Elements are stored oldest first.
type Sequence[T any] struct {
	Type     string `json:"type"`
	Elements []T    `json:"elements"`
}

// DefaultSequence returns the state of an empty container of the given kind.
func DefaultSequence[T any](kind string) Sequence[T] {
	return Sequence[T]{Type: kind, Elements: []T{}}
}

// Errors validates the typed record against kind.
func (s *Sequence[T]) Errors(kind string) []ValidationError {
	if s == nil {
		return missingStateErrors()
	}

	var c collector
	c.check(s.Type == kind, "type", ErrWrongType,
		"state type must be "+kind)
	return c.errs
}

// Clone returns a copy whose Elements slice is not shared with s.
func (s Sequence[T]) Clone() Sequence[T] {
	out := s
	out.Elements = append(make([]T, 0, len(s.Elements)), s.Elements...)
	return out
}

// ToIRObject converts the record into its snapshot form.
func (s Sequence[T]) ToIRObject() (ir.IRObject, error) {
	elements := ir.IRArray{}
	if len(s.Elements) > 0 {
		v, err := ir.Encode(s.Elements)
		if err != nil {
			return nil, fmt.Errorf("encode elements: %w", err)
		}
		arr, ok := v.(ir.IRArray)
		if !ok {
			return nil, fmt.Errorf("encode elements: got %s, want array", ir.Kind(v))
		}
		elements = arr
	}
	return ir.IRObject{
		"type":     ir.IRString(s.Type),
		"elements": elements,
	}, nil
}

// SequenceObjectErrors validates the raw form of a queue or stack snapshot.
func SequenceObjectErrors(kind string, v ir.IRValue) []ValidationError {
	obj, ok := objectOf(v)
	if !ok {
		return missingStateErrors()
	}

	var c collector
	c.check(isString(obj["type"], kind), "type", ErrWrongType,
		"state type must be "+kind)
	c.check(isArray(obj["elements"]), "elements", ErrNotArray,
		"state elements must be an array")
	return c.errs
}

// DecodeSequence parses snapshot text of the given kind into a typed record.
// On failure the error is a *SnapshotError.
func DecodeSequence[T any](kind string, data []byte) (Sequence[T], error) {
	v, err := parseSnapshot(kind, data)
	if err != nil {
		return Sequence[T]{}, err
	}
	if errs := SequenceObjectErrors(kind, v); len(errs) > 0 {
		return Sequence[T]{}, invalidError(kind, errs)
	}

	elements := []T{}
	if err := ir.Decode(v.(ir.IRObject)["elements"], &elements); err != nil {
		return Sequence[T]{}, invalidError(kind, []ValidationError{{
			Field:   "elements",
			Message: fmt.Sprintf("state elements could not be decoded: %v", err),
			Code:    ErrElementsDecode,
		}})
	}
	return Sequence[T]{Type: kind, Elements: elements}, nil
}
