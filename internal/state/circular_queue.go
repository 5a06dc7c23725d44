package state

import (
	"fmt"

	"github.com/roach88/adt/internal/ir"
)

// TypeCircularQueue is the discriminant of a circular queue snapshot.
const TypeCircularQueue = "CircularQueue"

// Circular queue defaults.
const (
	DefaultCircularQueueMaxSize = 100
)

// CircularQueue is the serializable state of a ring buffer.
//
// Elements is the backing storage; slots outside the live window may hold
// stale values. Front and Rear are physical indices.
type CircularQueue[T any] struct {
	Type      string `json:"type"`
	Elements  []T    `json:"elements"`
	Overwrite bool   `json:"overwrite"`
	Size      int    `json:"size"`
	MaxSize   int    `json:"maxSize"`
	Front     int    `json:"front"`
	Rear      int    `json:"rear"`
}

// DefaultCircularQueue returns the state of a freshly constructed queue.
func DefaultCircularQueue[T any]() CircularQueue[T] {
	return CircularQueue[T]{
		Type:     TypeCircularQueue,
		Elements: []T{},
		MaxSize:  DefaultCircularQueueMaxSize,
	}
}

// Errors validates the typed record. Returns all errors found.
func (s *CircularQueue[T]) Errors() []ValidationError {
	if s == nil {
		return missingStateErrors()
	}

	var c collector
	c.check(s.Type == TypeCircularQueue, "type", ErrWrongType,
		"state type must be CircularQueue")
	c.check(s.MaxSize >= 1, "maxSize", ErrNotInteger,
		"state maxSize must be an integer >= 1")
	c.check(s.MaxSize <= MaxCapacity, "maxSize", ErrNumberRange, maxSizeLimitMessage)
	c.check(s.Size >= 0, "size", ErrNotInteger,
		"state size must be an integer >= 0")
	c.check(s.MaxSize < 1 || s.Size <= s.MaxSize, "size", ErrNumberRange,
		"state size must not exceed maxSize")
	return c.errs
}

// IsValid reports whether Errors is empty.
func (s *CircularQueue[T]) IsValid() bool {
	return len(s.Errors()) == 0
}

// Clone returns a copy whose Elements slice is not shared with s.
func (s CircularQueue[T]) Clone() CircularQueue[T] {
	out := s
	out.Elements = append(make([]T, 0, len(s.Elements)), s.Elements...)
	return out
}

// ToIRObject converts the record into its snapshot form. Elements are
// encoded with the JSON codec.
func (s CircularQueue[T]) ToIRObject() (ir.IRObject, error) {
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
		"type":      ir.IRString(s.Type),
		"elements":  elements,
		"overwrite": ir.IRBool(s.Overwrite),
		"size":      ir.IRInt(s.Size),
		"maxSize":   ir.IRInt(s.MaxSize),
		"front":     ir.IRInt(s.Front),
		"rear":      ir.IRInt(s.Rear),
	}, nil
}

// CircularQueueObjectErrors validates the raw form of a circular queue
// snapshot. Field order matches the record: type, elements, overwrite,
// maxSize, size, front, rear.
func CircularQueueObjectErrors(v ir.IRValue) []ValidationError {
	obj, ok := objectOf(v)
	if !ok {
		return missingStateErrors()
	}

	var c collector
	c.check(isString(obj["type"], TypeCircularQueue), "type", ErrWrongType,
		"state type must be CircularQueue")
	c.check(isArray(obj["elements"]), "elements", ErrNotArray,
		"state elements must be an array")
	c.check(isBool(obj["overwrite"]), "overwrite", ErrNotBoolean,
		"state overwrite must be a boolean")
	c.check(isIntAtLeast(obj["maxSize"], 1), "maxSize", ErrNotInteger,
		"state maxSize must be an integer >= 1")
	c.check(!isIntAbove(obj["maxSize"], MaxCapacity), "maxSize", ErrNumberRange, maxSizeLimitMessage)
	c.check(isIntAtLeast(obj["size"], 0), "size", ErrNotInteger,
		"state size must be an integer >= 0")
	c.check(!exceedsCapacity(obj["size"], obj["maxSize"]), "size", ErrNumberRange,
		"state size must not exceed maxSize")
	c.check(isInt(obj["front"]), "front", ErrNotInteger,
		"state front must be an integer")
	c.check(isInt(obj["rear"]), "rear", ErrNotInteger,
		"state rear must be an integer")
	return c.errs
}

// DecodeCircularQueue parses snapshot text into a typed record.
// On failure the error is a *SnapshotError.
func DecodeCircularQueue[T any](data []byte) (CircularQueue[T], error) {
	v, err := parseSnapshot(TypeCircularQueue, data)
	if err != nil {
		return CircularQueue[T]{}, err
	}
	return CircularQueueFromIR[T](v)
}

// CircularQueueFromIR maps a raw snapshot onto a typed record after
// validating it. Front and rear are wrapped into [0, maxSize).
func CircularQueueFromIR[T any](v ir.IRValue) (CircularQueue[T], error) {
	if errs := CircularQueueObjectErrors(v); len(errs) > 0 {
		return CircularQueue[T]{}, invalidError(TypeCircularQueue, errs)
	}
	obj := v.(ir.IRObject)

	elements := []T{}
	if err := ir.Decode(obj["elements"], &elements); err != nil {
		return CircularQueue[T]{}, invalidError(TypeCircularQueue, []ValidationError{{
			Field:   "elements",
			Message: fmt.Sprintf("state elements could not be decoded: %v", err),
			Code:    ErrElementsDecode,
		}})
	}

	maxSize, _ := ir.AsInt(obj["maxSize"])
	size, _ := ir.AsInt(obj["size"])
	front, _ := ir.AsInt(obj["front"])
	rear, _ := ir.AsInt(obj["rear"])

	return CircularQueue[T]{
		Type:      TypeCircularQueue,
		Elements:  elements,
		Overwrite: bool(obj["overwrite"].(ir.IRBool)),
		Size:      int(size),
		MaxSize:   int(maxSize),
		Front:     wrap(int(front), int(maxSize)),
		Rear:      wrap(int(rear), int(maxSize)),
	}, nil
}
