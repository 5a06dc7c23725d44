package state

import (
	"fmt"
	"math"

	"github.com/roach88/adt/internal/ir"
)

// MaxCapacity is the largest maxSize any container accepts. Every slot up
// to maxSize may be backed by memory.
const MaxCapacity = 1 << 24

var maxSizeLimitMessage = fmt.Sprintf("state maxSize must be an integer <= %d", MaxCapacity)

// collector accumulates validation errors in the order checks run.
type collector struct {
	errs []ValidationError
}

func (c *collector) check(ok bool, field, code, message string) {
	if ok {
		return
	}
	c.errs = append(c.errs, ValidationError{
		Field:   field,
		Message: message,
		Code:    code,
	})
}

func isString(v ir.IRValue, want string) bool {
	s, ok := v.(ir.IRString)
	return ok && string(s) == want
}

func isArray(v ir.IRValue) bool {
	_, ok := v.(ir.IRArray)
	return ok
}

func isBool(v ir.IRValue) bool {
	_, ok := v.(ir.IRBool)
	return ok
}

func isInt(v ir.IRValue) bool {
	_, ok := ir.AsInt(v)
	return ok
}

func isIntAtLeast(v ir.IRValue, lower int64) bool {
	n, ok := ir.AsInt(v)
	return ok && n >= lower
}

// isIntAbove reports whether v is an integer greater than upper. Non-integers
// are left to the other checks.
func isIntAbove(v ir.IRValue, upper int64) bool {
	n, ok := ir.AsInt(v)
	return ok && n > upper
}

func isNumberBetween(v ir.IRValue, lower, upper float64) bool {
	f, ok := ir.AsFloat(v)
	return ok && f >= lower && f <= upper
}

func isNumberAbove(v ir.IRValue, lower float64) bool {
	f, ok := ir.AsFloat(v)
	return ok && f > lower
}

// exceedsCapacity reports whether size and maxSize are both integers, maxSize
// is at least 1 and size is larger. Other shapes are left to the field checks.
func exceedsCapacity(size, maxSize ir.IRValue) bool {
	n, ok := ir.AsInt(size)
	if !ok {
		return false
	}
	m, ok := ir.AsInt(maxSize)
	return ok && m >= 1 && n > m
}

// wrap maps n into [0, m). m must be >= 1.
func wrap(n, m int) int {
	return ((n % m) + m) % m
}

// finite reports whether f is neither NaN nor infinite.
func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// objectOf returns v as an object. Any non-object value is treated as an
// object with no fields so every field check reports.
func objectOf(v ir.IRValue) (ir.IRObject, bool) {
	switch val := v.(type) {
	case nil, ir.IRNull:
		return nil, false
	case ir.IRObject:
		return val, true
	default:
		return ir.IRObject{}, true
	}
}

// Kind returns the discriminant of a raw snapshot, or "" if it has none.
func Kind(v ir.IRValue) string {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return ""
	}
	s, ok := obj["type"].(ir.IRString)
	if !ok {
		return ""
	}
	return string(s)
}

// parseSnapshot turns snapshot text into an IRValue, mapping a JSON failure
// onto a SnapshotError for kind.
func parseSnapshot(kind string, data []byte) (ir.IRValue, error) {
	v, err := ir.UnmarshalIRValue(data)
	if err != nil {
		return nil, parseError(kind, err)
	}
	return v, nil
}
