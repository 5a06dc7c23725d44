package state

import (
	"fmt"

	"github.com/roach88/adt/internal/ir"
)

// Kinds lists every snapshot discriminant ValidateSnapshot understands.
var Kinds = []string{TypeCircularQueue, TypeObjectPool, TypeQueue, TypeStack}

// ValidateSnapshot parses snapshot text, picks the record from its type
// field and validates it. Elements are decoded as plain values, so any JSON
// array is accepted.
//
// The returned value is the parsed snapshot when err is nil. On failure err
// is a *SnapshotError; a missing or unknown type is reported with code
// E210 and an empty kind.
func ValidateSnapshot(data []byte) (string, ir.IRObject, error) {
	v, err := parseSnapshot("", data)
	if err != nil {
		return "", nil, err
	}

	kind := Kind(v)
	switch kind {
	case TypeCircularQueue:
		_, err = CircularQueueFromIR[any](v)
	case TypeObjectPool:
		_, err = ObjectPoolFromIR(v)
	case TypeQueue, TypeStack:
		if errs := SequenceObjectErrors(kind, v); len(errs) > 0 {
			err = invalidError(kind, errs)
		}
	default:
		if _, isObject := objectOf(v); !isObject {
			return "", nil, &SnapshotError{Errors: missingStateErrors()}
		}
		msg := "state type is missing"
		if kind != "" {
			msg = fmt.Sprintf("state type %q is not one of %v", kind, Kinds)
		}
		return "", nil, &SnapshotError{Errors: []ValidationError{{
			Field:   "type",
			Message: msg,
			Code:    ErrWrongType,
		}}}
	}
	if err != nil {
		return kind, nil, err
	}
	return kind, v.(ir.IRObject), nil
}
