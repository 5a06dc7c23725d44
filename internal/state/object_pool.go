package state

import (
	"github.com/roach88/adt/internal/ir"
)

// TypeObjectPool is the discriminant of an object pool snapshot.
const TypeObjectPool = "ObjectPool"

// Object pool defaults.
const (
	DefaultObjectPoolStartSize          = 1
	DefaultObjectPoolMaxSize            = 1000
	DefaultObjectPoolIncreaseBreakPoint = 1.0
	DefaultObjectPoolIncreaseFactor     = 2.0
)

// ObjectPool is the serializable part of an object pool. The instances
// themselves are held by the pool and never serialized; a snapshot carries
// empty pool and used arrays.
type ObjectPool struct {
	Type               string  `json:"type"`
	AutoIncrease       bool    `json:"autoIncrease"`
	StartSize          int     `json:"startSize"`
	ObjectCount        int     `json:"objectCount"`
	MaxSize            int     `json:"maxSize"`
	IncreaseBreakPoint float64 `json:"increaseBreakPoint"`
	IncreaseFactor     float64 `json:"increaseFactor"`
	InstanceArgs       []any   `json:"instanceArgs"`
}

// DefaultObjectPool returns the state of a freshly configured pool before
// any instances are built.
func DefaultObjectPool() ObjectPool {
	return ObjectPool{
		Type:               TypeObjectPool,
		StartSize:          DefaultObjectPoolStartSize,
		MaxSize:            DefaultObjectPoolMaxSize,
		IncreaseBreakPoint: DefaultObjectPoolIncreaseBreakPoint,
		IncreaseFactor:     DefaultObjectPoolIncreaseFactor,
		InstanceArgs:       []any{},
	}
}

// Errors validates the typed record. Returns all errors found.
func (s *ObjectPool) Errors() []ValidationError {
	if s == nil {
		return missingStateErrors()
	}

	var c collector
	c.check(s.Type == TypeObjectPool, "type", ErrWrongType,
		"state type must be ObjectPool")
	c.check(s.StartSize >= 0, "startSize", ErrNotInteger,
		"state startSize must be an integer >= 0")
	c.check(s.ObjectCount >= 0, "objectCount", ErrNotInteger,
		"state objectCount must be an integer >= 0")
	c.check(s.MaxSize >= 1, "maxSize", ErrNotInteger,
		"state maxSize must be an integer >= 1")
	c.check(s.MaxSize <= MaxCapacity, "maxSize", ErrNumberRange, maxSizeLimitMessage)
	c.check(ValidBreakPoint(s.IncreaseBreakPoint), "increaseBreakPoint", ErrNumberRange,
		"state increaseBreakPoint must be a number between 0 and 1")
	c.check(ValidIncreaseFactor(s.IncreaseFactor), "increaseFactor", ErrNumberRange,
		"state increaseFactor must be a number > 1")
	return c.errs
}

// IsValid reports whether Errors is empty.
func (s *ObjectPool) IsValid() bool {
	return len(s.Errors()) == 0
}

// ValidBreakPoint reports whether f is usable as increaseBreakPoint.
func ValidBreakPoint(f float64) bool {
	return finite(f) && f >= 0 && f <= 1
}

// ValidIncreaseFactor reports whether f is usable as increaseFactor.
func ValidIncreaseFactor(f float64) bool {
	return finite(f) && f > 1
}

// Clone returns a copy whose InstanceArgs slice is not shared with s.
func (s ObjectPool) Clone() ObjectPool {
	out := s
	out.InstanceArgs = append(make([]any, 0, len(s.InstanceArgs)), s.InstanceArgs...)
	return out
}

// ToIRObject converts the record into its snapshot form with pool and used
// redacted to empty arrays.
func (s ObjectPool) ToIRObject() (ir.IRObject, error) {
	args := ir.IRArray{}
	for _, a := range s.InstanceArgs {
		v, err := ir.FromAny(a)
		if err != nil {
			// Arbitrary Go values go through the JSON codec.
			v, err = ir.Encode(a)
			if err != nil {
				return nil, err
			}
		}
		args = append(args, v)
	}

	return ir.IRObject{
		"type":               ir.IRString(s.Type),
		"pool":               ir.IRArray{},
		"used":               ir.IRArray{},
		"autoIncrease":       ir.IRBool(s.AutoIncrease),
		"startSize":          ir.IRInt(s.StartSize),
		"objectCount":        ir.IRInt(s.ObjectCount),
		"maxSize":            ir.IRInt(s.MaxSize),
		"increaseBreakPoint": ir.IRFloat(s.IncreaseBreakPoint),
		"increaseFactor":     ir.IRFloat(s.IncreaseFactor),
		"instanceArgs":       args,
	}, nil
}

// ObjectPoolObjectErrors validates the raw form of an object pool snapshot.
// Field order: type, pool, used, autoIncrease, startSize, objectCount,
// maxSize, increaseBreakPoint, increaseFactor, instanceArgs.
func ObjectPoolObjectErrors(v ir.IRValue) []ValidationError {
	obj, ok := objectOf(v)
	if !ok {
		return missingStateErrors()
	}

	var c collector
	c.check(isString(obj["type"], TypeObjectPool), "type", ErrWrongType,
		"state type must be ObjectPool")
	c.check(isArray(obj["pool"]), "pool", ErrNotArray,
		"state pool must be an array")
	c.check(isArray(obj["used"]), "used", ErrNotArray,
		"state used must be an array")
	c.check(isBool(obj["autoIncrease"]), "autoIncrease", ErrNotBoolean,
		"state autoIncrease must be a boolean")
	c.check(isIntAtLeast(obj["startSize"], 0), "startSize", ErrNotInteger,
		"state startSize must be an integer >= 0")
	c.check(isIntAtLeast(obj["objectCount"], 0), "objectCount", ErrNotInteger,
		"state objectCount must be an integer >= 0")
	c.check(isIntAtLeast(obj["maxSize"], 1), "maxSize", ErrNotInteger,
		"state maxSize must be an integer >= 1")
	c.check(!isIntAbove(obj["maxSize"], MaxCapacity), "maxSize", ErrNumberRange, maxSizeLimitMessage)
	c.check(isNumberBetween(obj["increaseBreakPoint"], 0, 1), "increaseBreakPoint", ErrNumberRange,
		"state increaseBreakPoint must be a number between 0 and 1")
	c.check(isNumberAbove(obj["increaseFactor"], 1), "increaseFactor", ErrNumberRange,
		"state increaseFactor must be a number > 1")
	c.check(isArray(obj["instanceArgs"]), "instanceArgs", ErrNotArray,
		"state instanceArgs must be an array")
	return c.errs
}

// DecodeObjectPool parses snapshot text into a typed record.
// On failure the error is a *SnapshotError.
func DecodeObjectPool(data []byte) (ObjectPool, error) {
	v, err := parseSnapshot(TypeObjectPool, data)
	if err != nil {
		return ObjectPool{}, err
	}
	return ObjectPoolFromIR(v)
}

// ObjectPoolFromIR maps a raw snapshot onto a typed record after validating
// it. Instance args become plain Go values (int64, float64, string, ...).
func ObjectPoolFromIR(v ir.IRValue) (ObjectPool, error) {
	if errs := ObjectPoolObjectErrors(v); len(errs) > 0 {
		return ObjectPool{}, invalidError(TypeObjectPool, errs)
	}
	obj := v.(ir.IRObject)

	startSize, _ := ir.AsInt(obj["startSize"])
	objectCount, _ := ir.AsInt(obj["objectCount"])
	maxSize, _ := ir.AsInt(obj["maxSize"])
	breakPoint, _ := ir.AsFloat(obj["increaseBreakPoint"])
	factor, _ := ir.AsFloat(obj["increaseFactor"])

	rawArgs := obj["instanceArgs"].(ir.IRArray)
	args := make([]any, len(rawArgs))
	for i, a := range rawArgs {
		args[i] = ir.ToAny(a)
	}

	return ObjectPool{
		Type:               TypeObjectPool,
		AutoIncrease:       bool(obj["autoIncrease"].(ir.IRBool)),
		StartSize:          int(startSize),
		ObjectCount:        int(objectCount),
		MaxSize:            int(maxSize),
		IncreaseBreakPoint: breakPoint,
		IncreaseFactor:     factor,
		InstanceArgs:       args,
	}, nil
}
