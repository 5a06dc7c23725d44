package ir

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf16"

	gojson "github.com/goccy/go-json"
)

// IRValue is a sealed interface representing the JSON value kinds a
// snapshot can carry. Only IRNull, IRString, IRInt, IRFloat, IRBool,
// IRArray and IRObject implement it.
//
// Snapshots are decoded into IRValue first and only then mapped onto typed
// state records, so that a wrong kind (a string where an integer belongs)
// is reported per field instead of aborting the whole decode.
type IRValue interface {
	irValue() // Sealed - only these types implement it
}

// IRNull represents a JSON null value.
type IRNull struct{}

func (IRNull) irValue() {}

// MarshalJSON implements json.Marshaler for IRNull.
func (IRNull) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// IRString represents a string value.
type IRString string

func (IRString) irValue() {}

// IRInt represents a number written without fraction or exponent.
type IRInt int64

func (IRInt) irValue() {}

// IRFloat represents any other JSON number.
type IRFloat float64

func (IRFloat) irValue() {}

// IRBool represents a boolean value.
type IRBool bool

func (IRBool) irValue() {}

// IRArray represents an array of IRValue elements.
type IRArray []IRValue

func (IRArray) irValue() {}

// IRObject represents a map of string keys to IRValue elements.
// Use SortedKeys() for deterministic iteration.
type IRObject map[string]IRValue

func (IRObject) irValue() {}

// IRPair represents a key-value pair for IRObject construction.
type IRPair struct {
	Key   string
	Value IRValue
}

// O is a shorthand for IRPair.
// Example: NewIRObjectFromPairs(O("size", IRInt(2)), O("overwrite", IRBool(false)))
func O(key string, value IRValue) IRPair {
	return IRPair{Key: key, Value: value}
}

// NewIRObjectFromPairs creates an IRObject from key-value pairs.
func NewIRObjectFromPairs(pairs ...IRPair) IRObject {
	obj := make(IRObject, len(pairs))
	for _, p := range pairs {
		obj[p.Key] = p.Value
	}
	return obj
}

// Kind returns a short, human-readable name of the value's JSON kind.
func Kind(v IRValue) string {
	switch v.(type) {
	case nil, IRNull:
		return "null"
	case IRString:
		return "string"
	case IRInt, IRFloat:
		return "number"
	case IRBool:
		return "boolean"
	case IRArray:
		return "array"
	case IRObject:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// AsInt reports whether v is an integral number and returns it.
// An IRFloat with no fractional part (2.0) counts as an integer.
func AsInt(v IRValue) (int64, bool) {
	switch n := v.(type) {
	case IRInt:
		return int64(n), true
	case IRFloat:
		f := float64(n)
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return 0, false
		}
		if f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	default:
		return 0, false
	}
}

// AsFloat reports whether v is a number and returns it as float64.
func AsFloat(v IRValue) (float64, bool) {
	switch n := v.(type) {
	case IRInt:
		return float64(n), true
	case IRFloat:
		if math.IsNaN(float64(n)) {
			return 0, false
		}
		return float64(n), true
	default:
		return 0, false
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings uses UTF-8 order which differs for supplementary planes.
func (obj IRObject) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

// compareKeysRFC8785 compares strings using UTF-16 code unit ordering.
func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	minLen := min(len(a16), len(b16))
	for i := 0; i < minLen; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}

	switch {
	case len(a16) < len(b16):
		return -1
	case len(a16) > len(b16):
		return 1
	default:
		return 0
	}
}

// UnmarshalIRValue decodes JSON bytes into an IRValue.
// Numbers keep their written form: integers become IRInt, everything else
// IRFloat. The input must hold exactly one value; anything but whitespace
// after it is an error.
func UnmarshalIRValue(data []byte) (IRValue, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	var extra any
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after JSON value")
	}

	return FromAny(raw)
}

// FromAny converts a decoded Go value (as produced by a JSON decoder, or
// built by hand) into an IRValue.
func FromAny(v any) (IRValue, error) {
	switch val := v.(type) {
	case nil:
		return IRNull{}, nil
	case IRValue:
		return val, nil
	case bool:
		return IRBool(val), nil
	case string:
		return IRString(val), nil
	case gojson.Number:
		return numberToIRValue(string(val))
	case int:
		return IRInt(val), nil
	case int32:
		return IRInt(val), nil
	case int64:
		return IRInt(val), nil
	case float32:
		return floatToIRValue(float64(val))
	case float64:
		return floatToIRValue(val)
	case []any:
		arr := make(IRArray, len(val))
		for i, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = irElem
		}
		return arr, nil
	case map[string]any:
		obj := make(IRObject, len(val))
		for k, elem := range val {
			irElem, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("object[%q]: %w", k, err)
			}
			obj[k] = irElem
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// ToAny converts an IRValue back into plain Go values: nil, bool, string,
// int64, float64, []any and map[string]any.
func ToAny(v IRValue) any {
	switch val := v.(type) {
	case nil, IRNull:
		return nil
	case IRString:
		return string(val)
	case IRInt:
		return int64(val)
	case IRFloat:
		return float64(val)
	case IRBool:
		return bool(val)
	case IRArray:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case IRObject:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

func numberToIRValue(s string) (IRValue, error) {
	if !strings.ContainsAny(s, ".eE") {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IRInt(n), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", s, err)
	}
	return IRFloat(f), nil
}

func floatToIRValue(f float64) (IRValue, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("non-finite number %v cannot be represented in JSON", f)
	}
	return IRFloat(f), nil
}

// Encode marshals any Go value with the element codec and converts the
// result into an IRValue.
func Encode(v any) (IRValue, error) {
	data, err := gojson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return UnmarshalIRValue(data)
}

// Decode maps an IRValue onto the Go value pointed to by out.
func Decode(v IRValue, out any) error {
	data, err := MarshalCanonical(v)
	if err != nil {
		return err
	}
	return gojson.Unmarshal(data, out)
}
