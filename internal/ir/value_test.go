package ir

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("test")
	var _ IRValue = IRInt(42)
	var _ IRValue = IRFloat(0.5)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"key": IRString("value")}
}

func TestIRObjectSortedKeys(t *testing.T) {
	obj := IRObject{
		"a":  IRInt(1),
		"A":  IRInt(2),
		"aa": IRInt(3),
		"aA": IRInt(4),
		"Aa": IRInt(5),
		"AA": IRInt(6),
	}

	assert.Equal(t, []string{"A", "AA", "Aa", "a", "aA", "aa"}, obj.SortedKeys())
	assert.Empty(t, IRObject{}.SortedKeys())
}

func TestCompareKeysRFC8785(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a", 0},
		{"a", "ab", -1},
		{"\U00010000", "\uE000", -1},
		{"\uE000", "\U00010000", 1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, compareKeysRFC8785(tt.a, tt.b))
		})
	}
}

func TestKind(t *testing.T) {
	tests := []struct {
		value IRValue
		want  string
	}{
		{nil, "null"},
		{IRNull{}, "null"},
		{IRString("x"), "string"},
		{IRInt(1), "number"},
		{IRFloat(1.5), "number"},
		{IRBool(true), "boolean"},
		{IRArray{}, "array"},
		{IRObject{}, "object"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, Kind(tt.value))
		})
	}
}

func TestAsInt(t *testing.T) {
	tests := []struct {
		name  string
		value IRValue
		want  int64
		ok    bool
	}{
		{"int", IRInt(7), 7, true},
		{"negative int", IRInt(-3), -3, true},
		{"integral float", IRFloat(4), 4, true},
		{"fractional float", IRFloat(4.5), 0, false},
		{"infinite float", IRFloat(math.Inf(1)), 0, false},
		{"string", IRString("4"), 0, false},
		{"null", IRNull{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsInt(tt.value)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAsFloat(t *testing.T) {
	f, ok := AsFloat(IRInt(2))
	assert.True(t, ok)
	assert.Equal(t, 2.0, f)

	f, ok = AsFloat(IRFloat(0.75))
	assert.True(t, ok)
	assert.Equal(t, 0.75, f)

	_, ok = AsFloat(IRBool(true))
	assert.False(t, ok)
}

func TestUnmarshalIRValue(t *testing.T) {
	val, err := UnmarshalIRValue([]byte(`{"n":1,"f":1.5,"e":1e2,"s":"x","b":true,"z":null,"a":[1,"two"]}`))
	require.NoError(t, err)

	obj, ok := val.(IRObject)
	require.True(t, ok)
	assert.Equal(t, IRInt(1), obj["n"])
	assert.Equal(t, IRFloat(1.5), obj["f"])
	assert.Equal(t, IRFloat(100), obj["e"])
	assert.Equal(t, IRString("x"), obj["s"])
	assert.Equal(t, IRBool(true), obj["b"])
	assert.Equal(t, IRNull{}, obj["z"])
	assert.Equal(t, IRArray{IRInt(1), IRString("two")}, obj["a"])
}

func TestUnmarshalIRValueInvalidJSON(t *testing.T) {
	tests := []string{
		`{`,
		`{"a":}`,
		``,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := UnmarshalIRValue([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestUnmarshalIRValueTrailingData(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"garbage after object", `{"a":1} trailing-garbage`, true},
		{"second value", `{"a":1}{"b":2}`, true},
		{"second scalar", `1 2`, true},
		{"trailing whitespace", "{\"a\":1}\n\t ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			val, err := UnmarshalIRValue([]byte(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, val)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, IRObject{"a": IRInt(1)}, val)
		})
	}
}

func TestFromAnyToAnyRoundTrip(t *testing.T) {
	input := map[string]any{
		"list":  []any{int64(1), "a", nil, true},
		"float": 0.5,
		"obj":   map[string]any{"k": "v"},
	}

	val, err := FromAny(input)
	require.NoError(t, err)
	assert.Equal(t, input, ToAny(val))
}

func TestFromAnyRejectsNonFinite(t *testing.T) {
	_, err := FromAny([]any{math.NaN()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "array[0]")
}

func TestEncodeDecode(t *testing.T) {
	type widget struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	val, err := Encode(widget{Name: "bolt", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"name": IRString("bolt"), "count": IRInt(3)}, val)

	var out widget
	require.NoError(t, Decode(val, &out))
	assert.Equal(t, widget{Name: "bolt", Count: 3}, out)
}

func TestHelperConstructors(t *testing.T) {
	obj := NewIRObjectFromPairs(
		O("size", IRInt(2)),
		O("overwrite", IRBool(false)),
	)
	assert.Equal(t, IRObject{"size": IRInt(2), "overwrite": IRBool(false)}, obj)
}
