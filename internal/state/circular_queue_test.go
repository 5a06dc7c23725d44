package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/adt/internal/ir"
)

const validCircularQueueSnapshot = `{"type": "CircularQueue","elements": [1,2],"overwrite": false,"maxSize": 9,"size": 2,"front": 3,"rear": 5}`

func messages(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Message
	}
	return out
}

func defaultCircularQueueObject() ir.IRObject {
	return ir.IRObject{
		"type":      ir.IRString("CircularQueue"),
		"elements":  ir.IRArray{},
		"overwrite": ir.IRBool(false),
		"size":      ir.IRInt(0),
		"maxSize":   ir.IRInt(100),
		"front":     ir.IRInt(0),
		"rear":      ir.IRInt(0),
	}
}

func TestCircularQueueObjectErrorsValid(t *testing.T) {
	assert.Empty(t, CircularQueueObjectErrors(defaultCircularQueueObject()))
}

func TestCircularQueueObjectErrorsNull(t *testing.T) {
	for _, v := range []ir.IRValue{nil, ir.IRNull{}} {
		assert.Equal(t, []string{"state is null or undefined"}, messages(CircularQueueObjectErrors(v)))
	}
}

func TestCircularQueueObjectErrorsPerField(t *testing.T) {
	tests := []struct {
		field string
		value ir.IRValue
		want  string
		code  string
	}{
		{"type", ir.IRString("Queue"), "state type must be CircularQueue", ErrWrongType},
		{"elements", ir.IRInt(4), "state elements must be an array", ErrNotArray},
		{"overwrite", ir.IRString("true"), "state overwrite must be a boolean", ErrNotBoolean},
		{"maxSize", ir.IRInt(0), "state maxSize must be an integer >= 1", ErrNotInteger},
		{"maxSize", ir.IRFloat(1.5), "state maxSize must be an integer >= 1", ErrNotInteger},
		{"maxSize", ir.IRInt(MaxCapacity + 1), "state maxSize must be an integer <= 16777216", ErrNumberRange},
		{"size", ir.IRInt(-1), "state size must be an integer >= 0", ErrNotInteger},
		{"size", ir.IRInt(101), "state size must not exceed maxSize", ErrNumberRange},
		{"front", ir.IRFloat(0.5), "state front must be an integer", ErrNotInteger},
		{"rear", ir.IRNull{}, "state rear must be an integer", ErrNotInteger},
	}

	for _, tt := range tests {
		t.Run(tt.field+"_"+ir.Kind(tt.value), func(t *testing.T) {
			obj := defaultCircularQueueObject()
			obj[tt.field] = tt.value

			errs := CircularQueueObjectErrors(obj)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.want, errs[0].Message)
			assert.Equal(t, tt.code, errs[0].Code)
			assert.Equal(t, tt.field, errs[0].Field)
		})
	}
}

func TestCircularQueueObjectErrorsFieldOrder(t *testing.T) {
	errs := CircularQueueObjectErrors(ir.IRObject{})
	assert.Equal(t, []string{
		"state type must be CircularQueue",
		"state elements must be an array",
		"state overwrite must be a boolean",
		"state maxSize must be an integer >= 1",
		"state size must be an integer >= 0",
		"state front must be an integer",
		"state rear must be an integer",
	}, messages(errs))

	// A non-object is treated as an object with no fields.
	assert.Len(t, CircularQueueObjectErrors(ir.IRInt(4)), 7)
}

func TestDecodeCircularQueue(t *testing.T) {
	s, err := DecodeCircularQueue[int](([]byte)(validCircularQueueSnapshot))
	require.NoError(t, err)

	assert.Equal(t, CircularQueue[int]{
		Type:     TypeCircularQueue,
		Elements: []int{1, 2},
		Size:     2,
		MaxSize:  9,
		Front:    3,
		Rear:     5,
	}, s)
	assert.True(t, s.IsValid())
}

func TestDecodeCircularQueueParseError(t *testing.T) {
	_, err := DecodeCircularQueue[int]([]byte(`[4,3,`))
	require.Error(t, err)

	var se *SnapshotError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Errors, 1)
	assert.Equal(t, ErrSnapshotParse, se.Errors[0].Code)
	assert.Equal(t, TypeCircularQueue, se.Kind)
	assert.True(t, IsSnapshotError(err))
}

func TestDecodeCircularQueueInvalidFields(t *testing.T) {
	tests := []string{
		`{}`,
		`{"type": "CircularQueue"}`,
		`{"elements":4, "type": "CircularQueue"}`,
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			raw, err := ir.UnmarshalIRValue([]byte(input))
			require.NoError(t, err)

			want := append([]string{"state is not a valid CircularQueueState"},
				messages(CircularQueueObjectErrors(raw))...)

			_, err = DecodeCircularQueue[int]([]byte(input))
			var se *SnapshotError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, want, se.Messages())
			assert.Equal(t, ErrSnapshotInvalid, se.Errors[0].Code)
		})
	}
}

func TestDecodeCircularQueueElementMismatch(t *testing.T) {
	input := `{"type":"CircularQueue","elements":["a"],"overwrite":false,"maxSize":2,"size":1,"front":0,"rear":1}`

	_, err := DecodeCircularQueue[int]([]byte(input))
	var se *SnapshotError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Errors, 2)
	assert.Equal(t, ErrElementsDecode, se.Errors[1].Code)
	assert.Equal(t, "elements", se.Errors[1].Field)
}

func TestSnapshotErrorJoinsMessages(t *testing.T) {
	_, err := DecodeCircularQueue[int]([]byte(`{"type":"CircularQueue"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state is not a valid CircularQueueState\nstate elements must be an array")
}

func TestCircularQueueTypedErrors(t *testing.T) {
	s := DefaultCircularQueue[int]()
	assert.Empty(t, s.Errors())

	s.Type = ""
	s.MaxSize = 0
	s.Size = -1
	assert.Equal(t, []string{
		"state type must be CircularQueue",
		"state maxSize must be an integer >= 1",
		"state size must be an integer >= 0",
	}, messages(s.Errors()))
	assert.False(t, s.IsValid())

	var missing *CircularQueue[int]
	assert.Equal(t, []string{"state is null or undefined"}, messages(missing.Errors()))
}

func TestCircularQueueTypedErrorsCapacity(t *testing.T) {
	s := DefaultCircularQueue[int]()
	s.Size = s.MaxSize + 1
	assert.Equal(t, []string{"state size must not exceed maxSize"}, messages(s.Errors()))

	s = DefaultCircularQueue[int]()
	s.MaxSize = MaxCapacity + 1
	assert.Equal(t, []string{"state maxSize must be an integer <= 16777216"}, messages(s.Errors()))
}

func TestDecodeCircularQueueRejectsHugeMaxSize(t *testing.T) {
	input := `{"type":"CircularQueue","elements":[],"overwrite":false,"maxSize":4000000000000,"size":0,"front":3999999999999,"rear":3999999999999}`

	_, err := DecodeCircularQueue[int]([]byte(input))
	require.Error(t, err)

	var se *SnapshotError
	require.ErrorAs(t, err, &se)
	require.Len(t, se.Errors, 2)
	assert.Equal(t, ErrSnapshotInvalid, se.Errors[0].Code)
	assert.Equal(t, ErrNumberRange, se.Errors[1].Code)
	assert.Equal(t, "maxSize", se.Errors[1].Field)
}

func TestDecodeCircularQueueWrapsCursors(t *testing.T) {
	input := `{"type":"CircularQueue","elements":[],"overwrite":false,"maxSize":9,"size":0,"front":13,"rear":-1}`

	s, err := DecodeCircularQueue[int]([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, 4, s.Front)
	assert.Equal(t, 8, s.Rear)
}

func TestCircularQueueRoundTrip(t *testing.T) {
	s, err := DecodeCircularQueue[int]([]byte(validCircularQueueSnapshot))
	require.NoError(t, err)

	obj, err := s.ToIRObject()
	require.NoError(t, err)
	data, err := ir.MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t,
		`{"elements":[1,2],"front":3,"maxSize":9,"overwrite":false,"rear":5,"size":2,"type":"CircularQueue"}`,
		string(data))

	again, err := DecodeCircularQueue[int](data)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}

func TestCircularQueueToIRObjectEmptyElements(t *testing.T) {
	s := DefaultCircularQueue[string]()
	s.Elements = nil

	obj, err := s.ToIRObject()
	require.NoError(t, err)
	assert.Equal(t, ir.IRArray{}, obj["elements"])
}

func TestCircularQueueClone(t *testing.T) {
	s := DefaultCircularQueue[int]()
	s.Elements = []int{1, 2}

	c := s.Clone()
	c.Elements[0] = 9
	assert.Equal(t, 1, s.Elements[0])
}

func TestKind(t *testing.T) {
	raw, err := ir.UnmarshalIRValue([]byte(validCircularQueueSnapshot))
	require.NoError(t, err)
	assert.Equal(t, TypeCircularQueue, Kind(raw))
	assert.Equal(t, "", Kind(ir.IRArray{}))
	assert.Equal(t, "", Kind(ir.IRObject{"type": ir.IRInt(1)}))
}
