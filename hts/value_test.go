package hts

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert"
)

func TestValueOfScalars(t *testing.T) {
	v, err := ValueOf("hello")
	assert.NoError(t, err)
	assert.Equal(t, String("hello"), v)

	for _, x := range []any{int(7), int8(7), int16(7), int32(7), int64(7), uint8(7), uint16(7), uint32(7)} {
		v, err := ValueOf(x)
		assert.NoError(t, err)
		assert.Equal(t, Int(7), v, "%T", x)
	}

	for _, x := range []any{float32(1.5), float64(1.5)} {
		v, err := ValueOf(x)
		assert.NoError(t, err)
		assert.Equal(t, Float(1.5), v, "%T", x)
	}
}

func TestValueOfSlices(t *testing.T) {
	v, err := ValueOf([]string{"a", "b"})
	assert.NoError(t, err)
	assert.Equal(t, Strings{"a", "b"}, v)

	v, err = ValueOf([]int{1, 2, 3})
	assert.NoError(t, err)
	assert.Equal(t, Ints{1, 2, 3}, v)

	v, err = ValueOf([]int32{4, 5})
	assert.NoError(t, err)
	assert.Equal(t, Ints{4, 5}, v)

	v, err = ValueOf([]float32{0.5, 1.5})
	assert.NoError(t, err)
	assert.Equal(t, Floats{0.5, 1.5}, v)
}

func TestValueOfAnySlice(t *testing.T) {
	v, err := ValueOf([]any{1, int64(2), int8(3)})
	assert.NoError(t, err)
	assert.Equal(t, Ints{1, 2, 3}, v)

	v, err = ValueOf([]any{"x", "y"})
	assert.NoError(t, err)
	assert.Equal(t, Strings{"x", "y"}, v)
}

func TestValueOfMixedAnySlice(t *testing.T) {
	_, err := ValueOf([]any{1, "two"})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))

	_, err = ValueOf([]any{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrTypeMismatch))
}

func TestValueOfPassthrough(t *testing.T) {
	in := Opaque{Tag: "raw", Data: []byte{1, 2}}
	v, err := ValueOf(in)
	assert.NoError(t, err)
	assert.Equal(t, in, v)
}

func TestValueOfRejectsUnknownTypes(t *testing.T) {
	for _, x := range []any{struct{}{}, map[string]int{}, []byte(nil), complex64(1)} {
		_, err := ValueOf(x)
		assert.Error(t, err, "%T", x)
		assert.True(t, errors.Is(err, ErrTypeMismatch))
	}
}
