package converter

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen/errors"
)

func TestScalar_Layout(t *testing.T) {
	p := testRegistry(t)

	tests := []struct {
		typ   string
		value any
		wire  []byte
		back  any
	}{
		{"int8", -2, []byte{0xfe}, int8(-2)},
		{"uint8", uint8(200), []byte{200}, uint8(200)},
		{"int16", int16(-300), []byte{0xd4, 0xfe}, int16(-300)},
		{"uint16", 0xbeef, []byte{0xef, 0xbe}, uint16(0xbeef)},
		{"int32", int64(-1), []byte{0xff, 0xff, 0xff, 0xff}, int32(-1)},
		{"uint32", uint(7), []byte{7, 0, 0, 0}, uint32(7)},
		{"int64", int64(math.MinInt64), []byte{0, 0, 0, 0, 0, 0, 0, 0x80}, int64(math.MinInt64)},
		{"uint64", uint64(math.MaxUint64), []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, uint64(math.MaxUint64)},
		{"float32", float32(-2), []byte{0, 0, 0, 0xc0}, float32(-2)},
		{"float64", 1.5, []byte{0, 0, 0, 0, 0, 0, 0xf8, 0x3f}, 1.5},
		{"float64", 3, []byte{0, 0, 0, 0, 0, 0, 0x08, 0x40}, float64(3)},
		{"bool", true, []byte{1}, true},
		{"bool", false, []byte{0}, false},
		{"char", "A", []byte{'A'}, byte('A')},
		{"char", byte('z'), []byte{'z'}, byte('z')},
		{"string", "hi", []byte{2, 0, 0, 0, 'h', 'i'}, "hi"},
		{"string", []byte("hi"), []byte{2, 0, 0, 0, 'h', 'i'}, "hi"},
		{"string", "", []byte{0, 0, 0, 0}, ""},
		{"bytes", []byte{0, 1}, []byte{2, 0, 0, 0, 0, 1}, []byte{0, 1}},
		{"bytes", "ab", []byte{2, 0, 0, 0, 'a', 'b'}, []byte("ab")},
		{"int16", json.Number("42"), []byte{42, 0}, int16(42)},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := compile(t, p, tt.typ)

			size, err := c.Size(tt.value)
			require.NoError(t, err)
			assert.Equal(t, len(tt.wire), size)

			data, err := Marshal(c, tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.wire, data)

			got, err := Unmarshal(c, data)
			require.NoError(t, err)
			assert.Equal(t, tt.back, got)
		})
	}
}

func TestScalar_Errors(t *testing.T) {
	p := testRegistry(t)

	tests := []struct {
		typ   string
		value any
		kind  *errors.Error
	}{
		{"int8", 128, errors.ErrOverflow},
		{"int8", -129, errors.ErrOverflow},
		{"uint8", -1, errors.ErrOverflow},
		{"uint16", 65536, errors.ErrOverflow},
		{"int32", int64(math.MaxInt32) + 1, errors.ErrOverflow},
		{"uint64", -1, errors.ErrOverflow},
		{"int32", 1.5, errors.ErrTypeMismatch},
		{"int32", "1", errors.ErrTypeMismatch},
		{"bool", 1, errors.ErrTypeMismatch},
		{"char", "ab", errors.ErrTypeMismatch},
		{"char", 256, errors.ErrOverflow},
		{"string", 5, errors.ErrTypeMismatch},
		{"bytes", nil, errors.ErrTypeMismatch},
		{"float64", "x", errors.ErrTypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := compile(t, p, tt.typ)
			_, err := Marshal(c, tt.value)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestScalar_DecodeErrors(t *testing.T) {
	p := testRegistry(t)

	_, err := Unmarshal(compile(t, p, "uint32"), []byte{1, 2})
	assert.ErrorIs(t, err, errors.ErrOutOfBounds)

	_, err = Unmarshal(compile(t, p, "string"), []byte{5, 0, 0, 0, 'a'})
	assert.ErrorIs(t, err, errors.ErrOutOfBounds)
}

func TestUnmarshal_TrailingBytes(t *testing.T) {
	c := compile(t, testRegistry(t), "uint16")

	_, err := Unmarshal(c, []byte{1, 0, 0})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidData)
	assert.Contains(t, err.Error(), "invalid message size")
}

func TestScalar_Default(t *testing.T) {
	p := testRegistry(t)

	assert.Equal(t, int8(0), compile(t, p, "int8").Default())
	assert.Equal(t, uint64(0), compile(t, p, "uint64").Default())
	assert.Equal(t, float32(0), compile(t, p, "float32").Default())
	assert.Equal(t, false, compile(t, p, "bool").Default())
	assert.Equal(t, "", compile(t, p, "string").Default())
	assert.Equal(t, []byte{}, compile(t, p, "bytes").Default())
}
