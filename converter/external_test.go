package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

func TestExternal_Sized(t *testing.T) {
	c := compile(t, testRegistry(t), "uuid")
	assert.Equal(t, schema.ClassExternal, c.Class())

	id := []byte("0123456789abcdef")
	data, err := Marshal(c, id)
	require.NoError(t, err)
	assert.Equal(t, id, data)

	got, err := Unmarshal(c, data)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	data[0] = 'X'
	assert.Equal(t, byte('0'), got.([]byte)[0])

	_, err = Marshal(c, id[:4])
	assert.ErrorIs(t, err, errors.ErrLengthMismatch)

	_, err = Marshal(c, "0123456789abcdef")
	assert.ErrorIs(t, err, errors.ErrTypeMismatch)

	assert.Equal(t, make([]byte, 16), c.Default())
}

func TestExternal_Unsized(t *testing.T) {
	c := compile(t, testRegistry(t), "opaque")

	_, err := Marshal(c, []byte{1})
	assert.ErrorIs(t, err, errors.ErrUnsupported)

	_, err = c.Size([]byte{1})
	assert.ErrorIs(t, err, errors.ErrUnsupported)

	_, err = Unmarshal(c, []byte{1})
	assert.ErrorIs(t, err, errors.ErrUnsupported)
}
