package converter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen/buffer"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

func TestFactory_UnknownType(t *testing.T) {
	f := NewFactory(testRegistry(t))

	for _, name := range []string{"missing", "missing[]", "int32{missing}", "sample[2]{widget}"} {
		_, err := f.Converter(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, errors.ErrUnknownType, name)
	}
}

func TestFactory_UnknownFieldType(t *testing.T) {
	p := schema.NewProtocols()
	require.NoError(t, p.Load([]schema.RawType{{
		Type:      "holder",
		TypeClass: schema.TypeClassStruct,
		Fields:    []schema.RawField{{Name: "x", Type: "widget[]"}},
	}}))

	_, err := NewFactory(p).Converter("holder")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownType)

	var e *errors.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, []string{"x", "[]"}, e.Path)
}

func TestFactory_TypeNames(t *testing.T) {
	p := testRegistry(t)

	tests := []struct {
		name  string
		class schema.Class
	}{
		{"int32", schema.ClassScalar},
		{"dec64", schema.ClassDecimal},
		{"int32[]", schema.ClassTypedArray},
		{"string[4]", schema.ClassArray},
		{"dec64[]", schema.ClassArray},
		{"color[]", schema.ClassArray},
		{"int32{string}", schema.ClassMap},
		{"simple", schema.ClassStruct},
		{"color", schema.ClassEnum},
		{"perms", schema.ClassBitset},
		{"uuid", schema.ClassExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := compile(t, p, tt.name)
			assert.Equal(t, tt.name, c.TypeName())
			assert.Equal(t, tt.class, c.Class())
		})
	}
}

func chain(depth int) map[string]any {
	n := map[string]any{"value": int32(depth), "children": []any{}}
	for i := depth - 1; i > 0; i-- {
		n = map[string]any{"value": int32(i), "children": []any{n}}
	}
	return n
}

func TestFactory_RecursiveThroughArray(t *testing.T) {
	c := compile(t, testRegistry(t), "node")

	children, ok := c.(Struct).Field("children")
	require.True(t, ok)
	elem := children.(*arrayConverter).elem
	assert.Same(t, c, elem)

	v := map[string]any{
		"value": int32(1),
		"children": []any{
			map[string]any{"value": int32(2), "children": []any{}},
			map[string]any{"value": int32(3), "children": []any{
				map[string]any{"value": int32(4), "children": []any{}},
			}},
		},
	}

	size, err := c.Size(v)
	require.NoError(t, err)

	data, err := Marshal(c, v)
	require.NoError(t, err)
	assert.Len(t, data, size)

	got, err := Unmarshal(c, data)
	require.NoError(t, err)
	assert.Equal(t, v, got)
}

func TestFactory_RecursiveThroughMap(t *testing.T) {
	c := compile(t, testRegistry(t), "tree")

	leaf := map[string]any{"branches": NewMap(0)}
	branches := NewMap(1)
	branches.Set("left", leaf)
	v := map[string]any{"branches": branches}

	data, err := Marshal(c, v)
	require.NoError(t, err)
	assert.Equal(t, []byte{
		1, 0, 0, 0,
		4, 0, 0, 0, 'l', 'e', 'f', 't',
		0, 0, 0, 0,
	}, data)

	got, err := Unmarshal(c, data)
	require.NoError(t, err)
	left, ok := got.(map[string]any)["branches"].(*Map).Get("left")
	require.True(t, ok)
	assert.Equal(t, 0, left.(map[string]any)["branches"].(*Map).Len())
}

func TestFactory_IllegalRecursion(t *testing.T) {
	p := testRegistry(t)

	for _, name := range []string{"loop", "ping", "pong", "loop[]"} {
		_, err := NewFactory(p).Converter(name)
		require.Error(t, err, name)
		assert.ErrorIs(t, err, errors.ErrSchema, name)
		assert.Contains(t, err.Error(), "contains itself", name)
	}
}

func TestFactory_Reusable(t *testing.T) {
	f := NewFactory(testRegistry(t))

	_, err := f.Converter("loop")
	require.Error(t, err)

	c, err := f.Converter("node")
	require.NoError(t, err)
	assert.Equal(t, "node", c.TypeName())
}

func TestDepthGuard_BufferReusable(t *testing.T) {
	c := compile(t, testRegistry(t), "node")
	buf := buffer.New(make([]byte, 256)).WithMaxDepth(5)

	err := c.Serialize(chain(3), buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOverflow)
	assert.Equal(t, 0, buf.Depth())

	data, err := Marshal(c, chain(2))
	require.NoError(t, err)
	buf = buffer.New(data).WithMaxDepth(3)
	_, err = c.Deserialize(buf)
	require.Error(t, err)
	assert.Equal(t, 0, buf.Depth())
}

func TestDepthGuard(t *testing.T) {
	c := compile(t, testRegistry(t), "node")

	// three nodes nest six levels: struct, children array, ...
	shallow := chain(3)
	_, err := Marshal(c, shallow, WithMaxDepth(6))
	require.NoError(t, err)

	_, err = Marshal(c, shallow, WithMaxDepth(5))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOverflow)

	deep := chain(40)
	_, err = c.Size(deep)
	assert.ErrorIs(t, err, errors.ErrOverflow)

	_, err = Measure(c, deep)
	assert.ErrorIs(t, err, errors.ErrOverflow)

	data, err := Marshal(c, deep, WithMaxDepth(0))
	require.NoError(t, err)

	_, err = Unmarshal(c, data)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrOverflow)

	got, err := Unmarshal(c, data, WithMaxDepth(100))
	require.NoError(t, err)
	assert.Equal(t, deep, got)
}

func TestSizeMatchesMarshal(t *testing.T) {
	p := testRegistry(t)

	counts := NewMap(0)
	counts.Set("n", int32(1))

	tests := []struct {
		typ   string
		value any
	}{
		{"int64", -5},
		{"string", "hello"},
		{"bytes", []byte{}},
		{"dec64", "1.25"},
		{"int32[]", []int32{1, 2, 3}},
		{"float64[2]", []float64{1, 2}},
		{"string[]", []string{"a", "bc", ""}},
		{"int32{string}", counts},
		{"string{int8}", map[int8]string{-1: "neg", 1: "pos"}},
		{"color", "red"},
		{"perms", 0x8000},
		{"uuid", make([]byte, 16)},
		{"simple", map[string]any{"f0": 1, "f1_pad": 2, "f2": 3, "f3": 4}},
		{"outer", outerValue()},
		{"node", chain(5)},
		{"sample[2]", []any{
			map[string]any{"id": 1, "values": []float32{1, 2, 3, 4}, "label": "a"},
			map[string]any{"id": 2, "values": []any{1, 2, 3, 4}, "label": "bb"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			c := compile(t, p, tt.typ)

			size, err := c.Size(tt.value)
			require.NoError(t, err)

			data, err := Marshal(c, tt.value)
			require.NoError(t, err)
			assert.Equal(t, size, len(data))

			got, err := Unmarshal(c, data)
			require.NoError(t, err)

			again, err := Marshal(c, got)
			require.NoError(t, err)
			assert.Equal(t, data, again)
		})
	}
}

func TestConverterInterfaces(t *testing.T) {
	p := testRegistry(t)

	arr := compile(t, p, "string[3]").(Array)
	n, fixed := arr.Len()
	assert.Equal(t, 3, n)
	assert.True(t, fixed)
	assert.Equal(t, schema.BasicString, arr.Elem().(Scalar).Basic())

	typed := compile(t, p, "float32[]").(TypedArray)
	assert.Equal(t, schema.BasicFloat32, typed.Elem())
	_, fixed = typed.Len()
	assert.False(t, fixed)

	m := compile(t, p, "sample{color}").(Mapping)
	assert.Equal(t, schema.ClassEnum, m.Key().Class())
	assert.Equal(t, "sample", m.Value().TypeName())
}
