package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen"
	"github.com/wippyai/messgen/errors"
)

func intPtr(v int) *int { return &v }

func testTypes() []RawType {
	return []RawType{
		{
			Type:      "point",
			TypeClass: TypeClassStruct,
			Fields: []RawField{
				{Name: "x", Type: "float64"},
				{Name: "y", Type: "float64"},
				{Name: "tag", Type: "uint8"},
			},
		},
		{
			Type:      "color",
			TypeClass: TypeClassEnum,
			BaseType:  "uint8",
			Values: []RawEnumValue{
				{Name: "red", Value: 0},
				{Name: "green", Value: 1},
			},
		},
		{
			Type:      "flags",
			TypeClass: TypeClassBitset,
			BaseType:  "uint8",
			Bits: []RawBit{
				{Name: "a", Offset: 0},
				{Name: "b", Offset: 3},
			},
		},
		{
			Type:      "node",
			TypeClass: TypeClassStruct,
			Fields: []RawField{
				{Name: "value", Type: "int32"},
				{Name: "children", Type: "node[]"},
			},
		},
		{Type: "blob16", TypeClass: TypeClassExternal, Size: intPtr(16)},
	}
}

func loaded(t *testing.T) *Protocols {
	t.Helper()
	p := NewProtocols()
	require.NoError(t, p.Load(testTypes()))
	return p
}

func TestGetType_Classification(t *testing.T) {
	p := loaded(t)

	tests := []struct {
		name  string
		class Class
	}{
		{"int8", ClassScalar},
		{"uint64", ClassScalar},
		{"float32", ClassScalar},
		{"bool", ClassScalar},
		{"char", ClassScalar},
		{"string", ClassScalar},
		{"bytes", ClassScalar},
		{"dec64", ClassDecimal},
		{"int32[]", ClassTypedArray},
		{"float64[4]", ClassTypedArray},
		{"string[]", ClassArray},
		{"bool[2]", ClassArray},
		{"point[]", ClassArray},
		{"int32[3][]", ClassArray},
		{"string{int32}", ClassMap},
		{"point", ClassStruct},
		{"color", ClassEnum},
		{"flags", ClassBitset},
		{"blob16", ClassExternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := p.GetType(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.class, def.Class())
			assert.Equal(t, tt.name, def.TypeName())
		})
	}
}

func TestGetType_ArraySyntax(t *testing.T) {
	p := NewProtocols()

	def, err := p.GetType("uint16[8]")
	require.NoError(t, err)
	ta := def.(*TypedArrayType)
	assert.Equal(t, "uint16", ta.ElementType)
	assert.Equal(t, BasicUint16, ta.Element)
	assert.Equal(t, 8, ta.Size)
	assert.True(t, ta.Fixed)

	def, err = p.GetType("int32[3][]")
	require.NoError(t, err)
	arr := def.(*ArrayType)
	assert.Equal(t, "int32[3]", arr.ElementType)
	assert.False(t, arr.Fixed)

	_, err = p.GetType("int32[x]")
	assert.ErrorIs(t, err, errors.ErrUnknownType)
}

func TestGetType_MapSyntax(t *testing.T) {
	p := NewProtocols()

	def, err := p.GetType("float32[]{string}")
	require.NoError(t, err)
	m := def.(*MapType)
	assert.Equal(t, "string", m.KeyType)
	assert.Equal(t, "float32[]", m.ValueType)

	def, err = p.GetType("int8{string}{uint32}")
	require.NoError(t, err)
	m = def.(*MapType)
	assert.Equal(t, "uint32", m.KeyType)
	assert.Equal(t, "int8{string}", m.ValueType)

	_, err = p.GetType("int8{}")
	assert.ErrorIs(t, err, errors.ErrUnknownType)
}

func TestGetType_Unknown(t *testing.T) {
	p := loaded(t)

	_, err := p.GetType("missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrUnknownType)
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestDependencies(t *testing.T) {
	p := loaded(t)

	tests := []struct {
		name string
		want []string
	}{
		{"uint8", nil},
		{"dec64", nil},
		{"point", []string{"float64", "uint8"}},
		{"node", []string{"int32", "node[]"}},
		{"node[]", []string{"node"}},
		{"int32[4]", []string{"int32"}},
		{"point{string}", []string{"point", "string"}},
		{"string{string}", []string{"string"}},
		{"color", nil},
		{"flags", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps, err := p.Dependencies(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, deps)
		})
	}
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name   string
		raw    RawType
		detail string
	}{
		{
			name:   "missing name",
			raw:    RawType{TypeClass: TypeClassStruct},
			detail: "no name",
		},
		{
			name:   "unknown class",
			raw:    RawType{Type: "x", TypeClass: "union"},
			detail: "not supported",
		},
		{
			name:   "missing class",
			raw:    RawType{Type: "x"},
			detail: "type_class missing",
		},
		{
			name: "duplicate field",
			raw: RawType{Type: "s", TypeClass: TypeClassStruct, Fields: []RawField{
				{Name: "a", Type: "int8"}, {Name: "a", Type: "int16"},
			}},
			detail: "duplicate field",
		},
		{
			name: "reserved field",
			raw: RawType{Type: "s", TypeClass: TypeClassStruct, Fields: []RawField{
				{Name: "type", Type: "int8"},
			}},
			detail: "reserved",
		},
		{
			name: "invalid field",
			raw: RawType{Type: "s", TypeClass: TypeClassStruct, Fields: []RawField{
				{Name: "1x", Type: "int8"},
			}},
			detail: "invalid field name",
		},
		{
			name:   "float enum",
			raw:    RawType{Type: "e", TypeClass: TypeClassEnum, BaseType: "float32"},
			detail: "not an integer",
		},
		{
			name: "duplicate enum value",
			raw: RawType{Type: "e", TypeClass: TypeClassEnum, BaseType: "int8", Values: []RawEnumValue{
				{Name: "a", Value: 1}, {Name: "a", Value: 2},
			}},
			detail: "duplicate enum value",
		},
		{
			name: "bit out of range",
			raw: RawType{Type: "b", TypeClass: TypeClassBitset, BaseType: "uint8", Bits: []RawBit{
				{Name: "a", Offset: 8},
			}},
			detail: "out of range [0, 7]",
		},
		{
			name: "duplicate offset",
			raw: RawType{Type: "b", TypeClass: TypeClassBitset, BaseType: "uint32", Bits: []RawBit{
				{Name: "a", Offset: 4}, {Name: "b", Offset: 4},
			}},
			detail: "share offset 4",
		},
		{
			name: "duplicate bit name",
			raw: RawType{Type: "b", TypeClass: TypeClassBitset, BaseType: "uint32", Bits: []RawBit{
				{Name: "a", Offset: 1}, {Name: "a", Offset: 2},
			}},
			detail: "duplicate bit name",
		},
		{
			name:   "shadows builtin",
			raw:    RawType{Type: "uint8", TypeClass: TypeClassStruct},
			detail: "shadows",
		},
		{
			name:   "negative external size",
			raw:    RawType{Type: "ext", TypeClass: TypeClassExternal, Size: intPtr(-1)},
			detail: "negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProtocols()
			err := p.Load([]RawType{tt.raw})
			require.Error(t, err)
			assert.ErrorIs(t, err, errors.ErrSchema)
			assert.Contains(t, err.Error(), tt.detail)
			assert.Empty(t, p.Names())
		})
	}
}

func TestLoad_AllOrNothing(t *testing.T) {
	p := NewProtocols()
	err := p.Load([]RawType{
		{Type: "ok", TypeClass: TypeClassStruct},
		{Type: "ok", TypeClass: TypeClassStruct},
	})
	require.Error(t, err)
	assert.Empty(t, p.Names())

	require.NoError(t, p.Load([]RawType{{Type: "ok", TypeClass: TypeClassStruct}}))
	err = p.Load([]RawType{{Type: "ok", TypeClass: TypeClassStruct}})
	assert.ErrorIs(t, err, errors.ErrSchema)
}

func TestNames(t *testing.T) {
	p := loaded(t)
	assert.Equal(t, []string{"blob16", "color", "flags", "node", "point"}, p.Names())
}

func TestBitsetMask(t *testing.T) {
	p := loaded(t)
	def, err := p.GetType("flags")
	require.NoError(t, err)
	assert.Equal(t, uint64(0b1001), def.(*BitsetType).Mask())
}

func TestLoadProtocols(t *testing.T) {
	p := loaded(t)
	err := p.LoadProtocols([]RawProtocol{{
		Name:    "test/geo",
		ProtoID: 7,
		Messages: map[int]RawMessage{
			2: {MessageID: 2, Name: "color_msg", Type: "color"},
			0: {MessageID: 0, Name: "point_msg", Type: "point"},
		},
	}})
	require.NoError(t, err)

	proto, ok := p.Protocol("test/geo")
	require.True(t, ok)
	assert.Equal(t, messgen.ProtocolID(7), proto.ID)
	require.Len(t, proto.Messages, 2)
	assert.Equal(t, "point_msg", proto.Messages[0].Name)
	assert.Equal(t, "color_msg", proto.Messages[1].Name)

	byID, ok := p.ProtocolByID(7)
	require.True(t, ok)
	assert.Same(t, proto, byID)

	m, ok := proto.Message(2)
	require.True(t, ok)
	assert.Equal(t, "color", m.Type)
	assert.Equal(t, messgen.PayloadID{Protocol: 7, Message: 2}, m.PayloadID())
	assert.Equal(t, "7:2", m.PayloadID().String())

	m, ok = proto.MessageByName("point_msg")
	require.True(t, ok)
	assert.Equal(t, messgen.MessageID(0), m.ID)

	_, ok = proto.Message(5)
	assert.False(t, ok)
	assert.Equal(t, []string{"test/geo"}, p.ProtocolNames())
}

func TestLoadProtocols_Validation(t *testing.T) {
	tests := []struct {
		name   string
		protos []RawProtocol
		detail string
	}{
		{
			name: "id mismatch",
			protos: []RawProtocol{{Name: "p", ProtoID: 1, Messages: map[int]RawMessage{
				1: {MessageID: 2, Name: "m", Type: "point"},
			}}},
			detail: "different from key",
		},
		{
			name: "duplicate message name",
			protos: []RawProtocol{{Name: "p", ProtoID: 1, Messages: map[int]RawMessage{
				0: {MessageID: 0, Name: "m", Type: "point"},
				1: {MessageID: 1, Name: "m", Type: "color"},
			}}},
			detail: "multiple times",
		},
		{
			name: "unknown type",
			protos: []RawProtocol{{Name: "p", ProtoID: 1, Messages: map[int]RawMessage{
				0: {MessageID: 0, Name: "m", Type: "nope"},
			}}},
			detail: `type "nope" required by message "m"`,
		},
		{
			name: "duplicate proto id",
			protos: []RawProtocol{
				{Name: "a", ProtoID: 1},
				{Name: "b", ProtoID: 1},
			},
			detail: "already used",
		},
		{
			name:   "invalid name",
			protos: []RawProtocol{{Name: "bad-name", ProtoID: 1}},
			detail: "invalid protocol name",
		},
		{
			name:   "proto id range",
			protos: []RawProtocol{{Name: "p", ProtoID: 1 << 20}},
			detail: "out of range",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := loaded(t)
			err := p.LoadProtocols(tt.protos)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.detail)
			assert.Empty(t, p.ProtocolNames())
		})
	}
}

func TestValidName(t *testing.T) {
	for _, name := range []string{"a", "_x", "field_1", "CamelCase"} {
		assert.True(t, ValidName(name), name)
	}
	for _, name := range []string{"", "1a", "a-b", "a b", "map", "type", "ünï"} {
		assert.False(t, ValidName(name), name)
	}
	assert.True(t, ValidTypeName("messgen/test/simple_struct"))
	assert.False(t, ValidTypeName("messgen//x"))
}

func TestBasic(t *testing.T) {
	tests := []struct {
		b       Basic
		width   int
		numeric bool
		integer bool
		signed  bool
	}{
		{BasicInt8, 1, true, true, true},
		{BasicUint16, 2, true, true, false},
		{BasicInt64, 8, true, true, true},
		{BasicFloat32, 4, true, false, true},
		{BasicBool, 1, false, false, false},
		{BasicChar, 1, false, false, false},
		{BasicString, 0, false, false, false},
		{BasicBytes, 0, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.b.String(), func(t *testing.T) {
			got, ok := LookupBasic(tt.b.String())
			require.True(t, ok)
			assert.Equal(t, tt.b, got)
			assert.Equal(t, tt.width, tt.b.Width())
			assert.Equal(t, tt.numeric, tt.b.IsNumeric())
			assert.Equal(t, tt.integer, tt.b.IsInteger())
			assert.Equal(t, tt.signed, tt.b.IsSigned())
		})
	}

	_, ok := LookupBasic("int128")
	assert.False(t, ok)
	_, ok = LookupBasic("invalid")
	assert.False(t, ok)
}
