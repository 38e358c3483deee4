package converter

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/messgen/schema"
)

func intPtr(v int) *int { return &v }

// testRegistry holds the named types shared by the converter tests.
func testRegistry(t testing.TB) *schema.Protocols {
	t.Helper()
	p := schema.NewProtocols()
	require.NoError(t, p.Load([]schema.RawType{
		{
			Type:      "simple",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "f0", Type: "uint64"},
				{Name: "f1_pad", Type: "uint8"},
				{Name: "f2", Type: "float64"},
				{Name: "f3", Type: "uint32"},
			},
		},
		{
			Type:      "color",
			TypeClass: schema.TypeClassEnum,
			BaseType:  "uint8",
			Values: []schema.RawEnumValue{
				{Name: "red", Value: 1},
				{Name: "green", Value: 2},
				{Name: "blue", Value: 3},
			},
		},
		{
			Type:      "status",
			TypeClass: schema.TypeClassEnum,
			BaseType:  "int16",
			Values: []schema.RawEnumValue{
				{Name: "failed", Value: -1},
				{Name: "ok", Value: 0},
			},
		},
		{
			Type:      "perms",
			TypeClass: schema.TypeClassBitset,
			BaseType:  "uint16",
			Bits: []schema.RawBit{
				{Name: "read", Offset: 0},
				{Name: "write", Offset: 1},
				{Name: "exec", Offset: 4},
				{Name: "admin", Offset: 15},
			},
		},
		{
			Type:      "sample",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "id", Type: "uint32"},
				{Name: "values", Type: "float32[4]"},
				{Name: "label", Type: "string"},
			},
		},
		{
			Type:      "inner",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "price", Type: "dec64"},
				{Name: "color", Type: "color"},
				{Name: "tags", Type: "string[]"},
			},
		},
		{
			Type:      "middle",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "inner", Type: "inner"},
				{Name: "perms", Type: "perms"},
				{Name: "counts", Type: "int32{string}"},
			},
		},
		{
			Type:      "outer",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "name", Type: "string"},
				{Name: "items", Type: "middle[]"},
				{Name: "grid", Type: "int16[2][]"},
				{Name: "series", Type: "float64[]{string}"},
				{Name: "blob", Type: "bytes"},
				{Name: "flag", Type: "bool"},
				{Name: "initial", Type: "char"},
			},
		},
		{
			Type:      "node",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "value", Type: "int32"},
				{Name: "children", Type: "node[]"},
			},
		},
		{
			Type:      "tree",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "branches", Type: "tree{string}"},
			},
		},
		{
			Type:      "loop",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "next", Type: "loop"},
			},
		},
		{
			Type:      "ping",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "pong", Type: "pong[1]"},
			},
		},
		{
			Type:      "pong",
			TypeClass: schema.TypeClassStruct,
			Fields: []schema.RawField{
				{Name: "ping", Type: "ping"},
			},
		},
		{Type: "empty", TypeClass: schema.TypeClassStruct},
		{Type: "uuid", TypeClass: schema.TypeClassExternal, Size: intPtr(16)},
		{Type: "opaque", TypeClass: schema.TypeClassExternal},
	}))
	return p
}

func compile(t testing.TB, p *schema.Protocols, name string) Converter {
	t.Helper()
	c, err := NewFactory(p).Converter(name)
	require.NoError(t, err)
	return c
}
