package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHash_Scalars(t *testing.T) {
	p := NewProtocols()

	h, err := p.Hash("uint8")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x34c3a7f569434de1), h)

	h, err = p.Hash("float64")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x0e4b251ddedafe7c), h)
}

func TestHash_Struct(t *testing.T) {
	p := loaded(t)

	h, err := p.Hash("point")
	require.NoError(t, err)
	// float64 appears twice but is a single dependency
	assert.Equal(t, uint64(0xb56988586da63b43), h)
}

func TestHash_Enum(t *testing.T) {
	p := loaded(t)

	h, err := p.Hash("color")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x73b07a1dba1381ab), h)
}

func TestHash_FieldOrderMatters(t *testing.T) {
	p := NewProtocols()
	require.NoError(t, p.Load([]RawType{
		{Type: "ab", TypeClass: TypeClassStruct, Fields: []RawField{{Name: "a", Type: "int8"}, {Name: "b", Type: "int16"}}},
		{Type: "ba", TypeClass: TypeClassStruct, Fields: []RawField{{Name: "b", Type: "int16"}, {Name: "a", Type: "int8"}}},
	}))
	ab, err := p.Hash("ab")
	require.NoError(t, err)
	ba, err := p.Hash("ba")
	require.NoError(t, err)
	assert.NotEqual(t, ab, ba)
}

func TestHash_RecursiveTerminates(t *testing.T) {
	p := loaded(t)

	h, err := p.Hash("node")
	require.NoError(t, err)
	assert.NotZero(t, h)

	again, err := p.Hash("node")
	require.NoError(t, err)
	assert.Equal(t, h, again)
}

func TestHash_UnknownDependency(t *testing.T) {
	p := NewProtocols()
	require.NoError(t, p.Load([]RawType{
		{Type: "s", TypeClass: TypeClassStruct, Fields: []RawField{{Name: "x", Type: "missing"}}},
	}))
	_, err := p.Hash("s")
	assert.Error(t, err)
}

func TestMessageAndProtocolHash(t *testing.T) {
	p := loaded(t)
	require.NoError(t, p.LoadProtocols([]RawProtocol{{
		Name:    "geo",
		ProtoID: 1,
		Messages: map[int]RawMessage{
			0: {MessageID: 0, Name: "point_msg", Type: "point"},
		},
	}}))

	proto, _ := p.Protocol("geo")
	mh, err := p.MessageHash(proto.Messages[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1fb25be027a88b23), mh)

	ph, err := p.ProtocolHash(proto)
	require.NoError(t, err)
	assert.Equal(t, mh, ph)
}
