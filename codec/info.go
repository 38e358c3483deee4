package codec

import (
	"github.com/wippyai/messgen"
	"github.com/wippyai/messgen/converter"
)

// MessageInfo describes one message of a loaded protocol.
type MessageInfo struct {
	ProtoID   messgen.ProtocolID
	ProtoName string
	ID        messgen.MessageID
	Name      string
	TypeName  string
	Comment   string
	// Hash identifies the message layout; peers with equal hashes agree on
	// the wire format.
	Hash      uint64
	Converter converter.Converter
}

// PayloadID returns the (protocol, message) pair that keys the message.
func (m *MessageInfo) PayloadID() messgen.PayloadID {
	return messgen.PayloadID{Protocol: m.ProtoID, Message: m.ID}
}

// ProtocolInfo describes a loaded protocol.
type ProtocolInfo struct {
	ID      messgen.ProtocolID
	Name    string
	Comment string
	// Hash is the XOR of the message hashes.
	Hash uint64
	// Messages are ordered by id.
	Messages []*MessageInfo

	byID   map[messgen.MessageID]*MessageInfo
	byName map[string]*MessageInfo
}

// Message returns the message with the given id.
func (p *ProtocolInfo) Message(id messgen.MessageID) (*MessageInfo, bool) {
	m, ok := p.byID[id]
	return m, ok
}

// MessageByName returns the message with the given name.
func (p *ProtocolInfo) MessageByName(name string) (*MessageInfo, bool) {
	m, ok := p.byName[name]
	return m, ok
}
