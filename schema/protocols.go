package schema

import (
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/messgen"
	"github.com/wippyai/messgen/errors"
)

// Protocols is the type registry. Named types are registered by Load and
// resolved lazily by GetType, so descriptors may reference each other in any
// order, including cyclically.
//
// Protocols is not safe for concurrent mutation. Lookups are safe once
// loading is done.
type Protocols struct {
	types     map[string]TypeDefinition
	protocols map[string]*Protocol
	byID      map[messgen.ProtocolID]*Protocol
}

// Protocol is a named set of messages sharing a protocol id.
type Protocol struct {
	Name     string
	ID       messgen.ProtocolID
	Comment  string
	Messages []*Message // sorted by id

	byID   map[messgen.MessageID]*Message
	byName map[string]*Message
}

// Message binds a message id to the type carried as its payload.
type Message struct {
	ProtoID messgen.ProtocolID
	ID      messgen.MessageID
	Name    string
	Type    string
	Comment string
}

// PayloadID returns the message address.
func (m *Message) PayloadID() messgen.PayloadID {
	return messgen.PayloadID{Protocol: m.ProtoID, Message: m.ID}
}

// Message returns the message with the given id.
func (p *Protocol) Message(id messgen.MessageID) (*Message, bool) {
	m, ok := p.byID[id]
	return m, ok
}

// MessageByName returns the message with the given name.
func (p *Protocol) MessageByName(name string) (*Message, bool) {
	m, ok := p.byName[name]
	return m, ok
}

func NewProtocols() *Protocols {
	return &Protocols{
		types:     make(map[string]TypeDefinition),
		protocols: make(map[string]*Protocol),
		byID:      make(map[messgen.ProtocolID]*Protocol),
	}
}

// Load registers struct, enum, bitset and external descriptors by name.
// References between types are not resolved here. Either every descriptor is
// registered or none is.
func (p *Protocols) Load(raw []RawType) error {
	staged := make(map[string]TypeDefinition, len(raw))
	for i := range raw {
		def, err := fromRaw(&raw[i])
		if err != nil {
			return err
		}
		name := def.TypeName()
		if _, dup := staged[name]; dup {
			return schemaError(errors.PhaseLoad, name, "type %q registered twice", name)
		}
		if _, dup := p.types[name]; dup {
			return schemaError(errors.PhaseLoad, name, "type %q registered twice", name)
		}
		if _, ok := LookupBasic(name); ok || name == DecimalName {
			return schemaError(errors.PhaseLoad, name, "type name %q shadows a built-in type", name)
		}
		staged[name] = def
	}

	for name, def := range staged {
		p.types[name] = def
		Logger().Debug("registered type",
			zap.String("type", name),
			zap.Stringer("class", def.Class()))
	}
	return nil
}

func fromRaw(r *RawType) (TypeDefinition, error) {
	if r.Type == "" {
		return nil, schemaError(errors.PhaseLoad, "", "type descriptor has no name")
	}
	if !ValidTypeName(r.Type) {
		return nil, schemaError(errors.PhaseLoad, r.Type, "invalid type name %q", r.Type)
	}

	switch r.TypeClass {
	case TypeClassStruct:
		t := &StructType{Name: r.Type, Comment: r.Comment, Fields: make([]Field, len(r.Fields))}
		for i, f := range r.Fields {
			t.Fields[i] = Field{Name: f.Name, Type: f.Type, Comment: f.Comment}
		}
		if err := t.validate(errors.PhaseLoad); err != nil {
			return nil, err
		}
		return t, nil

	case TypeClassEnum:
		base, _ := LookupBasic(r.BaseType)
		t := &EnumType{Name: r.Type, Comment: r.Comment, BaseType: r.BaseType, Base: base,
			Values: make([]EnumValue, len(r.Values))}
		for i, v := range r.Values {
			t.Values[i] = EnumValue{Name: v.Name, Value: v.Value, Comment: v.Comment}
		}
		if err := t.validate(errors.PhaseLoad); err != nil {
			return nil, err
		}
		return t, nil

	case TypeClassBitset:
		base, _ := LookupBasic(r.BaseType)
		t := &BitsetType{Name: r.Type, Comment: r.Comment, BaseType: r.BaseType, Base: base,
			Bits: make([]Bit, len(r.Bits))}
		for i, b := range r.Bits {
			t.Bits[i] = Bit{Name: b.Name, Offset: b.Offset, Comment: b.Comment}
		}
		if err := t.validate(errors.PhaseLoad); err != nil {
			return nil, err
		}
		return t, nil

	case TypeClassExternal:
		t := &ExternalType{Name: r.Type, Comment: r.Comment}
		if r.Size != nil {
			if *r.Size < 0 {
				return nil, schemaError(errors.PhaseLoad, r.Type, "negative external size %d", *r.Size)
			}
			t.Size, t.Sized = *r.Size, true
		}
		return t, nil

	case "":
		return nil, schemaError(errors.PhaseLoad, r.Type, "type_class missing")
	default:
		return nil, schemaError(errors.PhaseLoad, r.Type, "type_class %q is not supported", r.TypeClass)
	}
}

// LoadProtocols registers protocol descriptors. Every message type must
// already resolve, so types are loaded first.
func (p *Protocols) LoadProtocols(raw []RawProtocol) error {
	staged := make([]*Protocol, 0, len(raw))
	names := make(map[string]struct{}, len(raw))
	ids := make(map[messgen.ProtocolID]string, len(raw))

	for i := range raw {
		proto, err := p.protocolFromRaw(&raw[i])
		if err != nil {
			return err
		}
		if _, dup := names[proto.Name]; dup {
			return schemaError(errors.PhaseLoad, proto.Name, "protocol %q registered twice", proto.Name)
		}
		if _, dup := p.protocols[proto.Name]; dup {
			return schemaError(errors.PhaseLoad, proto.Name, "protocol %q registered twice", proto.Name)
		}
		if other, dup := ids[proto.ID]; dup {
			return schemaError(errors.PhaseLoad, proto.Name, "protocol id %d already used by %q", proto.ID, other)
		}
		if other, dup := p.byID[proto.ID]; dup {
			return schemaError(errors.PhaseLoad, proto.Name, "protocol id %d already used by %q", proto.ID, other.Name)
		}
		names[proto.Name] = struct{}{}
		ids[proto.ID] = proto.Name
		staged = append(staged, proto)
	}

	for _, proto := range staged {
		p.protocols[proto.Name] = proto
		p.byID[proto.ID] = proto
		Logger().Debug("registered protocol",
			zap.String("protocol", proto.Name),
			zap.Int16("proto_id", int16(proto.ID)),
			zap.Int("messages", len(proto.Messages)))
	}
	return nil
}

func (p *Protocols) protocolFromRaw(r *RawProtocol) (*Protocol, error) {
	if !ValidTypeName(r.Name) {
		return nil, schemaError(errors.PhaseLoad, r.Name, "invalid protocol name %q", r.Name)
	}
	if r.ProtoID < math.MinInt16 || r.ProtoID > math.MaxInt16 {
		return nil, schemaError(errors.PhaseLoad, r.Name, "proto_id %d out of range", r.ProtoID)
	}

	proto := &Protocol{
		Name:     r.Name,
		ID:       messgen.ProtocolID(r.ProtoID),
		Comment:  r.Comment,
		Messages: make([]*Message, 0, len(r.Messages)),
		byID:     make(map[messgen.MessageID]*Message, len(r.Messages)),
		byName:   make(map[string]*Message, len(r.Messages)),
	}

	keys := make([]int, 0, len(r.Messages))
	for key := range r.Messages {
		keys = append(keys, key)
	}
	sort.Ints(keys)

	for _, key := range keys {
		rm := r.Messages[key]
		if !ValidName(rm.Name) {
			return nil, schemaError(errors.PhaseLoad, r.Name, "invalid message name %q", rm.Name)
		}
		if _, dup := proto.byName[rm.Name]; dup {
			return nil, schemaError(errors.PhaseLoad, r.Name, "message %q appears multiple times", rm.Name)
		}
		if rm.MessageID != key {
			return nil, schemaError(errors.PhaseLoad, r.Name,
				"message %q has message_id %d different from key %d", rm.Name, rm.MessageID, key)
		}
		if key < math.MinInt16 || key > math.MaxInt16 {
			return nil, schemaError(errors.PhaseLoad, r.Name, "message_id %d out of range", key)
		}
		if _, err := p.GetType(rm.Type); err != nil {
			return nil, errors.New(errors.PhaseLoad, errors.KindUnknownType).
				TypeName(rm.Type).
				Detail("type %q required by message %q of protocol %q not found", rm.Type, rm.Name, r.Name).
				Cause(err).
				Build()
		}

		m := &Message{
			ProtoID: proto.ID,
			ID:      messgen.MessageID(key),
			Name:    rm.Name,
			Type:    rm.Type,
			Comment: rm.Comment,
		}
		proto.Messages = append(proto.Messages, m)
		proto.byID[m.ID] = m
		proto.byName[m.Name] = m
	}
	return proto, nil
}

// GetType resolves a type name. Scalars and dec64 come first, then array
// syntax (T[], T[N]), then map syntax (V{K}), then registered names.
// Array and map element names are not resolved here.
func (p *Protocols) GetType(name string) (TypeDefinition, error) {
	if b, ok := LookupBasic(name); ok {
		return &ScalarType{Name: name, Basic: b}, nil
	}
	if name == DecimalName {
		return &DecimalType{Name: name}, nil
	}

	if strings.HasSuffix(name, "]") {
		elem, size, fixed, err := parseArray(name)
		if err != nil {
			return nil, err
		}
		if b, ok := LookupBasic(elem); ok && b.IsNumeric() {
			return &TypedArrayType{Name: name, ElementType: elem, Element: b, Size: size, Fixed: fixed}, nil
		}
		return &ArrayType{Name: name, ElementType: elem, Size: size, Fixed: fixed}, nil
	}

	if strings.HasSuffix(name, "}") {
		key, value, err := parseMap(name)
		if err != nil {
			return nil, err
		}
		return &MapType{Name: name, KeyType: key, ValueType: value}, nil
	}

	if def, ok := p.types[name]; ok {
		return def, nil
	}
	return nil, errors.UnknownType(errors.PhaseLookup, name)
}

// Dependencies returns the type names directly referenced by name.
func (p *Protocols) Dependencies(name string) ([]string, error) {
	def, err := p.GetType(name)
	if err != nil {
		return nil, err
	}
	return def.Dependencies(), nil
}

// Names returns the registered type names, sorted.
func (p *Protocols) Names() []string {
	names := make([]string, 0, len(p.types))
	for name := range p.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Protocol returns the protocol registered under name.
func (p *Protocols) Protocol(name string) (*Protocol, bool) {
	proto, ok := p.protocols[name]
	return proto, ok
}

// ProtocolByID returns the protocol registered under id.
func (p *Protocols) ProtocolByID(id messgen.ProtocolID) (*Protocol, bool) {
	proto, ok := p.byID[id]
	return proto, ok
}

// ProtocolNames returns the registered protocol names, sorted.
func (p *Protocols) ProtocolNames() []string {
	names := make([]string, 0, len(p.protocols))
	for name := range p.protocols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
