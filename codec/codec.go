package codec

import (
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/messgen"
	"github.com/wippyai/messgen/converter"
	"github.com/wippyai/messgen/errors"
	"github.com/wippyai/messgen/schema"
)

// Codec serializes messages of loaded protocols. Every registered type is
// compiled when it is loaded; lookups and serialization afterwards only
// read shared state.
//
// Thread-safe.
type Codec struct {
	logger   *zap.Logger
	maxDepth int

	mu         sync.RWMutex
	rawTypes   []schema.RawType
	rawProtos  []schema.RawProtocol
	registry   *schema.Protocols
	converters map[string]converter.Converter
	byName     map[string]*ProtocolInfo
	byID       map[messgen.ProtocolID]*ProtocolInfo
}

// New creates an empty codec.
func New(opts ...Option) *Codec {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = Logger()
	}
	return &Codec{
		logger:     o.logger,
		maxDepth:   o.maxDepth,
		registry:   schema.NewProtocols(),
		converters: make(map[string]converter.Converter),
		byName:     make(map[string]*ProtocolInfo),
		byID:       make(map[messgen.ProtocolID]*ProtocolInfo),
	}
}

// state is one consistent view of everything loaded so far.
type state struct {
	registry   *schema.Protocols
	converters map[string]converter.Converter
	byName     map[string]*ProtocolInfo
	byID       map[messgen.ProtocolID]*ProtocolInfo
}

// Load adds type and protocol descriptors to the codec. Types are compiled
// and messages are bound to their payload converters. On error nothing
// loaded by this call is kept.
func (c *Codec) Load(types []schema.RawType, protos []schema.RawProtocol) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rawTypes := append(append([]schema.RawType(nil), c.rawTypes...), types...)
	rawProtos := append(append([]schema.RawProtocol(nil), c.rawProtos...), protos...)

	st, err := c.build(rawTypes, rawProtos)
	if err != nil {
		return err
	}

	c.rawTypes, c.rawProtos = rawTypes, rawProtos
	c.registry = st.registry
	c.converters = st.converters
	c.byName = st.byName
	c.byID = st.byID

	c.logger.Info("descriptors loaded",
		zap.Int("types", len(st.converters)),
		zap.Int("protocols", len(st.byName)))
	return nil
}

// LoadDirs reads YAML type descriptors from typeDirs and protocol
// descriptors from protoDirs, then loads them.
func (c *Codec) LoadDirs(typeDirs, protoDirs []string) error {
	types, err := schema.LoadYAMLDir(typeDirs...)
	if err != nil {
		return err
	}
	protos, err := schema.LoadProtocolsYAMLDir(protoDirs...)
	if err != nil {
		return err
	}
	return c.Load(types, protos)
}

func (c *Codec) build(types []schema.RawType, protos []schema.RawProtocol) (*state, error) {
	registry := schema.NewProtocols()
	if err := registry.Load(types); err != nil {
		return nil, err
	}
	if err := registry.LoadProtocols(protos); err != nil {
		return nil, err
	}

	st := &state{
		registry:   registry,
		converters: make(map[string]converter.Converter),
		byName:     make(map[string]*ProtocolInfo),
		byID:       make(map[messgen.ProtocolID]*ProtocolInfo),
	}

	factory := converter.NewFactory(registry)
	for _, name := range registry.Names() {
		conv, err := factory.Converter(name)
		if err != nil {
			return nil, err
		}
		st.converters[name] = conv
		c.logger.Debug("type compiled", zap.String("type", name), zap.Stringer("class", conv.Class()))
	}

	for _, protoName := range registry.ProtocolNames() {
		proto, _ := registry.Protocol(protoName)
		info, err := st.protocolInfo(factory, proto)
		if err != nil {
			return nil, err
		}
		st.byName[info.Name] = info
		st.byID[info.ID] = info
		c.logger.Debug("protocol bound",
			zap.String("protocol", info.Name),
			zap.Int16("proto_id", info.ID.Int16()),
			zap.Int("messages", len(info.Messages)),
			zap.Uint64("hash", info.Hash))
	}
	return st, nil
}

func (st *state) protocolInfo(factory *converter.Factory, proto *schema.Protocol) (*ProtocolInfo, error) {
	info := &ProtocolInfo{
		ID:       proto.ID,
		Name:     proto.Name,
		Comment:  proto.Comment,
		Messages: make([]*MessageInfo, 0, len(proto.Messages)),
		byID:     make(map[messgen.MessageID]*MessageInfo, len(proto.Messages)),
		byName:   make(map[string]*MessageInfo, len(proto.Messages)),
	}

	for _, m := range proto.Messages {
		conv, err := st.converter(factory, m.Type)
		if err != nil {
			return nil, errors.Within(errors.PhaseCompile, err, proto.Name, m.Name)
		}
		hash, err := st.registry.MessageHash(m)
		if err != nil {
			return nil, err
		}
		mi := &MessageInfo{
			ProtoID:   proto.ID,
			ProtoName: proto.Name,
			ID:        m.ID,
			Name:      m.Name,
			TypeName:  m.Type,
			Comment:   m.Comment,
			Hash:      hash,
			Converter: conv,
		}
		info.Messages = append(info.Messages, mi)
		info.byID[mi.ID] = mi
		info.byName[mi.Name] = mi
		info.Hash ^= hash
	}
	return info, nil
}

// converter returns the converter of a registered type or compiles an
// anonymous one such as "int32[]".
func (st *state) converter(factory *converter.Factory, name string) (converter.Converter, error) {
	if conv, ok := st.converters[name]; ok {
		return conv, nil
	}
	conv, err := factory.Converter(name)
	if err != nil {
		return nil, err
	}
	st.converters[name] = conv
	return conv, nil
}

// Registry returns the type registry of everything loaded so far. The
// registry must not be modified.
func (c *Codec) Registry() *schema.Protocols {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry
}

// TypeNames returns the registered type names, sorted.
func (c *Codec) TypeNames() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.registry.Names()
}

// TypeConverter returns the converter of a type. Registered types are
// compiled at load; other names (array and map syntax, scalars) are
// compiled on first use and kept.
func (c *Codec) TypeConverter(name string) (converter.Converter, error) {
	c.mu.RLock()
	conv, ok := c.converters[name]
	c.mu.RUnlock()
	if ok {
		return conv, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	st := &state{registry: c.registry, converters: c.converters}
	conv, err := st.converter(converter.NewFactory(c.registry), name)
	if err != nil {
		c.logger.Debug("type lookup failed", zap.String("type", name), zap.Error(err))
		return nil, err
	}
	return conv, nil
}

// ProtocolByName returns a loaded protocol.
func (c *Codec) ProtocolByName(name string) (*ProtocolInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.byName[name]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, "protocol", name)
	}
	return info, nil
}

// ProtocolByID returns a loaded protocol.
func (c *Codec) ProtocolByID(id messgen.ProtocolID) (*ProtocolInfo, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	info, ok := c.byID[id]
	if !ok {
		return nil, errors.NotFound(errors.PhaseLookup, "protocol", strconv.Itoa(int(id)))
	}
	return info, nil
}

// Protocols returns the loaded protocols ordered by name.
func (c *Codec) Protocols() []*ProtocolInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ProtocolInfo, 0, len(c.byName))
	for _, name := range c.registry.ProtocolNames() {
		out = append(out, c.byName[name])
	}
	return out
}

// MessageByName returns a message of a loaded protocol.
func (c *Codec) MessageByName(protoName, msgName string) (*MessageInfo, error) {
	proto, err := c.ProtocolByName(protoName)
	if err != nil {
		return nil, err
	}
	m, ok := proto.MessageByName(msgName)
	if !ok {
		c.logger.Debug("message lookup failed", zap.String("protocol", protoName), zap.String("message", msgName))
		return nil, errors.NotFound(errors.PhaseLookup, "message", protoName+"/"+msgName)
	}
	return m, nil
}

// MessageByID returns a message of a loaded protocol.
func (c *Codec) MessageByID(protoID messgen.ProtocolID, msgID messgen.MessageID) (*MessageInfo, error) {
	proto, err := c.ProtocolByID(protoID)
	if err != nil {
		return nil, err
	}
	m, ok := proto.Message(msgID)
	if !ok {
		id := messgen.PayloadID{Protocol: protoID, Message: msgID}
		c.logger.Debug("message lookup failed", zap.Stringer("payload", id))
		return nil, errors.NotFound(errors.PhaseLookup, "message", id.String())
	}
	return m, nil
}

// Serialize encodes value as the payload of a message.
func (c *Codec) Serialize(protoName, msgName string, value any) ([]byte, error) {
	m, err := c.MessageByName(protoName, msgName)
	if err != nil {
		return nil, err
	}
	return converter.Marshal(m.Converter, value, converter.WithMaxDepth(c.maxDepth))
}

// Deserialize decodes the payload of a message. The payload must be
// consumed exactly.
func (c *Codec) Deserialize(protoID messgen.ProtocolID, msgID messgen.MessageID, data []byte) (any, error) {
	m, err := c.MessageByID(protoID, msgID)
	if err != nil {
		return nil, err
	}
	return converter.Unmarshal(m.Converter, data, converter.WithMaxDepth(c.maxDepth))
}
